package agent

import (
	"fmt"

	"github.com/spotifai/deepagent/core"
)

// translate maps one internal event to its caller-facing chunk. The switch is
// exhaustive over the closed core.Event set: oracle token fragments from the
// executor and finalizer become TEXT (the agent's visible reply), everything
// else becomes a THINKING trace. ok is false for events with nothing to show.
func translate(ev core.Event, verbose bool) (core.Chunk, bool) {
	switch e := ev.(type) {
	case core.PlanningStarted:
		return thinking("🧠 Generando plan de acción...\n"), true
	case core.PlanningCompleted:
		return thinking(fmt.Sprintf("\n✅ Plan generado con %d pasos\n", len(e.Plan.Steps))), true
	case core.ResearchStarted:
		return thinking(fmt.Sprintf("\n🔎 Investigando paso: %s\n", e.Step)), true
	case core.ResearchCompleted:
		return thinking(fmt.Sprintf("\n✅ Investigación completada. Intent: %s\n", e.Intent)), true
	case core.SummarizingStarted:
		return thinking(fmt.Sprintf("\n🧩 Resumiendo contexto (%d mensajes)...\n", e.MessageCount)), true
	case core.SummarizingCompleted:
		return thinking("\n✅ Resumen completado\n"), true
	case core.ExecutionStarted:
		return thinking(fmt.Sprintf("\n⚙️ Ejecutando paso: %s\n", e.Step)), true
	case core.ExecutionCompleted:
		return thinking("\n✅ Ejecución completada\n"), true
	case core.CriticStarted:
		return thinking("\n🧐 Evaluando progreso...\n"), true
	case core.CriticCompleted:
		return thinking("\n✅ Evaluación completada\n"), true
	case core.FinalizingStarted:
		return thinking("\n🧩 Sintetizando resultados finales...\n"), true
	case core.FinalizingCompleted:
		return thinking("\n✅ Síntesis completada\n"), true
	case core.TokenFragment:
		if e.Text == "" {
			return core.Chunk{}, false
		}
		if e.Stage == core.StageExecutor || e.Stage == core.StageFinalizer {
			return core.Chunk{Type: core.ChunkText, Content: e.Text}, true
		}
		return thinking(e.Text), true
	case core.CustomEvent:
		// Generic rendering so the stream never silently drops information.
		return thinking(fmt.Sprintf("[%s]: %v\n", e.Name, e.Payload)), true
	default:
		if verbose {
			return thinking(fmt.Sprintf("[evento desconocido]: %T\n", ev)), true
		}
		return core.Chunk{}, false
	}
}

func thinking(content string) core.Chunk {
	return core.Chunk{Type: core.ChunkThinking, Content: content}
}
