package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spotifai/deepagent/core"
)

func TestTranslateTokenFragments(t *testing.T) {
	// Executor and finalizer fragments are the agent's visible reply
	chunk, ok := translate(core.TokenFragment{Stage: core.StageFinalizer, Text: "hola"}, false)
	assert.True(t, ok)
	assert.Equal(t, core.ChunkText, chunk.Type)
	assert.Equal(t, "hola", chunk.Content)

	chunk, ok = translate(core.TokenFragment{Stage: core.StageExecutor, Text: "x"}, false)
	assert.True(t, ok)
	assert.Equal(t, core.ChunkText, chunk.Type)

	// Planner and researcher fragments are reasoning trace
	chunk, ok = translate(core.TokenFragment{Stage: core.StagePlanner, Text: "pensando"}, false)
	assert.True(t, ok)
	assert.Equal(t, core.ChunkThinking, chunk.Type)

	chunk, ok = translate(core.TokenFragment{Stage: core.StageResearcher, Text: "y"}, false)
	assert.True(t, ok)
	assert.Equal(t, core.ChunkThinking, chunk.Type)

	// Empty fragments carry nothing to show
	_, ok = translate(core.TokenFragment{Stage: core.StageFinalizer, Text: ""}, false)
	assert.False(t, ok)
}

func TestTranslateStageEvents(t *testing.T) {
	events := []core.Event{
		core.PlanningStarted{},
		core.PlanningCompleted{Plan: core.Plan{Steps: []string{"a", "b"}}},
		core.ResearchStarted{Step: "a", Index: 0},
		core.ResearchCompleted{Step: "a", Intent: core.Intent{Goal: "g"}},
		core.SummarizingStarted{MessageCount: 12},
		core.SummarizingCompleted{Digest: "d"},
		core.ExecutionStarted{Step: "a"},
		core.ExecutionCompleted{},
		core.CriticStarted{},
		core.CriticCompleted{},
		core.FinalizingStarted{},
		core.FinalizingCompleted{},
	}
	for _, ev := range events {
		chunk, ok := translate(ev, false)
		assert.True(t, ok, "%T", ev)
		assert.Equal(t, core.ChunkThinking, chunk.Type, "%T", ev)
		assert.NotEmpty(t, chunk.Content, "%T", ev)
	}

	chunk, _ := translate(core.PlanningCompleted{Plan: core.Plan{Steps: []string{"a", "b"}}}, false)
	assert.Contains(t, chunk.Content, "2 pasos")

	chunk, _ = translate(core.ResearchStarted{Step: "buscar canciones"}, false)
	assert.Contains(t, chunk.Content, "buscar canciones")
}

func TestTranslateCustomEvent(t *testing.T) {
	chunk, ok := translate(core.CustomEvent{
		Name:    "tool_completed",
		Payload: map[string]any{"tool": "search_tracks"},
	}, false)
	assert.True(t, ok)
	assert.Equal(t, core.ChunkThinking, chunk.Type)
	assert.Contains(t, chunk.Content, "tool_completed")
	assert.Contains(t, chunk.Content, "search_tracks")
}
