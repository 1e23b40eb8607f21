package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spotifai/deepagent/core"
	"github.com/spotifai/deepagent/model"
	"github.com/spotifai/deepagent/prompt"
)

// invalidToolTemplate is fed back into the conversation when the oracle
// requests a tool that is not registered, so it can self-correct instead of
// failing the turn.
const invalidToolTemplate = "Error: %s is not a valid tool, retry with one of the registered tools."

// defaultPlan is substituted when the oracle's plan output cannot be parsed,
// so the rest of the graph never observes an absent or malformed plan.
func defaultPlan() core.Plan {
	return core.Plan{Steps: []string{
		"Analizar la consulta del usuario",
		"Ejecutar acciones necesarias",
		"Proporcionar respuesta",
	}}
}

type emitFunc func(core.Event) error

// logOracle reports one oracle round trip to the logger's metrics hook, if any.
func (a *Agent) logOracle(dur time.Duration, err error) {
	if om, ok := a.logger.(oracleMetrics); ok {
		om.LogOracleCall(a.model.Info().Name, dur, err == nil, err)
	}
}

// generateText runs a text generation against the agent's oracle, recording
// call latency and outcome.
func (a *Agent) generateText(ctx context.Context, req model.Request, onText func(string) error) (core.Message, error) {
	start := time.Now()
	msg, err := model.GenerateText(ctx, a.model, req, onText)
	a.logOracle(time.Since(start), err)
	return msg, err
}

// generateStructured is the structured-output counterpart of
// Agent.generateText; a function because methods cannot be generic.
func generateStructured[T any](ctx context.Context, a *Agent, req model.Request, name string) (T, error) {
	start := time.Now()
	v, err := model.GenerateStructured[T](ctx, a.model, req, name)
	a.logOracle(time.Since(start), err)
	return v, err
}

// plan asks the oracle for a structured Plan for the user query.
func (a *Agent) plan(ctx context.Context, st *core.State, query string, emit emitFunc) (core.Delta, error) {
	if err := emit(core.PlanningStarted{}); err != nil {
		return core.Delta{}, err
	}

	planPrompt, err := prompt.Render(prompt.Plan, map[string]any{"domain": a.opts.Domain})
	if err != nil {
		return core.Delta{}, err
	}

	req := model.Request{
		Instructions: a.systemPrompt,
		Messages: []core.Message{
			core.NewSystemMessage(planPrompt),
			core.NewUserMessage(query),
		},
	}

	p, err := generateStructured[core.Plan](ctx, a, req, "plan")
	switch {
	case errors.Is(err, model.ErrMalformedOutput):
		a.logger.Warn("plan output malformed, using default plan", "error", err.Error())
		p = defaultPlan()
	case err != nil:
		return core.Delta{}, fmt.Errorf("plan generation: %w", err)
	case len(p.Steps) == 0:
		a.logger.Warn("plan output empty, using default plan")
		p = defaultPlan()
	}
	p.CurrentStep = 0

	if err := emit(core.PlanningCompleted{Plan: p}); err != nil {
		return core.Delta{}, err
	}

	ack := core.NewAssistantMessage(
		fmt.Sprintf("He generado un plan de acción con %d pasos: %s", len(p.Steps), p.String()),
	)
	return core.Delta{Plan: &p, Messages: []core.Message{ack}}, nil
}

// research consumes the current plan step and derives the Intent required to
// execute it. When the plan is exhausted it stores the sentinel intent
// without invoking the oracle.
func (a *Agent) research(ctx context.Context, st *core.State, emit emitFunc) (core.Delta, error) {
	p := st.Plan.Clone()
	if p == nil {
		p = &core.Plan{}
	}

	step, index, ok := p.NextStep()
	if !ok {
		return core.Delta{
			Plan:    p,
			Scratch: map[string]any{core.ScratchIntent: core.SentinelIntent()},
		}, nil
	}

	if err := emit(core.ResearchStarted{Step: step, Index: index}); err != nil {
		return core.Delta{}, err
	}

	researchPrompt, err := prompt.Render(prompt.Research, map[string]any{"domain": a.opts.Domain})
	if err != nil {
		return core.Delta{}, err
	}

	req := model.Request{
		Instructions: a.systemPrompt,
		Messages: []core.Message{
			core.NewSystemMessage(researchPrompt),
			core.NewUserMessage(fmt.Sprintf("Paso del plan a analizar: %s.", step)),
		},
	}

	intent, err := generateStructured[core.Intent](ctx, a, req, "intent")
	switch {
	case errors.Is(err, model.ErrMalformedOutput):
		a.logger.Warn("intent output malformed, degrading to step text", "step", step, "error", err.Error())
		intent = core.Intent{Goal: step}
	case err != nil:
		return core.Delta{}, fmt.Errorf("research step %d: %w", index, err)
	}

	if err := emit(core.ResearchCompleted{Step: step, Intent: intent}); err != nil {
		return core.Delta{}, err
	}

	return core.Delta{
		Plan:    p,
		Scratch: map[string]any{core.ScratchIntent: intent},
	}, nil
}

// summarize compacts the history into exactly three messages: the system
// framing, the original user query and an oracle-produced digest.
func (a *Agent) summarize(ctx context.Context, st *core.State, emit emitFunc) (core.Delta, error) {
	if err := emit(core.SummarizingStarted{MessageCount: len(st.Messages)}); err != nil {
		return core.Delta{}, err
	}

	summarizePrompt, err := prompt.Render(prompt.Summarize, nil)
	if err != nil {
		return core.Delta{}, err
	}

	req := model.Request{
		Instructions: a.systemPrompt + "\n\n" + summarizePrompt,
		Messages:     st.Messages,
	}

	final, err := a.generateText(ctx, req, nil)
	if err != nil {
		return core.Delta{}, fmt.Errorf("summarize history: %w", err)
	}
	digest := final.Text()

	if err := emit(core.SummarizingCompleted{Digest: digest}); err != nil {
		return core.Delta{}, err
	}

	userQuery := firstUserMessage(st.Messages)
	return core.Delta{
		ReplaceMessages: []core.Message{
			core.NewSystemMessage(a.systemPrompt),
			userQuery,
			core.NewSystemMessage("RESUMEN CONTEXTO:\n" + digest),
		},
	}, nil
}

// firstUserMessage returns the earliest user turn, or an empty user message
// when the history has none.
func firstUserMessage(messages []core.Message) core.Message {
	for _, msg := range messages {
		if msg.Role == core.RoleUser {
			return msg
		}
	}
	return core.NewUserMessage("")
}

// execute performs the next concrete action for the current step: the oracle
// answers directly or requests tool invocations.
func (a *Agent) execute(ctx context.Context, st *core.State, emit emitFunc) (core.Delta, error) {
	step := st.Plan.LastConsumedStep()
	intent := st.Intent()

	if err := emit(core.ExecutionStarted{Step: step, Intent: intent}); err != nil {
		return core.Delta{}, err
	}

	executePrompt, err := prompt.Render(prompt.Execute, map[string]any{
		"step":  step,
		"goal":  intent.Goal,
		"notes": intent.Notes,
	})
	if err != nil {
		return core.Delta{}, err
	}

	messages := make([]core.Message, 0, len(st.Messages)+1)
	messages = append(messages, st.Messages...)
	messages = append(messages, core.NewSystemMessage(executePrompt))

	req := model.Request{
		Instructions: a.systemPrompt,
		Messages:     messages,
		Tools:        a.toolDefinitions(),
	}

	final, err := a.generateText(ctx, req, nil)
	if err != nil {
		return core.Delta{}, fmt.Errorf("execute step %q: %w", step, err)
	}

	if err := emit(core.ExecutionCompleted{Response: final}); err != nil {
		return core.Delta{}, err
	}

	return core.Delta{Messages: []core.Message{final}}, nil
}

// runTools executes every tool-invocation request on the most recent oracle
// response, one result message per request in request order. Unknown tool
// names and tool failures are reported back into the conversation as
// corrective feedback, never raised to the caller.
func (a *Agent) runTools(ctx context.Context, st *core.State, emit emitFunc) (core.Delta, error) {
	last, ok := st.LastMessage()
	if !ok {
		return core.Delta{}, nil
	}

	var results []core.Message
	for _, call := range last.FunctionCalls() {
		content := a.runTool(ctx, call)
		results = append(results, core.NewToolMessage(call.ID, call.Name, content))

		if err := emit(core.CustomEvent{
			Name:    "tool_completed",
			Payload: map[string]any{"tool": call.Name},
		}); err != nil {
			return core.Delta{}, err
		}
	}

	return core.Delta{Messages: results}, nil
}

// runTool resolves and invokes a single tool call, returning the textual
// result payload to feed back to the oracle.
func (a *Agent) runTool(ctx context.Context, call core.FunctionCall) string {
	t, ok := a.registry.Get(call.Name)
	if !ok {
		a.logger.Warn("unknown tool requested", "tool", call.Name)
		return fmt.Sprintf(invalidToolTemplate, call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			a.logger.Warn("malformed tool arguments", "tool", call.Name, "error", err.Error())
			return fmt.Sprintf("Error: invalid arguments for tool %s: %v", call.Name, err)
		}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	if tm, ok := a.logger.(toolMetrics); ok {
		tm.LogToolCall(call.Name, time.Since(start), err == nil, err)
	}
	if err != nil {
		a.logger.Warn("tool call failed", "tool", call.Name, "error", err.Error())
		return "Error: " + err.Error()
	}
	return stringifyResult(result)
}

// stringifyResult renders a tool return value as text for the conversation.
func stringifyResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%v", v)
	}
}

// critic is a pass-through decision gate; it exists as the explicit point
// the router acts on after each step's execution completes.
func (a *Agent) critic(_ context.Context, _ *core.State, emit emitFunc) (core.Delta, error) {
	if err := emit(core.CriticStarted{}); err != nil {
		return core.Delta{}, err
	}
	if err := emit(core.CriticCompleted{}); err != nil {
		return core.Delta{}, err
	}
	return core.Delta{}, nil
}

// finalize streams the synthesized final answer and marks the turn complete.
func (a *Agent) finalize(ctx context.Context, st *core.State, emit emitFunc) (core.Delta, error) {
	if err := emit(core.FinalizingStarted{}); err != nil {
		return core.Delta{}, err
	}

	finalizePrompt, err := prompt.Render(prompt.Finalize, nil)
	if err != nil {
		return core.Delta{}, err
	}

	messages := make([]core.Message, 0, len(st.Messages)+1)
	messages = append(messages, st.Messages...)
	messages = append(messages, core.NewSystemMessage(finalizePrompt))

	req := model.Request{
		Instructions: a.systemPrompt,
		Messages:     messages,
		Stream:       true,
	}

	final, err := a.generateText(ctx, req, func(text string) error {
		return emit(core.TokenFragment{Stage: core.StageFinalizer, Text: text})
	})
	if err != nil {
		return core.Delta{}, fmt.Errorf("finalize answer: %w", err)
	}

	if err := emit(core.FinalizingCompleted{}); err != nil {
		return core.Delta{}, err
	}

	return core.Delta{Messages: []core.Message{final}, Final: &final}, nil
}
