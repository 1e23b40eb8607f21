package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotifai/deepagent/core"
	"github.com/spotifai/deepagent/model"
	"github.com/spotifai/deepagent/tool"
)

func newTestAgent(t *testing.T, m model.Model, tools ...tool.Tool) *Agent {
	t.Helper()
	a, err := New(m, func(o *Options) {
		o.Domain = "música en Spotify"
		o.Tone = "neutro"
		o.Tools = tools
	})
	require.NoError(t, err)
	return a
}

// collectEmit records emitted events for direct stage-level assertions.
func collectEmit(events *[]core.Event) emitFunc {
	return func(ev core.Event) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestPlanParsesStructuredOutput(t *testing.T) {
	mock := model.NewMockModel("mock")
	mock.EnqueueText(`{"steps":["Buscar canciones","Crear playlist"]}`)
	a := newTestAgent(t, mock)

	var events []core.Event
	st := core.NewState()
	delta, err := a.plan(context.Background(), st, "ponme rock", collectEmit(&events))
	require.NoError(t, err)

	require.NotNil(t, delta.Plan)
	assert.Equal(t, []string{"Buscar canciones", "Crear playlist"}, delta.Plan.Steps)
	assert.Equal(t, 0, delta.Plan.CurrentStep)

	// Acknowledgment appended to history
	require.Len(t, delta.Messages, 1)
	assert.Contains(t, delta.Messages[0].Text(), "2 pasos")

	require.Len(t, events, 2)
	assert.IsType(t, core.PlanningStarted{}, events[0])
	completed, ok := events[1].(core.PlanningCompleted)
	require.True(t, ok)
	assert.Len(t, completed.Plan.Steps, 2)
}

func TestPlanFallbackOnMalformedOutput(t *testing.T) {
	mock := model.NewMockModel("mock")
	mock.EnqueueText("esto no es un plan estructurado")
	a := newTestAgent(t, mock)

	var events []core.Event
	delta, err := a.plan(context.Background(), core.NewState(), "ponme rock", collectEmit(&events))
	require.NoError(t, err)

	require.NotNil(t, delta.Plan)
	assert.Equal(t, []string{
		"Analizar la consulta del usuario",
		"Ejecutar acciones necesarias",
		"Proporcionar respuesta",
	}, delta.Plan.Steps)
	assert.Equal(t, 0, delta.Plan.CurrentStep)
}

func TestPlanFallbackOnEmptySteps(t *testing.T) {
	mock := model.NewMockModel("mock")
	mock.EnqueueText(`{"steps":[]}`)
	a := newTestAgent(t, mock)

	var events []core.Event
	delta, err := a.plan(context.Background(), core.NewState(), "hola", collectEmit(&events))
	require.NoError(t, err)
	assert.Len(t, delta.Plan.Steps, 3)
}

func TestResearchConsumesEachStepExactlyOnce(t *testing.T) {
	mock := model.NewMockModel("mock")
	for i := 0; i < 3; i++ {
		mock.EnqueueText(fmt.Sprintf(`{"goal":"objetivo %d","notes":"nota %d"}`, i, i))
	}
	a := newTestAgent(t, mock)

	st := core.NewState()
	st.Plan = &core.Plan{Steps: []string{"uno", "dos", "tres"}}

	var events []core.Event
	for i := 0; i < 3; i++ {
		assert.True(t, needMoreSteps(st))
		delta, err := a.research(context.Background(), st, collectEmit(&events))
		require.NoError(t, err)
		st.Apply(delta)
		assert.Equal(t, i+1, st.Plan.CurrentStep)
		assert.Equal(t, fmt.Sprintf("objetivo %d", i), st.Intent().Goal)
	}

	// Exactly N oracle invocations for N steps
	assert.Equal(t, 3, mock.CallCount)
	assert.False(t, needMoreSteps(st))

	// Started/completed pair per step, with 0-based indices
	require.Len(t, events, 6)
	first, ok := events[0].(core.ResearchStarted)
	require.True(t, ok)
	assert.Equal(t, "uno", first.Step)
	assert.Equal(t, 0, first.Index)
}

func TestResearchExhaustedPlanReturnsSentinel(t *testing.T) {
	mock := model.NewMockModel("mock")
	a := newTestAgent(t, mock)

	st := core.NewState()
	st.Plan = &core.Plan{Steps: []string{"uno"}, CurrentStep: 1}

	var events []core.Event
	delta, err := a.research(context.Background(), st, collectEmit(&events))
	require.NoError(t, err)
	st.Apply(delta)

	// No oracle call, no events, sentinel intent in scratch
	assert.Equal(t, 0, mock.CallCount)
	assert.Empty(t, events)
	assert.Equal(t, "none", st.Intent().Goal)
	assert.Equal(t, "no steps to investigate", st.Intent().Notes)
}

func TestResearchDegradesOnMalformedIntent(t *testing.T) {
	mock := model.NewMockModel("mock")
	mock.EnqueueText("texto libre")
	a := newTestAgent(t, mock)

	st := core.NewState()
	st.Plan = &core.Plan{Steps: []string{"buscar canciones"}}

	var events []core.Event
	delta, err := a.research(context.Background(), st, collectEmit(&events))
	require.NoError(t, err)
	st.Apply(delta)
	assert.Equal(t, "buscar canciones", st.Intent().Goal)
}

func TestSummarizeCompactsHistoryToThreeMessages(t *testing.T) {
	mock := model.NewMockModel("mock")
	mock.EnqueueText("resumen de lo ocurrido")
	a := newTestAgent(t, mock)

	st := core.NewState()
	st.Messages = append(st.Messages, core.NewSystemMessage(a.systemPrompt))
	st.Messages = append(st.Messages, core.NewUserMessage("ponme rock"))
	for i := 0; i < 23; i++ {
		st.Messages = append(st.Messages, core.NewAssistantMessage(fmt.Sprintf("turno %d", i)))
	}
	require.Len(t, st.Messages, 25)

	var events []core.Event
	delta, err := a.summarize(context.Background(), st, collectEmit(&events))
	require.NoError(t, err)
	st.Apply(delta)

	require.Len(t, st.Messages, 3)
	assert.Equal(t, core.RoleSystem, st.Messages[0].Role)
	assert.Equal(t, "ponme rock", st.Messages[1].Text())
	assert.Contains(t, st.Messages[2].Text(), "resumen de lo ocurrido")

	require.Len(t, events, 2)
	started, ok := events[0].(core.SummarizingStarted)
	require.True(t, ok)
	assert.Equal(t, 25, started.MessageCount)
	completed, ok := events[1].(core.SummarizingCompleted)
	require.True(t, ok)
	assert.Equal(t, "resumen de lo ocurrido", completed.Digest)
}

func TestRunToolsUnknownToolIsCorrective(t *testing.T) {
	mock := model.NewMockModel("mock")
	a := newTestAgent(t, mock)

	st := core.NewState()
	st.Messages = append(st.Messages, core.Message{
		Role: core.RoleAssistant,
		Parts: []core.Part{core.FunctionCallPart{
			FunctionCall: core.FunctionCall{ID: "fc1", Name: "no_such_tool", Arguments: "{}"},
		}},
	})

	var events []core.Event
	delta, err := a.runTools(context.Background(), st, collectEmit(&events))
	require.NoError(t, err)

	require.Len(t, delta.Messages, 1)
	responses := delta.Messages[0].FunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "fc1", responses[0].ID)
	assert.Equal(t, fmt.Sprintf(invalidToolTemplate, "no_such_tool"), responses[0].Content)
}

func TestRunToolsExecutesInRequestOrder(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{
		"query": map[string]any{"type": "string"},
	}}
	search := tool.NewFunctionTool("search_tracks", "Busca canciones", params,
		func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{"found": args["query"]}, nil
		})
	failing := tool.NewFunctionTool("broken", "Siempre falla", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("sin conexión")
		})

	mock := model.NewMockModel("mock")
	a := newTestAgent(t, mock, search, failing)

	st := core.NewState()
	st.Messages = append(st.Messages, core.Message{
		Role: core.RoleAssistant,
		Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "fc1", Name: "search_tracks", Arguments: `{"query":"rock"}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "fc2", Name: "broken", Arguments: "{}"}},
		},
	})

	var events []core.Event
	delta, err := a.runTools(context.Background(), st, collectEmit(&events))
	require.NoError(t, err)

	// One result per request, in request order, tagged with the call id
	require.Len(t, delta.Messages, 2)
	r1 := delta.Messages[0].FunctionResponses()[0]
	assert.Equal(t, "fc1", r1.ID)
	assert.JSONEq(t, `{"found":"rock"}`, r1.Content)

	// Tool failure propagated as result content, not an error
	r2 := delta.Messages[1].FunctionResponses()[0]
	assert.Equal(t, "fc2", r2.ID)
	assert.Contains(t, r2.Content, "Error:")
	assert.Contains(t, r2.Content, "sin conexión")

	assert.Len(t, events, 2)
}

func TestStringifyResult(t *testing.T) {
	assert.Equal(t, "", stringifyResult(nil))
	assert.Equal(t, "hola", stringifyResult("hola"))
	assert.Equal(t, `{"a":1}`, stringifyResult(map[string]any{"a": 1}))
	assert.Equal(t, "42", stringifyResult(42))
}
