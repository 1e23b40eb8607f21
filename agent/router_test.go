package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spotifai/deepagent/core"
)

func stateWithMessages(n int) *core.State {
	st := core.NewState()
	for i := 0; i < n; i++ {
		st.Messages = append(st.Messages, core.NewUserMessage(fmt.Sprintf("m%d", i)))
	}
	return st
}

func TestNeedSummarizeBoundary(t *testing.T) {
	assert.False(t, needSummarize(stateWithMessages(9), 10))
	assert.False(t, needSummarize(stateWithMessages(10), 10))
	assert.True(t, needSummarize(stateWithMessages(11), 10))
}

func TestNeedTools(t *testing.T) {
	st := core.NewState()

	// Empty history
	assert.False(t, needTools(st))

	// Plain assistant text
	st.Messages = append(st.Messages, core.NewAssistantMessage("hola"))
	assert.False(t, needTools(st))

	// Assistant message with a tool-invocation request
	st.Messages = append(st.Messages, core.Message{
		Role: core.RoleAssistant,
		Parts: []core.Part{core.FunctionCallPart{
			FunctionCall: core.FunctionCall{ID: "fc1", Name: "search_tracks"},
		}},
	})
	assert.True(t, needTools(st))

	// Tool response after the call
	st.Messages = append(st.Messages, core.NewToolMessage("fc1", "search_tracks", "ok"))
	assert.False(t, needTools(st))
}

func TestNeedMoreSteps(t *testing.T) {
	st := core.NewState()
	assert.False(t, needMoreSteps(st))

	st.Plan = &core.Plan{Steps: []string{"a", "b"}, CurrentStep: 1}
	assert.True(t, needMoreSteps(st))

	st.Plan.CurrentStep = 2
	assert.False(t, needMoreSteps(st))
}

func TestRouteTopology(t *testing.T) {
	st := core.NewState()

	next, done := route(core.StagePlanner, st, 10)
	assert.False(t, done)
	assert.Equal(t, core.StageResearcher, next)

	// Researcher goes to executor below the threshold
	next, _ = route(core.StageResearcher, st, 10)
	assert.Equal(t, core.StageExecutor, next)

	// And to summarizer above it
	big := stateWithMessages(11)
	next, _ = route(core.StageResearcher, big, 10)
	assert.Equal(t, core.StageSummarizer, next)

	next, _ = route(core.StageSummarizer, st, 10)
	assert.Equal(t, core.StageExecutor, next)

	// Executor without tool calls goes to critic
	next, _ = route(core.StageExecutor, st, 10)
	assert.Equal(t, core.StageCritic, next)

	// Executor with pending tool calls goes to the tool runner
	withCall := core.NewState()
	withCall.Messages = append(withCall.Messages, core.Message{
		Role:  core.RoleAssistant,
		Parts: []core.Part{core.FunctionCallPart{FunctionCall: core.FunctionCall{Name: "t"}}},
	})
	next, _ = route(core.StageExecutor, withCall, 10)
	assert.Equal(t, core.StageTools, next)

	next, _ = route(core.StageTools, st, 10)
	assert.Equal(t, core.StageExecutor, next)

	// Critic loops to researcher while steps remain, else finalizer
	pending := core.NewState()
	pending.Plan = &core.Plan{Steps: []string{"a", "b"}, CurrentStep: 1}
	next, _ = route(core.StageCritic, pending, 10)
	assert.Equal(t, core.StageResearcher, next)

	next, _ = route(core.StageCritic, st, 10)
	assert.Equal(t, core.StageFinalizer, next)

	_, done = route(core.StageFinalizer, st, 10)
	assert.True(t, done)
}
