package openai

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateToolCallDeltas(t *testing.T) {
	agg := map[int64]*aggCall{}

	// Arguments arrive fragmented across chunks
	aggregateToolCallDeltas(openai.ChatCompletionChunkChoice{
		Delta: openai.ChatCompletionChunkChoiceDelta{
			ToolCalls: []openai.ChatCompletionChunkChoiceDeltaToolCall{
				{Index: 0, ID: "fc1", Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{Name: "search_song", Arguments: `{"que`}},
			},
		},
	}, agg)
	aggregateToolCallDeltas(openai.ChatCompletionChunkChoice{
		Delta: openai.ChatCompletionChunkChoiceDelta{
			ToolCalls: []openai.ChatCompletionChunkChoiceDeltaToolCall{
				{Index: 0, Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{Arguments: `ry":"rock"}`}},
				{Index: 1, ID: "fc2", Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{Name: "get_my_playlists"}},
			},
		},
	}, agg)

	require.Len(t, agg, 2)
	assert.Equal(t, "fc1", agg[0].id)
	assert.Equal(t, `{"query":"rock"}`, agg[0].args)
	assert.Equal(t, "get_my_playlists", agg[1].name)
}

func TestFinalChunkPreservesToolCallOrder(t *testing.T) {
	toolAgg := map[int64]*aggCall{
		2: {id: "fc3", name: "tercera"},
		0: {id: "fc1", name: "primera"},
		1: {id: "fc2", name: "segunda"},
	}

	resp := finalChunk(openai.ChatCompletionChunkChoice{FinishReason: "tool_calls"}, "texto", toolAgg)
	assert.False(t, resp.Partial)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Equal(t, "texto", resp.Message.Text())

	calls := resp.Message.FunctionCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"fc1", "fc2", "fc3"}, []string{calls[0].ID, calls[1].ID, calls[2].ID})
}
