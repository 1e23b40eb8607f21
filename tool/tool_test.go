package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/spotifai/deepagent/internal/util"
	"github.com/stretchr/testify/assert"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	// Properties present
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	if req == nil { // reflection may produce []any
		ifaceReq, _ := schema["required"].([]any)
		for _, v := range ifaceReq {
			req = append(req, v.(string))
		}
	}
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		// Use interface slice to match ValidateParameters implementation expectation
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})
	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})
	_, err := execTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

func TestFunctionTool_ToolErrorPassthrough(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	custom := NewToolError("custom", "rate limited", "RATE_LIMITED")
	tTool := NewFunctionTool("custom", "Custom failure", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, custom
	})
	_, err := tTool.Call(context.Background(), map[string]any{})
	assert.Same(t, custom, err)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		Query string `json:"query" description:"Search query"`
	}
	tTool := NewFunctionToolFromStruct("search", "Search things", args{}, func(_ context.Context, a map[string]any) (any, error) {
		return a["query"], nil
	})
	props, ok := tTool.Parameters()["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "query")

	res, err := tTool.Call(context.Background(), map[string]any{"query": "hola"})
	assert.NoError(t, err)
	assert.Equal(t, "hola", res)
}

// -------------------- Registry Tests --------------------

func TestRegistry(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	a := NewFunctionTool("alpha", "A", params, func(_ context.Context, _ map[string]any) (any, error) { return "a", nil })
	b := NewFunctionTool("beta", "B", params, func(_ context.Context, _ map[string]any) (any, error) { return "b", nil })

	reg := NewRegistry(b, a)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())

	got, ok := reg.Get("alpha")
	assert.True(t, ok)
	assert.Equal(t, "alpha", got.Name())

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	all := reg.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name())
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
}
