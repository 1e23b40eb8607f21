package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotifai/deepagent/core"
)

// ToolDefinition declaratively exposes a callable function to the oracle.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// oracle. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// ResponseSchema constrains the oracle to emit JSON matching a schema. Used
// by the structured-output variant (plans, research intents).
type ResponseSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// Request captures the normalized oracle input produced by the stages.
type Request struct {
	Instructions   string           `json:"instructions"` // System framing for the call
	Messages       []core.Message   `json:"messages"`     // Conversation turns, oldest first
	Tools          []ToolDefinition `json:"tools,omitempty"`
	ResponseSchema *ResponseSchema  `json:"response_schema,omitempty"`
	Stream         bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming oracle call.
type Response struct {
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the graph requires to drive generation.
// Generate returns a response channel carrying zero or more partial chunks
// followed by exactly one final response, plus a terminal error channel.
// Both channels are closed when the call completes or the context is
// cancelled.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// GenerateText drains a Generate call and returns the final (non-partial)
// response message. onFragment, when non-nil, is invoked for every partial
// text fragment in arrival order; returning an error from it aborts the call.
func GenerateText(ctx context.Context, m Model, req Request, onFragment func(text string) error) (core.Message, error) {
	respCh, errCh := m.Generate(ctx, req)

	var final core.Message
	var finalSeen bool
	for {
		select {
		case <-ctx.Done():
			return core.Message{}, ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				return core.Message{}, err
			}
			errCh = nil
		case resp, ok := <-respCh:
			if !ok {
				if !finalSeen {
					return core.Message{}, fmt.Errorf("oracle produced no final response")
				}
				return final, nil
			}
			if resp.Partial {
				if onFragment != nil {
					if text := resp.Message.Text(); text != "" {
						if err := onFragment(text); err != nil {
							return core.Message{}, err
						}
					}
				}
				continue
			}
			final = resp.Message
			finalSeen = true
		}
	}
}

// MockModel is a scripted in-memory Model for tests and examples. Responses
// are consumed from a FIFO queue; when the queue is empty it echoes the last
// request message. When Stream is requested, the final text is preceded by
// rune-sized partial fragments.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	scripted  []Response
	CallCount int
	Requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// Enqueue appends scripted final responses consumed in FIFO order.
func (m *MockModel) Enqueue(responses ...Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, responses...)
}

// EnqueueText is a convenience wrapper scripting a plain assistant reply.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(Response{Message: core.NewAssistantMessage(text), FinishReason: "stop"})
}

// Generate implements Model; emits optional streaming fragments then the
// scripted (or echoed) final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.CallCount++
	m.Requests = append(m.Requests, req)
	var final Response
	if len(m.scripted) > 0 {
		final = m.scripted[0]
		m.scripted = m.scripted[1:]
	} else {
		last := ""
		if len(req.Messages) > 0 {
			last = req.Messages[len(req.Messages)-1].Text()
		}
		final = Response{
			Message:      core.NewAssistantMessage(fmt.Sprintf("Mock response to: %s", last)),
			FinishReason: "stop",
		}
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if req.Stream {
			for _, r := range final.Message.Text() {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Message: core.NewAssistantMessage(string(r)),
				}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- final:
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
