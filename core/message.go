package core

import (
	"strings"

	"github.com/google/uuid"
)

// Conversation roles used throughout the engine.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Part represents a polymorphic segment of a message. Concrete part types
// implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string // Plain UTF-8 text
}

func (TextPart) isPart() {}

// FunctionCall describes a tool invocation request produced by the oracle.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`        // Correlates the eventual response to this call
	Name      string `json:"name"`                // Registered tool name
	Arguments string `json:"arguments,omitempty"` // Serialized JSON argument payload
}

// FunctionCallPart wraps a FunctionCall as a message part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
}

func (FunctionCallPart) isPart() {}

// FunctionResponse captures the outcome of a previously requested function
// call. Content always carries a textual rendering of the result (or of the
// failure) so the oracle can react to it on the next turn.
type FunctionResponse struct {
	ID      string `json:"id,omitempty"` // Matches the originating FunctionCall ID
	Name    string `json:"name"`         // Tool name as requested
	Content string `json:"content"`      // Stringified result or error text
}

// FunctionResponsePart wraps a FunctionResponse as a message part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
}

func (FunctionResponsePart) isPart() {}

// Message is one conversation turn: a role plus ordered heterogeneous parts.
// Messages are treated as immutable once appended to the state.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// NewSystemMessage creates a system-role text message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// NewUserMessage creates a user-role text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantMessage creates an assistant-role text message.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewToolMessage creates a tool-role message carrying a single function
// response tagged with the originating call id.
func NewToolMessage(callID, name, content string) Message {
	return Message{Role: RoleTool, Parts: []Part{FunctionResponsePart{
		FunctionResponse: FunctionResponse{ID: callID, Name: name, Content: content},
	}}}
}

// Text concatenates all text parts preserving their order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// FunctionCalls returns any function call parts in their original order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns any function response parts in their original order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsAssistant reports whether the message was authored by the oracle.
func (m Message) IsAssistant() bool { return m.Role == RoleAssistant }

// NewID generates a unique identifier for turns and tool-call correlation.
func NewID() string { return uuid.NewString() }
