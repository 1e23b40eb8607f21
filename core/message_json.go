package core

import (
	"encoding/json"
	"fmt"
)

// partEnvelope is the tagged wire form of a Part. The tag keeps the closed
// part set round-trippable through JSON (needed by durable state stores).
type partEnvelope struct {
	Type             string            `json:"type"`
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

const (
	partTypeText             = "text"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

// MarshalJSON encodes the message with tagged part envelopes.
func (m Message) MarshalJSON() ([]byte, error) {
	envs := make([]partEnvelope, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch v := p.(type) {
		case TextPart:
			envs = append(envs, partEnvelope{Type: partTypeText, Text: v.Text})
		case FunctionCallPart:
			fc := v.FunctionCall
			envs = append(envs, partEnvelope{Type: partTypeFunctionCall, FunctionCall: &fc})
		case FunctionResponsePart:
			fr := v.FunctionResponse
			envs = append(envs, partEnvelope{Type: partTypeFunctionResponse, FunctionResponse: &fr})
		default:
			return nil, fmt.Errorf("unknown part type %T", p)
		}
	}
	return json.Marshal(struct {
		Role  string         `json:"role"`
		Parts []partEnvelope `json:"parts"`
	}{Role: m.Role, Parts: envs})
}

// UnmarshalJSON decodes the tagged part envelopes back into concrete parts.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role  string         `json:"role"`
		Parts []partEnvelope `json:"parts"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	m.Role = wire.Role
	m.Parts = make([]Part, 0, len(wire.Parts))
	for _, env := range wire.Parts {
		switch env.Type {
		case partTypeText:
			m.Parts = append(m.Parts, TextPart{Text: env.Text})
		case partTypeFunctionCall:
			if env.FunctionCall == nil {
				return fmt.Errorf("function_call part without payload")
			}
			m.Parts = append(m.Parts, FunctionCallPart{FunctionCall: *env.FunctionCall})
		case partTypeFunctionResponse:
			if env.FunctionResponse == nil {
				return fmt.Errorf("function_response part without payload")
			}
			m.Parts = append(m.Parts, FunctionResponsePart{FunctionResponse: *env.FunctionResponse})
		default:
			return fmt.Errorf("unknown part type %q", env.Type)
		}
	}
	return nil
}
