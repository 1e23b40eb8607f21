package core

import "maps"

// ScratchIntent is the scratch key holding the most recent research Intent.
const ScratchIntent = "intent"

// State is the mutable record threaded through every stage of the execution
// graph. A single State instance is exclusively owned by one in-flight turn;
// stages receive it read-only and return a Delta which the driver merges
// between stage invocations, never mid-stage.
type State struct {
	Messages []Message      `json:"messages"`
	Plan     *Plan          `json:"plan,omitempty"`
	Scratch  map[string]any `json:"scratch,omitempty"`
	Final    *Message       `json:"final,omitempty"`
}

// NewState creates an empty state with an initialized scratch slot.
func NewState() *State {
	return &State{Scratch: map[string]any{}}
}

// Delta is a stage's partial state replacement. Each field carries its own
// merge rule, applied by State.Apply:
//
//   - Messages: appended in order (the default history policy)
//   - ReplaceMessages: when non-nil, replaces the whole history. This is the
//     explicit compact operation and is used only by the summarizer stage.
//   - Plan / Final: last-write-wins when non-nil
//   - Scratch: overwrites the scratch slot wholesale (per-step artifacts are
//     replaced, never accumulated)
type Delta struct {
	Messages        []Message
	ReplaceMessages []Message
	Plan            *Plan
	Scratch         map[string]any
	Final           *Message
}

// Apply merges a stage's delta into the canonical state using each field's
// declared merge rule. The merge happens as a single assignment pass between
// stage invocations.
func (s *State) Apply(d Delta) {
	if d.ReplaceMessages != nil {
		s.Messages = d.ReplaceMessages
	}
	s.Messages = append(s.Messages, d.Messages...)
	if d.Plan != nil {
		s.Plan = d.Plan
	}
	if d.Scratch != nil {
		s.Scratch = d.Scratch
	}
	if d.Final != nil {
		s.Final = d.Final
	}
}

// LastMessage returns the most recent conversation turn.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Intent returns the research result currently held in the scratch slot, or
// the sentinel intent when the slot is empty (e.g. a fresh turn).
func (s *State) Intent() Intent {
	if v, ok := s.Scratch[ScratchIntent]; ok {
		switch intent := v.(type) {
		case Intent:
			return intent
		case map[string]any:
			// Scratch round-trips through JSON when persisted
			out := Intent{}
			if goal, ok := intent["goal"].(string); ok {
				out.Goal = goal
			}
			if notes, ok := intent["notes"].(string); ok {
				out.Notes = notes
			}
			if out.Goal != "" {
				return out
			}
		}
	}
	return SentinelIntent()
}

// NeedTools reports whether the most recent message is an oracle response
// carrying at least one tool-invocation request.
func (s *State) NeedTools() bool {
	last, ok := s.LastMessage()
	if !ok {
		return false
	}
	return last.IsAssistant() && len(last.FunctionCalls()) > 0
}

// NeedMoreSteps reports whether unconsumed plan steps remain.
func (s *State) NeedMoreSteps() bool {
	return s.Plan != nil && !s.Plan.Exhausted()
}

// Clone returns a deep copy of the state safe for independent mutation.
// Message values are shared (they are immutable once appended).
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := &State{
		Messages: make([]Message, len(s.Messages)),
		Plan:     s.Plan.Clone(),
		Scratch:  make(map[string]any, len(s.Scratch)),
	}
	copy(clone.Messages, s.Messages)
	maps.Copy(clone.Scratch, s.Scratch)
	if s.Final != nil {
		f := *s.Final
		clone.Final = &f
	}
	return clone
}
