package core

import (
	"fmt"
	"strings"
)

// Plan is an ordered list of step descriptions plus a forward-only cursor.
// It is produced once per turn by the planner stage and consumed one step at
// a time by the researcher stage. CurrentStep == len(Steps) signals that the
// plan is exhausted.
type Plan struct {
	Steps       []string `json:"steps" description:"Lista ordenada de pasos a seguir en el plan"`
	CurrentStep int      `json:"current_step,omitempty" description:"Índice del paso actual en el plan (0-based)"`
}

// NextStep atomically consumes the current step: it returns the step text and
// its 0-based index, then advances the cursor by exactly one. A step is never
// handed out twice. ok is false when the plan is exhausted, in which case the
// cursor does not move.
func (p *Plan) NextStep() (step string, index int, ok bool) {
	if p.CurrentStep >= len(p.Steps) {
		return "", p.CurrentStep, false
	}
	step = p.Steps[p.CurrentStep]
	index = p.CurrentStep
	p.CurrentStep++
	return step, index, true
}

// Exhausted reports whether every step has been consumed.
func (p *Plan) Exhausted() bool { return p.CurrentStep >= len(p.Steps) }

// LastConsumedStep returns the step most recently handed out by NextStep, or
// "" when no step has been consumed yet.
func (p *Plan) LastConsumedStep() string {
	if p == nil || p.CurrentStep == 0 || p.CurrentStep > len(p.Steps) {
		return ""
	}
	return p.Steps[p.CurrentStep-1]
}

// Clone returns an independent copy of the plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	steps := make([]string, len(p.Steps))
	copy(steps, p.Steps)
	return &Plan{Steps: steps, CurrentStep: p.CurrentStep}
}

func (p *Plan) String() string {
	if p == nil {
		return "Plan(<nil>)"
	}
	return fmt.Sprintf("Plan(%d/%d: %s)", p.CurrentStep, len(p.Steps), strings.Join(p.Steps, "; "))
}
