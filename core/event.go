package core

// Stage names the nodes of the execution graph. The set is fixed: the graph
// topology is not user-extensible.
type Stage string

const (
	StagePlanner    Stage = "planner"
	StageResearcher Stage = "researcher"
	StageSummarizer Stage = "summarizer"
	StageExecutor   Stage = "executor"
	StageTools      Stage = "tools"
	StageCritic     Stage = "critic"
	StageFinalizer  Stage = "finalizer"
)

// Event is an internal notification produced while the graph runs. The set
// of variants is closed (each implements the unexported marker), so the
// event-to-chunk translator can match it exhaustively; adding a variant is a
// compile-time-checked change. CustomEvent is the single escape hatch for
// ad-hoc named payloads and is rendered generically.
type Event interface{ isEvent() }

// PlanningStarted is emitted before the planner invokes the oracle.
type PlanningStarted struct{}

func (PlanningStarted) isEvent() {}

// PlanningCompleted carries the full plan produced by the planner.
type PlanningCompleted struct {
	Plan Plan
}

func (PlanningCompleted) isEvent() {}

// ResearchStarted carries the step text and its 0-based index, emitted before
// any oracle call for that step.
type ResearchStarted struct {
	Step  string
	Index int
}

func (ResearchStarted) isEvent() {}

// ResearchCompleted carries the Intent produced for the step.
type ResearchCompleted struct {
	Step   string
	Intent Intent
}

func (ResearchCompleted) isEvent() {}

// SummarizingStarted carries the pre-summary message count.
type SummarizingStarted struct {
	MessageCount int
}

func (SummarizingStarted) isEvent() {}

// SummarizingCompleted carries the digest that replaced the history.
type SummarizingCompleted struct {
	Digest string
}

func (SummarizingCompleted) isEvent() {}

// ExecutionStarted carries the step and intent the executor is acting on.
type ExecutionStarted struct {
	Step   string
	Intent Intent
}

func (ExecutionStarted) isEvent() {}

// ExecutionCompleted carries the oracle response for the execution round.
type ExecutionCompleted struct {
	Response Message
}

func (ExecutionCompleted) isEvent() {}

// CriticStarted marks entry into the critic gate. No payload.
type CriticStarted struct{}

func (CriticStarted) isEvent() {}

// CriticCompleted marks exit from the critic gate. No payload.
type CriticCompleted struct{}

func (CriticCompleted) isEvent() {}

// FinalizingStarted marks entry into the terminal stage.
type FinalizingStarted struct{}

func (FinalizingStarted) isEvent() {}

// FinalizingCompleted marks turn completion.
type FinalizingCompleted struct{}

func (FinalizingCompleted) isEvent() {}

// TokenFragment is an incremental oracle output fragment tagged with the
// stage that produced it.
type TokenFragment struct {
	Stage Stage
	Text  string
}

func (TokenFragment) isEvent() {}

// CustomEvent is a named ad-hoc notification. The translator renders it
// generically so the stream never silently drops information.
type CustomEvent struct {
	Name    string
	Payload map[string]any
}

func (CustomEvent) isEvent() {}
