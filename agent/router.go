package agent

import "github.com/spotifai/deepagent/core"

// Router predicates. The stage topology is fixed:
//
//	planner → researcher → {summarizer|executor} → executor → {tools|critic}
//	→ (tools→executor loop) → critic → {researcher|finalizer} → finalizer → END

// needSummarize reports whether the history has outgrown the threshold and
// must be compacted before the next oracle call.
func needSummarize(st *core.State, threshold int) bool {
	return len(st.Messages) > threshold
}

// needTools reports whether the most recent message is an oracle response
// carrying at least one tool-invocation request.
func needTools(st *core.State) bool {
	return st.NeedTools()
}

// needMoreSteps reports whether unconsumed plan steps remain.
func needMoreSteps(st *core.State) bool {
	return st.NeedMoreSteps()
}

// route selects the stage following cur, or done=true after the finalizer.
func route(cur core.Stage, st *core.State, summarizeThreshold int) (next core.Stage, done bool) {
	switch cur {
	case core.StagePlanner:
		return core.StageResearcher, false
	case core.StageResearcher:
		if needSummarize(st, summarizeThreshold) {
			return core.StageSummarizer, false
		}
		return core.StageExecutor, false
	case core.StageSummarizer:
		return core.StageExecutor, false
	case core.StageExecutor:
		if needTools(st) {
			return core.StageTools, false
		}
		return core.StageCritic, false
	case core.StageTools:
		return core.StageExecutor, false
	case core.StageCritic:
		if needMoreSteps(st) {
			return core.StageResearcher, false
		}
		return core.StageFinalizer, false
	case core.StageFinalizer:
		return "", true
	default:
		return "", true
	}
}
