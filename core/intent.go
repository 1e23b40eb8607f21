package core

import "fmt"

// Intent is the structured research result for a single plan step: the
// objective the executor should pursue plus optional supporting notes. It is
// recreated every time the researcher stage runs and has no identity beyond
// the current step.
type Intent struct {
	Goal  string `json:"goal" description:"Breve descripción del objetivo del paso"`
	Notes string `json:"notes,omitempty" description:"Notas relevantes para la ejecución del paso"`
}

// SentinelIntent is returned by the researcher when no plan step remains, so
// downstream stages never observe an absent intent.
func SentinelIntent() Intent {
	return Intent{Goal: "none", Notes: "no steps to investigate"}
}

func (i Intent) String() string {
	return fmt.Sprintf("Intent(goal=%s, notes=%s)", i.Goal, i.Notes)
}
