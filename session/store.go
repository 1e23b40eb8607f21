package session

import (
	"context"

	"github.com/spotifai/deepagent/core"
)

// StateStore persists conversation state snapshots keyed by thread id.
// Implementations must be safe for concurrent use. Load of an unknown thread
// returns a fresh empty state, not an error.
type StateStore interface {
	// Load returns the persisted state for the thread, or a new empty state
	// when the thread has no history yet.
	Load(ctx context.Context, threadID string) (*core.State, error)

	// Save persists a snapshot of the state for the thread, replacing any
	// previous snapshot.
	Save(ctx context.Context, threadID string, state *core.State) error
}
