package session

import (
	"context"
	"sync"

	"github.com/spotifai/deepagent/core"
)

// InMemoryStore is a volatile StateStore implementation storing state
// snapshots in a process local map. It is safe for concurrent access and best
// suited for tests or single-process agents. Each returned state is cloned
// to prevent external mutation of internal snapshots.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.State
}

// NewInMemoryStore constructs an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.State)}
}

// Load returns a clone of the stored state or a fresh empty state.
func (s *InMemoryStore) Load(_ context.Context, threadID string) (*core.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[threadID]; ok {
		return state.Clone(), nil
	}
	return core.NewState(), nil
}

// Save stores a clone of the provided state snapshot.
func (s *InMemoryStore) Save(_ context.Context, threadID string, state *core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[threadID] = state.Clone()
	return nil
}

// Delete removes the snapshot for a thread. Missing threads are a no-op.
func (s *InMemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, threadID)
	return nil
}
