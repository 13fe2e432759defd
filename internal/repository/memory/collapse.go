// Package memory holds process-local repository implementations.
package memory

import (
	"context"
	"maps"
	"sync"

	repo "lessontree/internal/domain/repositories/classroom"
)

// CollapseStore keeps collapse state in a map. State is lost on restart.
type CollapseStore struct {
	mu     sync.RWMutex
	states map[repo.CollapseKey]map[string]bool
}

// NewCollapseStore creates an empty in-memory collapse store
func NewCollapseStore() *CollapseStore {
	return &CollapseStore{states: make(map[repo.CollapseKey]map[string]bool)}
}

// Load returns a copy of the stored state
func (s *CollapseStore) Load(ctx context.Context, key repo.CollapseKey) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := make(map[string]bool, len(s.states[key]))
	maps.Copy(state, s.states[key])
	return state, nil
}

// Save replaces the stored state with a copy of state
func (s *CollapseStore) Save(ctx context.Context, key repo.CollapseKey, state map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(state) == 0 {
		delete(s.states, key)
		return nil
	}
	s.states[key] = maps.Clone(state)
	return nil
}

// Clear removes the stored state
func (s *CollapseStore) Clear(ctx context.Context, key repo.CollapseKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, key)
	return nil
}
