package classroom

import (
	"sync"

	"lessontree/internal/doctree"
	models "lessontree/internal/domain/models/classroom"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
)

// TreeSessions remembers the last tree served to each reader of each space.
// It is the "previous tree" the collapse state is restored from, and is
// forgotten when the reader navigates away.
type TreeSessions struct {
	mu    sync.Mutex
	trees map[classroomRepo.CollapseKey][]*models.TreeNode
}

// NewTreeSessions creates an empty session table
func NewTreeSessions() *TreeSessions {
	return &TreeSessions{trees: make(map[classroomRepo.CollapseKey][]*models.TreeNode)}
}

// Get returns a copy of the session tree, or nil when there is no session
func (s *TreeSessions) Get(key classroomRepo.CollapseKey) []*models.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.trees[key]
	if !ok {
		return nil
	}
	return doctree.Clone(tree)
}

// Put stores a copy of tree as the session tree
func (s *TreeSessions) Put(key classroomRepo.CollapseKey, tree []*models.TreeNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[key] = doctree.Clone(tree)
}

// SetCollapsed toggles a node of an existing session. It reports whether the
// session existed and held the node.
func (s *TreeSessions) SetCollapsed(key classroomRepo.CollapseKey, nodeID string, collapsed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.trees[key]
	if !ok {
		return false
	}
	return doctree.SetCollapsed(tree, nodeID, collapsed)
}

// Delete forgets one reader's session
func (s *TreeSessions) Delete(key classroomRepo.CollapseKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.trees[key]
	delete(s.trees, key)
	return ok
}

// DropSpace forgets every session of a space and returns how many there were
func (s *TreeSessions) DropSpace(spaceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.trees {
		if key.SpaceID == spaceID {
			delete(s.trees, key)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions
func (s *TreeSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trees)
}
