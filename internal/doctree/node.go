// Package doctree holds the pure tree algorithms behind a space's document
// navigation: flattening and rebuilding, position reconciliation, collapse
// state, keyword filtering and lookups. Nothing in here does I/O.
package doctree

import "errors"

// IndexTitleSeparator joins a node's title with its children's index titles.
const IndexTitleSeparator = "#"

var (
	// ErrMismatchedItems is returned when two orderings do not cover the same ids.
	ErrMismatchedItems = errors.New("orderings do not cover the same items")

	// ErrCycle is returned when a move would place a node inside its own subtree.
	ErrCycle = errors.New("cannot move a node into its own subtree")

	// ErrItemNotFound is returned when a referenced id is not part of the tree.
	ErrItemNotFound = errors.New("item not found")
)

// Node is one entry of a document tree. Payload carries whatever extra fields
// the caller needs; the algorithms never look at it.
type Node[T any] struct {
	ID         string     `json:"id"`
	ParentID   *string    `json:"parent_id"`
	Index      int        `json:"index"`
	Title      string     `json:"title"`
	Collapsed  bool       `json:"collapsed"`
	IndexTitle string     `json:"-"`
	Payload    T          `json:"payload"`
	Children   []*Node[T] `json:"children"`
}

// FlatItem is a Node lowered into an ordered list. Hierarchy is carried by
// ParentID; Depth is informational only.
type FlatItem[T any] struct {
	ID         string  `json:"id"`
	ParentID   *string `json:"parent_id"`
	Index      int     `json:"index"`
	Depth      int     `json:"depth"`
	Title      string  `json:"title"`
	Collapsed  bool    `json:"collapsed"`
	IndexTitle string  `json:"-"`
	Payload    T       `json:"payload"`
}

// PositionUpdate is the outbound mutation for a single node.
type PositionUpdate struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
	Index    int     `json:"index"`
}

// Equal reports whether two updates describe the same position.
func (u PositionUpdate) Equal(o PositionUpdate) bool {
	return u.ID == o.ID && u.Index == o.Index && SameParent(u.ParentID, o.ParentID)
}

// EqualUpdates compares two update sets element by element.
func EqualUpdates(a, b []PositionUpdate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SameParent compares two optional parent ids by value.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func parentKey(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func cloneParent(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (n *Node[T]) flat(depth int) FlatItem[T] {
	return FlatItem[T]{
		ID:         n.ID,
		ParentID:   cloneParent(n.ParentID),
		Index:      n.Index,
		Depth:      depth,
		Title:      n.Title,
		Collapsed:  n.Collapsed,
		IndexTitle: n.IndexTitle,
		Payload:    n.Payload,
	}
}

func (f FlatItem[T]) node() *Node[T] {
	return &Node[T]{
		ID:         f.ID,
		ParentID:   cloneParent(f.ParentID),
		Index:      f.Index,
		Title:      f.Title,
		Collapsed:  f.Collapsed,
		IndexTitle: f.IndexTitle,
		Payload:    f.Payload,
		Children:   []*Node[T]{},
	}
}
