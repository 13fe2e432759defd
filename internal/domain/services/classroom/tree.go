package classroom

import (
	"context"

	"lessontree/internal/doctree"
	"lessontree/internal/domain/models/classroom"
)

// TreeOptions controls how a tree is prepared for one reader
type TreeOptions struct {
	Keyword         string
	ActiveID        string
	DefaultExpanded bool
}

// TreeService builds the navigable document tree of a space
type TreeService interface {
	// GetTree builds the tree, restores collapse state and applies the keyword filter
	GetTree(ctx context.Context, userID, spaceID string, opts TreeOptions) (*classroom.TreeResponse, error)

	// SetCollapsed toggles one node for this reader
	SetCollapsed(ctx context.Context, userID, spaceID, nodeID string, collapsed bool) error

	// ResetSession forgets the in-memory tree for this reader (navigation away).
	// The long-lived collapse cache is kept.
	ResetSession(ctx context.Context, userID, spaceID string) error

	// CurrentOrder returns the stored flat ordering of a space
	CurrentOrder(ctx context.Context, spaceID string) ([]classroom.FlatItem, error)
}

// ReorderItem is one entry of a client-submitted flat ordering
type ReorderItem struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id"`
}

// ReorderRequest carries the full new flat ordering after a drag-and-drop
type ReorderRequest struct {
	Items []ReorderItem `json:"items"`
}

// MoveRequest describes a single drag: put ID at OverID's slot under ParentID
type MoveRequest struct {
	ID       string  `json:"id"`
	OverID   string  `json:"over_id"`
	ParentID *string `json:"parent_id"`
}

// ReorderService reconciles drag-and-drop reorders and schedules their persistence
type ReorderService interface {
	Reorder(ctx context.Context, userID, spaceID string, req *ReorderRequest) (*classroom.ReorderResult, error)
	Move(ctx context.Context, userID, spaceID string, req *MoveRequest) (*classroom.ReorderResult, error)
}

// PositionWriter persists reconciled positions; the debounced dispatcher is the production implementation
type PositionWriter interface {
	// Submit queues updates; false means they were identical to what is already queued or sent
	Submit(spaceID string, updates []doctree.PositionUpdate) bool

	// Cancel drops queued updates that have not been sent yet
	Cancel(spaceID string) bool

	// Sync writes queued updates now and waits for any write in flight
	Sync(ctx context.Context, spaceID string) error

	// Forget drops the record of the last write, so the next Submit is never
	// treated as a duplicate of it
	Forget(spaceID string)
}
