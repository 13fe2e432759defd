package classroom

import "context"

// CollapseKey identifies one reader's view of one space.
type CollapseKey struct {
	UserID  string
	SpaceID string
}

// CollapseStore is the long-lived collapse cache: node id -> collapsed. It
// outlives tree sessions so state survives a full remount.
type CollapseStore interface {
	// Load returns the stored state, or an empty map when nothing is stored
	Load(ctx context.Context, key CollapseKey) (map[string]bool, error)

	// Save replaces the stored state
	Save(ctx context.Context, key CollapseKey, state map[string]bool) error

	// Clear removes the stored state
	Clear(ctx context.Context, key CollapseKey) error
}
