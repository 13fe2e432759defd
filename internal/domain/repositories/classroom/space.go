package classroom

import (
	"context"

	"lessontree/internal/domain/models/classroom"
)

// SpaceRepository defines data access operations for spaces
type SpaceRepository interface {
	// Create creates a new space and fills in its generated ID and timestamps
	Create(ctx context.Context, space *classroom.Space) error

	// GetByID retrieves a space owned by ownerID
	GetByID(ctx context.Context, id, ownerID string) (*classroom.Space, error)

	// GetByIDOnly retrieves a space without an ownership check
	GetByIDOnly(ctx context.Context, id string) (*classroom.Space, error)

	// List retrieves all spaces for an owner, most recently updated first
	List(ctx context.Context, ownerID string) ([]classroom.Space, error)

	// Update updates a space's name and updated_at timestamp
	Update(ctx context.Context, space *classroom.Space) error

	// Delete soft-deletes a space and returns it with deleted_at set
	Delete(ctx context.Context, id, ownerID string) (*classroom.Space, error)
}
