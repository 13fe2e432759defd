package classroom

import (
	"context"

	"lessontree/internal/domain/models/classroom"
)

// CreateSpaceRequest represents a request to create a space
type CreateSpaceRequest struct {
	OwnerID string `json:"-"` // Set by handler from auth context
	Name    string `json:"name"`
}

// UpdateSpaceRequest represents a request to rename a space
type UpdateSpaceRequest struct {
	Name string `json:"name"`
}

// SpaceService defines business logic operations for spaces
type SpaceService interface {
	CreateSpace(ctx context.Context, req *CreateSpaceRequest) (*classroom.Space, error)
	GetSpace(ctx context.Context, id, userID string) (*classroom.Space, error)
	ListSpaces(ctx context.Context, userID string) ([]classroom.Space, error)
	UpdateSpace(ctx context.Context, id, userID string, req *UpdateSpaceRequest) (*classroom.Space, error)

	// DeleteSpace soft-deletes a space and drops its tree sessions
	DeleteSpace(ctx context.Context, id, userID string) (*classroom.Space, error)
}
