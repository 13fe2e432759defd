package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Current implementation: ownership-based (user owns the space).
//
// Services call the authorizer before operating on resources.
type ResourceAuthorizer interface {
	// CanAccessSpace checks if user can access a space
	CanAccessSpace(ctx context.Context, userID, spaceID string) error

	// CanAccessDocument checks if user can access a document (via its space)
	CanAccessDocument(ctx context.Context, userID, documentID string) error
}
