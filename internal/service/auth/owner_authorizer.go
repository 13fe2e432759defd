package auth

import (
	"context"
	"errors"
	"fmt"

	"lessontree/internal/domain"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a resource if they own the space that contains it.
type OwnerBasedAuthorizer struct {
	spaceRepo classroomRepo.SpaceRepository
	docRepo   classroomRepo.DocumentRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	spaceRepo classroomRepo.SpaceRepository,
	docRepo classroomRepo.DocumentRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		spaceRepo: spaceRepo,
		docRepo:   docRepo,
	}
}

// CanAccessSpace checks if user owns the space
func (a *OwnerBasedAuthorizer) CanAccessSpace(ctx context.Context, userID, spaceID string) error {
	// GetByIDOnly distinguishes "missing" (404) from "someone else's" (403)
	space, err := a.spaceRepo.GetByIDOnly(ctx, spaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("check space access: %w", err)
	}
	if space.OwnerID != userID {
		return fmt.Errorf("access denied to space %s: %w", spaceID, domain.ErrForbidden)
	}
	return nil
}

// CanAccessDocument checks if user can access a document (via its space)
func (a *OwnerBasedAuthorizer) CanAccessDocument(ctx context.Context, userID, documentID string) error {
	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document for auth: %w", err)
	}

	return a.CanAccessSpace(ctx, userID, doc.SpaceID)
}
