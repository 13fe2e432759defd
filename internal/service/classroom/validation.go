package classroom

import (
	"context"
	"fmt"
	"strings"

	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
)

// ResourceValidator checks that parents referenced by a request are live and
// belong to the expected space
type ResourceValidator struct {
	docRepo classroomRepo.DocumentRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(docRepo classroomRepo.DocumentRepository) *ResourceValidator {
	return &ResourceValidator{docRepo: docRepo}
}

// ValidateParent ensures parentID is a live document of spaceID.
// A nil parent (root level) is always valid.
func (v *ResourceValidator) ValidateParent(ctx context.Context, spaceID string, parentID *string) (*models.Document, error) {
	if parentID == nil {
		return nil, nil
	}

	parent, err := v.docRepo.GetByID(ctx, *parentID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent: %w", err)
	}
	if parent.SpaceID != spaceID {
		return nil, fmt.Errorf("parent %s is not in space %s: %w", *parentID, spaceID, domain.ErrValidation)
	}
	return parent, nil
}

// validateName rejects names that are blank once trimmed or span several lines
func validateName(value interface{}) error {
	name, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("cannot be blank")
	}
	if strings.ContainsAny(trimmed, "\r\n") {
		return fmt.Errorf("cannot contain line breaks")
	}
	return nil
}

// normalizeParent turns "" into nil so empty form values mean root level
func normalizeParent(parentID *string) *string {
	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		return nil
	}
	return parentID
}
