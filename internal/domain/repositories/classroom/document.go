package classroom

import (
	"context"

	"lessontree/internal/doctree"
	"lessontree/internal/domain/models/classroom"
)

// DocumentRepository defines data access operations for the documents of a space
type DocumentRepository interface {
	// Create creates a new document
	Create(ctx context.Context, doc *classroom.Document) error

	// GetByID retrieves a live (not soft-deleted) document
	GetByID(ctx context.Context, id string) (*classroom.Document, error)

	// ListBySpace returns every live document of a space (flat, unordered)
	ListBySpace(ctx context.Context, spaceID string) ([]classroom.Document, error)

	// NextIndex returns one past the highest sibling index under parentID
	NextIndex(ctx context.Context, spaceID string, parentID *string) (int, error)

	// Update updates title and document type
	Update(ctx context.Context, doc *classroom.Document) error

	// UpdatePositions applies (id, parent_id, index) triples. Idempotent.
	UpdatePositions(ctx context.Context, spaceID string, updates []doctree.PositionUpdate) error

	// SoftDeleteSubtree marks a document and all its descendants deleted and
	// returns how many rows were affected
	SoftDeleteSubtree(ctx context.Context, spaceID, id string) (int, error)
}
