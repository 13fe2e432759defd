package classroom

import (
	"context"

	"lessontree/internal/domain/models/classroom"
)

// DocumentService handles document business logic
type DocumentService interface {
	// CreateDocument appends a new document after its last sibling
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*classroom.Document, error)

	// GetDocument retrieves a document; userID is used for authorization
	GetDocument(ctx context.Context, userID, documentID string) (*classroom.Document, error)

	// UpdateDocument renames, retypes or moves a document
	UpdateDocument(ctx context.Context, userID, documentID string, req *UpdateDocumentRequest) (*classroom.Document, error)

	// DuplicateDocument copies a document (not its children) right after the original
	DuplicateDocument(ctx context.Context, userID, documentID string) (*classroom.Document, error)

	// DeleteDocument soft-deletes a document and everything below it
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// GetBreadcrumbs returns the ancestor chain, root first, ending with the document
	GetBreadcrumbs(ctx context.Context, userID, documentID string) ([]classroom.Breadcrumb, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	SpaceID      string                 `json:"-"` // From the URL
	UserID       string                 `json:"-"` // From auth context
	ParentID     *string                `json:"parent_id,omitempty"`
	Title        string                 `json:"title"`
	DocumentType classroom.DocumentType `json:"document_type"`
}

// UpdateDocumentRequest represents a document update.
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
type UpdateDocumentRequest struct {
	Title        *string
	DocumentType *classroom.DocumentType

	// MoveParent is true when the parent should change; ParentID nil then means root
	MoveParent bool
	ParentID   *string
}
