package classroom

import (
	"time"

	"lessontree/internal/doctree"
)

// DocumentType distinguishes the kinds of nodes a space tree can hold.
type DocumentType string

const (
	DocumentTypeDocument   DocumentType = "document"
	DocumentTypeAssignment DocumentType = "assignment"
	DocumentTypeSubmission DocumentType = "submission"
)

// DocumentTypes lists every accepted document type.
var DocumentTypes = []interface{}{
	DocumentTypeDocument,
	DocumentTypeAssignment,
	DocumentTypeSubmission,
}

type Document struct {
	ID           string       `json:"id" db:"id"`
	SpaceID      string       `json:"space_id" db:"space_id"`
	ParentID     *string      `json:"parent_id" db:"parent_id"` // NULL = root level
	Index        int          `json:"index" db:"position"`
	Title        string       `json:"title" db:"title"`
	DocumentType DocumentType `json:"document_type" db:"document_type"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
}

// DocumentMeta is the payload each tree node carries.
type DocumentMeta struct {
	DocumentType DocumentType `json:"document_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TreeNode and FlatItem are the document tree shapes served to clients.
type (
	TreeNode = doctree.Node[DocumentMeta]
	FlatItem = doctree.FlatItem[DocumentMeta]
)

// Record lowers a stored document into the tree codec's input shape.
func (d Document) Record() doctree.Record[DocumentMeta] {
	return doctree.Record[DocumentMeta]{
		ID:        d.ID,
		ParentID:  d.ParentID,
		Index:     d.Index,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		DeletedAt: d.DeletedAt,
		Payload: DocumentMeta{
			DocumentType: d.DocumentType,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		},
	}
}

// Records converts a slice of documents.
func Records(docs []Document) []doctree.Record[DocumentMeta] {
	out := make([]doctree.Record[DocumentMeta], len(docs))
	for i, d := range docs {
		out[i] = d.Record()
	}
	return out
}
