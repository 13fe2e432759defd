package classroom

import "lessontree/internal/doctree"

// TreeResponse is the payload of GET /api/spaces/{id}/tree
type TreeResponse struct {
	SpaceID  string      `json:"space_id"`
	Keyword  string      `json:"keyword,omitempty"`
	ActiveID string      `json:"active_id,omitempty"`
	Nodes    []*TreeNode `json:"nodes"`
	Total    int         `json:"total"` // node count before filtering
}

// ReorderResult is returned as soon as a reorder has been reconciled. The
// updates are persisted asynchronously.
type ReorderResult struct {
	SpaceID   string                   `json:"space_id"`
	Updates   []doctree.PositionUpdate `json:"updates"`
	Changed   int                      `json:"changed"`
	Scheduled bool                     `json:"scheduled"` // false when identical to what is already queued or sent
}

// Breadcrumb is one step of a document's ancestor chain.
type Breadcrumb struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	DocumentType DocumentType `json:"document_type"`
}
