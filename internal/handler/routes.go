package handler

import "net/http"

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Health   *HealthHandler
	Space    *SpaceHandler
	Document *DocumentHandler
	Tree     *TreeHandler
}

// Register mounts all routes on mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health.Health)

	// Spaces
	mux.HandleFunc("GET /api/spaces", h.Space.ListSpaces)
	mux.HandleFunc("POST /api/spaces", h.Space.CreateSpace)
	mux.HandleFunc("GET /api/spaces/{id}", h.Space.GetSpace)
	mux.HandleFunc("PATCH /api/spaces/{id}", h.Space.UpdateSpace)
	mux.HandleFunc("DELETE /api/spaces/{id}", h.Space.DeleteSpace)

	// Tree
	mux.HandleFunc("GET /api/spaces/{id}/tree", h.Tree.GetTree)
	mux.HandleFunc("POST /api/spaces/{id}/tree/reorder", h.Tree.Reorder)
	mux.HandleFunc("POST /api/spaces/{id}/tree/move", h.Tree.Move)
	mux.HandleFunc("PUT /api/spaces/{id}/tree/collapse/{nodeId}", h.Tree.SetCollapsed)
	mux.HandleFunc("DELETE /api/spaces/{id}/tree/session", h.Tree.ResetSession)

	// Documents
	mux.HandleFunc("POST /api/spaces/{id}/documents", h.Document.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", h.Document.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", h.Document.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", h.Document.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/duplicate", h.Document.DuplicateDocument)
	mux.HandleFunc("GET /api/documents/{id}/path", h.Document.GetPath)
}
