package handler

import (
	"log/slog"
	"net/http"

	models "lessontree/internal/domain/models/classroom"
	classroomSvc "lessontree/internal/domain/services/classroom"
	"lessontree/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService classroomSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService classroomSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// updateDocumentBody is the PATCH payload. parent_id uses OptionalString so
// an explicit null (move to root) differs from an absent field.
type updateDocumentBody struct {
	Title        *string                  `json:"title"`
	DocumentType *models.DocumentType     `json:"document_type"`
	ParentID     httputil.OptionalString `json:"parent_id"`
}

// CreateDocument adds a document to a space
// POST /api/spaces/{id}/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req classroomSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.SpaceID = spaceID
	req.UserID = userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns one document
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument renames, retypes or re-parents a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), userID, id, &classroomSvc.UpdateDocumentRequest{
		Title:        body.Title,
		DocumentType: body.DocumentType,
		MoveParent:   body.ParentID.Present,
		ParentID:     body.ParentID.Value,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DuplicateDocument copies a document next to the original
// POST /api/documents/{id}/duplicate
func (h *DocumentHandler) DuplicateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.docService.DuplicateDocument(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// DeleteDocument soft-deletes a document and its descendants
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPath returns the breadcrumb trail of a document, root first
// GET /api/documents/{id}/path
func (h *DocumentHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	crumbs, err := h.docService.GetBreadcrumbs(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, crumbs)
}
