package handler

import (
	"log/slog"
	"net/http"

	classroomSvc "lessontree/internal/domain/services/classroom"
	"lessontree/internal/httputil"
)

// TreeHandler handles the navigation tree of a space
type TreeHandler struct {
	treeService    classroomSvc.TreeService
	reorderService classroomSvc.ReorderService
	logger         *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService classroomSvc.TreeService, reorderService classroomSvc.ReorderService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService:    treeService,
		reorderService: reorderService,
		logger:         logger,
	}
}

// GetTree returns the nested document tree of a space
// GET /api/spaces/{id}/tree?keyword=&active=&expanded=
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	tree, err := h.treeService.GetTree(r.Context(), userID, spaceID, classroomSvc.TreeOptions{
		Keyword:         query.Get("keyword"),
		ActiveID:        query.Get("active"),
		DefaultExpanded: httputil.QueryBool(r, "expanded", false),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// Reorder accepts a complete flat ordering after a drag-and-drop. The
// computed positions are returned at once and persisted in the background.
// POST /api/spaces/{id}/tree/reorder
func (h *TreeHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req classroomSvc.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reorderService.Reorder(r.Context(), userID, spaceID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, result)
}

// Move applies a single drag of one node onto another's slot
// POST /api/spaces/{id}/tree/move
func (h *TreeHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req classroomSvc.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reorderService.Move(r.Context(), userID, spaceID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, result)
}

type setCollapsedBody struct {
	Collapsed *bool `json:"collapsed"`
}

// SetCollapsed stores one node's collapse toggle for the caller
// PUT /api/spaces/{id}/tree/collapse/{nodeId}
func (h *TreeHandler) SetCollapsed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	nodeID, ok := pathID(w, r, "nodeId")
	if !ok {
		return
	}

	var body setCollapsedBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Collapsed == nil {
		httputil.RespondError(w, http.StatusBadRequest, "collapsed is required")
		return
	}

	if err := h.treeService.SetCollapsed(r.Context(), userID, spaceID, nodeID, *body.Collapsed); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetSession forgets the caller's in-memory tree for a space
// DELETE /api/spaces/{id}/tree/session
func (h *TreeHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	spaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.treeService.ResetSession(r.Context(), userID, spaceID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
