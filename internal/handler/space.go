package handler

import (
	"log/slog"
	"net/http"

	classroomSvc "lessontree/internal/domain/services/classroom"
	"lessontree/internal/httputil"
)

// SpaceHandler handles space HTTP requests
type SpaceHandler struct {
	spaceService classroomSvc.SpaceService
	logger       *slog.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(spaceService classroomSvc.SpaceService, logger *slog.Logger) *SpaceHandler {
	return &SpaceHandler{
		spaceService: spaceService,
		logger:       logger,
	}
}

// ListSpaces lists the caller's spaces
// GET /api/spaces
func (h *SpaceHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	spaces, err := h.spaceService.ListSpaces(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, spaces)
}

// CreateSpace creates a space owned by the caller
// POST /api/spaces
func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req classroomSvc.CreateSpaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = userID

	space, err := h.spaceService.CreateSpace(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, space)
}

// GetSpace returns one space
// GET /api/spaces/{id}
func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	space, err := h.spaceService.GetSpace(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}

// UpdateSpace renames a space
// PATCH /api/spaces/{id}
func (h *SpaceHandler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req classroomSvc.UpdateSpaceRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	space, err := h.spaceService.UpdateSpace(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}

// DeleteSpace soft-deletes a space and returns it
// DELETE /api/spaces/{id}
func (h *SpaceHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	space, err := h.spaceService.DeleteSpace(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, space)
}
