package handler

import (
	"errors"
	"net/http"

	"lessontree/internal/domain"
	"lessontree/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr *domain.ConflictError
		moveErr     *domain.InvalidMoveError
	)

	switch {
	case errors.As(err, &moveErr):
		extras := map[string]interface{}{}
		if moveErr.NodeID != "" {
			extras["node_id"] = moveErr.NodeID
		}
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, moveErr.Error(), extras)
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser writes a 401 and returns false when the request is anonymous
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// pathID reads a UUID path value, writing a 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := httputil.PathUUID(r, name)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
