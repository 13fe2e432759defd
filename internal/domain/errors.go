package domain

import (
	"errors"
	"net/http"
)

// HTTPError is implemented by errors that know their HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (space, document)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string { return e.Message }

// StatusCode implements HTTPError
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidMoveError is returned when a reorder request cannot be applied to the
// current tree (unknown ids, a node dropped into its own subtree, ...).
type InvalidMoveError struct {
	Message string
	NodeID  string
}

func (e *InvalidMoveError) Error() string { return e.Message }

// StatusCode implements HTTPError
func (e *InvalidMoveError) StatusCode() int { return http.StatusUnprocessableEntity }

// Is allows errors.Is() to match against ErrValidation
func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrValidation
}
