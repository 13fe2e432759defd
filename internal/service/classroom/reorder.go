package classroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"lessontree/internal/config"
	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	"lessontree/internal/domain/services"
	classroomSvc "lessontree/internal/domain/services/classroom"
)

// reorderService implements the ReorderService interface
type reorderService struct {
	trees      classroomSvc.TreeService
	positions  classroomSvc.PositionWriter
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewReorderService creates a new reorder service
func NewReorderService(
	trees classroomSvc.TreeService,
	positions classroomSvc.PositionWriter,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) classroomSvc.ReorderService {
	return &reorderService{
		trees:      trees,
		positions:  positions,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Reorder reconciles a complete new flat ordering against the stored one.
// The updates are returned right away; persisting them is queued.
func (s *reorderService) Reorder(ctx context.Context, userID, spaceID string, req *classroomSvc.ReorderRequest) (*models.ReorderResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Items, validation.Length(0, config.MaxReorderItems)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanAccessSpace(ctx, userID, spaceID); err != nil {
		return nil, err
	}

	current, err := s.trees.CurrentOrder(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	next, err := orderingFromRequest(current, req.Items)
	if err != nil {
		return nil, err
	}

	return s.reconcile(spaceID, current, next)
}

// Move applies a single drag: ID takes OverID's slot under ParentID
func (s *reorderService) Move(ctx context.Context, userID, spaceID string, req *classroomSvc.MoveRequest) (*models.ReorderResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.OverID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanAccessSpace(ctx, userID, spaceID); err != nil {
		return nil, err
	}

	current, err := s.trees.CurrentOrder(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	next, err := doctree.Move(current, req.ID, req.OverID, normalizeParent(req.ParentID))
	if err != nil {
		return nil, moveError(err, req.ID)
	}

	return s.reconcile(spaceID, current, next)
}

func (s *reorderService) reconcile(spaceID string, current, next []models.FlatItem) (*models.ReorderResult, error) {
	updates, err := doctree.Reconcile(current, next)
	if err != nil {
		return nil, moveError(err, "")
	}

	// Submitted even when nothing differs from storage: a queued set may still
	// need to be replaced by this one
	changed := doctree.Changed(current, updates)
	if len(changed) > 0 {
		// Storage moved away from the last write, so an identical set is real work
		s.positions.Forget(spaceID)
	}
	scheduled := s.positions.Submit(spaceID, updates)

	s.logger.Info("reorder reconciled",
		"space_id", spaceID,
		"updates", len(updates),
		"changed", len(changed),
		"scheduled", scheduled,
	)

	return &models.ReorderResult{
		SpaceID:   spaceID,
		Updates:   updates,
		Changed:   len(changed),
		Scheduled: scheduled,
	}, nil
}

// orderingFromRequest lays the client's (id, parent) pairs over the stored
// items so titles and payloads carry through. Every stored id must appear
// exactly once, and parent links must not loop.
func orderingFromRequest(current []models.FlatItem, reqItems []classroomSvc.ReorderItem) ([]models.FlatItem, error) {
	byID := make(map[string]models.FlatItem, len(current))
	for _, item := range current {
		byID[item.ID] = item
	}

	parents := make(map[string]*string, len(reqItems))
	next := make([]models.FlatItem, 0, len(reqItems))
	for _, ri := range reqItems {
		item, ok := byID[ri.ID]
		if !ok {
			return nil, &domain.InvalidMoveError{Message: fmt.Sprintf("unknown document %s", ri.ID), NodeID: ri.ID}
		}
		if _, dup := parents[ri.ID]; dup {
			return nil, &domain.InvalidMoveError{Message: fmt.Sprintf("document %s listed twice", ri.ID), NodeID: ri.ID}
		}

		parentID := normalizeParent(ri.ParentID)
		if parentID != nil {
			if _, ok := byID[*parentID]; !ok {
				return nil, &domain.InvalidMoveError{Message: fmt.Sprintf("unknown parent %s", *parentID), NodeID: ri.ID}
			}
		}
		parents[ri.ID] = parentID

		item.ParentID = parentID
		next = append(next, item)
	}

	for id := range parents {
		if loopsBack(id, parents) {
			return nil, &domain.InvalidMoveError{
				Message: fmt.Sprintf("document %s would end up inside its own subtree", id),
				NodeID:  id,
			}
		}
	}

	return next, nil
}

// loopsBack reports whether following parent links from id returns to id
func loopsBack(id string, parents map[string]*string) bool {
	seen := map[string]bool{id: true}
	for cur := parents[id]; cur != nil; cur = parents[*cur] {
		if seen[*cur] {
			return *cur == id
		}
		seen[*cur] = true
	}
	return false
}

func moveError(err error, nodeID string) error {
	switch {
	case errors.Is(err, doctree.ErrCycle):
		return &domain.InvalidMoveError{Message: err.Error(), NodeID: nodeID}
	case errors.Is(err, doctree.ErrItemNotFound):
		return &domain.InvalidMoveError{Message: err.Error(), NodeID: nodeID}
	case errors.Is(err, doctree.ErrMismatchedItems):
		return &domain.InvalidMoveError{Message: "ordering must list every document of the space exactly once"}
	}
	return err
}
