package classroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"lessontree/internal/config"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
	classroomSvc "lessontree/internal/domain/services/classroom"
)

// spaceService implements the SpaceService interface
type spaceService struct {
	spaceRepo classroomRepo.SpaceRepository
	sessions  *TreeSessions
	positions classroomSvc.PositionWriter
	logger    *slog.Logger
}

// NewSpaceService creates a new space service
func NewSpaceService(
	spaceRepo classroomRepo.SpaceRepository,
	sessions *TreeSessions,
	positions classroomSvc.PositionWriter,
	logger *slog.Logger,
) classroomSvc.SpaceService {
	return &spaceService{
		spaceRepo: spaceRepo,
		sessions:  sessions,
		positions: positions,
		logger:    logger,
	}
}

// CreateSpace creates a new space
func (s *spaceService) CreateSpace(ctx context.Context, req *classroomSvc.CreateSpaceRequest) (*models.Space, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	space := &models.Space{
		OwnerID:   req.OwnerID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, err
	}

	s.logger.Info("space created",
		"id", space.ID,
		"name", space.Name,
		"owner_id", space.OwnerID,
	)

	return space, nil
}

// GetSpace retrieves a space owned by userID
func (s *spaceService) GetSpace(ctx context.Context, id, userID string) (*models.Space, error) {
	return s.spaceRepo.GetByID(ctx, id, userID)
}

// ListSpaces retrieves all spaces of a user
func (s *spaceService) ListSpaces(ctx context.Context, userID string) ([]models.Space, error) {
	return s.spaceRepo.List(ctx, userID)
}

// UpdateSpace renames a space
func (s *spaceService) UpdateSpace(ctx context.Context, id, userID string, req *classroomSvc.UpdateSpaceRequest) (*models.Space, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	space, err := s.spaceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	space.Name = strings.TrimSpace(req.Name)
	space.UpdatedAt = time.Now()

	if err := s.spaceRepo.Update(ctx, space); err != nil {
		return nil, err
	}

	s.logger.Info("space renamed", "id", space.ID, "name", space.Name)
	return space, nil
}

// DeleteSpace soft-deletes a space. Queued reorders for it are dropped along
// with every reader's tree session.
func (s *spaceService) DeleteSpace(ctx context.Context, id, userID string) (*models.Space, error) {
	space, err := s.spaceRepo.Delete(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	cancelled := s.positions.Cancel(id)
	s.positions.Forget(id)
	dropped := s.sessions.DropSpace(id)

	s.logger.Info("space deleted",
		"id", id,
		"cancelled_reorder", cancelled,
		"sessions_dropped", dropped,
	)
	return space, nil
}

func (s *spaceService) validateCreateRequest(req *classroomSvc.CreateSpaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxSpaceNameLength),
			validation.By(validateName),
		),
	)
}

func (s *spaceService) validateUpdateRequest(req *classroomSvc.UpdateSpaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxSpaceNameLength),
			validation.By(validateName),
		),
	)
}
