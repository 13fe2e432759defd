package seed

import (
	"context"
	"fmt"
	"log/slog"

	models "lessontree/internal/domain/models/classroom"
	classroomSvc "lessontree/internal/domain/services/classroom"
)

// Seeder creates fixture content through the service layer, so positions
// are assigned the same way the API assigns them
type Seeder struct {
	spaces classroomSvc.SpaceService
	docs   classroomSvc.DocumentService
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(spaces classroomSvc.SpaceService, docs classroomSvc.DocumentService, logger *slog.Logger) *Seeder {
	return &Seeder{
		spaces: spaces,
		docs:   docs,
		logger: logger,
	}
}

// Seed creates the fixture's space for ownerID and every document in it,
// depth first. It returns the space and the number of documents created.
func (s *Seeder) Seed(ctx context.Context, ownerID string, f *Fixture) (*models.Space, int, error) {
	space, err := s.spaces.CreateSpace(ctx, &classroomSvc.CreateSpaceRequest{
		OwnerID: ownerID,
		Name:    f.Space,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create space: %w", err)
	}
	s.logger.Info("space created", "space_id", space.ID, "name", space.Name)

	created := 0
	if err := s.createAll(ctx, space.ID, ownerID, nil, f.Documents, &created); err != nil {
		return space, created, err
	}
	return space, created, nil
}

func (s *Seeder) createAll(ctx context.Context, spaceID, ownerID string, parentID *string, nodes []FixtureNode, created *int) error {
	for _, n := range nodes {
		docType := n.Type
		if docType == "" {
			docType = models.DocumentTypeDocument
		}

		doc, err := s.docs.CreateDocument(ctx, &classroomSvc.CreateDocumentRequest{
			SpaceID:      spaceID,
			UserID:       ownerID,
			ParentID:     parentID,
			Title:        n.Title,
			DocumentType: docType,
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", n.Title, err)
		}
		*created++
		s.logger.Debug("document created", "id", doc.ID, "title", doc.Title, "index", doc.Index)

		if len(n.Children) > 0 {
			id := doc.ID
			if err := s.createAll(ctx, spaceID, ownerID, &id, n.Children, created); err != nil {
				return err
			}
		}
	}
	return nil
}
