package classroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
	"lessontree/internal/config"
	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
	"lessontree/internal/domain/services"
	classroomSvc "lessontree/internal/domain/services/classroom"
)

// treeService implements the TreeService interface
type treeService struct {
	docRepo    classroomRepo.DocumentRepository
	collapse   classroomRepo.CollapseStore
	sessions   *TreeSessions
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	docRepo classroomRepo.DocumentRepository,
	collapse classroomRepo.CollapseStore,
	sessions *TreeSessions,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) classroomSvc.TreeService {
	return &treeService{
		docRepo:    docRepo,
		collapse:   collapse,
		sessions:   sessions,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetTree builds the space's document tree for one reader.
//
// Collapse state comes from the reader's session tree, then the long-lived
// store, then opts.DefaultExpanded; ancestors of opts.ActiveID are opened.
// The result is written back to both before the keyword filter runs, so
// filtering never loses toggles.
func (s *treeService) GetTree(ctx context.Context, userID, spaceID string, opts classroomSvc.TreeOptions) (*models.TreeResponse, error) {
	if err := validation.Validate(opts.Keyword, validation.RuneLength(0, config.MaxKeywordLength)); err != nil {
		return nil, fmt.Errorf("%w: keyword %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanAccessSpace(ctx, userID, spaceID); err != nil {
		return nil, err
	}

	key := classroomRepo.CollapseKey{UserID: userID, SpaceID: spaceID}

	var (
		docs  []models.Document
		cache map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.docRepo.ListBySpace(gctx, spaceID)
		return err
	})
	g.Go(func() error {
		var err error
		cache, err = s.collapse.Load(gctx, key)
		if err != nil {
			// A lost cache only costs the reader their toggles
			s.logger.Warn("collapse state unavailable", "space_id", spaceID, "error", err)
			cache = map[string]bool{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := doctree.FromRecords(models.Records(docs))
	items := doctree.ApplyCollapse(tree, doctree.CollapseContext[models.DocumentMeta]{
		Previous:        s.sessions.Get(key),
		Cache:           cache,
		DefaultExpanded: opts.DefaultExpanded,
		ActiveID:        opts.ActiveID,
	})

	s.sessions.Put(key, tree)
	if err := s.collapse.Save(ctx, key, doctree.CollapseMap(items)); err != nil {
		s.logger.Warn("failed to save collapse state", "space_id", spaceID, "error", err)
	}

	keyword := strings.TrimSpace(opts.Keyword)
	nodes := doctree.FilterTree(tree, keyword)

	s.logger.Debug("tree built",
		"space_id", spaceID,
		"user_id", userID,
		"nodes", len(items),
		"keyword", keyword,
	)

	return &models.TreeResponse{
		SpaceID:  spaceID,
		Keyword:  keyword,
		ActiveID: opts.ActiveID,
		Nodes:    nodes,
		Total:    len(items),
	}, nil
}

// SetCollapsed toggles one node for this reader and writes it through to the
// long-lived store
func (s *treeService) SetCollapsed(ctx context.Context, userID, spaceID, nodeID string, collapsed bool) error {
	if err := s.authorizer.CanAccessSpace(ctx, userID, spaceID); err != nil {
		return err
	}

	doc, err := s.docRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}
	if doc.SpaceID != spaceID {
		return fmt.Errorf("document %s in space %s: %w", nodeID, spaceID, domain.ErrNotFound)
	}

	key := classroomRepo.CollapseKey{UserID: userID, SpaceID: spaceID}
	s.sessions.SetCollapsed(key, nodeID, collapsed)

	state, err := s.collapse.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load collapse state: %w", err)
	}
	state[nodeID] = collapsed
	if err := s.collapse.Save(ctx, key, state); err != nil {
		return fmt.Errorf("save collapse state: %w", err)
	}

	s.logger.Debug("node toggled",
		"space_id", spaceID,
		"node_id", nodeID,
		"collapsed", collapsed,
	)
	return nil
}

// ResetSession forgets the reader's previous tree. The stored collapse state
// is kept so the next GetTree restores it.
func (s *treeService) ResetSession(ctx context.Context, userID, spaceID string) error {
	if err := s.authorizer.CanAccessSpace(ctx, userID, spaceID); err != nil {
		return err
	}

	key := classroomRepo.CollapseKey{UserID: userID, SpaceID: spaceID}
	if s.sessions.Delete(key) {
		s.logger.Debug("tree session reset", "space_id", spaceID, "user_id", userID)
	}
	return nil
}

// CurrentOrder returns the stored pre-order flat list of a space
func (s *treeService) CurrentOrder(ctx context.Context, spaceID string) ([]models.FlatItem, error) {
	docs, err := s.docRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	return doctree.Flatten(doctree.FromRecords(models.Records(docs))), nil
}
