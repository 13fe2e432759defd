package classroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"lessontree/internal/config"
	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	"lessontree/internal/domain/repositories"
	classroomRepo "lessontree/internal/domain/repositories/classroom"
	"lessontree/internal/domain/services"
	classroomSvc "lessontree/internal/domain/services/classroom"
)

// copySuffix is appended to the title of a duplicated document
const copySuffix = " (copy)"

// documentService implements the DocumentService interface
type documentService struct {
	docRepo    classroomRepo.DocumentRepository
	txManager  repositories.TransactionManager
	validator  *ResourceValidator
	authorizer services.ResourceAuthorizer
	positions  classroomSvc.PositionWriter
	logger     *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo classroomRepo.DocumentRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	authorizer services.ResourceAuthorizer,
	positions classroomSvc.PositionWriter,
	logger *slog.Logger,
) classroomSvc.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		txManager:  txManager,
		validator:  validator,
		authorizer: authorizer,
		positions:  positions,
		logger:     logger,
	}
}

// CreateDocument appends a document after the last of its siblings
func (s *documentService) CreateDocument(ctx context.Context, req *classroomSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := s.authorizer.CanAccessSpace(ctx, req.UserID, req.SpaceID); err != nil {
		return nil, err
	}

	req.ParentID = normalizeParent(req.ParentID)
	if req.DocumentType == "" {
		req.DocumentType = models.DocumentTypeDocument
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	doc := &models.Document{
		SpaceID:      req.SpaceID,
		ParentID:     req.ParentID,
		Title:        strings.TrimSpace(req.Title),
		DocumentType: req.DocumentType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.settlePositions(ctx, req.SpaceID)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.validator.ValidateParent(txCtx, req.SpaceID, req.ParentID); err != nil {
			return err
		}

		next, err := s.docRepo.NextIndex(txCtx, req.SpaceID, req.ParentID)
		if err != nil {
			return err
		}
		doc.Index = next

		return s.docRepo.Create(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}
	s.positions.Forget(doc.SpaceID)

	s.logger.Info("document created",
		"id", doc.ID,
		"space_id", doc.SpaceID,
		"parent_id", doc.ParentID,
		"index", doc.Index,
		"type", doc.DocumentType,
	)

	return doc, nil
}

// GetDocument retrieves a document
// Authorization is checked first via the injected authorizer
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	return s.docRepo.GetByID(ctx, documentID)
}

// UpdateDocument renames, retypes or re-parents a document. A re-parented
// document is appended after its new siblings.
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID string, req *classroomSvc.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.MoveParent {
		current, err := s.docRepo.GetByID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		s.settlePositions(ctx, current.SpaceID)
	}

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetByID(txCtx, documentID)
		if err != nil {
			return err
		}

		if req.Title != nil {
			doc.Title = strings.TrimSpace(*req.Title)
		}
		if req.DocumentType != nil {
			doc.DocumentType = *req.DocumentType
		}

		if req.MoveParent {
			parentID := normalizeParent(req.ParentID)
			if !doctree.SameParent(parentID, doc.ParentID) {
				if err := s.checkReparent(txCtx, doc, parentID); err != nil {
					return err
				}
				next, err := s.docRepo.NextIndex(txCtx, doc.SpaceID, parentID)
				if err != nil {
					return err
				}
				doc.ParentID = parentID
				doc.Index = next
			}
		}

		doc.UpdatedAt = time.Now()
		return s.docRepo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}
	if req.MoveParent {
		s.positions.Forget(doc.SpaceID)
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"space_id", doc.SpaceID,
		"moved", req.MoveParent,
	)

	return doc, nil
}

// checkReparent rejects a parent outside the space or inside doc's own subtree
func (s *documentService) checkReparent(ctx context.Context, doc *models.Document, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == doc.ID {
		return &domain.InvalidMoveError{Message: "a document cannot be its own parent", NodeID: doc.ID}
	}
	if _, err := s.validator.ValidateParent(ctx, doc.SpaceID, parentID); err != nil {
		return err
	}

	docs, err := s.docRepo.ListBySpace(ctx, doc.SpaceID)
	if err != nil {
		return err
	}
	tree := doctree.FromRecords(models.Records(docs))
	for _, ancestor := range doctree.FullPath(tree, *parentID, false) {
		if ancestor.ID == doc.ID {
			return &domain.InvalidMoveError{
				Message: fmt.Sprintf("cannot move document %s into its own subtree", doc.ID),
				NodeID:  doc.ID,
			}
		}
	}
	return nil
}

// DuplicateDocument copies a document (without its children) into the slot
// right after the original, shifting later siblings down by one
func (s *documentService) DuplicateDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	original, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	s.settlePositions(ctx, original.SpaceID)

	var dup *models.Document
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		source, err := s.docRepo.GetByID(txCtx, documentID)
		if err != nil {
			return err
		}

		docs, err := s.docRepo.ListBySpace(txCtx, source.SpaceID)
		if err != nil {
			return err
		}

		// Renumber the sibling group with a gap after the source
		tree := doctree.FromRecords(models.Records(docs))
		node := doctree.FindItemDeep(tree, source.ID)
		if node == nil {
			return fmt.Errorf("document %s: %w", source.ID, domain.ErrNotFound)
		}
		// The tree's parent, not the row's: children of deleted parents sit at root
		parentID := node.ParentID
		siblings := tree
		if parentID != nil {
			siblings = doctree.FindItemDeep(tree, *parentID).Children
		}

		shifts := make([]doctree.PositionUpdate, 0, len(siblings))
		slot := len(siblings)
		for i, sib := range siblings {
			index := i
			if slot < len(siblings) {
				index = i + 1
			}
			if sib.ID == source.ID {
				slot = i + 1
			}
			if sib.Index != index {
				shifts = append(shifts, doctree.PositionUpdate{ID: sib.ID, ParentID: parentID, Index: index})
			}
		}
		if err := s.docRepo.UpdatePositions(txCtx, source.SpaceID, shifts); err != nil {
			return err
		}

		now := time.Now()
		dup = &models.Document{
			SpaceID:      source.SpaceID,
			ParentID:     parentID,
			Index:        slot,
			Title:        duplicateTitle(source.Title),
			DocumentType: source.DocumentType,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.docRepo.Create(txCtx, dup)
	})
	if err != nil {
		return nil, err
	}
	s.positions.Forget(dup.SpaceID)

	s.logger.Info("document duplicated",
		"source_id", documentID,
		"id", dup.ID,
		"index", dup.Index,
	)

	return dup, nil
}

// settlePositions writes any queued reorder for the space so sibling indexes
// computed in the next transaction are not overwritten by it afterwards
func (s *documentService) settlePositions(ctx context.Context, spaceID string) {
	if err := s.positions.Sync(ctx, spaceID); err != nil {
		s.logger.Warn("queued reorder not written before document change",
			"space_id", spaceID,
			"error", err,
		)
	}
}

func duplicateTitle(title string) string {
	limit := config.MaxDocumentTitleLength - len([]rune(copySuffix))
	runes := []rune(title)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + copySuffix
}

// DeleteDocument soft-deletes a document and all of its descendants
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	deleted, err := s.docRepo.SoftDeleteSubtree(ctx, doc.SpaceID, documentID)
	if err != nil {
		return err
	}
	s.positions.Forget(doc.SpaceID)

	s.logger.Info("document deleted",
		"id", documentID,
		"space_id", doc.SpaceID,
		"rows", deleted,
	)
	return nil
}

// GetBreadcrumbs returns the ancestor chain of a document, root first,
// ending with the document itself
func (s *documentService) GetBreadcrumbs(ctx context.Context, userID, documentID string) ([]models.Breadcrumb, error) {
	if err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListBySpace(ctx, doc.SpaceID)
	if err != nil {
		return nil, err
	}

	tree := doctree.FromRecords(models.Records(docs))
	path := doctree.FullPath(tree, documentID, true)
	crumbs := make([]models.Breadcrumb, 0, len(path))
	for _, n := range path {
		crumbs = append(crumbs, models.Breadcrumb{
			ID:           n.ID,
			Title:        n.Title,
			DocumentType: n.Payload.DocumentType,
		})
	}
	return crumbs, nil
}

func (s *documentService) validateCreateRequest(req *classroomSvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.SpaceID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxDocumentTitleLength),
			validation.By(validateName),
		),
		validation.Field(&req.DocumentType, validation.In(models.DocumentTypes...)),
	)
}

func (s *documentService) validateUpdateRequest(req *classroomSvc.UpdateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxDocumentTitleLength),
			validation.By(func(value interface{}) error {
				title, _ := value.(*string)
				if title == nil {
					return nil
				}
				return validateName(*title)
			}),
		),
		validation.Field(&req.DocumentType, validation.In(models.DocumentTypes...)),
	)
}
