package classroom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	"lessontree/internal/domain/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// fakeSpaceRepo is an in-memory SpaceRepository
type fakeSpaceRepo struct {
	mu     sync.Mutex
	spaces map[string]*models.Space
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{spaces: make(map[string]*models.Space)}
}

func (r *fakeSpaceRepo) Create(ctx context.Context, space *models.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if space.ID == "" {
		space.ID = uuid.NewString()
	}
	cp := *space
	r.spaces[space.ID] = &cp
	return nil
}

func (r *fakeSpaceRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Space, error) {
	space, err := r.GetByIDOnly(ctx, id)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != ownerID {
		return nil, fmt.Errorf("space %s: %w", id, domain.ErrNotFound)
	}
	return space, nil
}

func (r *fakeSpaceRepo) GetByIDOnly(ctx context.Context, id string) (*models.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	space, ok := r.spaces[id]
	if !ok || space.DeletedAt != nil {
		return nil, fmt.Errorf("space %s: %w", id, domain.ErrNotFound)
	}
	cp := *space
	return &cp, nil
}

func (r *fakeSpaceRepo) List(ctx context.Context, ownerID string) ([]models.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Space, 0)
	for _, s := range r.spaces {
		if s.OwnerID == ownerID && s.DeletedAt == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSpaceRepo) Update(ctx context.Context, space *models.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.spaces[space.ID]; !ok {
		return fmt.Errorf("space %s: %w", space.ID, domain.ErrNotFound)
	}
	cp := *space
	r.spaces[space.ID] = &cp
	return nil
}

func (r *fakeSpaceRepo) Delete(ctx context.Context, id, ownerID string) (*models.Space, error) {
	space, err := r.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	space.DeletedAt = &now
	r.mu.Lock()
	r.spaces[id] = space
	r.mu.Unlock()
	return space, nil
}

// fakeDocRepo is an in-memory DocumentRepository
type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document

	positionCalls [][]doctree.PositionUpdate
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*models.Document)}
}

// add stores a document with a fixed id and position
func (r *fakeDocRepo) add(spaceID, id string, parentID *string, index int, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = &models.Document{
		ID:           id,
		SpaceID:      spaceID,
		ParentID:     parentID,
		Index:        index,
		Title:        title,
		DocumentType: models.DocumentTypeDocument,
		CreatedAt:    time.Unix(int64(len(r.docs)), 0),
	}
}

func (r *fakeDocRepo) get(id string) models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.docs[id]
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = uuid.NewString()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.DeletedAt != nil {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocRepo) ListBySpace(ctx context.Context, spaceID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Document, 0)
	for _, d := range r.docs {
		if d.SpaceID == spaceID && d.DeletedAt == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDocRepo) NextIndex(ctx context.Context, spaceID string, parentID *string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 0
	for _, d := range r.docs {
		if d.SpaceID == spaceID && d.DeletedAt == nil && doctree.SameParent(d.ParentID, parentID) && d.Index >= next {
			next = d.Index + 1
		}
	}
	return next, nil
}

func (r *fakeDocRepo) Update(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) UpdatePositions(ctx context.Context, spaceID string, updates []doctree.PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positionCalls = append(r.positionCalls, updates)
	for _, u := range updates {
		if d, ok := r.docs[u.ID]; ok && d.SpaceID == spaceID && d.DeletedAt == nil {
			d.ParentID = u.ParentID
			d.Index = u.Index
		}
	}
	return nil
}

func (r *fakeDocRepo) SoftDeleteSubtree(ctx context.Context, spaceID, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, d := range r.docs {
			if d.ParentID != nil && doomed[*d.ParentID] && !doomed[d.ID] {
				doomed[d.ID] = true
				changed = true
			}
		}
	}
	n := 0
	for docID := range doomed {
		if d, ok := r.docs[docID]; ok && d.SpaceID == spaceID && d.DeletedAt == nil {
			d.DeletedAt = &now
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return n, nil
}

// fakeTxManager runs fn directly
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

// fakeAuthorizer allows every user listed in owners[spaceID]
type fakeAuthorizer struct {
	docs   *fakeDocRepo
	owners map[string]string
}

func (a *fakeAuthorizer) CanAccessSpace(ctx context.Context, userID, spaceID string) error {
	owner, ok := a.owners[spaceID]
	if !ok {
		return fmt.Errorf("space %s: %w", spaceID, domain.ErrNotFound)
	}
	if owner != userID {
		return domain.ErrForbidden
	}
	return nil
}

func (a *fakeAuthorizer) CanAccessDocument(ctx context.Context, userID, documentID string) error {
	doc, err := a.docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	return a.CanAccessSpace(ctx, userID, doc.SpaceID)
}

// recordingWriter records calls and mimics the dispatcher's suppression
type recordingWriter struct {
	mu        sync.Mutex
	submitted [][]doctree.PositionUpdate
	cancelled []string
	synced    []string
	forgotten []string

	last    []doctree.PositionUpdate
	hasLast bool
}

func (w *recordingWriter) Submit(spaceID string, updates []doctree.PositionUpdate) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hasLast && doctree.EqualUpdates(w.last, updates) {
		return false
	}
	w.submitted = append(w.submitted, updates)
	w.last = updates
	w.hasLast = true
	return true
}

func (w *recordingWriter) Sync(ctx context.Context, spaceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.synced = append(w.synced, spaceID)
	return nil
}

func (w *recordingWriter) Forget(spaceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.forgotten = append(w.forgotten, spaceID)
	w.last = nil
	w.hasLast = false
}

func (w *recordingWriter) Cancel(spaceID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = append(w.cancelled, spaceID)
	return true
}

const (
	testSpace = "space-1"
	testUser  = "user-1"
)

// seedAlgebra builds:
//
//	unit (Unit 1)
//	  algebra (Algebra)
//	    quiz (Algebra Quiz)
//	  essay (Essay)
//	lab (Lab Report)
func seedAlgebra(docs *fakeDocRepo) {
	docs.add(testSpace, "unit", nil, 0, "Unit 1")
	docs.add(testSpace, "algebra", strPtr("unit"), 0, "Algebra")
	docs.add(testSpace, "quiz", strPtr("algebra"), 0, "Algebra Quiz")
	docs.add(testSpace, "essay", strPtr("unit"), 1, "Essay")
	docs.add(testSpace, "lab", nil, 1, "Lab Report")
}

func newTestAuthorizer(docs *fakeDocRepo) *fakeAuthorizer {
	return &fakeAuthorizer{docs: docs, owners: map[string]string{testSpace: testUser}}
}
