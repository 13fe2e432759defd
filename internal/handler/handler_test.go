package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"lessontree/internal/doctree"
	"lessontree/internal/domain"
	models "lessontree/internal/domain/models/classroom"
	classroomSvc "lessontree/internal/domain/services/classroom"
	"lessontree/internal/httputil"
)

const (
	spaceID = "7f1c2a9e-0000-4000-8000-000000000001"
	docID   = "7f1c2a9e-0000-4000-8000-000000000002"
	userID  = "user-1"
)

type fakeSpaceService struct {
	created *classroomSvc.CreateSpaceRequest
	err     error
}

func (f *fakeSpaceService) CreateSpace(ctx context.Context, req *classroomSvc.CreateSpaceRequest) (*models.Space, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Space{ID: spaceID, OwnerID: req.OwnerID, Name: req.Name}, nil
}

func (f *fakeSpaceService) GetSpace(ctx context.Context, id, userID string) (*models.Space, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Space{ID: id, OwnerID: userID, Name: "Biology"}, nil
}

func (f *fakeSpaceService) ListSpaces(ctx context.Context, userID string) ([]models.Space, error) {
	return []models.Space{{ID: spaceID, OwnerID: userID, Name: "Biology"}}, f.err
}

func (f *fakeSpaceService) UpdateSpace(ctx context.Context, id, userID string, req *classroomSvc.UpdateSpaceRequest) (*models.Space, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Space{ID: id, Name: req.Name}, nil
}

func (f *fakeSpaceService) DeleteSpace(ctx context.Context, id, userID string) (*models.Space, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Space{ID: id}, nil
}

type fakeDocumentService struct {
	update *classroomSvc.UpdateDocumentRequest
	err    error
}

func (f *fakeDocumentService) CreateDocument(ctx context.Context, req *classroomSvc.CreateDocumentRequest) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Document{ID: docID, SpaceID: req.SpaceID, Title: req.Title, ParentID: req.ParentID}, nil
}

func (f *fakeDocumentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Document{ID: documentID}, nil
}

func (f *fakeDocumentService) UpdateDocument(ctx context.Context, userID, documentID string, req *classroomSvc.UpdateDocumentRequest) (*models.Document, error) {
	f.update = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Document{ID: documentID, ParentID: req.ParentID}, nil
}

func (f *fakeDocumentService) DuplicateDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Document{ID: "copy", Title: "Quiz (copy)"}, nil
}

func (f *fakeDocumentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	return f.err
}

func (f *fakeDocumentService) GetBreadcrumbs(ctx context.Context, userID, documentID string) ([]models.Breadcrumb, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Breadcrumb{{ID: "unit", Title: "Unit"}, {ID: documentID, Title: "Quiz"}}, nil
}

type fakeTreeService struct {
	opts      classroomSvc.TreeOptions
	collapsed map[string]bool
	resets    int
	err       error
}

func (f *fakeTreeService) GetTree(ctx context.Context, userID, spaceID string, opts classroomSvc.TreeOptions) (*models.TreeResponse, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &models.TreeResponse{SpaceID: spaceID, Keyword: opts.Keyword, Nodes: []*models.TreeNode{{ID: "unit", Title: "Unit"}}, Total: 1}, nil
}

func (f *fakeTreeService) SetCollapsed(ctx context.Context, userID, spaceID, nodeID string, collapsed bool) error {
	if f.collapsed == nil {
		f.collapsed = map[string]bool{}
	}
	f.collapsed[nodeID] = collapsed
	return f.err
}

func (f *fakeTreeService) ResetSession(ctx context.Context, userID, spaceID string) error {
	f.resets++
	return f.err
}

func (f *fakeTreeService) CurrentOrder(ctx context.Context, spaceID string) ([]models.FlatItem, error) {
	return nil, f.err
}

type fakeReorderService struct {
	reorder *classroomSvc.ReorderRequest
	move    *classroomSvc.MoveRequest
	err     error
}

func (f *fakeReorderService) Reorder(ctx context.Context, userID, spaceID string, req *classroomSvc.ReorderRequest) (*models.ReorderResult, error) {
	f.reorder = req
	if f.err != nil {
		return nil, f.err
	}
	updates := make([]doctree.PositionUpdate, len(req.Items))
	for i, item := range req.Items {
		updates[i] = doctree.PositionUpdate{ID: item.ID, ParentID: item.ParentID, Index: i}
	}
	return &models.ReorderResult{SpaceID: spaceID, Updates: updates, Changed: len(updates), Scheduled: true}, nil
}

func (f *fakeReorderService) Move(ctx context.Context, userID, spaceID string, req *classroomSvc.MoveRequest) (*models.ReorderResult, error) {
	f.move = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReorderResult{SpaceID: spaceID, Scheduled: true}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type testServer struct {
	mux     *http.ServeMux
	spaces  *fakeSpaceService
	docs    *fakeDocumentService
	trees   *fakeTreeService
	reorder *fakeReorderService
}

func newTestServer(db Pinger) *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{
		mux:     http.NewServeMux(),
		spaces:  &fakeSpaceService{},
		docs:    &fakeDocumentService{},
		trees:   &fakeTreeService{},
		reorder: &fakeReorderService{},
	}
	handlers := &Handlers{
		Health:   NewHealthHandler(db, logger),
		Space:    NewSpaceHandler(s.spaces, logger),
		Document: NewDocumentHandler(s.docs, logger),
		Tree:     NewTreeHandler(s.trees, s.reorder, logger),
	}
	handlers.Register(s.mux)
	return s
}

// do sends a request as userID unless anonymous is set
func (s *testServer) do(t *testing.T, method, path, body string, anonymous bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if !anonymous {
		req = httputil.WithUserID(req, userID)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid move", &domain.InvalidMoveError{Message: "cannot move into own subtree", NodeID: "n1"}, http.StatusUnprocessableEntity},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("document %s: %w", docID, domain.ErrNotFound), http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"conflict", &domain.ConflictError{Message: "exists", ResourceType: "space", ResourceID: "s"}, http.StatusConflict},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
				t.Errorf("content type = %q", got)
			}
		})
	}

	t.Run("invalid move carries node id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handleError(rec, &domain.InvalidMoveError{Message: "cycle", NodeID: "n1"})
		body := decode[map[string]interface{}](t, rec)
		if body["node_id"] != "n1" {
			t.Fatalf("expected node_id extra, got %v", body)
		}
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handleError(rec, fmt.Errorf("pq: password authentication failed"))
		body := decode[map[string]interface{}](t, rec)
		if body["detail"] != "internal server error" {
			t.Fatalf("detail = %v", body["detail"])
		}
	})
}

func TestRoutes_RequireUser(t *testing.T) {
	s := newTestServer(fakePinger{})
	rec := s.do(t, http.MethodGet, "/api/spaces", "", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRoutes_RejectMalformedIDs(t *testing.T) {
	s := newTestServer(fakePinger{})
	for _, path := range []string{
		"/api/spaces/not-a-uuid",
		"/api/spaces/not-a-uuid/tree",
		"/api/documents/123",
	} {
		rec := s.do(t, http.MethodGet, path, "", false)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestSpaceHandler(t *testing.T) {
	t.Run("create sets owner from auth", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		rec := s.do(t, http.MethodPost, "/api/spaces", `{"name":"Biology","owner_id":"someone-else"}`, false)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if s.spaces.created.OwnerID != userID {
			t.Fatalf("owner = %q, want %q", s.spaces.created.OwnerID, userID)
		}
	})

	t.Run("create rejects bad json", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		rec := s.do(t, http.MethodPost, "/api/spaces", `{"name":`, false)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("get maps not found", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		s.spaces.err = domain.ErrNotFound
		rec := s.do(t, http.MethodGet, "/api/spaces/"+spaceID, "", false)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		rec := s.do(t, http.MethodGet, "/api/spaces", "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		spaces := decode[[]models.Space](t, rec)
		if len(spaces) != 1 || spaces[0].Name != "Biology" {
			t.Fatalf("unexpected spaces %+v", spaces)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		rec := s.do(t, http.MethodDelete, "/api/spaces/"+spaceID, "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestDocumentHandler_UpdateParent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantMove   bool
		wantParent *string
	}{
		{"absent parent leaves it alone", `{"title":"Quiz 2"}`, false, nil},
		{"null parent moves to root", `{"parent_id":null}`, true, nil},
		{"string parent moves under it", `{"parent_id":"unit"}`, true, strPtr("unit")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(fakePinger{})
			rec := s.do(t, http.MethodPatch, "/api/documents/"+docID, tt.body, false)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			got := s.docs.update
			if got.MoveParent != tt.wantMove {
				t.Fatalf("MoveParent = %v, want %v", got.MoveParent, tt.wantMove)
			}
			switch {
			case tt.wantParent == nil && got.ParentID != nil:
				t.Fatalf("ParentID = %q, want nil", *got.ParentID)
			case tt.wantParent != nil && (got.ParentID == nil || *got.ParentID != *tt.wantParent):
				t.Fatalf("ParentID = %v, want %q", got.ParentID, *tt.wantParent)
			}
		})
	}

	t.Run("moving into own subtree is 422", func(t *testing.T) {
		s := newTestServer(fakePinger{})
		s.docs.err = &domain.InvalidMoveError{Message: "cannot move a document into its own subtree", NodeID: docID}
		rec := s.do(t, http.MethodPatch, "/api/documents/"+docID, `{"parent_id":"child"}`, false)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestDocumentHandler(t *testing.T) {
	s := newTestServer(fakePinger{})

	rec := s.do(t, http.MethodPost, "/api/spaces/"+spaceID+"/documents", `{"title":"Quiz","parent_id":"unit"}`, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	doc := decode[models.Document](t, rec)
	if doc.SpaceID != spaceID || doc.ParentID == nil || *doc.ParentID != "unit" {
		t.Fatalf("unexpected document %+v", doc)
	}

	rec = s.do(t, http.MethodPost, "/api/documents/"+docID+"/duplicate", "", false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/documents/"+docID+"/path", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("path status = %d", rec.Code)
	}
	if crumbs := decode[[]models.Breadcrumb](t, rec); len(crumbs) != 2 || crumbs[1].ID != docID {
		t.Fatalf("unexpected breadcrumbs %+v", crumbs)
	}

	rec = s.do(t, http.MethodDelete, "/api/documents/"+docID, "", false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestTreeHandler_GetTree(t *testing.T) {
	s := newTestServer(fakePinger{})
	rec := s.do(t, http.MethodGet, "/api/spaces/"+spaceID+"/tree?keyword=quiz&active=n2&expanded=true", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	want := classroomSvc.TreeOptions{Keyword: "quiz", ActiveID: "n2", DefaultExpanded: true}
	if s.trees.opts != want {
		t.Fatalf("options = %+v, want %+v", s.trees.opts, want)
	}

	tree := decode[models.TreeResponse](t, rec)
	if tree.SpaceID != spaceID || len(tree.Nodes) != 1 {
		t.Fatalf("unexpected tree %+v", tree)
	}
}

func TestTreeHandler_Reorder(t *testing.T) {
	s := newTestServer(fakePinger{})
	body := `{"items":[{"id":"1","parent_id":null},{"id":"3","parent_id":"1"},{"id":"2","parent_id":"1"}]}`

	rec := s.do(t, http.MethodPost, "/api/spaces/"+spaceID+"/tree/reorder", body, false)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.reorder.reorder.Items) != 3 {
		t.Fatalf("items = %+v", s.reorder.reorder.Items)
	}
	result := decode[models.ReorderResult](t, rec)
	if !result.Scheduled || len(result.Updates) != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	s.reorder.err = &domain.InvalidMoveError{Message: "unknown item", NodeID: "9"}
	rec = s.do(t, http.MethodPost, "/api/spaces/"+spaceID+"/tree/reorder", body, false)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestTreeHandler_Move(t *testing.T) {
	s := newTestServer(fakePinger{})
	rec := s.do(t, http.MethodPost, "/api/spaces/"+spaceID+"/tree/move", `{"id":"lab","over_id":"essay","parent_id":"unit"}`, false)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if s.reorder.move.OverID != "essay" || *s.reorder.move.ParentID != "unit" {
		t.Fatalf("unexpected move %+v", s.reorder.move)
	}
}

func TestTreeHandler_SetCollapsed(t *testing.T) {
	s := newTestServer(fakePinger{})
	path := "/api/spaces/" + spaceID + "/tree/collapse/" + docID

	rec := s.do(t, http.MethodPut, path, `{"collapsed":true}`, false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !s.trees.collapsed[docID] {
		t.Fatal("collapse toggle not forwarded")
	}

	rec = s.do(t, http.MethodPut, path, `{}`, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing collapsed: status = %d, want 400", rec.Code)
	}
}

func TestTreeHandler_ResetSession(t *testing.T) {
	s := newTestServer(fakePinger{})
	rec := s.do(t, http.MethodDelete, "/api/spaces/"+spaceID+"/tree/session", "", false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if s.trees.resets != 1 {
		t.Fatalf("resets = %d", s.trees.resets)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := newTestServer(fakePinger{}).do(t, http.MethodGet, "/health", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = newTestServer(fakePinger{err: fmt.Errorf("connection refused")}).do(t, http.MethodGet, "/health", "", true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func strPtr(s string) *string { return &s }
