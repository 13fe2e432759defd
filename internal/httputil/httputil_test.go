package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"parent_id": null}`, wantPresent: true},
		{name: "value", body: `{"parent_id": "abc"}`, wantPresent: true, wantValue: strPtr("abc")},
		{name: "empty", body: `{"parent_id": ""}`, wantPresent: true, wantValue: strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				ParentID OptionalString `json:"parent_id"`
			}
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if req.ParentID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", req.ParentID.Present, tt.wantPresent)
			}
			switch {
			case tt.wantValue == nil && req.ParentID.Value != nil:
				t.Errorf("Value = %q, want nil", *req.ParentID.Value)
			case tt.wantValue != nil && (req.ParentID.Value == nil || *req.ParentID.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %q", req.ParentID.Value, *tt.wantValue)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"x"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "trailing data", body: `{"name":"x"} {"name":"y"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest struct {
				Name string `json:"name"`
			}
			err := ParseJSON(httptest.NewRecorder(), r, &dest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusConflict, "already exists", map[string]interface{}{
		"resource_id": "abc",
		"status":      999, // standard members win
	})

	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["resource_id"] != "abc" {
		t.Errorf("extra member missing: %v", body)
	}
	if body["status"] != float64(http.StatusConflict) {
		t.Errorf("status = %v, want 409", body["status"])
	}
	if body["title"] != "Conflict" {
		t.Errorf("title = %v", body["title"])
	}
}

func TestPathUUID(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	var gotErr error
	mux.HandleFunc("GET /spaces/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathUUID(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/spaces/not-a-uuid", nil))
	if gotErr == nil {
		t.Fatal("expected error for malformed id")
	}

	id := "3f1c2b8e-9a4d-4c1e-8f2a-1b2c3d4e5f60"
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/spaces/"+id, nil))
	if gotErr != nil || got != id {
		t.Fatalf("got %q, %v", got, gotErr)
	}
}
