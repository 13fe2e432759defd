package doctree

import (
	"errors"
	"testing"
)

func TestReconcile_DragAboveSibling(t *testing.T) {
	prev := Flatten(tree(n("1", "Unit", n("2", "Lesson A"), n("3", "Lesson B"))))

	// Node 3 dragged above node 2
	next := []FlatItem[meta]{prev[0], prev[2], prev[1]}

	got, err := Reconcile(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []PositionUpdate{
		{ID: "1", ParentID: nil, Index: 0},
		{ID: "3", ParentID: strPtr("1"), Index: 0},
		{ID: "2", ParentID: strPtr("1"), Index: 1},
	}
	if !EqualUpdates(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReconcile_ReparentKeepsSubtreeParents(t *testing.T) {
	prev := Flatten(tree(
		n("a", "A", n("b", "B", n("c", "C"), n("d", "D"))),
		n("e", "E"),
	))

	// Move b (with its subtree) under e
	next := make([]FlatItem[meta], len(prev))
	copy(next, prev)
	next[1].ParentID = strPtr("e")

	got, err := Reconcile(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := map[string]PositionUpdate{}
	for _, u := range got {
		byID[u.ID] = u
	}
	if p := byID["b"].ParentID; p == nil || *p != "e" {
		t.Errorf("b should now belong to e, got %v", p)
	}
	for _, id := range []string{"c", "d"} {
		if p := byID[id].ParentID; p == nil || *p != "b" {
			t.Errorf("%s should still belong to b, got %v", id, p)
		}
	}
	if byID["c"].Index != 0 || byID["d"].Index != 1 {
		t.Errorf("subtree order changed: c=%d d=%d", byID["c"].Index, byID["d"].Index)
	}
}

func TestReconcile_MismatchedItems(t *testing.T) {
	prev := Flatten(tree(n("1", "One"), n("2", "Two")))

	tests := []struct {
		name string
		next []FlatItem[meta]
	}{
		{name: "missing item", next: prev[:1]},
		{name: "unknown item", next: []FlatItem[meta]{prev[0], {ID: "9"}}},
		{name: "duplicate item", next: []FlatItem[meta]{prev[0], prev[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(prev, tt.next)
			if !errors.Is(err, ErrMismatchedItems) {
				t.Fatalf("expected ErrMismatchedItems, got %v", err)
			}
		})
	}
}

func TestChanged(t *testing.T) {
	items := Flatten(tree(n("1", "Unit", n("2", "A"), n("3", "B"))))
	updates := []PositionUpdate{
		{ID: "1", Index: 0},
		{ID: "3", ParentID: strPtr("1"), Index: 0},
		{ID: "2", ParentID: strPtr("1"), Index: 1},
	}

	got := Changed(items, updates)

	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Fatalf("expected only 3 and 2 to change, got %+v", got)
	}
}

func TestEqualUpdates(t *testing.T) {
	a := []PositionUpdate{{ID: "1", ParentID: strPtr("p"), Index: 0}}
	b := []PositionUpdate{{ID: "1", ParentID: strPtr("p"), Index: 0}}
	c := []PositionUpdate{{ID: "1", ParentID: nil, Index: 0}}

	if !EqualUpdates(a, b) {
		t.Error("expected updates with equal parent values to be equal")
	}
	if EqualUpdates(a, c) {
		t.Error("expected nil and non-nil parents to differ")
	}
	if EqualUpdates(a, nil) {
		t.Error("expected different lengths to differ")
	}
}
