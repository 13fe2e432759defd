package doctree

import (
	"slices"
	"testing"
	"time"
)

func TestFlatten(t *testing.T) {
	root := tree(
		n("1", "Unit 1",
			n("2", "Lesson A"),
			n("3", "Lesson B", n("4", "Quiz")),
		),
		n("5", "Unit 2"),
	)

	items := Flatten(root)

	wantIDs := []string{"1", "2", "3", "4", "5"}
	if got := ids(items); !slices.Equal(got, wantIDs) {
		t.Fatalf("order: got %v, want %v", got, wantIDs)
	}

	wantDepth := map[string]int{"1": 0, "2": 1, "3": 1, "4": 2, "5": 0}
	for _, item := range items {
		if item.Depth != wantDepth[item.ID] {
			t.Errorf("depth of %s: got %d, want %d", item.ID, item.Depth, wantDepth[item.ID])
		}
	}
	if items[3].ParentID == nil || *items[3].ParentID != "3" {
		t.Errorf("expected item 4 to keep parent 3, got %v", items[3].ParentID)
	}
	if items[0].ParentID != nil {
		t.Errorf("expected root item to have nil parent")
	}
}

func TestFlatten_Empty(t *testing.T) {
	if items := Flatten[meta](nil); len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	original := tree(
		n("1", "Unit 1",
			n("2", "Lesson A"),
			n("3", "Lesson B", n("4", "Quiz")),
		),
		n("5", "Unit 2", n("6", "Essay")),
	)
	original[0].Collapsed = true

	assertEqualTrees(t, Build(Flatten(original)), original)
}

func TestBuild_UsesParentIDNotDepth(t *testing.T) {
	items := []FlatItem[meta]{
		{ID: "a", Depth: 0},
		{ID: "b", ParentID: strPtr("a"), Depth: 7},
		{ID: "c", Depth: 1},
	}

	got := Build(items)

	if s := shape(got); s != "a(b),c" {
		t.Fatalf("got %s, want a(b),c", s)
	}
}

func TestBuild_MissingParentBecomesRoot(t *testing.T) {
	items := []FlatItem[meta]{
		{ID: "a"},
		{ID: "b", ParentID: strPtr("gone")},
		{ID: "c", ParentID: strPtr("b")},
	}

	got := Build(items)

	if s := shape(got); s != "a,b(c)" {
		t.Fatalf("got %s, want a,b(c)", s)
	}
}

func TestBuild_ParentCycleDoesNotHang(t *testing.T) {
	items := []FlatItem[meta]{
		{ID: "a", ParentID: strPtr("b")},
		{ID: "b", ParentID: strPtr("a")},
		{ID: "c", ParentID: strPtr("a")},
	}

	got := Build(items)

	if len(Flatten(got)) != 3 {
		t.Fatalf("expected all three items to survive, got %s", shape(got))
	}
}

func TestFromRecords(t *testing.T) {
	now := time.Now()
	deleted := now.Add(-time.Hour)

	records := []Record[meta]{
		{ID: "2", ParentID: strPtr("1"), Index: 5, Title: "Second", CreatedAt: now},
		{ID: "1", Index: 0, Title: "Unit", CreatedAt: now},
		{ID: "3", ParentID: strPtr("1"), Index: 1, Title: "First", CreatedAt: now},
		{ID: "4", ParentID: strPtr("1"), Index: 3, Title: "Removed", CreatedAt: now, DeletedAt: &deleted},
		{ID: "5", Index: 0, Title: "Later twin", CreatedAt: now.Add(time.Minute)},
	}

	got := FromRecords(records)

	if s := shape(got); s != "1(3,2),5" {
		t.Fatalf("got %s, want 1(3,2),5", s)
	}
	if got[0].IndexTitle != "Unit#First#Second" {
		t.Errorf("index title: got %q", got[0].IndexTitle)
	}
}

func TestFromRecords_ChildOfDeletedParentIsRoot(t *testing.T) {
	deleted := time.Now()
	records := []Record[meta]{
		{ID: "p", Title: "Old unit", DeletedAt: &deleted},
		{ID: "c", ParentID: strPtr("p"), Title: "Orphan"},
	}

	got := FromRecords(records)

	if s := shape(got); s != "c" {
		t.Fatalf("got %s, want c", s)
	}
	if got[0].ParentID != nil {
		t.Errorf("expected orphan parent to be cleared")
	}
}

func TestAssignIndexTitles(t *testing.T) {
	root := tree(n("1", "Algebra", n("2", "Linear", n("3", "Quiz")), n("4", "Quadratic")))

	tests := map[string]string{
		"1": "Algebra#Linear#Quiz#Quadratic",
		"2": "Linear#Quiz",
		"3": "Quiz",
		"4": "Quadratic",
	}
	for id, want := range tests {
		if got := FindItemDeep(root, id).IndexTitle; got != want {
			t.Errorf("%s: got %q, want %q", id, got, want)
		}
	}
}
