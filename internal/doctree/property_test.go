package doctree

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var sampleTitles = []string{"Algebra", "Algebra Quiz", "Essay", "Unit", "Lab Report", "Geometry"}

// genTree draws a random tree: node i picks any earlier node (or none) as parent.
func genTree(t *rapid.T) []*Node[meta] {
	size := rapid.IntRange(0, 30).Draw(t, "size")
	records := make([]Record[meta], 0, size)
	for i := 0; i < size; i++ {
		var parentID *string
		if p := rapid.IntRange(-1, i-1).Draw(t, fmt.Sprintf("parent%d", i)); p >= 0 {
			parentID = strPtr(fmt.Sprintf("n%d", p))
		}
		records = append(records, Record[meta]{
			ID:       fmt.Sprintf("n%d", i),
			ParentID: parentID,
			Index:    rapid.IntRange(0, 100).Draw(t, fmt.Sprintf("index%d", i)),
			Title:    rapid.SampledFrom(sampleTitles).Draw(t, fmt.Sprintf("title%d", i)),
			Payload:  meta{Kind: "document"},
		})
	}
	return FromRecords(records)
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := genTree(t)
		assertEqualTrees(t, Build(Flatten(original)), original)
	})
}

func TestProperty_ReconcileIndexesAreContiguous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prev := Flatten(genTree(t))
		next := rapid.Permutation(prev).Draw(t, "next")

		updates, err := Reconcile(prev, next)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updates) != len(prev) {
			t.Fatalf("expected one update per node: got %d, want %d", len(updates), len(prev))
		}

		groups := map[string][]int{}
		for _, u := range updates {
			key := parentKey(u.ParentID)
			groups[key] = append(groups[key], u.Index)
		}
		for key, indexes := range groups {
			seen := make([]bool, len(indexes))
			for _, idx := range indexes {
				if idx < 0 || idx >= len(indexes) || seen[idx] {
					t.Fatalf("parent %q: indexes %v are not 0..n-1", key, indexes)
				}
				seen[idx] = true
			}
		}
	})
}

func TestProperty_FilterIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := genTree(t)
		got := FilterTree(original, "")
		if len(got) != len(original) {
			t.Fatalf("empty keyword changed the tree")
		}
		for i := range got {
			if got[i] != original[i] {
				t.Fatalf("empty keyword must return the input unchanged")
			}
		}
	})
}

func TestProperty_FilterKeepsAncestors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := genTree(t)
		keyword := rapid.SampledFrom([]string{"algebra", "quiz", "LAB", "essay"}).Draw(t, "keyword")

		filtered := FilterTree(original, keyword)

		for _, item := range Flatten(original) {
			if !strings.Contains(strings.ToLower(item.Title), strings.ToLower(keyword)) {
				continue
			}
			for _, node := range FullPath(original, item.ID, true) {
				if FindItemDeep(filtered, node.ID) == nil {
					t.Fatalf("match %s lost ancestor %s", item.ID, node.ID)
				}
			}
			got := FullPath(filtered, item.ID, true)
			want := FullPath(original, item.ID, true)
			if len(got) != len(want) {
				t.Fatalf("match %s: path length %d, want %d", item.ID, len(got), len(want))
			}
		}
	})
}

func TestProperty_FilterDoesNotMutate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := genTree(t)
		snapshot := Clone(original)

		_ = FilterTree(original, rapid.SampledFrom(sampleTitles).Draw(t, "keyword"))

		assertEqualTrees(t, original, snapshot)
	})
}
