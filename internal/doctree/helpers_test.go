package doctree

import (
	"fmt"
	"strings"
)

type meta struct {
	Kind string
}

func strPtr(s string) *string { return &s }

// tree builds a tree from nested specs, wiring ParentID and Index the way
// FromRecords would.
func tree(nodes ...*Node[meta]) []*Node[meta] {
	link(nodes, nil)
	AssignIndexTitles(nodes)
	return nodes
}

func n(id, title string, children ...*Node[meta]) *Node[meta] {
	if children == nil {
		children = []*Node[meta]{}
	}
	return &Node[meta]{ID: id, Title: title, Payload: meta{Kind: "document"}, Children: children}
}

func link(nodes []*Node[meta], parentID *string) {
	for i, node := range nodes {
		node.ParentID = cloneParent(parentID)
		node.Index = i
		id := node.ID
		link(node.Children, &id)
	}
}

// shape renders a tree as "id(child,child)" for compact comparisons.
func shape[T any](nodes []*Node[T]) string {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if len(node.Children) == 0 {
			parts = append(parts, node.ID)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", node.ID, shape(node.Children)))
	}
	return strings.Join(parts, ",")
}

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func assertEqualTrees(t fataler, got, want []*Node[meta]) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sibling count mismatch: got %s, want %s", shape(got), shape(want))
	}
	for i := range got {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Title != w.Title || g.Index != w.Index || g.Collapsed != w.Collapsed ||
			!SameParent(g.ParentID, w.ParentID) || g.Payload != w.Payload || g.IndexTitle != w.IndexTitle {
			t.Fatalf("node mismatch at %s: got %+v, want %+v", w.ID, *g, *w)
		}
		assertEqualTrees(t, g.Children, w.Children)
	}
}

func ids[T any](items []FlatItem[T]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
