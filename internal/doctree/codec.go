package doctree

import (
	"sort"
	"strings"
	"time"
)

// Record is a stored row as it arrives from the backing store.
type Record[T any] struct {
	ID        string
	ParentID  *string
	Index     int
	Title     string
	CreatedAt time.Time
	DeletedAt *time.Time
	Payload   T
}

// Flatten lowers a tree into pre-order: siblings keep their order and every
// parent comes right before its subtree.
func Flatten[T any](tree []*Node[T]) []FlatItem[T] {
	items := make([]FlatItem[T], 0, countNodes(tree))
	var walk func(nodes []*Node[T], depth int)
	walk = func(nodes []*Node[T], depth int) {
		for _, n := range nodes {
			items = append(items, n.flat(depth))
			walk(n.Children, depth+1)
		}
	}
	walk(tree, 0)
	return items
}

// Build nests a flat list by ParentID. Children keep their list order. An item
// whose parent is missing from the list (or whose parent chain loops) becomes
// a root instead of failing.
func Build[T any](items []FlatItem[T]) []*Node[T] {
	nodeMap := make(map[string]*Node[T], len(items))
	parents := make(map[string]*string, len(items))
	order := make([]string, 0, len(items))

	// First pass: one node per id
	for _, item := range items {
		if _, dup := nodeMap[item.ID]; dup {
			continue
		}
		nodeMap[item.ID] = item.node()
		parents[item.ID] = item.ParentID
		order = append(order, item.ID)
	}

	// Second pass: attach to parents
	roots := make([]*Node[T], 0)
	for _, id := range order {
		node := nodeMap[id]
		parentID := parents[id]
		if parentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodeMap[*parentID]
		if !ok || loops(id, parents) {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

// loops reports whether following parent links from id leads back to id.
func loops(id string, parents map[string]*string) bool {
	seen := make(map[string]bool)
	cur := parents[id]
	for cur != nil {
		if *cur == id {
			return true
		}
		if seen[*cur] {
			return false
		}
		seen[*cur] = true
		next, ok := parents[*cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// FromRecords builds the canonical tree from stored rows. Soft-deleted rows are
// dropped, siblings are ordered by Index (then CreatedAt, then ID) and index
// titles are computed.
func FromRecords[T any](records []Record[T]) []*Node[T] {
	live := make([]Record[T], 0, len(records))
	for _, r := range records {
		if r.DeletedAt != nil {
			continue
		}
		live = append(live, r)
	}

	known := make(map[string]bool, len(live))
	for _, r := range live {
		known[r.ID] = true
	}

	// Group by effective parent so siblings can be sorted together
	groups := make(map[string][]Record[T])
	for _, r := range live {
		key := ""
		if r.ParentID != nil && known[*r.ParentID] && *r.ParentID != r.ID {
			key = *r.ParentID
		} else {
			r.ParentID = nil
		}
		groups[key] = append(groups[key], r)
	}
	for key := range groups {
		sortRecords(groups[key])
	}

	items := make([]FlatItem[T], 0, len(live))
	visited := make(map[string]bool, len(live))
	var walk func(key string, depth int)
	walk = func(key string, depth int) {
		for _, r := range groups[key] {
			if visited[r.ID] {
				continue
			}
			visited[r.ID] = true
			items = append(items, FlatItem[T]{
				ID:       r.ID,
				ParentID: cloneParent(r.ParentID),
				Index:    r.Index,
				Depth:    depth,
				Title:    r.Title,
				Payload:  r.Payload,
			})
			walk(r.ID, depth+1)
		}
	}
	walk("", 0)

	// Rows stuck in a parent cycle are unreachable from the roots; surface them as roots
	for _, r := range live {
		if visited[r.ID] {
			continue
		}
		visited[r.ID] = true
		items = append(items, FlatItem[T]{ID: r.ID, Index: r.Index, Title: r.Title, Payload: r.Payload})
		walk(r.ID, 1)
	}

	tree := Build(items)
	AssignIndexTitles(tree)
	return tree
}

func sortRecords[T any](rs []Record[T]) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Index != rs[j].Index {
			return rs[i].Index < rs[j].Index
		}
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}

// AssignIndexTitles sets every node's IndexTitle to its title followed by its
// children's index titles, all joined by IndexTitleSeparator.
func AssignIndexTitles[T any](tree []*Node[T]) {
	for _, n := range tree {
		assignIndexTitle(n)
	}
}

func assignIndexTitle[T any](n *Node[T]) string {
	parts := make([]string, 0, len(n.Children)+1)
	parts = append(parts, n.Title)
	for _, c := range n.Children {
		parts = append(parts, assignIndexTitle(c))
	}
	n.IndexTitle = strings.Join(parts, IndexTitleSeparator)
	return n.IndexTitle
}

// Clone deep-copies a tree.
func Clone[T any](tree []*Node[T]) []*Node[T] {
	return Build(Flatten(tree))
}

func countNodes[T any](tree []*Node[T]) int {
	n := 0
	for _, node := range tree {
		n += 1 + countNodes(node.Children)
	}
	return n
}
