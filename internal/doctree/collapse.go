package doctree

// CollapseContext carries the state needed to restore collapse toggles onto a
// freshly built tree.
type CollapseContext[T any] struct {
	// Previous is the tree built last time in this session, if any.
	Previous []*Node[T]

	// Cache is the long-lived id -> collapsed map that survives remounts.
	Cache map[string]bool

	// DefaultExpanded decides how nodes seen for the first time start out.
	DefaultExpanded bool

	// ActiveID is the currently open document. Its ancestors are always expanded.
	ActiveID string
}

// ApplyCollapse sets Collapsed on every node of tree, in place. Each node takes
// its value from the previous tree, else from the cache, else from the default;
// ancestors of the active document are then forced open. The returned flat
// list is what should be written back to the long-lived cache.
func ApplyCollapse[T any](tree []*Node[T], cc CollapseContext[T]) []FlatItem[T] {
	previous := CollapseMap(Flatten(cc.Previous))
	forced := map[string]bool{}
	if cc.ActiveID != "" {
		forced = AncestorIDs(tree, cc.ActiveID)
	}

	var walk func(nodes []*Node[T])
	walk = func(nodes []*Node[T]) {
		for _, n := range nodes {
			switch {
			case forced[n.ID]:
				n.Collapsed = false
			default:
				n.Collapsed = resolveCollapsed(n.ID, previous, cc.Cache, cc.DefaultExpanded)
			}
			walk(n.Children)
		}
	}
	walk(tree)

	return Flatten(tree)
}

func resolveCollapsed(id string, previous, cache map[string]bool, defaultExpanded bool) bool {
	if v, ok := previous[id]; ok {
		return v
	}
	if v, ok := cache[id]; ok {
		return v
	}
	return !defaultExpanded
}

// CollapseMap indexes collapse state by id.
func CollapseMap[T any](items []FlatItem[T]) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item.ID] = item.Collapsed
	}
	return m
}

// SetCollapsed toggles a single node. It reports false when id is not found.
func SetCollapsed[T any](tree []*Node[T], id string, collapsed bool) bool {
	n := FindItemDeep(tree, id)
	if n == nil {
		return false
	}
	n.Collapsed = collapsed
	return true
}

// Visible flattens only what a reader would see: children of collapsed nodes
// are skipped.
func Visible[T any](tree []*Node[T]) []FlatItem[T] {
	items := make([]FlatItem[T], 0)
	var walk func(nodes []*Node[T], depth int)
	walk = func(nodes []*Node[T], depth int) {
		for _, n := range nodes {
			items = append(items, n.flat(depth))
			if !n.Collapsed {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(tree, 0)
	return items
}
