package doctree

import "strings"

// FilterTree prunes tree down to nodes whose index title contains keyword,
// ignoring case. Because an index title includes every descendant's title, the
// ancestors of a match always survive. The input is never modified; an empty
// keyword returns it as is.
func FilterTree[T any](tree []*Node[T], keyword string) []*Node[T] {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return tree
	}
	needle := strings.ToLower(keyword)

	all := Flatten(tree)
	parents := make(map[string]*string, len(all))
	for _, item := range all {
		parents[item.ID] = item.ParentID
	}

	kept := make([]FlatItem[T], 0)
	keptIDs := make(map[string]bool)
	for _, item := range all {
		text := item.IndexTitle
		if text == "" {
			text = item.Title
		}
		if !strings.Contains(strings.ToLower(text), needle) {
			continue
		}
		kept = append(kept, item)
		keptIDs[item.ID] = true
	}

	// Re-attach survivors whose parent was pruned to the nearest kept ancestor
	for i := range kept {
		p := kept[i].ParentID
		for p != nil && !keptIDs[*p] {
			p = parents[*p]
		}
		kept[i].ParentID = cloneParent(p)
	}

	return Build(kept)
}
