package doctree

// FindItemDeep searches every branch, collapsed or not, for id.
func FindItemDeep[T any](tree []*Node[T], id string) *Node[T] {
	for _, n := range tree {
		if n.ID == id {
			return n
		}
		if found := FindItemDeep(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FullPath returns the ancestor chain of id, root first, optionally ending
// with the node itself. It is empty when id is not in the tree.
func FullPath[T any](tree []*Node[T], id string, includeSelf bool) []*Node[T] {
	var path []*Node[T]
	var walk func(nodes []*Node[T]) bool
	walk = func(nodes []*Node[T]) bool {
		for _, n := range nodes {
			path = append(path, n)
			if n.ID == id || walk(n.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(tree) {
		return []*Node[T]{}
	}
	if !includeSelf {
		path = path[:len(path)-1]
	}
	return path
}

// FullPathFlat is FullPath over a flat list, following ParentID links upward.
func FullPathFlat[T any](items []FlatItem[T], id string, includeSelf bool) []FlatItem[T] {
	byID := make(map[string]FlatItem[T], len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	self, ok := byID[id]
	if !ok {
		return []FlatItem[T]{}
	}

	chain := make([]FlatItem[T], 0)
	if includeSelf {
		chain = append(chain, self)
	}
	seen := map[string]bool{id: true}
	cur := self.ParentID
	for cur != nil && !seen[*cur] {
		parent, ok := byID[*cur]
		if !ok {
			break
		}
		seen[*cur] = true
		chain = append(chain, parent)
		cur = parent.ParentID
	}

	// Collected leaf-first; flip to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// AncestorIDs returns the ids of every ancestor of id (the node excluded).
func AncestorIDs[T any](tree []*Node[T], id string) map[string]bool {
	ids := make(map[string]bool)
	for _, n := range FullPath(tree, id, false) {
		ids[n.ID] = true
	}
	return ids
}
