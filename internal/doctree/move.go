package doctree

// Move projects a drag-and-drop onto a flat ordering: the active item takes
// the list slot of overID and is re-parented under parentID (nil for root).
// Its subtree follows it because descendants keep their parent links. The
// result is normalized to pre-order with sibling indexes renumbered.
func Move[T any](items []FlatItem[T], activeID, overID string, parentID *string) ([]FlatItem[T], error) {
	activeIdx, overIdx := -1, -1
	for i, item := range items {
		if item.ID == activeID {
			activeIdx = i
		}
		if item.ID == overID {
			overIdx = i
		}
	}
	if activeIdx < 0 || overIdx < 0 {
		return nil, ErrItemNotFound
	}

	parents := make(map[string]*string, len(items))
	for _, item := range items {
		parents[item.ID] = item.ParentID
	}
	if overID != activeID && isDescendant(overID, activeID, parents) {
		return nil, ErrCycle
	}
	if parentID != nil {
		if _, ok := parents[*parentID]; !ok {
			return nil, ErrItemNotFound
		}
		if *parentID == activeID || isDescendant(*parentID, activeID, parents) {
			return nil, ErrCycle
		}
	}

	moved := arrayMove(items, activeIdx, overIdx)
	for i := range moved {
		if moved[i].ID == activeID {
			moved[i].ParentID = cloneParent(parentID)
			break
		}
	}

	tree := Build(moved)
	Renumber(tree)
	return Flatten(tree), nil
}

// Renumber sets every node's Index to its position among its siblings.
func Renumber[T any](tree []*Node[T]) {
	for i, n := range tree {
		n.Index = i
		Renumber(n.Children)
	}
}

// RemoveChildrenOf drops the descendants of the given ids from a flat list,
// as done while one of them is being dragged.
func RemoveChildrenOf[T any](items []FlatItem[T], ids ...string) []FlatItem[T] {
	excluded := make(map[string]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}

	out := make([]FlatItem[T], 0, len(items))
	for _, item := range items {
		if item.ParentID != nil && excluded[*item.ParentID] {
			excluded[item.ID] = true
			continue
		}
		out = append(out, item)
	}
	return out
}

// isDescendant reports whether id sits somewhere below ancestorID.
func isDescendant(id, ancestorID string, parents map[string]*string) bool {
	seen := make(map[string]bool)
	cur := parents[id]
	for cur != nil && !seen[*cur] {
		if *cur == ancestorID {
			return true
		}
		seen[*cur] = true
		cur = parents[*cur]
	}
	return false
}

func arrayMove[T any](items []FlatItem[T], from, to int) []FlatItem[T] {
	out := make([]FlatItem[T], 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	moving := items[from]
	moving.ParentID = cloneParent(moving.ParentID)
	out = append(out[:to], append([]FlatItem[T]{moving}, out[to:]...)...)
	return out
}
