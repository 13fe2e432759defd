package doctree

// Reconcile turns a new flat ordering into one PositionUpdate per node. The
// index of each update is the node's zero-based position among the siblings
// sharing its new parent. Updates are emitted in pre-order of the new tree,
// whether or not a node actually moved; suppressing no-ops is left to the
// dispatcher.
//
// prev and next must cover the same set of ids.
func Reconcile[T any](prev, next []FlatItem[T]) ([]PositionUpdate, error) {
	if !sameIDs(prev, next) {
		return nil, ErrMismatchedItems
	}

	tree := Build(next)
	updates := make([]PositionUpdate, 0, len(next))
	var walk func(nodes []*Node[T], parentID *string)
	walk = func(nodes []*Node[T], parentID *string) {
		for i, n := range nodes {
			updates = append(updates, PositionUpdate{
				ID:       n.ID,
				ParentID: cloneParent(parentID),
				Index:    i,
			})
			id := n.ID
			walk(n.Children, &id)
		}
	}
	walk(tree, nil)

	return updates, nil
}

// Changed returns the subset of updates that differ from the positions
// currently recorded in items.
func Changed[T any](items []FlatItem[T], updates []PositionUpdate) []PositionUpdate {
	current := make(map[string]FlatItem[T], len(items))
	for _, item := range items {
		current[item.ID] = item
	}

	changed := make([]PositionUpdate, 0)
	for _, u := range updates {
		item, ok := current[u.ID]
		if !ok || item.Index != u.Index || !SameParent(item.ParentID, u.ParentID) {
			changed = append(changed, u)
		}
	}
	return changed
}

func sameIDs[T any](a, b []FlatItem[T]) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, item := range a {
		counts[item.ID]++
	}
	for _, item := range b {
		counts[item.ID]--
		if counts[item.ID] < 0 {
			return false
		}
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}
