package nav

// BuildTree materializes the forest described by the parent references of items.
//
// Input order is kept inside every list. An item goes to the root list when it has no parent,
// when its parent id is unknown, or when following parent references from it loops back onto
// itself. The ids of items placed at root for the last two reasons are returned as detached.
func BuildTree(items []Item) (roots []*Item, detached []int) {
	nodes := make([]*Item, len(items))
	index := make(map[int]*Item, len(items))
	for i := range items {
		n := items[i]
		n.Children = []*Item{}
		nodes[i] = &n
		index[n.ID] = &n
	}

	roots = make([]*Item, 0, len(items))
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok || loops(n, parent, index) {
			roots = append(roots, n)
			detached = append(detached, n.ID)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots, detached
}

// loops walks up from parent and reports whether the chain reaches n again. A cycle further
// up that does not pass through n stops the walk without blaming n.
func loops(n, parent *Item, index map[int]*Item) bool {
	visited := map[int]struct{}{}
	cur := parent
	for cur != nil {
		if cur.ID == n.ID {
			return true
		}
		if _, seen := visited[cur.ID]; seen {
			return false
		}
		visited[cur.ID] = struct{}{}
		if cur.ParentID == nil {
			return false
		}
		cur = index[*cur.ParentID]
	}
	return false
}
