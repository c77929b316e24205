package rtree

import "github.com/lbs-irtree/irtree/internal/types"

// RootID returns the current root page id, for callers (such as the
// IR-tree builder) that need to walk the tree themselves.
func (t *Tree) RootID() types.PageID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootID
}

// ReadNode loads and returns the node at id. Exported for the IR-tree
// builder and top-k search, which walk the tree directly rather than
// through RangeQuery/NearestNeighborQuery.
func (t *Tree) ReadNode(id types.PageID) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.readNode(id)
}

// Dimension returns the tree's configured dimension.
func (t *Tree) Dimension() int {
	return t.cfg.Dimension
}
