package rtree

import (
	"sort"

	"github.com/lbs-irtree/irtree/internal/types"
)

// forcedReinsert implements R*-tree forced reinsertion: remove the
// reinsertFactor*capacity entries farthest from n's MBR center, shrink
// n's MBR, write n back, propagate the shrink up, then reinsert each
// removed entry at n's level. overflowTable[n.level] has already been
// set by the caller to prevent this node from reinserting twice within
// the same top-level insertion.
func (t *Tree) forcedReinsert(n *Node, path []types.PageID, overflowTable []bool) error {
	center := n.mbr.Center()
	type distEntry struct {
		entry Entry
		dist  float64
	}
	ranked := make([]distEntry, len(n.entries))
	for i, e := range n.entries {
		ranked[i] = distEntry{entry: e, dist: e.MBR.Center().DistanceTo(center)}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].dist > ranked[j].dist })

	numReinsert := int(float64(n.capacity()) * t.cfg.ReinsertFactor)
	if numReinsert < 1 {
		numReinsert = 1
	}
	if numReinsert >= len(ranked) {
		numReinsert = len(ranked) - 1
	}

	toReinsert := make([]Entry, numReinsert)
	for i := 0; i < numReinsert; i++ {
		toReinsert[i] = ranked[i].entry
	}
	keep := make([]Entry, 0, len(ranked)-numReinsert)
	for i := numReinsert; i < len(ranked); i++ {
		keep = append(keep, ranked[i].entry)
	}

	n.entries = keep
	n.recomputeMBR()
	if err := t.writeNode(n); err != nil {
		return err
	}
	if err := t.adjustTree(n, path, overflowTable); err != nil {
		return err
	}

	for _, e := range toReinsert {
		if err := t.insertDataImpl(e, n.level, overflowTable); err != nil {
			return err
		}
	}
	return nil
}
