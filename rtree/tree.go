// Package rtree implements the R/R*-tree storage engine: insert,
// delete, split, forced reinsertion, chooseSubtree, and range/k-NN
// traversal over a pluggable page store. Grounded on
// lib/index/rtree.go and lib/index/rtreed.go, generalized to
// parametric dimension and extended with the R* split/reinsert variant
// from RTree.java's Index class.
package rtree

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/internal/types"
)

// Tree is the R-tree engine: a rootID, a headerID, statistics, and the
// configured PropertySet, guarded by a single reader/writer lock.
// Grounded on Rtree.latch in lib/index/rtree.go.
type Tree struct {
	cfg      Config
	store    storage.PageStore
	mu       sync.RWMutex
	logger   *zap.SugaredLogger
	rootID   types.PageID
	headerID types.PageID
	stats    Stats

	writeNodeCommands  []NodeCommand
	readNodeCommands   []NodeCommand
	deleteNodeCommands []NodeCommand
}

// New opens or creates a tree. When cfg.IndexIdentifier is set, the
// header page is loaded and immutable properties are taken from it;
// otherwise a fresh tree (a single empty leaf root) is created.
func New(cfg Config, store storage.PageStore, logger *zap.SugaredLogger) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	t := &Tree{cfg: cfg, store: store, logger: logger, headerID: types.NewPage, stats: newStats()}

	if cfg.IndexIdentifier != nil {
		t.headerID = *cfg.IndexIdentifier
		if err := t.loadHeader(); err != nil {
			return nil, err
		}
		return t, nil
	}

	root := newNode(t, 0, cfg.Dimension)
	if err := t.writeNode(root); err != nil {
		return nil, err
	}
	t.rootID = root.id
	t.stats.nodeCreated(0)
	t.stats.TreeHeight = 1
	return t, nil
}

// Clone returns a shared-handle view of t: same lock, same storage, same
// root. Mutations through either handle are visible to both. Grounded
// on RTree.java's RTree(RTree) copy constructor, modeled here as an
// explicit alias rather than a copy.
func (t *Tree) Clone() *Tree {
	return t
}

func (t *Tree) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats.clone()
}

func (t *Tree) Config() Config {
	return t.cfg
}

// --- node IO -------------------------------------------------------

func (t *Tree) readNode(id types.PageID) (*Node, error) {
	data, err := t.store.LoadNode(id)
	if err != nil {
		return nil, &StorageError{Op: "readNode", Err: err}
	}
	n, err := deserializeNode(t, id, data)
	if err != nil {
		return nil, &StorageError{Op: "readNode", Err: err}
	}
	t.stats.Reads++
	for _, cmd := range t.readNodeCommands {
		cmd(id)
	}
	return n, nil
}

func (t *Tree) writeNode(n *Node) error {
	data := n.serialize()
	id, err := t.store.StoreNode(n.id, data)
	if err != nil {
		return &StorageError{Op: "writeNode", Err: err}
	}
	n.id = id
	t.stats.Writes++
	for _, cmd := range t.writeNodeCommands {
		cmd(id)
	}
	return nil
}

func (t *Tree) deleteNode(n *Node) error {
	if err := t.store.DeleteNode(n.id); err != nil {
		return &StorageError{Op: "deleteNode", Err: err}
	}
	t.stats.nodeRemoved(n.level)
	for _, cmd := range t.deleteNodeCommands {
		cmd(n.id)
	}
	return nil
}

// loadHeader reconstructs root/height/stats from the header page. The
// source's flush/storeHeader/loadHeader were commented out, leaving
// metadata persistence incomplete; this implementation stores root,
// height, and data count in a single fixed record instead.
func (t *Tree) loadHeader() error {
	data, err := t.store.LoadNode(t.headerID)
	if err != nil {
		return &StorageError{Op: "loadHeader", Err: err}
	}
	if len(data) < 16 {
		return &StorageError{Op: "loadHeader", Err: fmt.Errorf("header page %d too short", t.headerID)}
	}
	root := int64(0)
	for i := 0; i < 8; i++ {
		root |= int64(data[i]) << (8 * i)
	}
	height := int32(0)
	for i := 0; i < 4; i++ {
		height |= int32(data[8+i]) << (8 * i)
	}
	size := int32(0)
	for i := 0; i < 4; i++ {
		size |= int32(data[12+i]) << (8 * i)
	}
	t.rootID = types.PageID(root)
	t.stats.TreeHeight = int(height)
	t.stats.DataCount = size
	return nil
}

func (t *Tree) storeHeader() error {
	data := make([]byte, 16)
	root := int64(t.rootID)
	for i := 0; i < 8; i++ {
		data[i] = byte(root >> (8 * i))
	}
	height := int32(t.stats.TreeHeight)
	for i := 0; i < 4; i++ {
		data[8+i] = byte(height >> (8 * i))
	}
	size := t.stats.DataCount
	for i := 0; i < 4; i++ {
		data[12+i] = byte(size >> (8 * i))
	}
	id, err := t.store.StoreNode(t.headerID, data)
	if err != nil {
		return &StorageError{Op: "storeHeader", Err: err}
	}
	t.headerID = id
	return nil
}

// --- insertion -------------------------------------------------------

// InsertData inserts (mbr, id, payload) as a new leaf entry.
func (t *Tree) InsertData(mbr geometry.Region, id int64, payload []byte) error {
	if mbr.Dimension() != t.cfg.Dimension {
		return &ShapeError{Op: "InsertData", Msg: fmt.Sprintf("expected dimension %d, got %d", t.cfg.Dimension, mbr.Dimension())}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	overflowTable := make([]bool, t.stats.TreeHeight+1)
	entry := Entry{MBR: mbr.Clone(), Child: types.NewPage, ID: id, Payload: payload}
	if err := t.insertDataImpl(entry, 0, overflowTable); err != nil {
		return err
	}
	t.stats.DataCount++
	return nil
}

// insertDataImpl inserts entry at targetLevel (0 for new data, >0 only
// when reinserting a detached index subtree), using the per-level
// overflowTable to gate R* forced reinsertion.
func (t *Tree) insertDataImpl(entry Entry, targetLevel int, overflowTable []bool) error {
	var path []types.PageID
	leaf, err := t.chooseSubtree(entry.MBR, targetLevel, &path)
	if err != nil {
		return err
	}

	leaf.insertEntry(entry)

	if leaf.entryCount() <= leaf.capacity() {
		if err := t.writeNode(leaf); err != nil {
			return err
		}
		return t.adjustTree(leaf, path, overflowTable)
	}

	return t.handleOverflow(leaf, path, overflowTable)
}

// chooseSubtree descends from the root to targetLevel, at each index
// node picking the child requiring least MBR enlargement, breaking
// ties by smaller area (and, for R*, by smaller overlap at the
// leaf-parent level). Every traversed node id is appended to path.
func (t *Tree) chooseSubtree(mbr geometry.Region, targetLevel int, path *[]types.PageID) (*Node, error) {
	id := t.rootID
	for {
		n, err := t.readNode(id)
		if err != nil {
			return nil, err
		}
		*path = append(*path, n.id)

		if n.level == targetLevel {
			return n, nil
		}

		childIdx := t.pickChild(n, mbr)
		id = n.entries[childIdx].Child
	}
}

func (t *Tree) pickChild(n *Node, mbr geometry.Region) int {
	useOverlap := t.cfg.TreeVariant == Rstar && n.level == 1
	best := -1
	bestEnlargement := 0.0
	bestArea := 0.0
	bestOverlap := 0.0

	candidates := len(n.entries)
	if useOverlap && candidates > t.cfg.NearMinimumOverlapFactor {
		candidates = t.cfg.NearMinimumOverlapFactor
	}

	ranked := make([]rankedChild, len(n.entries))
	for i, e := range n.entries {
		ranked[i] = rankedChild{idx: i, enlargement: e.MBR.CombinedArea(mbr) - e.MBR.Area()}
	}
	if useOverlap {
		sortByEnlargement(ranked)
	}

	for rank := 0; rank < len(ranked); rank++ {
		i := ranked[rank].idx
		e := n.entries[i]
		enlargement := ranked[rank].enlargement
		area := e.MBR.Area()

		considerOverlap := useOverlap && rank < candidates
		overlap := 0.0
		if considerOverlap {
			combined := e.MBR.Union(mbr)
			for j, other := range n.entries {
				if j == i {
					continue
				}
				overlap += combined.Overlap(other.MBR)
			}
		}

		if best == -1 {
			best, bestEnlargement, bestArea, bestOverlap = i, enlargement, area, overlap
			continue
		}
		if considerOverlap {
			if overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
				best, bestEnlargement, bestArea, bestOverlap = i, enlargement, area, overlap
			}
		} else if enlargement < bestEnlargement || (enlargement == bestEnlargement && area < bestArea) {
			best, bestEnlargement, bestArea, bestOverlap = i, enlargement, area, overlap
		}
	}
	return best
}

type rankedChild struct {
	idx         int
	enlargement float64
}

func sortByEnlargement(s []rankedChild) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].enlargement < s[j-1].enlargement; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// adjustTree propagates MBR expansion from leaf up to the root along
// path.
func (t *Tree) adjustTree(leaf *Node, path []types.PageID, overflowTable []bool) error {
	child := leaf
	for i := len(path) - 2; i >= 0; i-- {
		parent, err := t.readNode(path[i])
		if err != nil {
			return err
		}
		for idx := range parent.entries {
			if parent.entries[idx].Child == child.id {
				parent.entries[idx].MBR = child.mbr.Clone()
				break
			}
		}
		parent.recomputeMBR()
		if err := t.writeNode(parent); err != nil {
			return err
		}
		child = parent
	}
	return nil
}

func (t *Tree) handleOverflow(n *Node, path []types.PageID, overflowTable []bool) error {
	isRoot := len(path) == 1

	if t.cfg.TreeVariant == Rstar && !isRoot && n.level < len(overflowTable) && !overflowTable[n.level] {
		overflowTable[n.level] = true
		return t.forcedReinsert(n, path, overflowTable)
	}

	n1, n2, err := t.split(n)
	if err != nil {
		return err
	}
	if err := t.writeNode(n1); err != nil {
		return err
	}
	if err := t.writeNode(n2); err != nil {
		return err
	}
	t.stats.nodeCreated(n2.level)

	if isRoot {
		return t.growRoot(n1, n2)
	}

	parentID := path[len(path)-2]
	parent, err := t.readNode(parentID)
	if err != nil {
		return err
	}
	for idx := range parent.entries {
		if parent.entries[idx].Child == n1.id || parent.entries[idx].Child == n.id {
			parent.entries[idx].Child = n1.id
			parent.entries[idx].MBR = n1.mbr.Clone()
			break
		}
	}
	parent.insertEntry(Entry{MBR: n2.mbr.Clone(), Child: n2.id})

	if parent.entryCount() <= parent.capacity() {
		if err := t.writeNode(parent); err != nil {
			return err
		}
		return t.adjustTree(parent, path[:len(path)-1], overflowTable)
	}
	return t.handleOverflow(parent, path[:len(path)-1], overflowTable)
}

// growRoot writes a new root over n1/n2, incrementing tree height.
func (t *Tree) growRoot(n1, n2 *Node) error {
	newRoot := newNode(t, n1.level+1, t.cfg.Dimension)
	newRoot.insertEntry(Entry{MBR: n1.mbr.Clone(), Child: n1.id})
	newRoot.insertEntry(Entry{MBR: n2.mbr.Clone(), Child: n2.id})
	if err := t.writeNode(newRoot); err != nil {
		return err
	}
	t.stats.nodeCreated(newRoot.level)
	t.rootID = newRoot.id
	t.stats.TreeHeight++
	return nil
}

// --- deletion --------------------------------------------------------

// DeleteData removes the leaf entry matching (mbr, id). Returns
// storage.ErrInvalidPage-wrapped errors only for genuine storage
// faults; a missing (mbr, id) pair is reported via ok=false.
func (t *Tree) DeleteData(mbr geometry.Region, id int64) (bool, error) {
	if mbr.Dimension() != t.cfg.Dimension {
		return false, &ShapeError{Op: "DeleteData", Msg: fmt.Sprintf("expected dimension %d, got %d", t.cfg.Dimension, mbr.Dimension())}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var path []types.PageID
	leaf, slot, err := t.findLeaf(t.rootID, mbr, id, &path)
	if err != nil {
		return false, err
	}
	if leaf == nil {
		return false, nil
	}

	leaf.deleteEntryAt(slot)
	if err := t.writeNode(leaf); err != nil {
		return false, err
	}

	if err := t.condenseTree(leaf, path); err != nil {
		return false, err
	}
	t.stats.DataCount--
	return true, nil
}

// findLeaf descends every child whose MBR contains mbr, depth-first,
// restoring the traversed path, until it finds the leaf entry matching
// (mbr, id).
func (t *Tree) findLeaf(nodeID types.PageID, mbr geometry.Region, id int64, path *[]types.PageID) (*Node, int, error) {
	n, err := t.readNode(nodeID)
	if err != nil {
		return nil, 0, err
	}
	*path = append(*path, n.id)

	if n.IsLeaf() {
		for i, e := range n.entries {
			if e.ID == id && e.MBR.Equal(mbr) {
				return n, i, nil
			}
		}
		*path = (*path)[:len(*path)-1]
		return nil, 0, nil
	}

	for _, e := range n.entries {
		if !e.MBR.Contains(mbr) {
			continue
		}
		saved := append([]types.PageID(nil), *path...)
		found, slot, err := t.findLeaf(e.Child, mbr, id, path)
		if err != nil {
			return nil, 0, err
		}
		if found != nil {
			return found, slot, nil
		}
		*path = saved
	}
	*path = (*path)[:len(*path)-1]
	return nil, 0, nil
}

// condenseTree handles underflow after a delete: nodes below minEntries
// are detached and their surviving entries queued for reinsertion at
// their original level; ancestor MBRs shrink along the way.
func (t *Tree) condenseTree(leaf *Node, path []types.PageID) error {
	type orphan struct {
		entry Entry
		level int
	}
	var orphans []orphan

	child := leaf
	for i := len(path) - 2; i >= 0; i-- {
		parent, err := t.readNode(path[i])
		if err != nil {
			return err
		}

		if child.entryCount() < child.minEntries() {
			for idx := range parent.entries {
				if parent.entries[idx].Child == child.id {
					parent.deleteEntryAt(idx)
					break
				}
			}
			for _, e := range child.entries {
				orphans = append(orphans, orphan{entry: e, level: child.level})
			}
			if err := t.deleteNode(child); err != nil {
				return err
			}
		} else {
			for idx := range parent.entries {
				if parent.entries[idx].Child == child.id {
					parent.entries[idx].MBR = child.mbr.Clone()
					break
				}
			}
			parent.recomputeMBR()
		}

		if err := t.writeNode(parent); err != nil {
			return err
		}
		child = parent
	}

	// Collapse a root with a single child into its child.
	if child.id == t.rootID && child.entryCount() == 1 && !child.IsLeaf() {
		onlyChildID := child.entries[0].Child
		only, err := t.readNode(onlyChildID)
		if err != nil {
			return err
		}
		t.rootID = only.id
		t.stats.TreeHeight--
		if err := t.deleteNode(child); err != nil {
			return err
		}
	}

	for _, o := range orphans {
		overflowTable := make([]bool, t.stats.TreeHeight+1)
		if err := t.insertDataImpl(o.entry, o.level, overflowTable); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes tree metadata by writing the header record (root id,
// height, data count) through storeHeader.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.storeHeader()
}
