package rtree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/types"
)

// Entry is a member of a node: an MBR plus either a child page id (index
// entries) or an external data id and opaque payload (leaf entries).
// Grounded on lib/tree/data.go's Entry, generalized to parametric
// dimension and an explicit leaf/index discriminant carried by the
// owning node rather than the entry itself.
type Entry struct {
	MBR     geometry.Region
	Child   types.PageID // index entries: child node page id
	ID      int64        // leaf entries: external data id
	Payload []byte       // leaf entries: opaque application payload
}

func (e Entry) clone() Entry {
	return Entry{MBR: e.MBR.Clone(), Child: e.Child, ID: e.ID, Payload: append([]byte(nil), e.Payload...)}
}

// nodeKind tags the persistent node shape: leaf vs. index.
type nodeKind byte

const (
	persistentLeaf  nodeKind = 0
	persistentIndex nodeKind = 1
)

// Node is either a Leaf (level == 0) or an Index (level > 0), holding up
// to capacity entries. mbr is always the union of entry MBRs after any
// mutation.
type Node struct {
	id      types.PageID
	level   int
	entries []Entry
	mbr     geometry.Region
	tree    *Tree
}

func newNode(tree *Tree, level int, dimension int) *Node {
	return &Node{
		id:    types.NewPage,
		level: level,
		mbr:   geometry.Infinite(dimension),
		tree:  tree,
	}
}

func (n *Node) ID() types.PageID { return n.id }
func (n *Node) Level() int       { return n.level }
func (n *Node) IsLeaf() bool     { return n.level == 0 }
func (n *Node) MBR() geometry.Region { return n.mbr }

func (n *Node) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	copy(out, n.entries)
	return out
}

func (n *Node) entryCount() int { return len(n.entries) }

// insertEntry appends e and recomputes the node MBR; capacity
// enforcement is the caller's responsibility.
func (n *Node) insertEntry(e Entry) {
	n.entries = append(n.entries, e)
	n.mbr = n.mbr.Union(e.MBR)
}

// deleteEntryAt compacts entries, removing the one at idx, and
// recomputes the node MBR from the survivors.
func (n *Node) deleteEntryAt(idx int) {
	n.entries = append(n.entries[:idx], n.entries[idx+1:]...)
	n.recomputeMBR()
}

func (n *Node) recomputeMBR() {
	dim := n.tree.cfg.Dimension
	mbr := geometry.Infinite(dim)
	for _, e := range n.entries {
		mbr = mbr.Union(e.MBR)
	}
	n.mbr = mbr
}

func (n *Node) capacity() int {
	return n.tree.cfg.capacityForLevel(n.level)
}

func (n *Node) minEntries() int {
	return n.tree.cfg.minEntries(n.capacity())
}

// serialize produces the opaque byte form stored by the page store.
// Layout: kind, level, entry count, dimension, then per entry
// (low..., high..., child, id, payload length + bytes).
func (n *Node) serialize() []byte {
	var buf bytes.Buffer

	kind := persistentIndex
	if n.IsLeaf() {
		kind = persistentLeaf
	}
	buf.WriteByte(byte(kind))
	binary.Write(&buf, binary.LittleEndian, int32(n.level))
	binary.Write(&buf, binary.LittleEndian, int32(len(n.entries)))
	dim := n.tree.cfg.Dimension
	binary.Write(&buf, binary.LittleEndian, int32(dim))

	for _, e := range n.entries {
		for _, v := range e.MBR.Low {
			binary.Write(&buf, binary.LittleEndian, v)
		}
		for _, v := range e.MBR.High {
			binary.Write(&buf, binary.LittleEndian, v)
		}
		binary.Write(&buf, binary.LittleEndian, int64(e.Child))
		binary.Write(&buf, binary.LittleEndian, e.ID)
		binary.Write(&buf, binary.LittleEndian, int32(len(e.Payload)))
		buf.Write(e.Payload)
	}
	return buf.Bytes()
}

// deserializeNode reconstructs a Node from its serialized bytes.
// Round-trip is total and stable (see TestNodeSerializeRoundTrip).
func deserializeNode(tree *Tree, id types.PageID, data []byte) (*Node, error) {
	r := bytes.NewReader(data)

	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("rtree: deserialize node %d: %w", id, err)
	}
	kind := nodeKind(kindByte)

	var level, count, dim int32
	if err := binary.Read(r, binary.LittleEndian, &level); err != nil {
		return nil, fmt.Errorf("rtree: deserialize node %d: %w", id, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("rtree: deserialize node %d: %w", id, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("rtree: deserialize node %d: %w", id, err)
	}

	n := &Node{id: id, level: int(level), tree: tree, mbr: geometry.Infinite(int(dim))}
	if (kind == persistentLeaf) != (level == 0) {
		return nil, fmt.Errorf("rtree: deserialize node %d: kind/level mismatch", id)
	}

	n.entries = make([]Entry, 0, count)
	for i := int32(0); i < count; i++ {
		low := make(geometry.Point, dim)
		high := make(geometry.Point, dim)
		for d := int32(0); d < dim; d++ {
			if err := binary.Read(r, binary.LittleEndian, &low[d]); err != nil {
				return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
			}
		}
		for d := int32(0); d < dim; d++ {
			if err := binary.Read(r, binary.LittleEndian, &high[d]); err != nil {
				return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
			}
		}
		var child, eid int64
		if err := binary.Read(r, binary.LittleEndian, &child); err != nil {
			return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &eid); err != nil {
			return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
		}
		var payloadLen int32
		if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
			return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
		}
		payload := make([]byte, payloadLen)
		if payloadLen > 0 {
			if _, err := r.Read(payload); err != nil {
				return nil, fmt.Errorf("rtree: deserialize node %d entry %d: %w", id, i, err)
			}
		}
		e := Entry{MBR: geometry.Region{Low: low, High: high}, Child: types.PageID(child), ID: eid, Payload: payload}
		n.entries = append(n.entries, e)
		n.mbr = n.mbr.Union(e.MBR)
	}
	return n, nil
}
