package rtree

import (
	"container/heap"
	"fmt"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/types"
)

// RangeQuery walks the tree depth-first via an explicit stack: at index
// nodes it pushes every child whose MBR intersects shape; at leaves it
// emits data entries satisfying kind (Intersection or Containment).
// Visitors receive every touched node and every matching data entry.
func (t *Tree) RangeQuery(kind QueryKind, shape geometry.Region, visitor Visitor) error {
	if shape.Dimension() != t.cfg.Dimension {
		return &ShapeError{Op: "RangeQuery", Msg: fmt.Sprintf("expected dimension %d, got %d", t.cfg.Dimension, shape.Dimension())}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	stack := []types.PageID{t.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := t.readNode(id)
		if err != nil {
			return err
		}
		visitor.VisitNode(n)

		if !n.IsLeaf() {
			for _, e := range n.entries {
				if e.MBR.Intersects(shape) {
					stack = append(stack, e.Child)
				}
			}
			continue
		}

		for _, e := range n.entries {
			var match bool
			if kind == Containment {
				match = shape.Contains(e.MBR)
			} else {
				match = e.MBR.Intersects(shape)
			}
			if match {
				visitor.VisitData(e)
				t.stats.QueryResults++
			}
		}
	}
	return nil
}

// PointLocationQuery finds every data entry whose MBR contains p.
func (t *Tree) PointLocationQuery(p geometry.Point, visitor Visitor) error {
	if p.Dimension() != t.cfg.Dimension {
		return &ShapeError{Op: "PointLocationQuery", Msg: fmt.Sprintf("expected dimension %d, got %d", t.cfg.Dimension, p.Dimension())}
	}
	return t.RangeQuery(Containment, geometry.Region{Low: p, High: p}, visitor)
}

// nnHeapItem is one entry in the k-NN priority queue: either an index
// node (unexpanded) or a leaf data entry (a candidate result).
type nnHeapItem struct {
	nodeID   types.PageID
	entry    Entry
	dist     float64
	isLeaf   bool
	entrySeq int // insertion order, used only to keep heap deterministic under equal dist
}

type nnHeap []nnHeapItem

func (h nnHeap) Len() int { return len(h) }
func (h nnHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].entrySeq < h[j].entrySeq
}
func (h nnHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nnHeap) Push(x any)   { *h = append(*h, x.(nnHeapItem)) }
func (h *nnHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NearestNeighborQuery performs a best-first k-NN search keyed by
// Euclidean distance from shape, using a real min-heap (replacing the
// source's sorted-list binary-insertion workaround). Report all ties:
// continue emitting past k while the next head's distance equals the
// k-th emitted distance.
func (t *Tree) NearestNeighborQuery(k int, shape geometry.Point, visitor Visitor) error {
	if shape.Dimension() != t.cfg.Dimension {
		return &ShapeError{Op: "NearestNeighborQuery", Msg: fmt.Sprintf("expected dimension %d, got %d", t.cfg.Dimension, shape.Dimension())}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	h := &nnHeap{}
	heap.Init(h)
	seq := 0
	heap.Push(h, nnHeapItem{nodeID: t.rootID, dist: 0, entrySeq: seq})
	seq++

	emitted := 0
	var lastDist float64

	for h.Len() > 0 {
		item := heap.Pop(h).(nnHeapItem)

		if item.isLeaf {
			if emitted >= k && item.dist > lastDist {
				break
			}
			visitor.VisitData(item.entry)
			t.stats.QueryResults++
			emitted++
			lastDist = item.dist
			continue
		}

		n, err := t.readNode(item.nodeID)
		if err != nil {
			return err
		}
		visitor.VisitNode(n)

		for _, e := range n.entries {
			d := e.MBR.MinimumDistance(shape)
			if n.IsLeaf() {
				heap.Push(h, nnHeapItem{entry: e, dist: d, isLeaf: true, entrySeq: seq})
			} else {
				heap.Push(h, nnHeapItem{nodeID: e.Child, dist: d, entrySeq: seq})
			}
			seq++
		}
	}
	return nil
}

// QueryStrategy drives a custom traversal: strategy receives the
// current node and returns the next node id to visit plus whether to
// continue.
func (t *Tree) QueryStrategy(strategy Strategy) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	id := t.rootID
	for {
		n, err := t.readNode(id)
		if err != nil {
			return err
		}
		next, cont := strategy(n)
		if !cont {
			return nil
		}
		id = next
	}
}
