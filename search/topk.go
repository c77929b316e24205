package search

import (
	"container/heap"
	"sort"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/types"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/rtree"
)

// Query is a spatial-keyword query: a point, a keyword list, and
// optional per-keyword weights consumed by the cluster-enhanced
// ranking function.
type Query struct {
	Location geometry.Point
	Keywords []int64
	Weights  map[int64]float64
}

// Params carries the tree-wide mixing parameters that combinedScore
// needs but that don't belong on a single query.
type Params struct {
	Alpha       float64
	MaxD        float64
	NumClusters int
}

// Result is one emitted candidate: an object id and the cost it was
// emitted at.
type Result struct {
	ID   int64
	Cost Cost
}

type frontierKind int

const (
	kindIndex frontierKind = iota
	kindData
)

type frontierItem struct {
	kind   frontierKind
	nodeID types.PageID
	entry  rtree.Entry
	cost   Cost
	seq    int
}

type frontier []frontierItem

func (h frontier) Len() int { return len(h) }
func (h frontier) Less(i, j int) bool {
	if h[i].cost.Total != h[j].cost.Total {
		return h[i].cost.Total < h[j].cost.Total
	}
	return h[i].seq < h[j].seq
}
func (h frontier) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontier) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontier) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK runs the best-first branch-and-bound spatial-keyword search
// (lkt): seed the root at cost 0, expand interior nodes by consulting
// their inverted file for per-child textual scores, and emit leaf data
// entries as candidates once their cost reaches the heap's head. Ties
// at the k-th boundary are all reported, mirroring NearestNeighborQuery.
func TopK(tree *rtree.Tree, ivf invertedfile.InvertedFile, q Query, k int, params Params) ([]Result, error) {
	h := &frontier{}
	heap.Init(h)
	seq := 0
	heap.Push(h, frontierItem{kind: kindIndex, nodeID: tree.RootID(), seq: seq})
	seq++

	var results []Result
	var lastTotal float64

	for h.Len() > 0 {
		item := heap.Pop(h).(frontierItem)

		if item.kind == kindData {
			if len(results) >= k && item.cost.Total > lastTotal {
				break
			}
			results = append(results, Result{ID: item.entry.ID, Cost: item.cost})
			lastTotal = item.cost.Total
			continue
		}

		n, err := tree.ReadNode(item.nodeID)
		if err != nil {
			return nil, err
		}

		var scores map[int64]float64
		if params.NumClusters != 0 {
			scores, err = ivf.RankingSumClusterEnhance(item.nodeID, q.Keywords, q.Weights)
		} else {
			scores, err = ivf.RankingSum(item.nodeID, q.Keywords)
		}
		if err != nil {
			return nil, err
		}

		for _, e := range n.Entries() {
			var key int64
			if n.IsLeaf() {
				key = e.ID
			} else {
				key = int64(e.Child)
			}
			irscore, ok := scores[key]
			if !ok {
				continue
			}

			spatial := e.MBR.MinimumDistance(q.Location)
			cost := CombinedScore(spatial, irscore, params.Alpha, params.MaxD)

			if n.IsLeaf() {
				heap.Push(h, frontierItem{kind: kindData, entry: e, cost: cost, seq: seq})
			} else {
				heap.Push(h, frontierItem{kind: kindIndex, nodeID: e.Child, cost: cost, seq: seq})
			}
			seq++
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Cost.Total != results[j].Cost.Total {
			return results[i].Cost.Total < results[j].Cost.Total
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}
