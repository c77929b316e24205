package rtree

import (
	"sort"

	"github.com/lbs-irtree/irtree/geometry"
)

// split dispatches to the configured variant's overflow-handling split
// policy, producing two nodes from n's capacity+1 entries. n1 reuses
// n's id (so parent entries pointing at it stay a valid reference
// after MBR update); n2 is freshly allocated.
func (t *Tree) split(n *Node) (*Node, *Node, error) {
	switch t.cfg.TreeVariant {
	case Linear:
		return t.linearSplit(n)
	case Rstar:
		return t.rstarSplit(n)
	default:
		return t.quadraticSplit(n)
	}
}

// quadraticSplit picks the seed pair maximizing wasted area, then
// greedily assigns remaining entries to whichever group needs least
// enlargement, respecting fill factor. Grounded on
// lib/index/rtreed.go's splitNode/pickSeeds/pickNext.
func (t *Tree) quadraticSplit(n *Node) (*Node, *Node, error) {
	entries := n.entries
	s1, s2 := t.pickSeedsQuadratic(entries)
	return t.distribute(n, entries, s1, s2)
}

func (t *Tree) pickSeedsQuadratic(entries []Entry) (int, int) {
	bestWaste := -1.0
	s1, s2 := 0, 1
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			combined := entries[i].MBR.Union(entries[j].MBR)
			waste := combined.Area() - entries[i].MBR.Area() - entries[j].MBR.Area()
			if waste > bestWaste {
				bestWaste = waste
				s1, s2 = i, j
			}
		}
	}
	return s1, s2
}

// linearSplit picks the pair most separated on any single axis,
// normalized by that axis's overall width, per the classic Guttman
// linear-split heuristic (the retrieved source doesn't carry this
// variant explicitly; built by generalizing the quadratic assignment
// loop with linear seed selection).
func (t *Tree) linearSplit(n *Node) (*Node, *Node, error) {
	entries := n.entries
	s1, s2 := t.pickSeedsLinear(entries)
	return t.distribute(n, entries, s1, s2)
}

func (t *Tree) pickSeedsLinear(entries []Entry) (int, int) {
	dim := t.cfg.Dimension
	bestNorm := -1.0
	s1, s2 := 0, 1
	for d := 0; d < dim; d++ {
		lowMax, lowMaxIdx := entries[0].MBR.Low[d], 0
		highMin, highMinIdx := entries[0].MBR.High[d], 0
		axisLow, axisHigh := entries[0].MBR.Low[d], entries[0].MBR.High[d]
		for i, e := range entries {
			if e.MBR.Low[d] > lowMax {
				lowMax, lowMaxIdx = e.MBR.Low[d], i
			}
			if e.MBR.High[d] < highMin {
				highMin, highMinIdx = e.MBR.High[d], i
			}
			if e.MBR.Low[d] < axisLow {
				axisLow = e.MBR.Low[d]
			}
			if e.MBR.High[d] > axisHigh {
				axisHigh = e.MBR.High[d]
			}
		}
		width := axisHigh - axisLow
		if width <= 0 || lowMaxIdx == highMinIdx {
			continue
		}
		separation := (lowMax - highMin) / width
		if separation > bestNorm {
			bestNorm = separation
			s1, s2 = highMinIdx, lowMaxIdx
		}
	}
	return s1, s2
}

// distribute assigns all entries except the two seeds greedily: at each
// step, the entry whose preference (difference in enlargement between
// the two groups) is strongest goes to the group requiring less
// enlargement, breaking ties by smaller resulting area then by fewer
// entries so far. Fill factor is enforced by closing out a group once
// the other must take all remaining entries to meet its minimum.
func (t *Tree) distribute(n *Node, entries []Entry, s1, s2 int) (*Node, *Node, error) {
	g1 := newNode(t, n.level, t.cfg.Dimension)
	g1.id = n.id
	g2 := newNode(t, n.level, t.cfg.Dimension)

	g1.insertEntry(entries[s1])
	g2.insertEntry(entries[s2])

	remaining := make([]int, 0, len(entries)-2)
	for i := range entries {
		if i != s1 && i != s2 {
			remaining = append(remaining, i)
		}
	}

	minEntries := n.minEntries()

	for len(remaining) > 0 {
		if g1.entryCount()+len(remaining) <= minEntries {
			for _, idx := range remaining {
				g1.insertEntry(entries[idx])
			}
			remaining = nil
			break
		}
		if g2.entryCount()+len(remaining) <= minEntries {
			for _, idx := range remaining {
				g2.insertEntry(entries[idx])
			}
			remaining = nil
			break
		}

		bestPos := 0
		bestPref := -1.0
		bestGroup := 0
		for pos, idx := range remaining {
			e := entries[idx]
			d1 := e.MBR.CombinedArea(g1.mbr) - g1.mbr.Area()
			d2 := e.MBR.CombinedArea(g2.mbr) - g2.mbr.Area()
			pref := d1 - d2
			if pref < 0 {
				pref = -pref
			}
			if pref > bestPref {
				bestPref = pref
				bestPos = pos
				switch {
				case d1 < d2:
					bestGroup = 1
				case d2 < d1:
					bestGroup = 2
				case g1.mbr.Area() < g2.mbr.Area():
					bestGroup = 1
				case g2.mbr.Area() < g1.mbr.Area():
					bestGroup = 2
				case g1.entryCount() <= g2.entryCount():
					bestGroup = 1
				default:
					bestGroup = 2
				}
			}
		}

		idx := remaining[bestPos]
		if bestGroup == 1 {
			g1.insertEntry(entries[idx])
		} else {
			g2.insertEntry(entries[idx])
		}
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return g1, g2, nil
}

// rstarSplit chooses the axis minimizing total margin sum across all
// valid distributions, then the distribution on that axis minimizing
// overlap (ties broken by smaller area). Grounded on RTree.java's
// Index-class R* split algorithm structure.
func (t *Tree) rstarSplit(n *Node) (*Node, *Node, error) {
	dim := t.cfg.Dimension
	entries := append([]Entry(nil), n.entries...)
	m := int(float64(n.capacity()) * t.cfg.SplitDistributionFactor)
	if m < 1 {
		m = 1
	}
	if minFill := n.minEntries(); m < minFill {
		m = minFill
	}
	if 2*m > len(entries) {
		m = len(entries) / 2
		if m < 1 {
			m = 1
		}
	}

	type distribution struct {
		group1 []int
		group2 []int
	}

	bestAxis := -1
	bestMarginSum := 0.0
	var axisDistributions [][]distribution

	for d := 0; d < dim; d++ {
		sortedLow := sortIndices(entries, d, true)
		sortedHigh := sortIndices(entries, d, false)

		var dists []distribution
		marginSum := 0.0
		for _, order := range [][]int{sortedLow, sortedHigh} {
			for k := 1; k <= len(entries)-2*m+1; k++ {
				split := m - 1 + k
				g1 := order[:split]
				g2 := order[split:]
				r1 := regionOf(entries, g1)
				r2 := regionOf(entries, g2)
				marginSum += r1.Margin() + r2.Margin()
				dists = append(dists, distribution{group1: g1, group2: g2})
			}
		}

		if bestAxis == -1 || marginSum < bestMarginSum {
			bestAxis = d
			bestMarginSum = marginSum
			axisDistributions = [][]distribution{dists}
		}
	}

	best := axisDistributions[0][0]
	bestOverlap := -1.0
	bestArea := 0.0
	for _, dist := range axisDistributions[0] {
		r1 := regionOf(entries, dist.group1)
		r2 := regionOf(entries, dist.group2)
		overlap := r1.Overlap(r2)
		area := r1.Area() + r2.Area()
		if bestOverlap < 0 || overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
			best = dist
			bestOverlap = overlap
			bestArea = area
		}
	}

	g1 := newNode(t, n.level, dim)
	g1.id = n.id
	g2 := newNode(t, n.level, dim)
	for _, idx := range best.group1 {
		g1.insertEntry(entries[idx])
	}
	for _, idx := range best.group2 {
		g2.insertEntry(entries[idx])
	}
	return g1, g2, nil
}

func sortIndices(entries []Entry, axis int, byLow bool) []int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if byLow {
			return entries[idx[a]].MBR.Low[axis] < entries[idx[b]].MBR.Low[axis]
		}
		return entries[idx[a]].MBR.High[axis] < entries[idx[b]].MBR.High[axis]
	})
	return idx
}

func regionOf(entries []Entry, idxs []int) geometry.Region {
	r := entries[idxs[0]].MBR
	for _, i := range idxs[1:] {
		r = r.Union(entries[i].MBR)
	}
	return r
}
