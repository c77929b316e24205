// Package search implements the best-first spatial-keyword top-k
// traversal (lkt) layered on top of an R-tree and its per-node inverted
// files. Grounded on RTree.java's priority-queue-based lkt, replacing
// the Java PriorityQueue with container/heap per the R-tree package's
// own nearest-neighbor search.
package search

// Cost is the composite score attached to every item on the
// best-first frontier: a spatial component, a textual component, and
// their weighted sum. Lower is better.
type Cost struct {
	Spatial float64
	Textual float64
	Total   float64
}

// CombinedScore folds a raw spatial distance and an inverted-file
// ranking score into a single Cost. spatialCost and textualCost are
// both clamped to be non-negative so a ranking score slightly above 1
// (possible with unnormalized weights) never produces a negative,
// bound-breaking total.
func CombinedScore(spatial, ir, alpha, maxD float64) Cost {
	spatialCost := spatial
	if maxD > 0 {
		spatialCost = spatial / maxD
	}
	if spatialCost < 0 {
		spatialCost = 0
	}
	textualCost := 1 - ir
	if textualCost < 0 {
		textualCost = 0
	}
	total := alpha*spatialCost + (1-alpha)*textualCost
	return Cost{Spatial: spatialCost, Textual: textualCost, Total: total}
}
