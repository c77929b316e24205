package aggregate

import (
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/rtree"
	"github.com/lbs-irtree/irtree/search"
)

// Run executes every leg query via search.TopK (bounded by k per leg),
// keeps only objects every leg actually reached, folds their per-leg
// costs through the aggregator, and returns results ordered by total
// cost ascending with id ascending as tiebreak.
func Run(tree *rtree.Tree, ivf invertedfile.InvertedFile, aq *AggregateQuery, k int, params search.Params) ([]Result, error) {
	if len(aq.Queries) == 0 {
		return nil, nil
	}

	perLeg := make([]map[int64]search.Cost, len(aq.Queries))
	for i, q := range aq.Queries {
		sq := search.Query{Location: q.Location, Keywords: q.Keywords, Weights: q.Weights}
		legResults, err := search.TopK(tree, ivf, sq, k, params)
		if err != nil {
			return nil, err
		}
		m := make(map[int64]search.Cost, len(legResults))
		for _, r := range legResults {
			m[r.ID] = r.Cost
		}
		perLeg[i] = m
	}

	counts := make(map[int64]int)
	for _, m := range perLeg {
		for id := range m {
			counts[id]++
		}
	}

	var out []Result
	for id, seenInLegs := range counts {
		if seenInLegs != len(perLeg) {
			continue
		}
		costs := make([]search.Cost, len(perLeg))
		for i, m := range perLeg {
			costs[i] = m[id]
		}
		out = append(out, Result{ID: id, Cost: aq.Aggregator(costs)})
	}

	SortResults(out)
	return out, nil
}
