// Package aggregate implements the aggregate-query façade: a set of
// weighted single-location queries folded into one combined MBR,
// keyword set, and per-candidate cost via a caller-supplied aggregator.
// Grounded on AggregateQuery.java.
package aggregate

import (
	"sort"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/search"
)

// Query is one weighted leg of an aggregate query.
type Query struct {
	Location geometry.Point
	Keywords []int64
	Weights  map[int64]float64
	Weight   float64
}

// Aggregator folds one cost per leg query into a single scalar cost
// for a candidate object.
type Aggregator func(costs []search.Cost) search.Cost

// AggregateQuery composes multiple single-location queries behind one
// combined MBR and keyword set.
type AggregateQuery struct {
	Queries    []Query
	Aggregator Aggregator
}

// New builds an AggregateQuery over queries, folded by aggregator.
func New(queries []Query, aggregator Aggregator) *AggregateQuery {
	return &AggregateQuery{Queries: queries, Aggregator: aggregator}
}

// GetWeights returns the ordered per-query weights.
func (a *AggregateQuery) GetWeights() []float64 {
	weights := make([]float64, len(a.Queries))
	for i, q := range a.Queries {
		weights[i] = q.Weight
	}
	return weights
}

// GetMBR returns the minimum bounding region covering every query's
// location.
func (a *AggregateQuery) GetMBR() geometry.Region {
	if len(a.Queries) == 0 {
		return geometry.Region{}
	}
	dim := a.Queries[0].Location.Dimension()
	low := make(geometry.Point, dim)
	high := make(geometry.Point, dim)
	for i := 0; i < dim; i++ {
		low[i] = a.Queries[0].Location[i]
		high[i] = a.Queries[0].Location[i]
	}
	for _, q := range a.Queries[1:] {
		for i := 0; i < dim; i++ {
			if q.Location[i] < low[i] {
				low[i] = q.Location[i]
			}
			if q.Location[i] > high[i] {
				high[i] = q.Location[i]
			}
		}
	}
	return geometry.Region{Low: low, High: high}
}

// GetCombinedKeywords returns the set-union of every query's keyword
// ids, in unspecified order.
func (a *AggregateQuery) GetCombinedKeywords() []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, q := range a.Queries {
		for _, kw := range q.Keywords {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

// Result is one aggregate candidate: an object id and its folded cost.
type Result struct {
	ID   int64
	Cost search.Cost
}

// SortResults orders results by total cost ascending, breaking ties by
// id ascending so output order is deterministic.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Cost.Total != results[j].Cost.Total {
			return results[i].Cost.Total < results[j].Cost.Total
		}
		return results[i].ID < results[j].ID
	})
}
