package aggregate

import "github.com/lbs-irtree/irtree/search"

// Sum folds per-query costs by addition.
func Sum(costs []search.Cost) search.Cost {
	var out search.Cost
	for _, c := range costs {
		out.Spatial += c.Spatial
		out.Textual += c.Textual
		out.Total += c.Total
	}
	return out
}

// Mean folds per-query costs by their arithmetic mean.
func Mean(costs []search.Cost) search.Cost {
	if len(costs) == 0 {
		return search.Cost{}
	}
	out := Sum(costs)
	n := float64(len(costs))
	out.Spatial /= n
	out.Textual /= n
	out.Total /= n
	return out
}

// WeightedSum builds an Aggregator that scales each leg query's cost
// by its configured weight before summing.
func WeightedSum(weights []float64) Aggregator {
	return func(costs []search.Cost) search.Cost {
		var out search.Cost
		for i, c := range costs {
			w := 1.0
			if i < len(weights) {
				w = weights[i]
			}
			out.Spatial += w * c.Spatial
			out.Textual += w * c.Textual
			out.Total += w * c.Total
		}
		return out
	}
}
