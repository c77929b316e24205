// Package metrics exposes Prometheus counters and gauges bound to
// rtree.Stats, following the CounterVec/GaugeVec/RegisterXMetrics
// pattern of kailas-cloud-vecdex's internal/metrics package.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irtree",
			Name:      "nodes_total",
			Help:      "Current number of nodes in the tree",
		},
		[]string{"variant"},
	)

	DataTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irtree",
			Name:      "data_total",
			Help:      "Current number of indexed data entries",
		},
		[]string{"variant"},
	)

	TreeHeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irtree",
			Name:      "tree_height",
			Help:      "Current tree height",
		},
		[]string{"variant"},
	)

	PageReadsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irtree",
			Name:      "page_reads_total",
			Help:      "Cumulative page store reads",
		},
		[]string{"variant"},
	)

	PageWritesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "irtree",
			Name:      "page_writes_total",
			Help:      "Cumulative page store writes",
		},
		[]string{"variant"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irtree",
			Name:      "query_duration_seconds",
			Help:      "Query latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	QueryResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irtree",
			Name:      "query_results_total",
			Help:      "Total results returned across all queries",
		},
		[]string{"operation"},
	)
)

// Observe records a snapshot of tree statistics under the given variant
// label. Takes plain fields rather than an rtree.Stats so this package
// never needs to import rtree.
func Observe(variant string, nodes int, data int32, height int, reads, writes int64) {
	NodesTotal.WithLabelValues(variant).Set(float64(nodes))
	DataTotal.WithLabelValues(variant).Set(float64(data))
	TreeHeight.WithLabelValues(variant).Set(float64(height))
	PageReadsTotal.WithLabelValues(variant).Set(float64(reads))
	PageWritesTotal.WithLabelValues(variant).Set(float64(writes))
}

var registered bool

// Register registers every irtree metric with prometheus.DefaultRegisterer.
// Must be called once, from cmd/irtree.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		NodesTotal,
		DataTotal,
		TreeHeight,
		PageReadsTotal,
		PageWritesTotal,
		QueryDuration,
		QueryResultsTotal,
	)
	registered = true
}
