// Package invertedfile defines the per-node posting list contract the
// IR-tree builder and top-k search consult, and ships a concrete
// in-memory implementation. Grounded on the summation idiom found in
// other_examples/Peweho-Research__reverse_index.go and
// other_examples/Adithya-Monish-Kumar-K-Distributed-Search-Analytics-Platform__posting.go.
package invertedfile

import "github.com/lbs-irtree/irtree/internal/types"

// Posting is one (keyword, weight) pair contributed by a document (or a
// child's pseudo-document) to a node's inverted file.
type Posting struct {
	Keyword int64
	Weight  float64
}

// WeightEntry is one element of a pseudo-document: a keyword and the
// summed weight it carries across the documents that fed a node's
// inverted file.
type WeightEntry struct {
	Keyword int64
	Weight  float64
}

// NoCluster marks a document as not belonging to any cluster, for
// AddDocument calls outside the cluster-enhanced build path.
const NoCluster = -1

// InvertedFile is the external collaborator contract the R-tree engine
// treats as opaque; only the dataflow contract
// (create/addDocument/store/load/rankingSum) matters.
type InvertedFile interface {
	// Create initializes an empty posting-list container for nodeID.
	Create(nodeID types.PageID) error

	// AddDocument accumulates one document's (or child pseudo-document's)
	// keyword weights into nodeID's posting lists, identified by docID
	// (a real document id at leaf level, a child node id at index
	// level). clusterID is NoCluster outside the cluster-enhanced build.
	AddDocument(nodeID types.PageID, docID int64, postings []Posting, clusterID int) error

	// Store aggregates nodeID's posting lists into a single
	// pseudo-document: a weight vector summarizing the keyword
	// distribution under nodeID's subtree.
	Store(nodeID types.PageID) ([]WeightEntry, error)

	// StoreClusterEnhance aggregates nodeID's posting lists per cluster,
	// returning one pseudo-document per cluster.
	StoreClusterEnhance(nodeID types.PageID) ([][]WeightEntry, error)

	// Load returns nodeID's raw posting lists, keyed by keyword. The
	// Keyword field of each returned Posting holds the document (or
	// child) id that contributed the weight, not the keyword.
	Load(nodeID types.PageID) (map[int64][]Posting, error)

	// RankingSum sums the weights of each keyword in keywords across
	// every document indexed at nodeID, returning docID -> score.
	RankingSum(nodeID types.PageID, keywords []int64) (map[int64]float64, error)

	// RankingSumClusterEnhance is RankingSum aware of the cluster
	// dimension: each keyword's contribution is additionally scaled by
	// keywordWeights[keyword] (defaulting to 1 when absent).
	RankingSumClusterEnhance(nodeID types.PageID, keywords []int64, keywordWeights map[int64]float64) (map[int64]float64, error)
}
