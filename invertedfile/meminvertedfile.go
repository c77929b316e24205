package invertedfile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lbs-irtree/irtree/internal/types"
)

// MemInvertedFile is an in-memory, sum-of-weights InvertedFile
// implementation: each node owns a docID -> []Posting map, and
// pseudo-documents are produced by summing weights per keyword across
// every document added to the node.
type MemInvertedFile struct {
	mu    sync.RWMutex
	nodes map[types.PageID]*nodeIndex
}

type nodeIndex struct {
	documents map[int64][]Posting
	clusters  map[int64]int // docID -> clusterID
}

func NewMemInvertedFile() *MemInvertedFile {
	return &MemInvertedFile{nodes: make(map[types.PageID]*nodeIndex)}
}

func (m *MemInvertedFile) Create(nodeID types.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[nodeID] = &nodeIndex{documents: make(map[int64][]Posting), clusters: make(map[int64]int)}
	return nil
}

func (m *MemInvertedFile) AddDocument(nodeID types.PageID, docID int64, postings []Posting, clusterID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		idx = &nodeIndex{documents: make(map[int64][]Posting), clusters: make(map[int64]int)}
		m.nodes[nodeID] = idx
	}
	idx.documents[docID] = append([]Posting(nil), postings...)
	if clusterID != NoCluster {
		idx.clusters[docID] = clusterID
	}
	return nil
}

func (m *MemInvertedFile) Store(nodeID types.PageID) ([]WeightEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("invertedfile: node %d not created", nodeID)
	}
	sums := make(map[int64]float64)
	for _, postings := range idx.documents {
		for _, p := range postings {
			sums[p.Keyword] += p.Weight
		}
	}
	return sortedEntries(sums), nil
}

func (m *MemInvertedFile) StoreClusterEnhance(nodeID types.PageID) ([][]WeightEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("invertedfile: node %d not created", nodeID)
	}

	perCluster := make(map[int]map[int64]float64)
	maxCluster := -1
	for docID, postings := range idx.documents {
		cluster, ok := idx.clusters[docID]
		if !ok {
			cluster = 0
		}
		if cluster > maxCluster {
			maxCluster = cluster
		}
		sums, ok := perCluster[cluster]
		if !ok {
			sums = make(map[int64]float64)
			perCluster[cluster] = sums
		}
		for _, p := range postings {
			sums[p.Keyword] += p.Weight
		}
	}

	out := make([][]WeightEntry, maxCluster+1)
	for c := 0; c <= maxCluster; c++ {
		out[c] = sortedEntries(perCluster[c])
	}
	return out, nil
}

func (m *MemInvertedFile) Load(nodeID types.PageID) (map[int64][]Posting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("invertedfile: node %d not created", nodeID)
	}
	byKeyword := make(map[int64][]Posting)
	for docID, postings := range idx.documents {
		for _, p := range postings {
			byKeyword[p.Keyword] = append(byKeyword[p.Keyword], Posting{Keyword: docID, Weight: p.Weight})
		}
	}
	return byKeyword, nil
}

func (m *MemInvertedFile) RankingSum(nodeID types.PageID, keywords []int64) (map[int64]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("invertedfile: node %d not created", nodeID)
	}
	want := toSet(keywords)

	scores := make(map[int64]float64)
	for docID, postings := range idx.documents {
		var sum float64
		var matched bool
		for _, p := range postings {
			if want[p.Keyword] {
				sum += p.Weight
				matched = true
			}
		}
		if matched {
			scores[docID] = sum
		}
	}
	return scores, nil
}

func (m *MemInvertedFile) RankingSumClusterEnhance(nodeID types.PageID, keywords []int64, keywordWeights map[int64]float64) (map[int64]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("invertedfile: node %d not created", nodeID)
	}
	want := toSet(keywords)

	scores := make(map[int64]float64)
	for docID, postings := range idx.documents {
		var sum float64
		var matched bool
		for _, p := range postings {
			if want[p.Keyword] {
				w := keywordWeights[p.Keyword]
				if w == 0 {
					w = 1
				}
				sum += p.Weight * w
				matched = true
			}
		}
		if matched {
			scores[docID] = sum
		}
	}
	return scores, nil
}

func toSet(keywords []int64) map[int64]bool {
	set := make(map[int64]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}
	return set
}

func sortedEntries(sums map[int64]float64) []WeightEntry {
	out := make([]WeightEntry, 0, len(sums))
	for k, w := range sums {
		out = append(out, WeightEntry{Keyword: k, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyword < out[j].Keyword })
	return out
}
