// Package irtree builds the inverted-file overlay on top of an
// already-built R-tree, attaching per-node posting lists bottom-up so
// the result is a searchable IR-tree. Grounded directly on
// RTree.java's irTraversal/cirClusterTraversal.
package irtree

import (
	"fmt"
	"sync"

	"github.com/lbs-irtree/irtree/invertedfile"
)

// DocumentStore is the external collaborator that maps a leaf entry's
// document id to its raw keyword weights.
type DocumentStore interface {
	Load(docID int64) ([]invertedfile.Posting, error)
}

// MemDocumentStore is an in-memory DocumentStore used by tests and by
// any caller that built its document set in memory.
type MemDocumentStore struct {
	mu   sync.RWMutex
	docs map[int64][]invertedfile.Posting
}

func NewMemDocumentStore() *MemDocumentStore {
	return &MemDocumentStore{docs: make(map[int64][]invertedfile.Posting)}
}

func (s *MemDocumentStore) Put(docID int64, postings []invertedfile.Posting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docID] = postings
}

func (s *MemDocumentStore) Load(docID int64) ([]invertedfile.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	postings, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("%w: document %d", ErrMissingDocument, docID)
	}
	return postings, nil
}

// ClusterMap is the external clustering preprocessor's output: a
// docID -> clusterID map, consumed read-only by the cluster-enhanced
// builder.
type ClusterMap interface {
	ClusterOf(docID int64) (int, error)
}

// MemClusterMap is an in-memory ClusterMap.
type MemClusterMap struct {
	clusters map[int64]int
}

func NewMemClusterMap(clusters map[int64]int) *MemClusterMap {
	return &MemClusterMap{clusters: clusters}
}

func (c *MemClusterMap) ClusterOf(docID int64) (int, error) {
	cluster, ok := c.clusters[docID]
	if !ok {
		return 0, fmt.Errorf("%w: document %d", ErrMissingCluster, docID)
	}
	return cluster, nil
}
