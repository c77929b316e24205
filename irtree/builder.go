package irtree

import (
	"github.com/lbs-irtree/irtree/internal/types"
	"github.com/lbs-irtree/irtree/internal/util"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/rtree"
)

// Build walks tree post-order from the root, attaching an inverted file
// to every node: at a leaf, each child document's term weights are
// loaded and added; at an index node, each child's pseudo-document
// (returned by recursion) is added under the child's id. Single-pass,
// single-threaded, tolerates empty posting lists at any level.
func Build(tree *rtree.Tree, docs DocumentStore, ivf invertedfile.InvertedFile) error {
	_, err := build(tree, tree.RootID(), docs, ivf)
	return err
}

// BulkBuild is Build preceded by a concurrent prefetch pass: every leaf
// document referenced by the tree is loaded via a worker pool ahead of
// the single-threaded builder walk, so a slow DocumentStore (e.g. one
// backed by network I/O) doesn't serialize behind the tree traversal.
func BulkBuild(tree *rtree.Tree, docs DocumentStore, ivf invertedfile.InvertedFile, workers int) error {
	ids, err := collectLeafDocumentIDs(tree, tree.RootID())
	if err != nil {
		return err
	}
	cached, err := prefetch(docs, ids, workers)
	if err != nil {
		return err
	}
	_, err = build(tree, tree.RootID(), cached, ivf)
	return err
}

func collectLeafDocumentIDs(tree *rtree.Tree, nodeID types.PageID) ([]int64, error) {
	n, err := tree.ReadNode(nodeID)
	if err != nil {
		return nil, err
	}
	if n.IsLeaf() {
		ids := make([]int64, 0, len(n.Entries()))
		for _, e := range n.Entries() {
			ids = append(ids, e.ID)
		}
		return ids, nil
	}
	var all []int64
	for _, e := range n.Entries() {
		childIDs, err := collectLeafDocumentIDs(tree, e.Child)
		if err != nil {
			return nil, err
		}
		all = append(all, childIDs...)
	}
	return all, nil
}

type prefetchJob struct {
	docID int64
}

type prefetchResult struct {
	docID    int64
	postings []invertedfile.Posting
	err      error
}

func prefetch(docs DocumentStore, ids []int64, workers int) (DocumentStore, error) {
	if workers < 1 {
		workers = 1
	}
	pool := util.NewWorkerPool[prefetchJob, prefetchResult](workers, len(ids)+1)
	pool.Start(func(job prefetchJob) prefetchResult {
		postings, err := docs.Load(job.docID)
		return prefetchResult{docID: job.docID, postings: postings, err: err}
	})
	for _, id := range ids {
		pool.AddJob(prefetchJob{docID: id})
	}
	close(pool.JobQueue)
	pool.Wait()

	cache := NewMemDocumentStore()
	for res := range pool.Results() {
		if res.err != nil {
			return nil, res.err
		}
		cache.Put(res.docID, res.postings)
	}
	return cache, nil
}

func build(tree *rtree.Tree, nodeID types.PageID, docs DocumentStore, ivf invertedfile.InvertedFile) ([]invertedfile.WeightEntry, error) {
	n, err := tree.ReadNode(nodeID)
	if err != nil {
		return nil, err
	}
	if err := ivf.Create(nodeID); err != nil {
		return nil, err
	}

	if n.IsLeaf() {
		for _, e := range n.Entries() {
			postings, err := docs.Load(e.ID)
			if err != nil {
				return nil, err
			}
			if err := ivf.AddDocument(nodeID, e.ID, postings, invertedfile.NoCluster); err != nil {
				return nil, err
			}
		}
		return ivf.Store(nodeID)
	}

	for _, e := range n.Entries() {
		pseudoDoc, err := build(tree, e.Child, docs, ivf)
		if err != nil {
			return nil, err
		}
		if err := ivf.AddDocument(nodeID, int64(e.Child), weightsToPostings(pseudoDoc), invertedfile.NoCluster); err != nil {
			return nil, err
		}
	}
	return ivf.Store(nodeID)
}

// BuildClusterEnhance is the cluster-aware variant: each leaf document
// maps to a cluster id through clusterMap; pseudo-documents are
// produced and propagated as one list per cluster, each cluster slot
// routed separately up the tree.
func BuildClusterEnhance(tree *rtree.Tree, docs DocumentStore, clusterMap ClusterMap, ivf invertedfile.InvertedFile) error {
	_, err := buildClusterEnhance(tree, tree.RootID(), docs, clusterMap, ivf)
	return err
}

func buildClusterEnhance(tree *rtree.Tree, nodeID types.PageID, docs DocumentStore, clusterMap ClusterMap, ivf invertedfile.InvertedFile) ([][]invertedfile.WeightEntry, error) {
	n, err := tree.ReadNode(nodeID)
	if err != nil {
		return nil, err
	}
	if err := ivf.Create(nodeID); err != nil {
		return nil, err
	}

	if n.IsLeaf() {
		for _, e := range n.Entries() {
			postings, err := docs.Load(e.ID)
			if err != nil {
				return nil, err
			}
			cluster, err := clusterMap.ClusterOf(e.ID)
			if err != nil {
				return nil, err
			}
			if err := ivf.AddDocument(nodeID, e.ID, postings, cluster); err != nil {
				return nil, err
			}
		}
		return ivf.StoreClusterEnhance(nodeID)
	}

	for _, e := range n.Entries() {
		perCluster, err := buildClusterEnhance(tree, e.Child, docs, clusterMap, ivf)
		if err != nil {
			return nil, err
		}
		for cluster, pseudoDoc := range perCluster {
			if len(pseudoDoc) == 0 {
				continue
			}
			if err := ivf.AddDocument(nodeID, int64(e.Child), weightsToPostings(pseudoDoc), cluster); err != nil {
				return nil, err
			}
		}
	}
	return ivf.StoreClusterEnhance(nodeID)
}

func weightsToPostings(entries []invertedfile.WeightEntry) []invertedfile.Posting {
	out := make([]invertedfile.Posting, len(entries))
	for i, e := range entries {
		out[i] = invertedfile.Posting{Keyword: e.Keyword, Weight: e.Weight}
	}
	return out
}
