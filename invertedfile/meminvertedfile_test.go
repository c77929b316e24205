package invertedfile

import (
	"testing"

	"github.com/lbs-irtree/irtree/internal/types"
)

func TestStoreSumsWeightsAcrossDocuments(t *testing.T) {
	mf := NewMemInvertedFile()
	node := types.PageID(1)
	if err := mf.Create(node); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mf.AddDocument(node, 10, []Posting{{Keyword: 7, Weight: 1.0}, {Keyword: 8, Weight: 0.5}}, NoCluster); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := mf.AddDocument(node, 11, []Posting{{Keyword: 7, Weight: 2.0}}, NoCluster); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	entries, err := mf.Store(node)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	weights := make(map[int64]float64)
	for _, e := range entries {
		weights[e.Keyword] = e.Weight
	}
	if weights[7] != 3.0 {
		t.Fatalf("keyword 7 weight = %v, want 3.0", weights[7])
	}
	if weights[8] != 0.5 {
		t.Fatalf("keyword 8 weight = %v, want 0.5", weights[8])
	}
}

func TestRankingSumOnlyMatchesQueryKeywords(t *testing.T) {
	mf := NewMemInvertedFile()
	node := types.PageID(1)
	mf.Create(node)
	mf.AddDocument(node, 1, []Posting{{Keyword: 7, Weight: 1.0}}, NoCluster)
	mf.AddDocument(node, 2, []Posting{{Keyword: 9, Weight: 1.0}}, NoCluster)

	scores, err := mf.RankingSum(node, []int64{7})
	if err != nil {
		t.Fatalf("RankingSum: %v", err)
	}
	if len(scores) != 1 || scores[1] != 1.0 {
		t.Fatalf("scores = %v, want {1: 1.0}", scores)
	}
}

func TestStoreClusterEnhancePartitionsByCluster(t *testing.T) {
	mf := NewMemInvertedFile()
	node := types.PageID(1)
	mf.Create(node)
	mf.AddDocument(node, 1, []Posting{{Keyword: 1, Weight: 1.0}}, 0)
	mf.AddDocument(node, 2, []Posting{{Keyword: 1, Weight: 5.0}}, 1)

	perCluster, err := mf.StoreClusterEnhance(node)
	if err != nil {
		t.Fatalf("StoreClusterEnhance: %v", err)
	}
	if len(perCluster) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(perCluster))
	}
	if perCluster[0][0].Weight != 1.0 || perCluster[1][0].Weight != 5.0 {
		t.Fatalf("unexpected cluster weights: %v", perCluster)
	}
}
