package irtree_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/irtree"
	"github.com/lbs-irtree/irtree/rtree"
)

func newBuildTestTree(t *testing.T) *rtree.Tree {
	t.Helper()
	cfg := rtree.DefaultConfig()
	cfg.TreeVariant = rtree.Quadratic
	cfg.IndexCapacity = 4
	cfg.LeafCapacity = 4
	cfg.NearMinimumOverlapFactor = 4
	cfg.Dimension = 2
	tr, err := rtree.New(cfg, storage.NewMemStore(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func point(x, y float64) geometry.Region {
	return geometry.Point{x, y}.ToRegion(1e-9)
}

// Scenario 4: build an IR-tree over a handful of points tagged with
// keywords, then confirm a single-keyword lookup at the root matches
// the documents carrying it.
func TestBuildSingleKeywordTopOne(t *testing.T) {
	tr := newBuildTestTree(t)

	pts := []struct {
		x, y float64
		id   int64
	}{
		{1, 1, 1}, {2, 2, 2}, {10, 10, 3}, {11, 11, 4}, {12, 12, 5},
	}
	for _, p := range pts {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
	}

	docs := irtree.NewMemDocumentStore()
	docs.Put(1, []invertedfile.Posting{{Keyword: 42, Weight: 1.0}})
	docs.Put(2, []invertedfile.Posting{{Keyword: 42, Weight: 1.0}})
	docs.Put(3, []invertedfile.Posting{{Keyword: 99, Weight: 1.0}})
	docs.Put(4, []invertedfile.Posting{{Keyword: 99, Weight: 1.0}})
	docs.Put(5, []invertedfile.Posting{{Keyword: 99, Weight: 1.0}})

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	scores, err := ivf.RankingSum(tr.RootID(), []int64{42})
	if err != nil {
		t.Fatalf("RankingSum: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected a single matching child, got %v", scores)
	}
	var best int64
	var bestScore float64
	for id, score := range scores {
		best, bestScore = id, score
	}
	if bestScore != 2.0 {
		t.Fatalf("expected summed weight 2.0 for keyword 42, got %v", bestScore)
	}
	_ = best
}

// After a full build, the root's inverted file must summarize the
// keyword content of the entire subtree: every keyword present on any
// leaf document must appear in a RankingSum query against the root.
func TestBuildRootSummarizesEntireSubtree(t *testing.T) {
	tr := newBuildTestTree(t)
	faker := gofakeit.New(11)

	docs := irtree.NewMemDocumentStore()
	keywords := []int64{1, 2, 3, 4, 5}
	wantKeywords := make(map[int64]bool)

	const n = 60
	for i := 0; i < n; i++ {
		x := faker.Float64Range(0, 100)
		y := faker.Float64Range(0, 100)
		if err := tr.InsertData(point(x, y), int64(i), nil); err != nil {
			t.Fatalf("InsertData #%d: %v", i, err)
		}
		kw := keywords[i%len(keywords)]
		wantKeywords[kw] = true
		docs.Put(int64(i), []invertedfile.Posting{{Keyword: kw, Weight: 1.0}})
	}

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for kw := range wantKeywords {
		scores, err := ivf.RankingSum(tr.RootID(), []int64{kw})
		if err != nil {
			t.Fatalf("RankingSum: %v", err)
		}
		var total float64
		for _, s := range scores {
			total += s
		}
		if total <= 0 {
			t.Fatalf("keyword %d missing from root summary: %v", kw, scores)
		}
	}
}

func TestBulkBuildMatchesBuild(t *testing.T) {
	tr := newBuildTestTree(t)
	pts := []struct {
		x, y float64
		id   int64
	}{
		{1, 1, 1}, {2, 2, 2}, {3, 3, 3},
	}
	for _, p := range pts {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
	}

	docs := irtree.NewMemDocumentStore()
	docs.Put(1, []invertedfile.Posting{{Keyword: 1, Weight: 1.0}})
	docs.Put(2, []invertedfile.Posting{{Keyword: 1, Weight: 1.0}})
	docs.Put(3, []invertedfile.Posting{{Keyword: 1, Weight: 1.0}})

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.BulkBuild(tr, docs, ivf, 4); err != nil {
		t.Fatalf("BulkBuild: %v", err)
	}

	scores, err := ivf.RankingSum(tr.RootID(), []int64{1})
	if err != nil {
		t.Fatalf("RankingSum: %v", err)
	}
	var total float64
	for _, s := range scores {
		total += s
	}
	if total != 3.0 {
		t.Fatalf("summed score for keyword 1 = %v, want 3.0", total)
	}
}

func TestBuildClusterEnhancePartitions(t *testing.T) {
	tr := newBuildTestTree(t)
	pts := []struct {
		x, y float64
		id   int64
	}{
		{1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {4, 4, 4},
	}
	for _, p := range pts {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
	}

	docs := irtree.NewMemDocumentStore()
	for _, p := range pts {
		docs.Put(p.id, []invertedfile.Posting{{Keyword: 7, Weight: 1.0}})
	}
	clusters := irtree.NewMemClusterMap(map[int64]int{1: 0, 2: 0, 3: 1, 4: 1})

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.BuildClusterEnhance(tr, docs, clusters, ivf); err != nil {
		t.Fatalf("BuildClusterEnhance: %v", err)
	}

	perCluster, err := ivf.StoreClusterEnhance(tr.RootID())
	if err != nil {
		t.Fatalf("StoreClusterEnhance: %v", err)
	}
	if len(perCluster) != 2 {
		t.Fatalf("expected 2 clusters at root, got %d", len(perCluster))
	}
}

func TestBuildSurfacesMissingDocumentError(t *testing.T) {
	tr := newBuildTestTree(t)
	if err := tr.InsertData(point(1, 1), 1, nil); err != nil {
		t.Fatalf("InsertData: %v", err)
	}

	docs := irtree.NewMemDocumentStore()
	ivf := invertedfile.NewMemInvertedFile()
	err := irtree.Build(tr, docs, ivf)
	if err == nil {
		t.Fatalf("expected ErrMissingDocument, got nil")
	}
}
