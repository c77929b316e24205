package search_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/irtree"
	"github.com/lbs-irtree/irtree/rtree"
	"github.com/lbs-irtree/irtree/search"
)

func newSearchTestTree(t *testing.T, capacity int) *rtree.Tree {
	t.Helper()
	cfg := rtree.DefaultConfig()
	cfg.TreeVariant = rtree.Quadratic
	cfg.IndexCapacity = capacity
	cfg.LeafCapacity = capacity
	cfg.NearMinimumOverlapFactor = capacity
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

// Scenario 4: two clusters of points split into separate leaves; only
// the left cluster's documents carry keyword 7. A single-keyword top-1
// query centered on the left cluster must return a document from it.
func TestTopKSingleKeywordReturnsCorrectLeaf(t *testing.T) {
	tr := newSearchTestTree(t, 4)

	left := []struct {
		x, y float64
		id   int64
	}{{0, 0, 1}, {1, 0, 2}, {0, 1, 3}}
	right := []struct {
		x, y float64
		id   int64
	}{{100, 100, 4}, {101, 100, 5}, {100, 101, 6}}

	docs := irtree.NewMemDocumentStore()
	for _, p := range left {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
		docs.Put(p.id, []invertedfile.Posting{{Keyword: 7, Weight: 1.0}})
	}
	for _, p := range right {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
		docs.Put(p.id, nil)
	}

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	q := search.Query{Location: geometry.Point{0.33, 0.33}, Keywords: []int64{7}}
	params := search.Params{Alpha: 0.5, MaxD: 150}

	results, err := search.TopK(tr, ivf, q, 1, params)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	leftIDs := map[int64]bool{1: true, 2: true, 3: true}
	if !leftIDs[results[0].ID] {
		t.Fatalf("expected a document from the left cluster, got id %d", results[0].ID)
	}
}

// lkt monotonicity: emitted costs must be nondecreasing.
func TestTopKEmittedCostsNondecreasing(t *testing.T) {
	tr := newSearchTestTree(t, 4)
	faker := gofakeit.New(3)

	docs := irtree.NewMemDocumentStore()
	keywords := []int64{1, 2, 3}
	const n = 40
	for i := 0; i < n; i++ {
		x := faker.Float64Range(0, 100)
		y := faker.Float64Range(0, 100)
		if err := tr.InsertData(point(x, y), int64(i), nil); err != nil {
			t.Fatalf("InsertData #%d: %v", i, err)
		}
		docs.Put(int64(i), []invertedfile.Posting{{Keyword: keywords[i%len(keywords)], Weight: 1.0}})
	}

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	q := search.Query{Location: geometry.Point{50, 50}, Keywords: keywords}
	params := search.Params{Alpha: 0.5, MaxD: 150}

	results, err := search.TopK(tr, ivf, q, 10, params)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("expected multiple results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Cost.Total < results[i-1].Cost.Total {
			t.Fatalf("costs not nondecreasing at index %d: %v then %v", i, results[i-1].Cost.Total, results[i].Cost.Total)
		}
	}
}

func TestCombinedScoreClampsNegativeComponents(t *testing.T) {
	c := search.CombinedScore(-5, 1.2, 0.5, 10)
	if c.Spatial != 0 {
		t.Fatalf("Spatial = %v, want 0", c.Spatial)
	}
	if c.Textual != 0 {
		t.Fatalf("Textual = %v, want 0", c.Textual)
	}
	if c.Total != 0 {
		t.Fatalf("Total = %v, want 0", c.Total)
	}
}
