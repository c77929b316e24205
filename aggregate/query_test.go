package aggregate_test

import (
	"sort"
	"testing"

	"github.com/lbs-irtree/irtree/aggregate"
	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/invertedfile"
	"github.com/lbs-irtree/irtree/irtree"
	"github.com/lbs-irtree/irtree/rtree"
	"github.com/lbs-irtree/irtree/search"
)

// Scenario 5: combined MBR and merged keyword set over three queries.
func TestAggregateMBRAndKeywords(t *testing.T) {
	aq := aggregate.New([]aggregate.Query{
		{Location: geometry.Point{0, 0}, Keywords: []int64{1, 2}, Weight: 1},
		{Location: geometry.Point{10, 0}, Keywords: []int64{2, 3}, Weight: 1},
		{Location: geometry.Point{0, 10}, Keywords: []int64{3, 4}, Weight: 1},
	}, aggregate.Sum)

	mbr := aq.GetMBR()
	want := geometry.Region{Low: geometry.Point{0, 0}, High: geometry.Point{10, 10}}
	if !mbr.Equal(want) {
		t.Fatalf("GetMBR = %v, want %v", mbr, want)
	}

	kws := aq.GetCombinedKeywords()
	sort.Slice(kws, func(i, j int) bool { return kws[i] < kws[j] })
	wantKws := []int64{1, 2, 3, 4}
	if len(kws) != len(wantKws) {
		t.Fatalf("GetCombinedKeywords = %v, want %v", kws, wantKws)
	}
	for i := range wantKws {
		if kws[i] != wantKws[i] {
			t.Fatalf("GetCombinedKeywords = %v, want %v", kws, wantKws)
		}
	}

	if len(aq.Queries) != 3 {
		t.Fatalf("groupSize = %d, want 3", len(aq.Queries))
	}
}

func TestSortResultsBreaksTiesByID(t *testing.T) {
	results := []aggregate.Result{
		{ID: 5, Cost: search.Cost{Total: 1.0}},
		{ID: 2, Cost: search.Cost{Total: 1.0}},
		{ID: 9, Cost: search.Cost{Total: 0.5}},
	}
	aggregate.SortResults(results)
	if results[0].ID != 9 || results[1].ID != 2 || results[2].ID != 5 {
		t.Fatalf("unexpected order: %v", results)
	}
}

func newRunnerTestTree(t *testing.T) *rtree.Tree {
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

func TestRunReturnsNonNegativeCosts(t *testing.T) {
	tr := newRunnerTestTree(t)
	pts := []struct {
		x, y float64
		id   int64
	}{{1, 1, 1}, {2, 2, 2}, {8, 8, 3}}

	docs := irtree.NewMemDocumentStore()
	for _, p := range pts {
		if err := tr.InsertData(geometry.Point{p.x, p.y}.ToRegion(1e-9), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
		docs.Put(p.id, []invertedfile.Posting{{Keyword: 1, Weight: 1.0}})
	}

	ivf := invertedfile.NewMemInvertedFile()
	if err := irtree.Build(tr, docs, ivf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	aq := aggregate.New([]aggregate.Query{
		{Location: geometry.Point{0, 0}, Keywords: []int64{1}, Weight: 1},
		{Location: geometry.Point{9, 9}, Keywords: []int64{1}, Weight: 1},
	}, aggregate.Mean)

	results, err := aggregate.Run(tr, ivf, aq, 3, search.Params{Alpha: 0.5, MaxD: 20})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.Cost.Total < 0 {
			t.Fatalf("negative cost for id %d: %v", r.ID, r.Cost)
		}
	}
}
