package rtree_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/rtree"
)

func newTestTree(t *testing.T, variant rtree.Variant) *rtree.Tree {
	t.Helper()
	cfg := rtree.DefaultConfig()
	cfg.TreeVariant = variant
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

func collectIDs(entries []rtree.Entry) map[int64]bool {
	out := make(map[int64]bool)
	for _, e := range entries {
		out[e.ID] = true
	}
	return out
}

// Scenario 1: insert and re-query.
func TestInsertAndRangeQuery(t *testing.T) {
	tr := newTestTree(t, rtree.Quadratic)

	pts := []struct {
		x, y float64
		id   int64
	}{
		{1, 1, 1}, {2, 2, 2}, {10, 10, 3}, {11, 11, 4}, {12, 12, 5},
	}
	for _, p := range pts {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData(%v): %v", p, err)
		}
	}

	var got []rtree.Entry
	v := rtree.VisitorFunc{OnData: func(e rtree.Entry) { got = append(got, e) }}
	if err := tr.RangeQuery(rtree.Intersection, geometry.Region{Low: geometry.Point{0, 0}, High: geometry.Point{3, 3}}, v); err != nil {
		t.Fatalf("RangeQuery: %v", err)
	}
	ids := collectIDs(got)
	if !ids[1] || !ids[2] || len(ids) != 2 {
		t.Fatalf("expected {1,2}, got %v", ids)
	}

	got = nil
	if err := tr.RangeQuery(rtree.Intersection, geometry.Region{Low: geometry.Point{9, 9}, High: geometry.Point{13, 13}}, v); err != nil {
		t.Fatalf("RangeQuery: %v", err)
	}
	ids = collectIDs(got)
	if !ids[3] || !ids[4] || !ids[5] || len(ids) != 3 {
		t.Fatalf("expected {3,4,5}, got %v", ids)
	}

	ok, msgs := tr.IsIndexValid()
	if !ok {
		t.Fatalf("IsIndexValid: %v", msgs)
	}
}

// Scenario 2: k-NN with ties.
func TestNearestNeighborTies(t *testing.T) {
	tr := newTestTree(t, rtree.Quadratic)

	pts := []struct {
		x, y float64
		id   int64
	}{
		{5, 0, 1}, {0, 5, 2}, {-5, 0, 3}, {0, -5, 4}, {1, 0, 5},
	}
	for _, p := range pts {
		if err := tr.InsertData(point(p.x, p.y), p.id, nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
	}

	var got []rtree.Entry
	v := rtree.VisitorFunc{OnData: func(e rtree.Entry) { got = append(got, e) }}
	if err := tr.NearestNeighborQuery(2, geometry.Point{0, 0}, v); err != nil {
		t.Fatalf("NearestNeighborQuery: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 results (ties reported), got %d: %v", len(got), got)
	}
	ids := collectIDs(got)
	for _, id := range []int64{1, 2, 3, 4, 5} {
		if !ids[id] {
			t.Fatalf("missing id %d in %v", id, ids)
		}
	}
}

// Scenario 3: delete and shrink.
func TestDeleteShrinksMBR(t *testing.T) {
	tr := newTestTree(t, rtree.Quadratic)

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

	ok, err := tr.DeleteData(point(12, 12), 5)
	if err != nil {
		t.Fatalf("DeleteData: %v", err)
	}
	if !ok {
		t.Fatalf("DeleteData: expected ok=true")
	}

	valid, msgs := tr.IsIndexValid()
	if !valid {
		t.Fatalf("IsIndexValid after delete: %v", msgs)
	}

	var got []rtree.Entry
	v := rtree.VisitorFunc{OnData: func(e rtree.Entry) { got = append(got, e) }}
	if err := tr.RangeQuery(rtree.Intersection, geometry.Region{Low: geometry.Point{9, 9}, High: geometry.Point{13, 13}}, v); err != nil {
		t.Fatalf("RangeQuery: %v", err)
	}
	ids := collectIDs(got)
	if !ids[3] || !ids[4] || len(ids) != 2 {
		t.Fatalf("expected {3,4}, got %v", ids)
	}
}

// Scenario 6: structural audit over bulk random insertion, for every
// split variant.
func TestBulkInsertStructuralAudit(t *testing.T) {
	for _, variant := range []rtree.Variant{rtree.Linear, rtree.Quadratic, rtree.Rstar} {
		variant := variant
		t.Run(variant.String(), func(t *testing.T) {
			tr := newTestTree(t, variant)
			faker := gofakeit.New(42)

			const n = 1000
			for i := 0; i < n; i++ {
				x := faker.Float64Range(0, 1000)
				y := faker.Float64Range(0, 1000)
				if err := tr.InsertData(point(x, y), int64(i), nil); err != nil {
					t.Fatalf("InsertData #%d: %v", i, err)
				}
			}

			ok, msgs := tr.IsIndexValid()
			if !ok {
				t.Fatalf("IsIndexValid: %v", msgs)
			}

			stats := tr.Stats()
			if stats.DataCount != n {
				t.Fatalf("DataCount = %d, want %d", stats.DataCount, n)
			}

			var visited int
			v := rtree.VisitorFunc{OnNode: func(n *rtree.Node) { visited++ }}
			if err := tr.RangeQuery(rtree.Intersection, geometry.Region{Low: geometry.Point{-1, -1}, High: geometry.Point{1001, 1001}}, v); err != nil {
				t.Fatalf("RangeQuery: %v", err)
			}
			if visited != stats.NodesTotal {
				t.Fatalf("visited %d nodes during full-range scan, stats says %d", visited, stats.NodesTotal)
			}
		})
	}
}

func TestRangeQueryContainsSubsetOfIntersects(t *testing.T) {
	tr := newTestTree(t, rtree.Rstar)
	faker := gofakeit.New(7)
	for i := 0; i < 200; i++ {
		x := faker.Float64Range(0, 100)
		y := faker.Float64Range(0, 100)
		if err := tr.InsertData(point(x, y), int64(i), nil); err != nil {
			t.Fatalf("InsertData: %v", err)
		}
	}

	region := geometry.Region{Low: geometry.Point{20, 20}, High: geometry.Point{80, 80}}
	var contained, intersected []rtree.Entry
	vc := rtree.VisitorFunc{OnData: func(e rtree.Entry) { contained = append(contained, e) }}
	vi := rtree.VisitorFunc{OnData: func(e rtree.Entry) { intersected = append(intersected, e) }}

	if err := tr.RangeQuery(rtree.Containment, region, vc); err != nil {
		t.Fatalf("RangeQuery containment: %v", err)
	}
	if err := tr.RangeQuery(rtree.Intersection, region, vi); err != nil {
		t.Fatalf("RangeQuery intersection: %v", err)
	}

	intersectedIDs := collectIDs(intersected)
	for _, e := range contained {
		if !intersectedIDs[e.ID] {
			t.Fatalf("id %d in containment result but not intersection result", e.ID)
		}
	}
}
