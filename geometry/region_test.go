package geometry

import "testing"

func TestRegionUnion(t *testing.T) {
	a := Region{Low: Point{0, 0}, High: Point{1, 1}}
	b := Region{Low: Point{2, 2}, High: Point{3, 3}}
	u := a.Union(b)
	want := Region{Low: Point{0, 0}, High: Point{3, 3}}
	if !u.Equal(want) {
		t.Fatalf("union = %+v, want %+v", u, want)
	}
}

func TestInfiniteIsUnionIdentity(t *testing.T) {
	a := Region{Low: Point{1, 1}, High: Point{2, 2}}
	u := Infinite(2).Union(a)
	if !u.Equal(a) {
		t.Fatalf("Infinite union identity broken: got %+v want %+v", u, a)
	}
}

func TestIntersectsAndContains(t *testing.T) {
	outer := Region{Low: Point{0, 0}, High: Point{10, 10}}
	inner := Region{Low: Point{2, 2}, High: Point{4, 4}}
	disjoint := Region{Low: Point{20, 20}, High: Point{21, 21}}

	if !outer.Contains(inner) {
		t.Fatal("expected outer to contain inner")
	}
	if !outer.Intersects(inner) {
		t.Fatal("expected outer to intersect inner")
	}
	if outer.Intersects(disjoint) {
		t.Fatal("expected outer to not intersect disjoint")
	}
}

func TestMinimumDistance(t *testing.T) {
	r := Region{Low: Point{0, 0}, High: Point{1, 1}}
	if d := r.MinimumDistance(Point{0.5, 0.5}); d != 0 {
		t.Fatalf("interior point should have 0 distance, got %v", d)
	}
	if d := r.MinimumDistance(Point{4, 0}); d != 3 {
		t.Fatalf("expected distance 3, got %v", d)
	}
}

func TestAreaDegenerate(t *testing.T) {
	p := Point{1, 2}.ToRegion(0)
	if p.Area() != 0 {
		t.Fatalf("degenerate region should have zero area, got %v", p.Area())
	}
}

func TestOverlap(t *testing.T) {
	a := Region{Low: Point{0, 0}, High: Point{2, 2}}
	b := Region{Low: Point{1, 1}, High: Point{3, 3}}
	if got := a.Overlap(b); got != 1 {
		t.Fatalf("overlap = %v, want 1", got)
	}
	c := Region{Low: Point{5, 5}, High: Point{6, 6}}
	if got := a.Overlap(c); got != 0 {
		t.Fatalf("non-overlapping regions should have overlap 0, got %v", got)
	}
}
