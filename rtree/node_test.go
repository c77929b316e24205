package rtree

import (
	"testing"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/storage"
	"github.com/lbs-irtree/irtree/internal/types"
)

func TestNodeSerializeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dimension = 3
	tr, err := New(cfg, storage.NewMemStore(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n := newNode(tr, 0, 3)
	n.id = types.PageID(7)
	n.insertEntry(Entry{
		MBR:     geometry.Region{Low: geometry.Point{1, 2, 3}, High: geometry.Point{4, 5, 6}},
		Child:   types.NewPage,
		ID:      42,
		Payload: []byte("hello"),
	})
	n.insertEntry(Entry{
		MBR:     geometry.Region{Low: geometry.Point{-1, -2, -3}, High: geometry.Point{0, 0, 0}},
		Child:   types.NewPage,
		ID:      43,
		Payload: nil,
	})

	data := n.serialize()
	got, err := deserializeNode(tr, n.id, data)
	if err != nil {
		t.Fatalf("deserializeNode: %v", err)
	}

	if got.level != n.level || got.IsLeaf() != n.IsLeaf() {
		t.Fatalf("level/leaf mismatch: got %+v", got)
	}
	if len(got.entries) != len(n.entries) {
		t.Fatalf("entry count mismatch: got %d, want %d", len(got.entries), len(n.entries))
	}
	for i, e := range n.entries {
		ge := got.entries[i]
		if !e.MBR.Equal(ge.MBR) {
			t.Fatalf("entry %d MBR mismatch: got %+v, want %+v", i, ge.MBR, e.MBR)
		}
		if e.ID != ge.ID || e.Child != ge.Child {
			t.Fatalf("entry %d id/child mismatch: got %+v, want %+v", i, ge, e)
		}
		if string(e.Payload) != string(ge.Payload) {
			t.Fatalf("entry %d payload mismatch: got %q, want %q", i, ge.Payload, e.Payload)
		}
	}
	if !got.mbr.Equal(n.mbr) {
		t.Fatalf("node MBR mismatch: got %+v, want %+v", got.mbr, n.mbr)
	}
}
