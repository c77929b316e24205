package rtree

import "github.com/lbs-irtree/irtree/internal/types"

// Visitor receives every node and data entry touched during a
// traversal. Implementations must treat both as immutable views.
type Visitor interface {
	VisitNode(n *Node)
	VisitData(e Entry)
}

// VisitorFunc adapts two plain functions into a Visitor, for ad hoc
// inspection and test assertions.
type VisitorFunc struct {
	OnNode func(n *Node)
	OnData func(e Entry)
}

func (v VisitorFunc) VisitNode(n *Node) {
	if v.OnNode != nil {
		v.OnNode(n)
	}
}

func (v VisitorFunc) VisitData(e Entry) {
	if v.OnData != nil {
		v.OnData(e)
	}
}

// NodeCommand is a fire-and-forget hook invoked after the corresponding
// storage operation. Panics are not recovered — they propagate to the
// caller.
type NodeCommand func(id types.PageID)

// QueryKind selects containment vs. intersection semantics for
// RangeQuery.
type QueryKind int

const (
	Intersection QueryKind = iota
	Containment
)

// Strategy drives a custom traversal via QueryStrategy: given the
// current node, it returns the next node id to visit and whether to
// continue.
type Strategy func(n *Node) (next types.PageID, shouldContinue bool)
