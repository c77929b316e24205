package rtree

import (
	"fmt"

	"github.com/lbs-irtree/irtree/geometry"
	"github.com/lbs-irtree/irtree/internal/types"
)

// IsIndexValid performs a structural audit: recomputes every node's
// MBR from its children, checks it against the stored MBR and the
// parent's corresponding entry MBR, recounts nodes per level, and
// compares against statistics. Never auto-repairs; returns ok plus
// diagnostic messages.
func (t *Tree) IsIndexValid() (bool, []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var messages []string
	nodesPerLevel := make(map[int]int)

	var visit func(id types.PageID) (*Node, error)
	visit = func(id types.PageID) (*Node, error) {
		n, err := t.readNode(id)
		if err != nil {
			return nil, err
		}
		nodesPerLevel[n.level]++

		if !n.IsLeaf() {
			for _, e := range n.entries {
				child, err := visit(e.Child)
				if err != nil {
					return nil, err
				}
				if !child.mbr.Equal(e.MBR) {
					messages = append(messages, fmt.Sprintf("node %d: entry MBR for child %d does not match child's actual MBR", n.id, child.id))
				}
			}
		}

		recomputed := geometry.Infinite(t.cfg.Dimension)
		for _, e := range n.entries {
			recomputed = recomputed.Union(e.MBR)
		}
		if !recomputed.Equal(n.mbr) {
			messages = append(messages, fmt.Sprintf("node %d: stored MBR does not equal union of its entries", n.id))
		}

		if id != t.rootID {
			if n.entryCount() < n.minEntries() || n.entryCount() > n.capacity() {
				messages = append(messages, fmt.Sprintf("node %d: entry count %d out of [%d, %d]", n.id, n.entryCount(), n.minEntries(), n.capacity()))
			}
		}

		return n, nil
	}

	if _, err := visit(t.rootID); err != nil {
		return false, []string{err.Error()}
	}

	for level, count := range nodesPerLevel {
		if t.stats.NodesInLevel[level] != count {
			messages = append(messages, fmt.Sprintf("level %d: recounted %d nodes, stats says %d", level, count, t.stats.NodesInLevel[level]))
		}
	}
	for level, count := range t.stats.NodesInLevel {
		if _, ok := nodesPerLevel[level]; !ok && count != 0 {
			messages = append(messages, fmt.Sprintf("level %d: stats says %d nodes but none found", level, count))
		}
	}

	return len(messages) == 0, messages
}
