package pipeline

import (
	"slices"
	"sync"

	"github.com/go-loom/loom/pkg/core"
)

// RebuildQueue is the set of element ids awaiting rebuild. Insertion order
// is irrelevant; draining is depth-aware so that a parent's rebuild can
// re-dirty or obviate its children before they are processed.
type RebuildQueue struct {
	mu  sync.Mutex
	ids []core.ElementID
	set map[core.ElementID]struct{}
}

// NewRebuildQueue creates an empty rebuild queue.
func NewRebuildQueue() *RebuildQueue {
	return &RebuildQueue{set: make(map[core.ElementID]struct{})}
}

// Add schedules an element for rebuild. Returns false if the element was
// already scheduled, making repeated marks within one frame free.
func (q *RebuildQueue) Add(id core.ElementID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.set[id]; exists {
		return false
	}
	q.set[id] = struct{}{}
	q.ids = append(q.ids, id)
	return true
}

// Drain removes and returns all scheduled ids, shallowest element first.
// Scheduling during a drain lands in the next batch.
func (q *RebuildQueue) Drain(tree *core.Tree) []core.ElementID {
	q.mu.Lock()
	ids := q.ids
	q.ids = nil
	clear(q.set)
	q.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	slices.SortFunc(ids, func(a, b core.ElementID) int {
		return depthOf(tree, a) - depthOf(tree, b)
	})
	return ids
}

// Len returns the number of scheduled elements.
func (q *RebuildQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

func depthOf(tree *core.Tree, id core.ElementID) int {
	if element, ok := tree.Get(id); ok {
		return element.Depth()
	}
	return 0
}
