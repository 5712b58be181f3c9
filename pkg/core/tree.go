package core

import (
	"sync"

	"github.com/go-loom/loom/pkg/errors"
)

type slabEntry struct {
	element    *Element
	generation uint32
}

// Tree is the slab-backed element storage and the single source of truth for
// tree shape. Stable ElementID handles map to elements; slots are reused
// after removal with a bumped generation so stale ids fail lookup instead of
// resolving to an unrelated element.
//
// A single read/write lock guards structural mutation (insert/remove).
// Within a frame, element fields are mutated by the pipelines, which touch
// disjoint subtrees when running in parallel; cross-thread readers observe
// dirtiness only through the atomic RenderState flags.
type Tree struct {
	mu      sync.RWMutex
	entries []slabEntry
	free    []uint32
	count   int
}

// NewTree creates an empty element tree.
func NewTree() *Tree {
	return &Tree{}
}

// Insert stores an element and assigns it a stable id.
func (t *Tree) Insert(element *Element) ElementID {
	t.mu.Lock()
	defer t.mu.Unlock()

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
		t.entries[index].element = element
	} else {
		index = uint32(len(t.entries))
		t.entries = append(t.entries, slabEntry{element: element})
	}
	t.count++
	id := makeElementID(index, t.entries[index].generation)
	element.id = id
	return id
}

// Remove deletes a defunct element from storage, releasing its slot for
// reuse. Removing a non-defunct element is a programming error and panics;
// a stale id returns errors.ErrNotFound.
func (t *Tree) Remove(id ElementID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	element, ok := t.lookupLocked(id)
	if !ok {
		return errors.ErrNotFound
	}
	if element.lifecycle != LifecycleDefunct {
		panic(&errors.LifecycleError{
			Op:      "tree.Remove",
			From:    element.lifecycle.String(),
			To:      "removed",
			Element: uint64(id),
		})
	}
	index := id.slabIndex()
	t.entries[index].element = nil
	t.entries[index].generation++
	t.free = append(t.free, index)
	t.count--
	return nil
}

// Get returns the element for id, or false if the id is stale or removed.
func (t *Tree) Get(id ElementID) (*Element, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookupLocked(id)
}

// Parent returns the parent id of id, or NoElement if id is stale or a root.
func (t *Tree) Parent(id ElementID) ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	element, ok := t.lookupLocked(id)
	if !ok {
		return NoElement
	}
	return element.parent
}

// Children returns a copy of the ordered child ids of id. A stale id yields
// an empty sequence, never a panic.
func (t *Tree) Children(id ElementID) []ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	element, ok := t.lookupLocked(id)
	if !ok || len(element.children) == 0 {
		return nil
	}
	children := make([]ElementID, len(element.children))
	copy(children, element.children)
	return children
}

// Len returns the number of live elements.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

func (t *Tree) lookupLocked(id ElementID) (*Element, bool) {
	if id.IsNone() {
		return nil, false
	}
	index := id.slabIndex()
	if int(index) >= len(t.entries) {
		return nil, false
	}
	entry := t.entries[index]
	if entry.element == nil || entry.generation != id.generation() {
		return nil, false
	}
	return entry.element, true
}

// Walk visits id and its descendants pre-order, parents before children.
// Visiting stops early if visitor returns false.
func (t *Tree) Walk(id ElementID, visitor func(*Element) bool) {
	t.walk(id, visitor)
}

func (t *Tree) walk(id ElementID, visitor func(*Element) bool) bool {
	element, ok := t.Get(id)
	if !ok {
		return true
	}
	if !visitor(element) {
		return false
	}
	for _, child := range element.children {
		if !t.walk(child, visitor) {
			return false
		}
	}
	return true
}

// RenderChildren returns the nearest render descendants of id: for each
// child subtree, the first render element found depth-first. Component and
// stateful elements are transparent to layout and paint.
func (t *Tree) RenderChildren(id ElementID) []ElementID {
	element, ok := t.Get(id)
	if !ok {
		return nil
	}
	var result []ElementID
	for _, child := range element.children {
		t.collectRenderDescendants(child, &result)
	}
	return result
}

func (t *Tree) collectRenderDescendants(id ElementID, out *[]ElementID) {
	element, ok := t.Get(id)
	if !ok {
		return
	}
	if element.kind == KindRender {
		*out = append(*out, id)
		return
	}
	for _, child := range element.children {
		t.collectRenderDescendants(child, out)
	}
}

// RenderParent returns the nearest render ancestor of id, or NoElement.
func (t *Tree) RenderParent(id ElementID) ElementID {
	current := t.Parent(id)
	for !current.IsNone() {
		element, ok := t.Get(current)
		if !ok {
			return NoElement
		}
		if element.kind == KindRender {
			return current
		}
		current = element.parent
	}
	return NoElement
}
