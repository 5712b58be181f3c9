package core

import (
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// HitEntry is one hit-test result: an element and the hit position in that
// element's local coordinates.
type HitEntry struct {
	Element  ElementID
	Position graphics.Offset
}

// HitTest returns the elements under position, front-to-back: the topmost
// (last-painted) element first, ancestors after their descendants. Elements
// whose layout is stale contribute no hits. A stale id returns an empty
// sequence, never a panic.
//
// The result is handed off to an external input-dispatch layer; the core
// does not interpret pointer semantics.
func (t *Tree) HitTest(id ElementID, position graphics.Offset) []HitEntry {
	var hits []HitEntry
	t.hitTest(id, position, &hits)
	return hits
}

func (t *Tree) hitTest(id ElementID, position graphics.Offset, hits *[]HitEntry) bool {
	element, ok := t.Get(id)
	if !ok {
		return false
	}
	if element.kind != KindRender {
		// Transparent node: delegate to render descendants in place.
		hit := false
		children := t.RenderChildren(id)
		for i := len(children) - 1; i >= 0; i-- {
			if t.hitTest(children[i], position, hits) {
				hit = true
			}
		}
		return hit
	}

	state := element.renderState
	size, laidOut := state.Size()
	if !laidOut {
		return false
	}
	if !hitTestSelf(element.object, position, size) {
		return false
	}

	// Children are painted in order, so the last child is topmost: visit in
	// reverse to keep the result front-to-back.
	children := t.RenderChildren(id)
	for i := len(children) - 1; i >= 0; i-- {
		child, ok := t.Get(children[i])
		if !ok {
			continue
		}
		local := position.Sub(child.renderState.Offset())
		t.hitTest(children[i], local, hits)
	}

	*hits = append(*hits, HitEntry{Element: id, Position: position})
	return true
}

func hitTestSelf(object render.Object, position graphics.Offset, size graphics.Size) bool {
	if tester, ok := object.(render.HitTester); ok {
		return tester.HitTestSelf(position, size)
	}
	return size.Contains(position)
}
