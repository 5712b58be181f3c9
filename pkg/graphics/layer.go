package graphics

import "sync"

// Layer is the cached paint output of a repaint boundary.
//
// A layer has stable identity: parent boundaries record a reference to the
// layer, not its content, so replacing the content (a repaint) never requires
// the parent to re-record. Never replace a boundary's layer; mark it dirty
// and set new content instead.
type Layer struct {
	mu       sync.Mutex
	content  *DisplayList
	size     Size
	dirty    bool
	disposed bool
}

// NewLayer creates an empty dirty layer.
func NewLayer() *Layer {
	return &Layer{dirty: true}
}

// MarkDirty flags the layer content as stale.
func (l *Layer) MarkDirty() {
	l.mu.Lock()
	l.dirty = true
	l.mu.Unlock()
}

// Dirty returns true if the layer content is stale.
func (l *Layer) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// SetContent replaces the layer content and clears the dirty flag.
func (l *Layer) SetContent(content *DisplayList) {
	l.mu.Lock()
	l.content = content
	if content != nil {
		l.size = content.Size()
	}
	l.dirty = false
	l.mu.Unlock()
}

// Content returns the current display list, which may be nil before the
// first paint or after disposal.
func (l *Layer) Content() *DisplayList {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.content
}

// Size returns the size of the most recently recorded content.
func (l *Layer) Size() Size {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Dispose releases the layer content. A disposed layer must not be painted.
func (l *Layer) Dispose() {
	l.mu.Lock()
	l.content = nil
	l.disposed = true
	l.mu.Unlock()
}

// Disposed returns true once Dispose has been called.
func (l *Layer) Disposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

// Walk visits this layer and every child boundary layer referenced by its
// content, depth-first in paint order. Visiting stops early if visitor
// returns false.
func (l *Layer) Walk(visitor func(*Layer) bool) {
	l.walk(visitor)
}

func (l *Layer) walk(visitor func(*Layer) bool) bool {
	if !visitor(l) {
		return false
	}
	content := l.Content()
	if content == nil {
		return true
	}
	for _, child := range content.ChildLayers() {
		if !child.walk(visitor) {
			return false
		}
	}
	return true
}
