// Package render defines the render-element boundary: the Object contract
// (constraints in, size out; offset in, paint ops out) and the per-element
// RenderState the pipelines mutate.
package render

import (
	stderrors "errors"
	"math"
	"sync/atomic"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
)

// errDoubleCommit signals the write-once-per-pass invariant was broken.
var errDoubleCommit = stderrors.New("geometry committed twice in one layout pass")

// Flags is an atomic bitset of per-element render state.
type Flags uint32

const (
	// FlagNeedsLayout marks the element as requiring layout this frame.
	FlagNeedsLayout Flags = 1 << iota
	// FlagNeedsPaint marks the element as requiring paint this frame.
	FlagNeedsPaint
	// FlagRelayoutBoundary marks an element below which layout dirtiness
	// does not propagate to the parent.
	FlagRelayoutBoundary
	// FlagRepaintBoundary marks an element below which paint dirtiness does
	// not propagate to the parent; enables layer caching.
	FlagRepaintBoundary
	// FlagInLayoutList records that the element is already registered with
	// the layout work-list.
	FlagInLayoutList
	// FlagInPaintList records that the element is already registered with
	// the paint work-list.
	FlagInPaintList
)

// Geometry is the cached result of one layout pass: the constraints the
// element received and the size it chose.
type Geometry struct {
	Constraints graphics.Constraints
	Size        graphics.Size
}

// RenderState is the mutable render state attached to every render element.
//
// The flags are plain atomics so diagnostics and scheduler budget checks may
// read dirtiness from any thread without taking the tree lock. The geometry
// cell is written exactly once per layout pass: invalidated when the pass
// visits the element, committed when its layout completes. Geometry is only
// valid to read once FlagNeedsLayout has been observed clear.
type RenderState struct {
	flags           atomic.Uint32
	geometry        atomic.Pointer[Geometry]
	lastConstraints atomic.Pointer[graphics.Constraints]
	offsetX         atomic.Uint64
	offsetY         atomic.Uint64

	// layer is only touched by the paint pipeline, which is single-threaded.
	layer *graphics.Layer
}

// NewRenderState creates render state for a freshly mounted element.
// New elements always need an initial layout and paint.
func NewRenderState() *RenderState {
	s := &RenderState{}
	s.Set(FlagNeedsLayout | FlagNeedsPaint)
	return s
}

// Has returns true if all the given flags are set.
func (s *RenderState) Has(flags Flags) bool {
	return Flags(s.flags.Load())&flags == flags
}

// Set sets the given flags.
func (s *RenderState) Set(flags Flags) {
	for {
		old := s.flags.Load()
		if s.flags.CompareAndSwap(old, old|uint32(flags)) {
			return
		}
	}
}

// Clear clears the given flags.
func (s *RenderState) Clear(flags Flags) {
	for {
		old := s.flags.Load()
		if s.flags.CompareAndSwap(old, old&^uint32(flags)) {
			return
		}
	}
}

// TrySet sets the given flags and reports whether any of them were
// previously clear. Mark entry points use this to stay idempotent: a flag
// that is already set means the element was marked earlier this frame.
func (s *RenderState) TrySet(flags Flags) bool {
	for {
		old := s.flags.Load()
		if Flags(old)&flags == flags {
			return false
		}
		if s.flags.CompareAndSwap(old, old|uint32(flags)) {
			return true
		}
	}
}

// InvalidateGeometry clears the geometry cell at the start of a relayout.
// The last received constraints remain readable via LastConstraints.
func (s *RenderState) InvalidateGeometry() {
	s.geometry.Store(nil)
}

// CommitGeometry writes the geometry cell. Committing twice without an
// intervening InvalidateGeometry is a programming error in the layout
// pipeline and panics.
func (s *RenderState) CommitGeometry(g Geometry) {
	snapshot := g
	if !s.geometry.CompareAndSwap(nil, &snapshot) {
		panic(&errors.PipelineError{
			Op:   "render.CommitGeometry",
			Kind: errors.KindLayout,
			Err:  errDoubleCommit,
		})
	}
	constraints := g.Constraints
	s.lastConstraints.Store(&constraints)
}

// Geometry returns the cached geometry. ok is false until the element has
// completed layout and its FlagNeedsLayout has been observed clear.
func (s *RenderState) Geometry() (Geometry, bool) {
	p := s.geometry.Load()
	if p == nil || s.Has(FlagNeedsLayout) {
		return Geometry{}, false
	}
	return *p, true
}

// Size returns the laid-out size, or false if layout has not completed.
func (s *RenderState) Size() (graphics.Size, bool) {
	g, ok := s.Geometry()
	return g.Size, ok
}

// CommittedSize returns the size in the geometry cell regardless of dirty
// flags. The layout pipeline uses it to compare sizes across passes before
// invalidating the cell.
func (s *RenderState) CommittedSize() (graphics.Size, bool) {
	p := s.geometry.Load()
	if p == nil {
		return graphics.Size{}, false
	}
	return p.Size, true
}

// LastConstraints returns the constraints received in the most recent layout
// pass, surviving geometry invalidation. Relayout boundaries re-lay-out with
// these when dirtied from below.
func (s *RenderState) LastConstraints() (graphics.Constraints, bool) {
	p := s.lastConstraints.Load()
	if p == nil {
		return graphics.Constraints{}, false
	}
	return *p, true
}

// Offset returns the cached offset assigned by the parent during its layout.
func (s *RenderState) Offset() graphics.Offset {
	return graphics.Offset{
		X: math.Float64frombits(s.offsetX.Load()),
		Y: math.Float64frombits(s.offsetY.Load()),
	}
}

// SetOffset stores the offset assigned by the parent.
func (s *RenderState) SetOffset(offset graphics.Offset) {
	s.offsetX.Store(math.Float64bits(offset.X))
	s.offsetY.Store(math.Float64bits(offset.Y))
}

// Layer returns the cached boundary layer, or nil if none exists yet.
func (s *RenderState) Layer() *graphics.Layer {
	return s.layer
}

// EnsureLayer returns the existing layer or creates one. The layer has
// stable identity: parents reference it, so it is never replaced, only
// marked dirty and given new content.
func (s *RenderState) EnsureLayer() *graphics.Layer {
	if s.layer == nil {
		s.layer = graphics.NewLayer()
	}
	return s.layer
}

// DisposeLayer releases the cached layer when the element leaves the tree.
func (s *RenderState) DisposeLayer() {
	if s.layer != nil {
		s.layer.Dispose()
		s.layer = nil
	}
}
