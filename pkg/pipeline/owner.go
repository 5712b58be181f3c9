package pipeline

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// ErrorViewBuilder creates the fallback view shown in place of a subtree
// whose build failed. Returning nil falls back to the built-in placeholder.
type ErrorViewBuilder func(err *errors.BuildError) core.View

// Options tunes a pipeline owner.
type Options struct {
	// BuildWorkers bounds parallel builds of independent dirty subtrees.
	// Values below 2 select the sequential build path.
	BuildWorkers int
	// Logger receives structured pipeline diagnostics. Nil disables logging.
	Logger *zerolog.Logger
	// ErrorView overrides the placeholder used for failed subtrees.
	ErrorView ErrorViewBuilder
}

// Owner composes the element tree, the rebuild queue and the layout/paint
// work-lists, and exposes the dirty-mark protocol and the three flush phases
// to external callers (frame coordinator, embedder).
type Owner struct {
	tree  *core.Tree
	queue *RebuildQueue
	keys  *KeyRegistry
	root  *RootManager

	log          zerolog.Logger
	errorView    ErrorViewBuilder
	buildWorkers int

	mu         sync.Mutex
	layoutList []core.ElementID
	paintList  []core.ElementID
	inactive   map[core.ElementID]struct{}

	// OnNeedsFrame is called when new work is scheduled, signalling the
	// embedder that a frame should be rendered under on-demand scheduling.
	OnNeedsFrame func()
}

// NewOwner creates a pipeline owner with an empty tree.
func NewOwner(opts Options) *Owner {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	o := &Owner{
		tree:         core.NewTree(),
		queue:        NewRebuildQueue(),
		keys:         NewKeyRegistry(),
		log:          log,
		errorView:    opts.ErrorView,
		buildWorkers: opts.BuildWorkers,
		inactive:     make(map[core.ElementID]struct{}),
	}
	o.root = &RootManager{owner: o}
	return o
}

// Tree returns the element tree.
func (o *Owner) Tree() *core.Tree {
	return o.tree
}

// Keys returns the global key registry.
func (o *Owner) Keys() *KeyRegistry {
	return o.keys
}

// Root returns the root manager.
func (o *Owner) Root() *RootManager {
	return o.root
}

// Attach mounts view as the tree root and builds its subtree. It fails with
// errors.ErrRootAttached if a root is already mounted.
func (o *Owner) Attach(view core.View) (core.ElementID, error) {
	return o.root.Mount(view)
}

// Detach unmounts and disposes the root subtree.
func (o *Owner) Detach() error {
	return o.root.Unmount()
}

// NeedsBuild reports whether elements await rebuild.
func (o *Owner) NeedsBuild() bool {
	return o.queue.Len() > 0
}

// NeedsLayout reports whether relayout boundaries await layout.
func (o *Owner) NeedsLayout() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.layoutList) > 0
}

// NeedsPaint reports whether repaint boundaries await paint.
func (o *Owner) NeedsPaint() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.paintList) > 0
}

// NeedsWork reports whether any phase has pending work.
func (o *Owner) NeedsWork() bool {
	return o.NeedsBuild() || o.NeedsLayout() || o.NeedsPaint()
}

// LayerTree returns the composed layer tree rooted at the root repaint
// boundary, or nil before the first paint. The result is handed to an
// external renderer.
func (o *Owner) LayerTree() *graphics.Layer {
	rootRender := o.root.RenderRoot()
	if rootRender.IsNone() {
		return nil
	}
	element, ok := o.tree.Get(rootRender)
	if !ok {
		return nil
	}
	return element.RenderState().Layer()
}

// HitTest returns the elements under position, topmost first.
func (o *Owner) HitTest(position graphics.Offset) []core.HitEntry {
	rootRender := o.root.RenderRoot()
	if rootRender.IsNone() {
		return nil
	}
	return o.tree.HitTest(rootRender, position)
}

func (o *Owner) needsFrame() {
	if o.OnNeedsFrame != nil {
		o.OnNeedsFrame()
	}
}

// scheduleLayout registers a relayout boundary with the layout work-list.
// The FlagInLayoutList bit keeps registration idempotent.
func (o *Owner) scheduleLayout(id core.ElementID, state *render.RenderState) {
	if !state.TrySet(render.FlagInLayoutList) {
		return
	}
	o.mu.Lock()
	o.layoutList = append(o.layoutList, id)
	o.mu.Unlock()
	o.needsFrame()
}

// schedulePaint registers a repaint boundary with the paint work-list.
func (o *Owner) schedulePaint(id core.ElementID, state *render.RenderState) {
	if !state.TrySet(render.FlagInPaintList) {
		return
	}
	o.mu.Lock()
	o.paintList = append(o.paintList, id)
	o.mu.Unlock()
	o.needsFrame()
}

// drainLayoutList removes and returns the layout work-list, parents first.
func (o *Owner) drainLayoutList() []core.ElementID {
	o.mu.Lock()
	list := o.layoutList
	o.layoutList = nil
	o.mu.Unlock()
	o.sortByDepth(list)
	return list
}

// drainPaintList removes and returns the paint work-list, parents first.
func (o *Owner) drainPaintList() []core.ElementID {
	o.mu.Lock()
	list := o.paintList
	o.paintList = nil
	o.mu.Unlock()
	o.sortByDepth(list)
	return list
}

func (o *Owner) sortByDepth(ids []core.ElementID) {
	slices.SortFunc(ids, func(a, b core.ElementID) int {
		return depthOf(o.tree, a) - depthOf(o.tree, b)
	})
}
