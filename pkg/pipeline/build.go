package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/render"
)

// buildContext is the explicit context passed to every build call. Its
// lifetime is scoped to the call unless retained by a State for scheduling
// rebuilds.
type buildContext struct {
	owner *Owner
	id    core.ElementID
}

func (c *buildContext) ElementID() core.ElementID { return c.id }

func (c *buildContext) MarkNeedsBuild() { c.owner.MarkNeedsBuild(c.id) }

// ErrorPlaceholder is the component view substituted for a subtree whose
// build failed. It renders nothing; the error has already been reported.
type ErrorPlaceholder struct {
	Err *errors.BuildError
}

// Key returns nil: placeholders never match a keyed sibling.
func (p ErrorPlaceholder) Key() any { return nil }

// Build returns nil, rendering nothing in place of the failed subtree.
func (p ErrorPlaceholder) Build(ctx core.BuildContext) core.View { return nil }

// FlushBuild drains the rebuild queue, shallowest element first, rebuilding
// until no dirty elements remain, then disposes deactivated elements that
// were never reclaimed. Cancellation is honored between elements; remaining
// work is requeued and the tree stays consistent.
func (o *Owner) FlushBuild(ctx context.Context) error {
	_, err := o.flushBuild(ctx, nil)
	return err
}

// flushBuild is FlushBuild with an optional budget check consulted between
// elements. When the check trips, remaining work is requeued for the next
// frame and flushBuild returns without error; the caller observes the
// truncation through NeedsBuild.
func (o *Owner) flushBuild(ctx context.Context, overBudget func() bool) (int, error) {
	built := 0
	for {
		batch := o.queue.Drain(o.tree)
		if len(batch) == 0 {
			break
		}

		if o.buildWorkers > 1 {
			n, err := o.buildBatchParallel(ctx, overBudget, batch)
			built += n
			if err != nil {
				return built, err
			}
			continue
		}

		for i, id := range batch {
			if err := ctx.Err(); err != nil {
				o.requeue(batch[i:])
				return built, &errors.PipelineError{
					Op:   "pipeline.FlushBuild",
					Kind: errors.KindCancelled,
					Err:  errors.ErrFrameCancelled,
				}
			}
			if overBudget != nil && overBudget() {
				o.requeue(batch[i:])
				return built, nil
			}
			if o.rebuildIfNeeded(id) {
				built++
			}
		}
	}
	o.finalizeInactive()
	return built, nil
}

// buildBatchParallel rebuilds independent dirty subtrees concurrently.
// Elements with a dirty ancestor in the same batch are requeued: the
// ancestor's rebuild either re-dirties or obviates them. Reconciliation for
// any single parent stays sequential inside its worker.
func (o *Owner) buildBatchParallel(ctx context.Context, overBudget func() bool, batch []core.ElementID) (int, error) {
	inBatch := make(map[core.ElementID]struct{}, len(batch))
	for _, id := range batch {
		inBatch[id] = struct{}{}
	}

	independent := batch[:0]
	for _, id := range batch {
		if o.hasAncestorIn(id, inBatch) {
			o.queue.Add(id)
			continue
		}
		independent = append(independent, id)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.buildWorkers)
	var built atomic.Int64
	var truncated atomic.Bool

	for _, id := range independent {
		id := id
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				o.requeue([]core.ElementID{id})
				return err
			}
			if truncated.Load() || (overBudget != nil && overBudget()) {
				truncated.Store(true)
				o.requeue([]core.ElementID{id})
				return nil
			}
			if o.rebuildIfNeeded(id) {
				built.Add(1)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return int(built.Load()), &errors.PipelineError{
			Op:   "pipeline.FlushBuild",
			Kind: errors.KindCancelled,
			Err:  errors.ErrFrameCancelled,
		}
	}
	return int(built.Load()), nil
}

func (o *Owner) hasAncestorIn(id core.ElementID, set map[core.ElementID]struct{}) bool {
	current := o.tree.Parent(id)
	for !current.IsNone() {
		if _, ok := set[current]; ok {
			return true
		}
		current = o.tree.Parent(current)
	}
	return false
}

func (o *Owner) requeue(ids []core.ElementID) {
	for _, id := range ids {
		if element, ok := o.tree.Get(id); ok && element.Dirty() {
			o.queue.Add(id)
		}
	}
}

func (o *Owner) rebuildIfNeeded(id core.ElementID) bool {
	element, ok := o.tree.Get(id)
	if !ok || !element.Dirty() || element.Lifecycle() != core.LifecycleActive {
		return false
	}
	o.performRebuild(element)
	return true
}

// performRebuild invokes the element's build logic and reconciles the
// returned child descriptions against the existing children.
func (o *Owner) performRebuild(element *core.Element) {
	element.SetDirty(false)
	ctx := &buildContext{owner: o, id: element.ID()}

	switch element.Kind() {
	case core.KindComponent:
		view := element.View().(core.ComponentView)
		built := o.safeBuild(element, func() core.View { return view.Build(ctx) })
		o.reconcileSingle(element, built)

	case core.KindStateful:
		built := o.safeBuild(element, func() core.View { return element.State().Build(ctx) })
		o.reconcileSingle(element, built)

	case core.KindRender:
		view := element.View().(core.RenderView)
		view.UpdateObject(ctx, element.Object())
		switch typed := element.View().(type) {
		case core.SingleChildView:
			o.reconcileSingle(element, typed.ChildView())
		case core.MultiChildView:
			o.reconcileList(element, typed.ChildViews())
		}
	}
}

// safeBuild executes a build function with panic recovery. A failed build is
// reported and replaced by an error placeholder so that siblings and the
// rest of the frame continue processing.
func (o *Owner) safeBuild(element *core.Element, buildFn func() core.View) core.View {
	var built core.View
	var buildErr *errors.BuildError

	func() {
		defer func() {
			if r := recover(); r != nil {
				buildErr = &errors.BuildError{
					View:       reflect.TypeOf(element.View()).String(),
					Element:    uint64(element.ID()),
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				}
			}
		}()
		built = buildFn()
	}()

	if buildErr != nil {
		errors.ReportBuildError(buildErr)
		o.log.Warn().
			Str("view", buildErr.View).
			Uint64("element", buildErr.Element).
			Msg("substituting error placeholder for failed subtree")
		if o.errorView != nil {
			if view := o.errorView(buildErr); view != nil {
				return view
			}
		}
		return ErrorPlaceholder{Err: buildErr}
	}
	return built
}

// reconcileSingle reconciles a single child description.
func (o *Owner) reconcileSingle(element *core.Element, built core.View) {
	old := element.Children()
	var existing core.ElementID
	if len(old) > 0 {
		existing = old[0]
	}

	var key any
	if built != nil {
		key = built.Key()
	}
	child := o.updateChild(element, existing, built, core.Slot{Index: 0, Key: key})

	if child.IsNone() {
		element.SetChildren(nil)
	} else {
		element.SetChildren([]core.ElementID{child})
	}
	if !slices.Equal(old, element.Children()) {
		o.markStructureChanged(element)
	}
}

// updateChild reconciles one child slot against a new description:
// same type and key updates in place, a mismatch disposes the old subtree
// post-order and mounts a new one, and a vanished description deactivates
// the child for possible state-preserving reinsertion within the frame.
func (o *Owner) updateChild(parent *core.Element, existing core.ElementID, view core.View, slot core.Slot) core.ElementID {
	if view == nil {
		if !existing.IsNone() {
			o.deactivateChild(existing)
		}
		return core.NoElement
	}

	if existingEl, ok := o.tree.Get(existing); ok {
		if core.CanUpdate(existingEl.View(), view) {
			o.updateInPlace(existingEl, view, slot)
			return existing
		}
		o.disposeChild(existing)
	}
	return o.inflate(view, parent.ID(), slot, parent.Depth()+1)
}

// updateInPlace reuses an existing element for a new view of the same type
// and key, preserving its id and state. An equal view is a no-op beyond the
// slot move: the subtree is already the product of an equal description, so
// rebuilding it would only churn. A changed render view additionally dirties
// layout and paint, since UpdateObject alone leaves the committed geometry
// and the boundary layer stale.
func (o *Owner) updateInPlace(element *core.Element, view core.View, slot core.Slot) {
	old := element.View()
	element.SetSlot(slot)
	if reflect.DeepEqual(old, view) {
		return
	}
	element.SetView(view)

	switch element.Kind() {
	case core.KindStateful:
		element.State().DidUpdate(old.(core.StatefulView))
	case core.KindComponent:
		if hook, ok := view.(core.DidUpdateHook); ok {
			hook.DidUpdate(old)
		}
	case core.KindRender:
		o.MarkNeedsLayout(element.ID())
		o.MarkNeedsPaint(element.ID())
	}
	o.MarkNeedsBuild(element.ID())
}

// reconcileList reconciles an ordered child list by position and key:
// stable prefix and suffix update in place, keyed middles are matched
// through a key map, and unmatched old children are deactivated.
func (o *Owner) reconcileList(element *core.Element, views []core.View) {
	views = slices.DeleteFunc(slices.Clone(views), func(v core.View) bool { return v == nil })
	old := element.Children()
	depth := element.Depth() + 1
	newChildren := make([]core.ElementID, len(views))

	// Forward scan: matching prefix updates in place.
	top := 0
	for top < len(old) && top < len(views) {
		oldEl, ok := o.tree.Get(old[top])
		if !ok || !core.CanUpdate(oldEl.View(), views[top]) {
			break
		}
		o.updateInPlace(oldEl, views[top], core.Slot{Index: top, Key: views[top].Key()})
		newChildren[top] = old[top]
		top++
	}

	// Backward scan: matching suffix, renumbered below.
	oldTail, newTail := len(old)-1, len(views)-1
	for oldTail >= top && newTail >= top {
		oldEl, ok := o.tree.Get(old[oldTail])
		if !ok || !core.CanUpdate(oldEl.View(), views[newTail]) {
			break
		}
		o.updateInPlace(oldEl, views[newTail], core.Slot{Index: newTail, Key: views[newTail].Key()})
		newChildren[newTail] = old[oldTail]
		oldTail--
		newTail--
	}

	// Middle old children: keyed ones wait in a map for reuse, unkeyed ones
	// are deactivated (reclaimable from the inactive pool until end of frame).
	oldKeyed := make(map[any]core.ElementID)
	for j := top; j <= oldTail; j++ {
		oldEl, ok := o.tree.Get(old[j])
		if !ok {
			continue
		}
		if key := oldEl.View().Key(); key != nil {
			oldKeyed[key] = old[j]
		} else {
			o.deactivateChild(old[j])
		}
	}

	// Middle new views: match by key or inflate.
	for k := top; k <= newTail; k++ {
		view := views[k]
		slot := core.Slot{Index: k, Key: view.Key()}
		if key := view.Key(); key != nil {
			if oldID, hit := oldKeyed[key]; hit {
				if oldEl, ok := o.tree.Get(oldID); ok && core.CanUpdate(oldEl.View(), view) {
					o.updateInPlace(oldEl, view, slot)
					newChildren[k] = oldID
					delete(oldKeyed, key)
					continue
				}
			}
		}
		newChildren[k] = o.inflate(view, element.ID(), slot, depth)
	}

	// Leftover keyed old children were not reused this pass.
	for _, id := range oldKeyed {
		o.deactivateChild(id)
	}

	newChildren = slices.DeleteFunc(newChildren, func(id core.ElementID) bool { return id.IsNone() })
	changed := !slices.Equal(old, newChildren)
	element.SetChildren(newChildren)
	if changed {
		o.markStructureChanged(element)
	}
}

// inflate creates (or reclaims) an element for view and mounts it. Inactive
// elements with a matching type and key are reactivated instead of being
// rebuilt from scratch, preserving their id and state.
func (o *Owner) inflate(view core.View, parent core.ElementID, slot core.Slot, depth int) core.ElementID {
	if gk, ok := view.Key().(*core.GlobalKey); ok {
		if id, found := o.keys.Lookup(gk); found {
			if element, live := o.tree.Get(id); live && element.Lifecycle() == core.LifecycleInactive {
				if core.CanUpdate(element.View(), view) {
					o.removeFromInactive(id)
					o.activateChild(element, parent, slot, depth)
					o.updateInPlace(element, view, slot)
					return id
				}
			}
		}
	}
	if view.Key() != nil {
		if id, ok := o.takeInactiveMatch(view); ok {
			element, _ := o.tree.Get(id)
			o.activateChild(element, parent, slot, depth)
			o.updateInPlace(element, view, slot)
			return id
		}
	}

	element, ok := core.NewElement(view)
	if !ok {
		panic(&errors.PipelineError{
			Op:   "pipeline.inflate",
			Kind: errors.KindBuild,
			Err:  fmt.Errorf("view %T implements no view kind", view),
		})
	}
	o.tree.Insert(element)
	o.mount(element, parent, slot, depth)
	return element.ID()
}

// mount registers a fresh element with the tree, runs init hooks exactly
// once, and recursively builds its children.
func (o *Owner) mount(element *core.Element, parent core.ElementID, slot core.Slot, depth int) {
	element.SetParent(parent)
	element.SetSlot(slot)
	element.SetDepth(depth)
	element.TransitionTo(core.LifecycleActive, "mount")

	if gk, ok := element.View().Key().(*core.GlobalKey); ok {
		o.keys.Register(gk, element.ID())
	}

	ctx := &buildContext{owner: o, id: element.ID()}
	switch element.Kind() {
	case core.KindComponent:
		if hook, ok := element.View().(core.InitHook); ok {
			hook.Init(ctx)
		}
	case core.KindStateful:
		state := element.View().(core.StatefulView).CreateState()
		element.SetState(state)
		state.Init(ctx)
	case core.KindRender:
		view := element.View().(core.RenderView)
		object := view.CreateObject(ctx)
		element.SetObject(object)
		if boundary, ok := object.(render.RepaintBoundary); ok && boundary.IsRepaintBoundary() {
			element.RenderState().Set(render.FlagRepaintBoundary)
		}
	}

	element.SetDirty(true)
	o.performRebuild(element)
}

// deactivateChild detaches a subtree from its parent without disposing it:
// state is preserved so the subtree can be cheaply reinserted (list
// reordering). Unclaimed subtrees are disposed at end of flush.
func (o *Owner) deactivateChild(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok {
		return
	}
	o.deactivateRecursive(element)
	element.SetParent(core.NoElement)
	o.mu.Lock()
	o.inactive[id] = struct{}{}
	o.mu.Unlock()
}

func (o *Owner) deactivateRecursive(element *core.Element) {
	element.TransitionTo(core.LifecycleInactive, "deactivate")
	switch element.Kind() {
	case core.KindStateful:
		element.State().Deactivate()
	case core.KindComponent:
		if hook, ok := element.View().(core.DeactivateHook); ok {
			hook.Deactivate()
		}
	}
	for _, child := range element.Children() {
		if childEl, ok := o.tree.Get(child); ok {
			o.deactivateRecursive(childEl)
		}
	}
}

// activateChild reattaches a deactivated subtree to a (possibly new) parent
// and slot. Render elements re-enter layout and paint through their new
// ancestor chain.
func (o *Owner) activateChild(element *core.Element, parent core.ElementID, slot core.Slot, depth int) {
	element.SetParent(parent)
	element.SetSlot(slot)
	o.activateRecursive(element, depth)
}

func (o *Owner) activateRecursive(element *core.Element, depth int) {
	element.TransitionTo(core.LifecycleActive, "activate")
	element.SetDepth(depth)
	switch element.Kind() {
	case core.KindStateful:
		element.State().Activate()
	case core.KindRender:
		element.RenderState().Set(render.FlagNeedsLayout | render.FlagNeedsPaint)
	}
	for _, child := range element.Children() {
		if childEl, ok := o.tree.Get(child); ok {
			o.activateRecursive(childEl, depth+1)
		}
	}
}

// disposeChild permanently destroys a subtree, children first (post-order),
// releasing render resources and unregistering global keys.
func (o *Owner) disposeChild(id core.ElementID) {
	element, ok := o.tree.Get(id)
	if !ok {
		return
	}
	for _, child := range slices.Clone(element.Children()) {
		o.disposeChild(child)
	}
	element.SetChildren(nil)

	switch element.Kind() {
	case core.KindStateful:
		element.State().Dispose()
	case core.KindComponent:
		if hook, ok := element.View().(core.DisposeHook); ok {
			hook.Dispose()
		}
	case core.KindRender:
		if disposable, ok := element.Object().(render.Disposable); ok {
			disposable.Dispose()
		}
		element.RenderState().DisposeLayer()
	}

	if gk, ok := element.View().Key().(*core.GlobalKey); ok {
		o.keys.Unregister(gk, id)
	}

	element.TransitionTo(core.LifecycleDefunct, "dispose")
	o.removeFromInactive(id)
	if err := o.tree.Remove(id); err != nil && !stderrors.Is(err, errors.ErrNotFound) {
		o.log.Error().Err(err).Str("element", id.String()).Msg("remove after dispose failed")
	}
}

// finalizeInactive disposes elements that were deactivated during the flush
// and never reclaimed.
func (o *Owner) finalizeInactive() {
	o.mu.Lock()
	pending := make([]core.ElementID, 0, len(o.inactive))
	for id := range o.inactive {
		pending = append(pending, id)
	}
	clear(o.inactive)
	o.mu.Unlock()

	for _, id := range pending {
		o.disposeChild(id)
	}
}

func (o *Owner) removeFromInactive(id core.ElementID) {
	o.mu.Lock()
	delete(o.inactive, id)
	o.mu.Unlock()
}

// takeInactiveMatch claims an inactive element reusable for view, matching
// by concrete type and key.
func (o *Owner) takeInactiveMatch(view core.View) (core.ElementID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id := range o.inactive {
		element, ok := o.tree.Get(id)
		if !ok {
			delete(o.inactive, id)
			continue
		}
		if core.CanUpdate(element.View(), view) {
			delete(o.inactive, id)
			return id, true
		}
	}
	return core.NoElement, false
}

// markStructureChanged dirties layout and paint for the nearest render
// element affected by a change in child structure.
func (o *Owner) markStructureChanged(element *core.Element) {
	id := element.ID()
	if element.Kind() != core.KindRender {
		id = o.tree.RenderParent(id)
	}
	if id.IsNone() {
		return
	}
	o.MarkNeedsLayout(id)
	o.MarkNeedsPaint(id)
}
