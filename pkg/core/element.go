package core

import (
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/render"
)

// Kind tags the closed set of element variants. The set is fixed, so the
// tree dispatches on the tag instead of paying for interface dispatch on the
// hot reconciliation path; only user-defined view logic stays behind
// interfaces.
type Kind uint8

const (
	// KindComponent hosts stateless build logic.
	KindComponent Kind = iota
	// KindStateful hosts build logic with a persistent State object.
	KindStateful
	// KindRender hosts a render object and its RenderState.
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindStateful:
		return "stateful"
	case KindRender:
		return "render"
	default:
		return "invalid"
	}
}

// Slot records an element's position among its siblings; reconciliation uses
// it to detect moves.
type Slot struct {
	Index int
	Key   any
}

// Element is a live node of the UI tree: a view configuration combined with
// mutable lifecycle and render state.
type Element struct {
	id    ElementID
	kind  Kind
	view  View
	state State

	object      render.Object
	renderState *render.RenderState

	parent     ElementID
	children   []ElementID
	slot       Slot
	parentData any

	lifecycle Lifecycle
	depth     int
	dirty     bool
}

// NewElement creates an unmounted element for the given view. ok is false if
// the view implements none of the three view kinds.
func NewElement(view View) (*Element, bool) {
	kind, ok := KindOf(view)
	if !ok {
		return nil, false
	}
	el := &Element{kind: kind, view: view, lifecycle: LifecycleInitial}
	if kind == KindRender {
		el.renderState = render.NewRenderState()
	}
	return el, true
}

// ID returns the element's tree handle, NoElement before insertion.
func (e *Element) ID() ElementID { return e.id }

// Kind returns the element variant tag.
func (e *Element) Kind() Kind { return e.kind }

// View returns the current view configuration.
func (e *Element) View() View { return e.view }

// SetView replaces the view configuration during an in-place update.
func (e *Element) SetView(view View) { e.view = view }

// State returns the persistent state object of a stateful element.
func (e *Element) State() State { return e.state }

// SetState attaches the persistent state object at mount.
func (e *Element) SetState(state State) { e.state = state }

// Object returns the render object of a render element.
func (e *Element) Object() render.Object { return e.object }

// SetObject attaches the render object at mount.
func (e *Element) SetObject(object render.Object) { e.object = object }

// RenderState returns the render state of a render element, nil otherwise.
func (e *Element) RenderState() *render.RenderState { return e.renderState }

// Parent returns the parent element id, NoElement for the root.
func (e *Element) Parent() ElementID { return e.parent }

// SetParent reattaches the element to a (possibly new) parent.
func (e *Element) SetParent(parent ElementID) { e.parent = parent }

// Children returns the ordered child ids. The slice is owned by the element;
// callers must not mutate it.
func (e *Element) Children() []ElementID { return e.children }

// SetChildren replaces the ordered child list.
func (e *Element) SetChildren(children []ElementID) { e.children = children }

// Slot returns the element's position among its siblings.
func (e *Element) Slot() Slot { return e.slot }

// SetSlot updates the element's sibling position.
func (e *Element) SetSlot(slot Slot) { e.slot = slot }

// ParentData returns the placement metadata attached by the parent.
func (e *Element) ParentData() any { return e.parentData }

// SetParentData attaches placement metadata. Written exclusively by the
// parent render element during its own layout.
func (e *Element) SetParentData(data any) { e.parentData = data }

// Lifecycle returns the element's current lifecycle state.
func (e *Element) Lifecycle() Lifecycle { return e.lifecycle }

// Depth returns the element's distance from the root.
func (e *Element) Depth() int { return e.depth }

// SetDepth updates the cached tree depth.
func (e *Element) SetDepth(depth int) { e.depth = depth }

// Dirty returns true if the element awaits rebuild.
func (e *Element) Dirty() bool { return e.dirty }

// SetDirty flags or clears the pending-rebuild marker.
func (e *Element) SetDirty(dirty bool) { e.dirty = dirty }

// TransitionTo moves the element to the next lifecycle state. An invalid
// transition is a programming error in the reconciliation algorithm and
// panics with a *errors.LifecycleError.
func (e *Element) TransitionTo(next Lifecycle, op string) {
	if !e.lifecycle.CanTransitionTo(next) {
		panic(&errors.LifecycleError{
			Op:      op,
			From:    e.lifecycle.String(),
			To:      next.String(),
			Element: uint64(e.id),
		})
	}
	e.lifecycle = next
}
