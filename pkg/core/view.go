package core

import (
	"reflect"

	"github.com/go-loom/loom/pkg/render"
)

// View is an immutable description of desired UI at a point in time. The
// pipeline does not interpret view semantics; it only uses the concrete type
// and Key for reconciliation identity.
type View interface {
	// Key disambiguates siblings of the same type. A *GlobalKey additionally
	// allows state-preserving moves across parents.
	Key() any
}

// ComponentView is a view with stateless build logic.
type ComponentView interface {
	View
	Build(ctx BuildContext) View
}

// StatefulView is a view whose element owns a persistent State object.
type StatefulView interface {
	View
	CreateState() State
}

// RenderView is a view backed by a render object.
type RenderView interface {
	View
	CreateObject(ctx BuildContext) render.Object
	UpdateObject(ctx BuildContext, object render.Object)
}

// SingleChildView is implemented by render views with one child description.
type SingleChildView interface {
	ChildView() View
}

// MultiChildView is implemented by render views with an ordered child list.
type MultiChildView interface {
	ChildViews() []View
}

// Optional lifecycle hooks on component views.
type (
	// InitHook runs once when the hosting element mounts.
	InitHook interface {
		Init(ctx BuildContext)
	}
	// DidUpdateHook runs when the element is updated in place with a new
	// view of the same type and key.
	DidUpdateHook interface {
		DidUpdate(old View)
	}
	// DeactivateHook runs when the hosting element is deactivated.
	DeactivateHook interface {
		Deactivate()
	}
	// DisposeHook runs when the hosting element is disposed.
	DisposeHook interface {
		Dispose()
	}
)

// State is the persistent object owned by a stateful element. It survives
// in-place updates and deactivation; it is destroyed only on dispose.
type State interface {
	// Init runs once after the element mounts, never again.
	Init(ctx BuildContext)
	// Build returns the child description for the current state.
	Build(ctx BuildContext) View
	// DidUpdate runs when the element's view is replaced in place.
	DidUpdate(old StatefulView)
	// Activate runs when the element is reinserted after deactivation.
	Activate()
	// Deactivate runs when the element is detached from its parent.
	Deactivate()
	// Dispose runs once when the element becomes defunct.
	Dispose()
}

// BuildContext is passed explicitly to every build call; it is only valid
// for the duration of the call unless retained by a State for triggering
// rebuilds.
type BuildContext interface {
	// ElementID identifies the element being built.
	ElementID() ElementID
	// MarkNeedsBuild schedules the element for rebuild in the next frame.
	MarkNeedsBuild()
}

// GlobalKey identifies an element uniquely across the whole tree, enabling
// state-preserving moves between parents. Keys compare by pointer identity;
// uniqueness per tree is enforced by the pipeline owner's key registry.
type GlobalKey struct {
	label string
}

// NewGlobalKey creates a global key. The label is used in diagnostics only.
func NewGlobalKey(label string) *GlobalKey {
	return &GlobalKey{label: label}
}

func (k *GlobalKey) String() string {
	if k.label != "" {
		return "GlobalKey(" + k.label + ")"
	}
	return "GlobalKey"
}

// CanUpdate reports whether an element configured with existing can be
// updated in place with next: same concrete type and same key.
func CanUpdate(existing, next View) bool {
	if existing == nil || next == nil {
		return false
	}
	if reflect.TypeOf(existing) != reflect.TypeOf(next) {
		return false
	}
	return reflect.DeepEqual(existing.Key(), next.Key())
}

// KindOf returns the element kind a view inflates to. Render takes priority
// so a view may not accidentally masquerade as multiple kinds.
func KindOf(view View) (Kind, bool) {
	switch view.(type) {
	case RenderView:
		return KindRender, true
	case StatefulView:
		return KindStateful, true
	case ComponentView:
		return KindComponent, true
	default:
		return 0, false
	}
}
