package core

// Lifecycle is the four-state machine attached to every element.
//
// Valid transitions:
//
//	Initial  -> Active   (mount)
//	Active   -> Inactive (deactivate)
//	Inactive -> Active   (activate)
//	Active   -> Defunct  (dispose)
//	Inactive -> Defunct  (dispose)
//
// Defunct is terminal, and nothing ever transitions back into Initial.
// Violations are programming errors in the reconciliation algorithm and are
// raised by panicking, never silently corrected.
type Lifecycle uint8

const (
	// LifecycleInitial is the state of a freshly created, unmounted element.
	LifecycleInitial Lifecycle = iota
	// LifecycleActive is the state of a mounted element participating in
	// build, layout and paint.
	LifecycleActive
	// LifecycleInactive is the state of an element detached from its parent
	// but retained for possible reinsertion within the same frame.
	LifecycleInactive
	// LifecycleDefunct is the terminal state of a disposed element.
	LifecycleDefunct
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleInitial:
		return "initial"
	case LifecycleActive:
		return "active"
	case LifecycleInactive:
		return "inactive"
	case LifecycleDefunct:
		return "defunct"
	default:
		return "invalid"
	}
}

// CanTransitionTo reports whether the transition from l to next is valid.
func (l Lifecycle) CanTransitionTo(next Lifecycle) bool {
	switch l {
	case LifecycleInitial:
		return next == LifecycleActive
	case LifecycleActive:
		return next == LifecycleInactive || next == LifecycleDefunct
	case LifecycleInactive:
		return next == LifecycleActive || next == LifecycleDefunct
	default:
		return false
	}
}
