// Package errors provides structured error handling for the Loom pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by tree lookups on stale or removed element ids.
// Dangling ids are an expected transient condition during reconciliation, so
// this is an ordinary error, never a panic.
var ErrNotFound = errors.New("element not found")

// ErrRootAttached is returned when a root view is attached while another
// root is already mounted.
var ErrRootAttached = errors.New("root already attached")

// ErrFrameCancelled is returned when a frame is aborted between units of
// work by its cancellation context.
var ErrFrameCancelled = errors.New("frame cancelled")

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLifecycle indicates an invalid element lifecycle transition.
	KindLifecycle
	// KindStructural indicates an operation on a stale or removed element id.
	KindStructural
	// KindBuild indicates a view build failure.
	KindBuild
	// KindLayout indicates a layout contract violation.
	KindLayout
	// KindPaint indicates a paint failure.
	KindPaint
	// KindBudget indicates a phase exceeded its frame budget.
	KindBudget
	// KindCancelled indicates a frame was cancelled mid-flight.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindStructural:
		return "structural"
	case KindBuild:
		return "build"
	case KindLayout:
		return "layout"
	case KindPaint:
		return "paint"
	case KindBudget:
		return "budget"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// PipelineError represents a structured error in the Loom pipeline.
type PipelineError struct {
	// Op is the operation that failed (e.g., "pipeline.FlushLayout").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// LifecycleError reports an invalid element lifecycle transition. These are
// programming errors in the reconciliation logic, not recoverable
// conditions: the framework raises them by panicking so that bugs surface
// immediately and tests can detect them with recover.
type LifecycleError struct {
	// Op is the operation that attempted the transition (e.g., "mount").
	Op string
	// From and To name the attempted transition.
	From string
	To   string
	// Element is the id of the element involved, if known.
	Element uint64
}

func (e *LifecycleError) Error() string {
	if e.Element != 0 {
		return fmt.Sprintf("invalid lifecycle transition %s -> %s in %s (element %d)", e.From, e.To, e.Op, e.Element)
	}
	return fmt.Sprintf("invalid lifecycle transition %s -> %s in %s", e.From, e.To, e.Op)
}

// BuildError represents a failure during a view build. Build failures are
// recoverable at the subtree level: the pipeline substitutes a placeholder
// for the failed subtree and continues with siblings.
type BuildError struct {
	// View is the type name of the view whose build failed.
	View string
	// Element is the id of the hosting element.
	Element uint64
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s build: %v", e.View, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s build: %v", e.View, e.Err)
	}
	return fmt.Sprintf("unknown error in %s build", e.View)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
