// Package core provides the element tree: the long-lived, mutable
// instantiation of immutable view descriptions.
//
// # Views and elements
//
// A View describes what the UI should look like at a point in time; an
// Element is that description's live counterpart at a particular tree
// location, carrying identity, lifecycle and (for render elements) render
// state. Views are reconciled against existing elements by concrete type and
// key: a matching pair updates the element in place, preserving its
// ElementID and any state; a mismatch replaces the subtree.
//
// # Storage
//
// Elements live in slab storage addressed by ElementID handles. The zero id
// means "no element", and slots are reused with a bumped generation, so a
// stale handle fails lookup instead of aliasing a newer element. Lookups on
// stale ids are an expected transient condition during reconciliation and
// return "not found" rather than panicking.
//
// # Lifecycle
//
// Every element carries a four-state Lifecycle (Initial, Active, Inactive,
// Defunct). Transitions are validated on every change; an invalid transition
// indicates a bug in the reconciliation algorithm and panics. Defunct is
// terminal.
//
// The pipelines that mutate this tree live in package pipeline.
package core
