// Package pipeline drives the three-phase frame pipeline over the element
// tree: Build reconciles dirty elements against the views they produce,
// Layout sizes and positions dirty relayout boundaries, and Paint re-records
// dirty repaint boundaries into cached layers.
//
// Work enters through the mark entry points (MarkNeedsBuild, MarkNeedsLayout,
// MarkParentNeedsLayout, MarkNeedsPaint), which are idempotent per frame and
// confine dirtiness to the nearest boundary. The Owner composes the tree,
// the rebuild queue and the work-lists; the Coordinator runs the phases in
// strict order under a frame budget and hands the composed layer tree to an
// external renderer.
package pipeline
