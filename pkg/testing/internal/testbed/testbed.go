// Package testbed provides small views shared by the testing framework's
// own tests.
package testbed

import (
	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// Box is a fixed-size colored box, optionally painting into its own layer.
type Box struct {
	K        any
	Width    float64
	Height   float64
	Color    graphics.Color
	Boundary bool
}

func (b Box) Key() any { return b.K }

func (b Box) CreateObject(_ core.BuildContext) render.Object {
	return &boxObject{width: b.Width, height: b.Height, color: b.Color, boundary: b.Boundary}
}

func (b Box) UpdateObject(_ core.BuildContext, object render.Object) {
	box := object.(*boxObject)
	box.width = b.Width
	box.height = b.Height
	box.color = b.Color
}

type boxObject struct {
	width, height float64
	color         graphics.Color
	boundary      bool
}

func (o *boxObject) IsRepaintBoundary() bool { return o.boundary }

func (o *boxObject) Layout(_ render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	return constraints.Constrain(graphics.Size{Width: o.width, Height: o.height})
}

func (o *boxObject) Paint(ctx render.PaintContext, offset graphics.Offset) {
	ctx.Canvas().DrawRect(
		graphics.RectFromOffsetSize(offset, graphics.Size{Width: o.width, Height: o.height}),
		o.color,
	)
}

// Column stacks its children vertically from the top-left corner.
type Column struct {
	K        any
	Children []core.View
}

func (c Column) Key() any { return c.K }

func (c Column) ChildViews() []core.View { return c.Children }

func (c Column) CreateObject(_ core.BuildContext) render.Object {
	return &columnObject{}
}

func (c Column) UpdateObject(_ core.BuildContext, _ render.Object) {}

type columnObject struct{}

func (o *columnObject) Layout(ctx render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	loose := graphics.Loose(constraints.Biggest())
	var y float64
	for i := 0; i < ctx.ChildCount(); i++ {
		size := ctx.LayoutChild(i, loose, true)
		ctx.SetChildOffset(i, graphics.Offset{Y: y})
		y += size.Height
	}
	return constraints.Constrain(graphics.Size{Width: constraints.Biggest().Width, Height: y})
}

func (o *columnObject) Paint(ctx render.PaintContext, _ graphics.Offset) {
	for i := 0; i < ctx.ChildCount(); i++ {
		ctx.PaintChild(i)
	}
}

// Counter is a stateful view whose box grows with each increment.
type Counter struct {
	Initial int
}

func (c Counter) Key() any { return nil }

func (c Counter) CreateState() core.State { return &counterState{count: c.Initial} }

type counterState struct {
	core.StateBase
	count int
}

func (s *counterState) Build(_ core.BuildContext) core.View {
	return Box{Width: 10 * float64(s.count+1), Height: 10}
}

func (s *counterState) increment() {
	s.SetState(func() { s.count++ })
}

// Increment bumps the counter hosted by element and schedules a rebuild.
func Increment(element *core.Element) {
	element.State().(*counterState).increment()
}

// Count returns the current count of the counter hosted by element.
func Count(element *core.Element) int {
	return element.State().(*counterState).count
}
