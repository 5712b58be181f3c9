package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/pipeline"
)

const (
	// DefaultTestWidth is the default logical width for the test surface.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default logical height for the test surface.
	DefaultTestHeight = 600
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: pipeline did not settle")

// Tester drives the same build, layout, and paint phases as a real embedder
// but against an in-memory surface, with no frame budget so tests never see
// spurious truncation.
type Tester struct {
	owner       *pipeline.Owner
	scheduler   *pipeline.FixedBudgetScheduler
	coordinator *pipeline.Coordinator
	size        graphics.Size
	layers      *graphics.Layer
}

// NewTester creates a tester with the default test surface. Call Cleanup
// when done, or use NewTesterWithT instead.
func NewTester() *Tester {
	owner := pipeline.NewOwner(pipeline.Options{})
	scheduler := pipeline.NewFixedBudgetScheduler(0)
	return &Tester{
		owner:       owner,
		scheduler:   scheduler,
		coordinator: pipeline.NewCoordinator(owner, scheduler),
		size:        graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
	}
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup. This is the
// recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the view tree.
func (t *Tester) Cleanup() {
	if !t.owner.Root().Root().IsNone() {
		_ = t.owner.Detach()
	}
}

// SetSize sets the logical surface size. Takes effect on the next pump.
func (t *Tester) SetSize(size graphics.Size) {
	t.size = size
}

// Owner returns the pipeline owner for direct marks and inspection.
func (t *Tester) Owner() *pipeline.Owner {
	return t.owner
}

// PumpView mounts (or remounts) a view and runs one full frame.
func (t *Tester) PumpView(view core.View) error {
	if !t.owner.Root().Root().IsNone() {
		if err := t.owner.Detach(); err != nil {
			return err
		}
	}
	if _, err := t.owner.Attach(view); err != nil {
		return err
	}
	return t.Pump()
}

// Pump runs a single frame: build, layout, paint.
func (t *Tester) Pump() error {
	layers, err := t.coordinator.DrawFrame(context.Background(), t.size)
	if err != nil {
		return err
	}
	t.layers = layers
	return nil
}

// PumpAndSettle pumps frames until the pipeline is idle or the timeout is
// reached.
func (t *Tester) PumpAndSettle(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.owner.NeedsWork() && !t.scheduler.TakeFrameRequest() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
	}
}

// LastTiming returns the timing of the most recent frame.
func (t *Tester) LastTiming() pipeline.FrameTiming {
	return t.coordinator.LastTiming()
}

// Layers returns the layer tree composed by the most recent pump.
func (t *Tester) Layers() *graphics.Layer {
	return t.layers
}

// HitTest returns the elements under position, topmost first.
func (t *Tester) HitTest(position graphics.Offset) []core.HitEntry {
	return t.owner.HitTest(position)
}

// Find evaluates a finder against the current element tree.
func (t *Tester) Find(finder Finder) FinderResult {
	root := t.owner.Root().Root()
	if root.IsNone() {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.owner.Tree(), root),
		finder:   finder,
	}
}
