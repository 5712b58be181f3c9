package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
)

// Phase identifies the pipeline phase currently executing.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseBuild
	PhaseLayout
	PhasePaint
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBuild:
		return "build"
	case PhaseLayout:
		return "layout"
	case PhasePaint:
		return "paint"
	default:
		return "unknown"
	}
}

// FrameTiming records how one frame spent its budget.
type FrameTiming struct {
	Build  time.Duration
	Layout time.Duration
	Paint  time.Duration
	Total  time.Duration

	// ElementsBuilt counts elements rebuilt during the build phase.
	ElementsBuilt int

	// Truncated reports that build work exceeded the budget and the frame
	// deferred its remaining phases; a follow-up frame was requested.
	Truncated bool
}

// Coordinator drives the three pipeline phases for each frame in strict
// order. Phases never interleave or run concurrently: Build completes before
// Layout starts, Layout before Paint.
type Coordinator struct {
	owner     *Owner
	scheduler Scheduler
	log       zerolog.Logger

	phase atomic.Int32

	mu         sync.Mutex
	lastTiming FrameTiming
}

// NewCoordinator creates a coordinator over owner driven by scheduler.
func NewCoordinator(owner *Owner, scheduler Scheduler) *Coordinator {
	return &Coordinator{
		owner:     owner,
		scheduler: scheduler,
		log:       owner.log,
	}
}

// Phase returns the currently executing phase.
func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

// LastTiming returns the timing of the most recently completed frame.
func (c *Coordinator) LastTiming() FrameTiming {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTiming
}

// DrawFrame runs Build, Layout and Paint for one frame against the given
// root size and returns the composed layer tree.
//
// A cancelled ctx stops work between elements within the current phase;
// remaining work carries over to the next frame and the tree stays
// consistent. When build work alone exhausts the budget, the frame is
// truncated: layout and paint are deferred, a follow-up frame is requested,
// and the previous layer tree is returned unchanged.
func (c *Coordinator) DrawFrame(ctx context.Context, size graphics.Size) (*graphics.Layer, error) {
	if !c.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseBuild)) {
		return nil, &errors.PipelineError{
			Op:   "pipeline.DrawFrame",
			Kind: errors.KindUnknown,
			Err:  fmt.Errorf("frame already in progress in phase %s", c.Phase()),
		}
	}
	defer c.phase.Store(int32(PhaseIdle))

	start := time.Now()
	var timing FrameTiming
	overBudget := func() bool {
		return c.scheduler.IsOverBudget(time.Since(start))
	}

	built, err := c.owner.flushBuild(ctx, overBudget)
	timing.Build = time.Since(start)
	timing.ElementsBuilt = built
	if err != nil {
		c.finish(timing, start, err)
		return nil, err
	}
	if c.owner.NeedsBuild() {
		timing.Truncated = true
		errors.Report(&errors.PipelineError{
			Op:   "pipeline.DrawFrame",
			Kind: errors.KindBudget,
			Err:  fmt.Errorf("build exceeded budget %s after %d elements; layout and paint deferred", c.scheduler.FrameBudget(), built),
		})
		c.scheduler.RequestFrame()
		c.finish(timing, start, nil)
		return c.owner.LayerTree(), nil
	}

	c.phase.Store(int32(PhaseLayout))
	layoutStart := time.Now()
	err = c.owner.FlushLayout(ctx, graphics.Tight(size))
	timing.Layout = time.Since(layoutStart)
	if err != nil {
		c.finish(timing, start, err)
		return nil, err
	}

	c.phase.Store(int32(PhasePaint))
	paintStart := time.Now()
	err = c.owner.FlushPaint(ctx)
	timing.Paint = time.Since(paintStart)
	if err != nil {
		c.finish(timing, start, err)
		return nil, err
	}

	c.finish(timing, start, nil)
	return c.owner.LayerTree(), nil
}

func (c *Coordinator) finish(timing FrameTiming, start time.Time, err error) {
	timing.Total = time.Since(start)
	c.mu.Lock()
	c.lastTiming = timing
	c.mu.Unlock()

	event := c.log.Debug()
	switch {
	case err != nil:
		event = c.log.Warn().Err(err)
	case c.scheduler.IsOverBudget(timing.Total):
		event = c.log.Warn()
	}
	event.
		Dur("build", timing.Build).
		Dur("layout", timing.Layout).
		Dur("paint", timing.Paint).
		Dur("total", timing.Total).
		Int("built", timing.ElementsBuilt).
		Bool("truncated", timing.Truncated).
		Msg("frame")
}
