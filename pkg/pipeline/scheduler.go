package pipeline

import (
	"sync/atomic"
	"time"
)

// Scheduler is the narrow interface through which the pipeline requests
// frames and reports budget pressure. It is implemented by an external
// frame scheduler (embedder, display link).
type Scheduler interface {
	// RequestFrame signals that new work exists and a frame should run.
	RequestFrame()
	// FrameBudget returns the time allotted to one frame.
	FrameBudget() time.Duration
	// IsOverBudget reports whether elapsed exceeds the frame budget. Checked
	// between units of work, never mid-element.
	IsOverBudget(elapsed time.Duration) bool
}

// DefaultFrameBudget targets 60Hz vsync.
const DefaultFrameBudget = 16 * time.Millisecond

// FixedBudgetScheduler is a Scheduler with a constant frame budget. Frame
// requests are latched until consumed, so callers polling TakeFrameRequest
// never miss a request and never see duplicates.
type FixedBudgetScheduler struct {
	budget    time.Duration
	requested atomic.Bool

	// OnRequest, if set, is invoked on every RequestFrame.
	OnRequest func()
}

// NewFixedBudgetScheduler creates a scheduler with the given budget.
// A non-positive budget disables over-budget truncation.
func NewFixedBudgetScheduler(budget time.Duration) *FixedBudgetScheduler {
	return &FixedBudgetScheduler{budget: budget}
}

// RequestFrame latches a frame request.
func (s *FixedBudgetScheduler) RequestFrame() {
	s.requested.Store(true)
	if s.OnRequest != nil {
		s.OnRequest()
	}
}

// TakeFrameRequest consumes a pending frame request.
func (s *FixedBudgetScheduler) TakeFrameRequest() bool {
	return s.requested.Swap(false)
}

// FrameBudget returns the configured budget.
func (s *FixedBudgetScheduler) FrameBudget() time.Duration {
	return s.budget
}

// IsOverBudget reports whether elapsed exceeds the budget.
func (s *FixedBudgetScheduler) IsOverBudget(elapsed time.Duration) bool {
	return s.budget > 0 && elapsed > s.budget
}
