package core

// StateBase provides default implementations for the State interface. Embed
// it in a state struct and override what you need:
//
//	type counterState struct {
//	    core.StateBase
//	    count int
//	}
//
//	func (s *counterState) Build(ctx core.BuildContext) core.View {
//	    return label{text: fmt.Sprint(s.count)}
//	}
type StateBase struct {
	ctx      BuildContext
	disposed bool
}

// Init retains the build context for later rebuild scheduling.
// Overrides must call s.StateBase.Init(ctx) first.
func (s *StateBase) Init(ctx BuildContext) {
	s.ctx = ctx
}

// Context returns the retained build context, nil before Init.
func (s *StateBase) Context() BuildContext {
	return s.ctx
}

// SetState executes fn and schedules a rebuild of the hosting element.
// Safe to call after disposal (it becomes a no-op).
func (s *StateBase) SetState(fn func()) {
	if s.disposed {
		return
	}
	if fn != nil {
		fn()
	}
	if s.ctx != nil {
		s.ctx.MarkNeedsBuild()
	}
}

// Build returns nil; override to build a child description.
func (s *StateBase) Build(ctx BuildContext) View { return nil }

// DidUpdate is a no-op default.
func (s *StateBase) DidUpdate(old StatefulView) {}

// Activate is a no-op default.
func (s *StateBase) Activate() {}

// Deactivate is a no-op default.
func (s *StateBase) Deactivate() {}

// Dispose marks the state disposed. Overrides must call
// s.StateBase.Dispose() to keep SetState a no-op afterwards.
func (s *StateBase) Dispose() {
	s.disposed = true
}

// IsDisposed returns true once Dispose has run.
func (s *StateBase) IsDisposed() bool {
	return s.disposed
}
