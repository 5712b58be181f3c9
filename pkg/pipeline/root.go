package pipeline

import (
	"fmt"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/render"
)

// RootManager owns the attachment point of the element tree: mounting the
// root view, locating the root render element, and tearing the tree down.
type RootManager struct {
	owner *Owner
	root  core.ElementID
}

// Root returns the root element, or NoElement before Mount.
func (m *RootManager) Root() core.ElementID { return m.root }

// RenderRoot returns the root render element: the root itself if it is a
// render element, otherwise its nearest render descendant. Recomputed on
// demand because rebuilds can replace the subtree beneath a component root.
func (m *RootManager) RenderRoot() core.ElementID {
	if m.root.IsNone() {
		return core.NoElement
	}
	element, ok := m.owner.tree.Get(m.root)
	if !ok {
		return core.NoElement
	}
	if element.Kind() == core.KindRender {
		return m.root
	}
	if children := m.owner.tree.RenderChildren(m.root); len(children) > 0 {
		return children[0]
	}
	return core.NoElement
}

// Mount inflates view as the tree root at depth zero and schedules the
// initial layout and paint. The root render element is forced to be both a
// relayout and a repaint boundary: it is where externally imposed
// constraints enter and where the composed layer tree is rooted.
func (m *RootManager) Mount(view core.View) (core.ElementID, error) {
	if !m.root.IsNone() {
		return core.NoElement, fmt.Errorf("pipeline.Mount: %w", errors.ErrRootAttached)
	}
	id := m.owner.inflate(view, core.NoElement, core.Slot{}, 0)
	m.root = id

	if rootRender := m.RenderRoot(); !rootRender.IsNone() {
		element, ok := m.owner.tree.Get(rootRender)
		if ok {
			state := element.RenderState()
			state.Set(render.FlagRelayoutBoundary | render.FlagRepaintBoundary)
			m.owner.scheduleLayout(rootRender, state)
			m.owner.schedulePaint(rootRender, state)
		}
	}

	m.owner.log.Info().
		Str("root", id.String()).
		Int("elements", m.owner.tree.Len()).
		Msg("root mounted")
	return id, nil
}

// Unmount deactivates and disposes the root subtree and clears pending work.
func (m *RootManager) Unmount() error {
	if m.root.IsNone() {
		return &errors.PipelineError{
			Op:   "pipeline.Unmount",
			Kind: errors.KindStructural,
			Err:  errors.ErrNotFound,
		}
	}
	id := m.root
	m.root = core.NoElement

	m.owner.deactivateChild(id)
	m.owner.finalizeInactive()

	m.owner.mu.Lock()
	m.owner.layoutList = nil
	m.owner.paintList = nil
	m.owner.mu.Unlock()

	m.owner.log.Info().Str("root", id.String()).Msg("root unmounted")
	return nil
}
