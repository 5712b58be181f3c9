package pipeline

import (
	stderrors "errors"
	"sync"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
)

var errDuplicateGlobalKey = stderrors.New("global key registered by another live element")

// KeyRegistry tracks which live element owns each global key. It is owned by
// the pipeline owner rather than being process-wide, and registrations are
// tied 1:1 to element mount and dispose.
type KeyRegistry struct {
	mu    sync.Mutex
	byKey map[*core.GlobalKey]core.ElementID
}

// NewKeyRegistry creates an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{byKey: make(map[*core.GlobalKey]core.ElementID)}
}

// Register claims key for element. Two live elements holding the same global
// key is a programming error and panics.
func (r *KeyRegistry) Register(key *core.GlobalKey, element core.ElementID) {
	if key == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, exists := r.byKey[key]; exists && owner != element {
		panic(&errors.PipelineError{
			Op:   "pipeline.KeyRegistry.Register",
			Kind: errors.KindLifecycle,
			Err:  errDuplicateGlobalKey,
		})
	}
	r.byKey[key] = element
}

// Unregister releases key if it is still owned by element.
func (r *KeyRegistry) Unregister(key *core.GlobalKey, element core.ElementID) {
	if key == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, exists := r.byKey[key]; exists && owner == element {
		delete(r.byKey, key)
	}
}

// Lookup returns the element currently owning key.
func (r *KeyRegistry) Lookup(key *core.GlobalKey) (core.ElementID, bool) {
	if key == nil {
		return core.NoElement, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[key]
	return id, ok
}
