package pipeline

import (
	stderrors "errors"
	"testing"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
)

func TestKeyRegistryDuplicateRegistrationPanics(t *testing.T) {
	registry := NewKeyRegistry()
	key := core.NewGlobalKey("dup")
	registry.Register(key, core.ElementID(1))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on duplicate global key registration")
		}
		var pipelineErr *errors.PipelineError
		err, ok := r.(error)
		if !ok || !stderrors.As(err, &pipelineErr) {
			t.Fatalf("panic value = %v, want *PipelineError", r)
		}
	}()
	registry.Register(key, core.ElementID(2))
}

func TestKeyRegistryReRegisterAfterUnregister(t *testing.T) {
	registry := NewKeyRegistry()
	key := core.NewGlobalKey("moved")
	registry.Register(key, core.ElementID(1))
	registry.Unregister(key, core.ElementID(1))
	registry.Register(key, core.ElementID(2))

	id, ok := registry.Lookup(key)
	if !ok || id != core.ElementID(2) {
		t.Errorf("Lookup = %v/%v, want 2/true", id, ok)
	}
}

func TestKeyRegistryUnregisterWrongOwnerKeepsMapping(t *testing.T) {
	registry := NewKeyRegistry()
	key := core.NewGlobalKey("owned")
	registry.Register(key, core.ElementID(1))
	registry.Unregister(key, core.ElementID(99))

	id, ok := registry.Lookup(key)
	if !ok || id != core.ElementID(1) {
		t.Errorf("Lookup = %v/%v, want 1/true", id, ok)
	}
}

func TestKeyRegistryKeysCompareByIdentity(t *testing.T) {
	registry := NewKeyRegistry()
	first := core.NewGlobalKey("same-label")
	second := core.NewGlobalKey("same-label")
	registry.Register(first, core.ElementID(1))
	registry.Register(second, core.ElementID(2))

	if id, _ := registry.Lookup(first); id != core.ElementID(1) {
		t.Errorf("first key resolves to %v, want 1", id)
	}
	if id, _ := registry.Lookup(second); id != core.ElementID(2) {
		t.Errorf("second key resolves to %v, want 2", id)
	}
}
