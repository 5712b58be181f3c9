package core

import (
	"testing"

	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

// testComponent is a minimal component view.
type testComponent struct {
	key any
}

func (v testComponent) Key() any { return v.key }

func (v testComponent) Build(ctx BuildContext) View { return nil }

// testStateful is a minimal stateful view.
type testStateful struct {
	key any
}

func (v testStateful) Key() any { return v.key }

func (v testStateful) CreateState() State { return &testState{} }

type testState struct {
	StateBase
}

func (s *testState) Build(ctx BuildContext) View { return nil }

// testRender is a minimal render view.
type testRender struct {
	key any
}

func (v testRender) Key() any { return v.key }

func (v testRender) CreateObject(ctx BuildContext) render.Object { return testObject{} }

func (v testRender) UpdateObject(ctx BuildContext, object render.Object) {}

type testObject struct{}

func (testObject) Layout(ctx render.LayoutContext, constraints graphics.Constraints) graphics.Size {
	return constraints.Smallest()
}

func (testObject) Paint(ctx render.PaintContext, offset graphics.Offset) {}

// badView implements no view kind.
type badView struct{}

func (badView) Key() any { return nil }

func TestKindOf(t *testing.T) {
	cases := []struct {
		view View
		kind Kind
		ok   bool
	}{
		{testComponent{}, KindComponent, true},
		{testStateful{}, KindStateful, true},
		{testRender{}, KindRender, true},
		{badView{}, 0, false},
	}
	for _, tc := range cases {
		kind, ok := KindOf(tc.view)
		if kind != tc.kind || ok != tc.ok {
			t.Errorf("KindOf(%T) = %v/%v, want %v/%v", tc.view, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestNewElement(t *testing.T) {
	element, ok := NewElement(testRender{})
	if !ok {
		t.Fatal("NewElement rejected a render view")
	}
	if element.Kind() != KindRender {
		t.Errorf("kind = %v, want render", element.Kind())
	}
	if element.RenderState() == nil {
		t.Error("render element has no render state")
	}
	if element.Lifecycle() != LifecycleInitial {
		t.Errorf("lifecycle = %v, want initial", element.Lifecycle())
	}

	component, _ := NewElement(testComponent{})
	if component.RenderState() != nil {
		t.Error("component element carries render state")
	}

	if _, ok := NewElement(badView{}); ok {
		t.Error("NewElement accepted a view with no kind")
	}
}

func TestCanUpdate(t *testing.T) {
	gk := NewGlobalKey("k")
	cases := []struct {
		name     string
		existing View
		next     View
		want     bool
	}{
		{"same type nil keys", testComponent{}, testComponent{}, true},
		{"same type same key", testComponent{key: "x"}, testComponent{key: "x"}, true},
		{"same type different key", testComponent{key: "x"}, testComponent{key: "y"}, false},
		{"different type", testComponent{}, testStateful{}, false},
		{"same global key", testRender{key: gk}, testRender{key: gk}, true},
		{"different global key same label", testRender{key: gk}, testRender{key: NewGlobalKey("k")}, false},
		{"nil existing", nil, testComponent{}, false},
		{"nil next", testComponent{}, nil, false},
	}
	for _, tc := range cases {
		if got := CanUpdate(tc.existing, tc.next); got != tc.want {
			t.Errorf("%s: CanUpdate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStateBaseSetStateAfterDispose(t *testing.T) {
	state := &testState{}
	calls := 0
	state.Init(fakeBuildContext{onMark: func() { calls++ }})

	state.SetState(func() {})
	if calls != 1 {
		t.Fatalf("SetState marked %d times, want 1", calls)
	}

	state.Dispose()
	state.SetState(func() {})
	if calls != 1 {
		t.Error("SetState after dispose scheduled a rebuild")
	}
	if !state.IsDisposed() {
		t.Error("IsDisposed = false after dispose")
	}
}

type fakeBuildContext struct {
	id     ElementID
	onMark func()
}

func (c fakeBuildContext) ElementID() ElementID { return c.id }

func (c fakeBuildContext) MarkNeedsBuild() {
	if c.onMark != nil {
		c.onMark()
	}
}
