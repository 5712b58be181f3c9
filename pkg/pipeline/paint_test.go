package pipeline

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-loom/loom/pkg/core"
	"github.com/go-loom/loom/pkg/errors"
	"github.com/go-loom/loom/pkg/graphics"
	"github.com/go-loom/loom/pkg/render"
)

func paintTree() (columnChildren []core.View) {
	return []core.View{
		box{key: "cached", size: graphics.Size{Width: 40, Height: 40}, boundary: true},
		box{key: "plain", size: graphics.Size{Width: 20, Height: 20}},
	}
}

func TestPaintComposesLayerTree(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	pump(t, o, surface)

	root := o.LayerTree()
	if root == nil {
		t.Fatal("no layer tree after paint")
	}
	content := root.Content()
	if content == nil {
		t.Fatal("root layer has no content")
	}
	children := content.ChildLayers()
	if len(children) != 1 {
		t.Fatalf("root references %d child layers, want 1", len(children))
	}

	boundaryEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "cached" })
	if children[0] != boundaryEl.RenderState().Layer() {
		t.Error("root layer does not reference the boundary child's layer by identity")
	}
}

func TestPaintReusesCleanBoundaryLayer(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	pump(t, o, surface)

	boundaryObj := objectOf[*boxObject](t, o, func(v core.View) bool {
		b, ok := v.(box)
		return ok && b.key == "cached"
	})
	boundaryEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "cached" })
	plainEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "plain" })
	layer := boundaryEl.RenderState().Layer()
	layerContent := layer.Content()
	boundaryPaints := boundaryObj.paints

	// Dirty the sibling: the enclosing boundary re-records, but the clean
	// child boundary must contribute its cached layer without repainting.
	o.MarkNeedsPaint(plainEl.ID())
	pump(t, o, surface)

	if boundaryObj.paints != boundaryPaints {
		t.Errorf("clean boundary repainted %d times", boundaryObj.paints-boundaryPaints)
	}
	if boundaryEl.RenderState().Layer() != layer {
		t.Error("boundary layer identity not stable across frames")
	}
	if layer.Content() != layerContent {
		t.Error("clean boundary layer content replaced")
	}
}

func TestPaintDirtyBoundaryLeavesParentUntouched(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	pump(t, o, surface)

	boundaryEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "cached" })
	rootEl, _ := o.Tree().Get(o.Root().RenderRoot())
	rootContent := rootEl.RenderState().Layer().Content()
	layer := boundaryEl.RenderState().Layer()
	oldContent := layer.Content()

	o.MarkNeedsPaint(boundaryEl.ID())
	if !layer.Dirty() {
		t.Error("marking a boundary did not dirty its layer")
	}
	pump(t, o, surface)

	if layer.Content() == oldContent {
		t.Error("dirty boundary layer content not re-recorded")
	}
	if layer.Dirty() {
		t.Error("layer still dirty after repaint")
	}
	if rootEl.RenderState().Layer().Content() != rootContent {
		t.Error("parent re-recorded although it references the child layer by identity")
	}
}

func TestPaintSkipsBoundaryWithStaleLayout(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	pump(t, o, surface)

	boundaryEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "cached" })
	layer := boundaryEl.RenderState().Layer()
	oldContent := layer.Content()

	boundaryEl.RenderState().Set(render.FlagNeedsLayout)
	o.MarkNeedsPaint(boundaryEl.ID())
	if err := o.FlushPaint(context.Background()); err != nil {
		t.Fatalf("FlushPaint: %v", err)
	}

	if layer.Content() != oldContent {
		t.Error("boundary with stale layout was painted")
	}
}

func TestPaintMarkIdempotent(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	pump(t, o, surface)

	boundaryEl := findByView(o, func(v core.View) bool { b, ok := v.(box); return ok && b.key == "cached" })
	for i := 0; i < 5; i++ {
		o.MarkNeedsPaint(boundaryEl.ID())
	}

	o.mu.Lock()
	pending := len(o.paintList)
	o.mu.Unlock()
	if pending != 1 {
		t.Errorf("repeated marks enqueued %d work-list entries, want 1", pending)
	}
}

func TestFlushPaintCancellation(t *testing.T) {
	o := newTestOwner()
	if _, err := o.Attach(column{children: paintTree()}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := o.FlushBuild(context.Background()); err != nil {
		t.Fatalf("FlushBuild: %v", err)
	}
	if err := o.FlushLayout(context.Background(), graphics.Tight(surface)); err != nil {
		t.Fatalf("FlushLayout: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := o.FlushPaint(ctx)
	if !stderrors.Is(err, errors.ErrFrameCancelled) {
		t.Fatalf("FlushPaint error = %v, want ErrFrameCancelled", err)
	}
	var perr *errors.PipelineError
	if !stderrors.As(err, &perr) || perr.Kind != errors.KindCancelled {
		t.Fatalf("FlushPaint error = %v, want cancelled PipelineError", err)
	}
	if !o.NeedsPaint() {
		t.Error("cancelled paint work not requeued")
	}

	if err := o.FlushPaint(context.Background()); err != nil {
		t.Fatalf("resumed FlushPaint: %v", err)
	}
	if o.LayerTree() == nil || o.LayerTree().Content() == nil {
		t.Error("no layer tree after resumed paint")
	}
}
