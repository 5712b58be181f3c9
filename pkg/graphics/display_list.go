package graphics

// Color is a 32-bit ARGB color value.
type Color uint32

// RGB creates a fully opaque color from red, green, blue components.
func RGB(r, g, b uint8) Color {
	return Color(0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Canvas receives drawing operations. The core only records operations; an
// external renderer replays them against a real surface.
type Canvas interface {
	Save()
	Restore()
	Translate(dx, dy float64)
	DrawRect(rect Rect, color Color)
	DrawChildLayer(layer *Layer, offset Offset)
}

// DisplayList is an immutable list of recorded drawing operations.
// It can be replayed onto any Canvas implementation.
type DisplayList struct {
	ops  []displayOp
	size Size
}

// Replay plays the recorded operations back onto the provided canvas.
func (d *DisplayList) Replay(canvas Canvas) {
	for _, op := range d.ops {
		op.execute(canvas)
	}
}

// Size returns the size recorded when the display list was created.
func (d *DisplayList) Size() Size {
	return d.size
}

// Len returns the number of recorded operations.
func (d *DisplayList) Len() int {
	return len(d.ops)
}

// ChildLayers returns the child boundary layers referenced by this list, in
// recording order. Compositors use this to walk the layer tree.
func (d *DisplayList) ChildLayers() []*Layer {
	var layers []*Layer
	for _, op := range d.ops {
		if child, ok := op.(opDrawChildLayer); ok {
			layers = append(layers, child.layer)
		}
	}
	return layers
}

// PictureRecorder records drawing commands into a display list.
type PictureRecorder struct {
	ops       []displayOp
	recording bool
	size      Size
}

// BeginRecording starts a new recording session.
func (r *PictureRecorder) BeginRecording(size Size) Canvas {
	r.ops = r.ops[:0]
	r.recording = true
	r.size = size
	return &recordingCanvas{recorder: r}
}

// EndRecording finishes the recording and returns a display list.
func (r *PictureRecorder) EndRecording() *DisplayList {
	if !r.recording {
		return &DisplayList{size: r.size}
	}
	r.recording = false
	ops := make([]displayOp, len(r.ops))
	copy(ops, r.ops)
	return &DisplayList{ops: ops, size: r.size}
}

func (r *PictureRecorder) append(op displayOp) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

type displayOp interface {
	execute(canvas Canvas)
}

type recordingCanvas struct {
	recorder *PictureRecorder
}

func (c *recordingCanvas) Save() {
	c.recorder.append(opSave{})
}

func (c *recordingCanvas) Restore() {
	c.recorder.append(opRestore{})
}

func (c *recordingCanvas) Translate(dx, dy float64) {
	c.recorder.append(opTranslate{dx: dx, dy: dy})
}

func (c *recordingCanvas) DrawRect(rect Rect, color Color) {
	c.recorder.append(opDrawRect{rect: rect, color: color})
}

// DrawChildLayer records a reference to a child repaint boundary's layer.
// Because the op holds the layer by reference, repainting the child does not
// require re-recording the parent's display list.
func (c *recordingCanvas) DrawChildLayer(layer *Layer, offset Offset) {
	c.recorder.append(opDrawChildLayer{layer: layer, offset: offset})
}

type opSave struct{}

func (opSave) execute(canvas Canvas) { canvas.Save() }

type opRestore struct{}

func (opRestore) execute(canvas Canvas) { canvas.Restore() }

type opTranslate struct {
	dx, dy float64
}

func (op opTranslate) execute(canvas Canvas) { canvas.Translate(op.dx, op.dy) }

type opDrawRect struct {
	rect  Rect
	color Color
}

func (op opDrawRect) execute(canvas Canvas) { canvas.DrawRect(op.rect, op.color) }

type opDrawChildLayer struct {
	layer  *Layer
	offset Offset
}

func (op opDrawChildLayer) execute(canvas Canvas) {
	canvas.DrawChildLayer(op.layer, op.offset)
}
