package ui

import (
	"hash/fnv"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LocalBoard/internal/board"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/tools"
)

var cursorColors = []color.NRGBA{
	{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff},
	{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff},
	{R: 0x43, G: 0x63, B: 0xd8, A: 0xff},
	{R: 0xf5, G: 0x82, B: 0x31, A: 0xff},
	{R: 0x91, G: 0x1e, B: 0xb4, A: 0xff},
	{R: 0x46, G: 0x99, B: 0x90, A: 0xff},
}

// BoardWidget shows the board's composite image with a marker for every
// peer's pointer and forwards mouse input to the board.
type BoardWidget struct {
	widget.BaseWidget
	board  *board.Board
	raster *canvas.Raster
	scale  float32

	dragging bool
	shift    bool
	focused  bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Focusable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ desktop.Keyable = (*BoardWidget)(nil)

func NewBoardWidget(b *board.Board) *BoardWidget {
	w := &BoardWidget{board: b, scale: 1}
	w.raster = canvas.NewRaster(func(int, int) image.Image { return b.Composite() })
	w.raster.ScaleMode = canvas.ImageScalePixels
	w.ExtendBaseWidget(w)
	return w
}

func (w *BoardWidget) surfaceSize() fyne.Size {
	bounds := w.board.Surface().Bounds()
	return fyne.NewSize(float32(bounds.Dx())*w.scale, float32(bounds.Dy())*w.scale)
}

// toSurface maps a widget position to surface pixels.
func (w *BoardWidget) toSurface(pos fyne.Position) geom.Point {
	bounds := w.board.Surface().Bounds()
	size := w.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return geom.Pt(float64(pos.X), float64(pos.Y))
	}
	return geom.Pt(
		float64(pos.X)*float64(bounds.Dx())/float64(size.Width),
		float64(pos.Y)*float64(bounds.Dy())/float64(size.Height),
	)
}

func (w *BoardWidget) fromSurface(p geom.Point) fyne.Position {
	bounds := w.board.Surface().Bounds()
	size := w.Size()
	return fyne.NewPos(
		float32(p.X)*size.Width/float32(bounds.Dx()),
		float32(p.Y)*size.Height/float32(bounds.Dy()),
	)
}

func (w *BoardWidget) event(pos fyne.Position, shift bool) tools.PointerEvent {
	return tools.PointerEvent{Position: w.toSurface(pos), Shift: shift}
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil && !w.focused {
		c.Focus(w)
	}
	w.dragging = true
	w.shift = e.Modifier&fyne.KeyModifierShift != 0
	w.board.PointerDown(w.event(e.Position, w.shift))
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !w.dragging {
		return
	}
	w.dragging = false
	w.board.PointerUp(w.event(e.Position, e.Modifier&fyne.KeyModifierShift != 0))
}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	if w.dragging {
		w.board.PointerMove(w.event(e.Position, w.shift))
	}
}

func (w *BoardWidget) DragEnd() {}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if !w.dragging {
		w.board.PointerMove(w.event(e.Position, e.Modifier&fyne.KeyModifierShift != 0))
	}
}

func (w *BoardWidget) MouseOut() {}

func (w *BoardWidget) FocusGained() { w.focused = true }

// FocusLost ends the gesture in progress, as leaving the window does.
func (w *BoardWidget) FocusLost() {
	w.focused = false
	w.dragging = false
	w.board.Blur()
}

func (w *BoardWidget) TypedRune(rune)           {}
func (w *BoardWidget) TypedKey(*fyne.KeyEvent) {}

func (w *BoardWidget) KeyDown(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		w.shift = true
	}
}

func (w *BoardWidget) KeyUp(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		w.shift = false
	}
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: w}
	r.placeCursors()
	return r
}

type boardWidgetRenderer struct {
	board   *BoardWidget
	cursors []fyne.CanvasObject
}

func cursorColor(id string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(id))
	return cursorColors[h.Sum32()%uint32(len(cursorColors))]
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return append([]fyne.CanvasObject{r.board.raster}, r.cursors...)
}

func (r *boardWidgetRenderer) Refresh() {
	r.placeCursors()
	r.board.raster.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) placeCursors() {
	r.cursors = r.cursors[:0]
	for _, c := range r.board.board.Cursors() {
		col := cursorColor(c.User.UserID)
		pos := r.board.fromSurface(c.Position)

		dot := canvas.NewCircle(col)
		dot.Resize(fyne.NewSize(8, 8))
		dot.Move(pos.SubtractXY(4, 4))

		label := canvas.NewText(c.User.UserName, col)
		label.TextSize = 11
		label.Move(pos.AddXY(6, 2))
		label.Resize(label.MinSize())

		r.cursors = append(r.cursors, dot, label)
	}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
	r.placeCursors()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return r.board.surfaceSize() }

func (r *boardWidgetRenderer) Destroy() {}
