package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

const (
	minZoom  = 0.3
	maxZoom  = 3.0
	zoomStep = 1.2
)

// boardView scrolls and zooms the board widget. The surface keeps its pixel
// size; zoom only changes how large it is shown.
type boardView struct {
	*container.Scroll
	canvas *BoardWidget
}

func newBoardView(c *BoardWidget) *boardView {
	v := &boardView{Scroll: container.NewScroll(container.NewCenter(c)), canvas: c}
	v.Scroll.Direction = container.ScrollBoth
	return v
}

func (v *boardView) ZoomIn()  { v.setZoom(v.canvas.scale * zoomStep) }
func (v *boardView) ZoomOut() { v.setZoom(v.canvas.scale / zoomStep) }

func (v *boardView) ResetView() {
	v.setZoom(1)
	v.Scroll.Offset = fyne.NewPos(0, 0)
	v.Scroll.Refresh()
}

func (v *boardView) setZoom(scale float32) {
	if scale < minZoom {
		scale = minZoom
	}
	if scale > maxZoom {
		scale = maxZoom
	}
	v.canvas.scale = scale
	v.canvas.Refresh()
	v.Scroll.Refresh()
}
