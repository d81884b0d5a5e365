package ui

import (
	"image/color"
	"io"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"LocalBoard/internal/board"
	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
	"LocalBoard/internal/tools"
)

var toolIcons = map[state.ToolKind]fyne.Resource{
	state.ToolFreehand:  theme.DocumentCreateIcon(),
	state.ToolRectangle: theme.CheckButtonIcon(),
	state.ToolEllipse:   theme.RadioButtonIcon(),
	state.ToolLine:      theme.ContentRemoveIcon(),
	state.ToolFill:      theme.ColorPaletteIcon(),
	state.ToolText:      theme.FileTextIcon(),
	state.ToolImage:     theme.FileImageIcon(),
}

var palette = []string{"#000000", "#ffffff", "#e6194b", "#3cb44b", "#4363d8", "#ffe119"}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the tool buttons and the board actions.
func NewToolbar(win fyne.Window, b *board.Board, view *boardView, logger *log.Logger) fyne.CanvasObject {
	tb := widget.NewToolbar()
	for _, kind := range state.Kinds() {
		icon, ok := toolIcons[kind]
		if !ok {
			continue
		}
		tb.Append(widget.NewToolbarAction(icon, func() {
			if err := b.SelectTool(kind); err != nil {
				logger.Warn("select tool", "tool", kind, "err", err)
			}
		}))
	}
	tb.Append(widget.NewToolbarSeparator())
	tb.Append(widget.NewToolbarAction(theme.ContentUndoIcon(), func() { b.Undo() }))
	tb.Append(widget.NewToolbarAction(theme.ContentRedoIcon(), func() { b.Redo() }))
	tb.Append(widget.NewToolbarAction(theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Clear board", "Clear the board for everyone?", func(ok bool) {
			if ok {
				b.Clear()
			}
		}, win)
	}))
	tb.Append(widget.NewToolbarSeparator())
	tb.Append(widget.NewToolbarAction(theme.ZoomInIcon(), view.ZoomIn))
	tb.Append(widget.NewToolbarAction(theme.ZoomOutIcon(), view.ZoomOut))
	tb.Append(widget.NewToolbarAction(theme.ZoomFitIcon(), view.ResetView))
	tb.Append(widget.NewToolbarSeparator())
	tb.Append(widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { showExport(win, b, logger) }))
	return tb
}

// attributePanel edits the attributes of the active tool. Its widgets are
// generated from the tool's schema.
type attributePanel struct {
	win   fyne.Window
	board *board.Board
	title *widget.Label
	form  *fyne.Container
	kind  state.ToolKind
}

func newAttributePanel(win fyne.Window, b *board.Board) *attributePanel {
	p := &attributePanel{
		win:   win,
		board: b,
		title: widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form:  container.NewVBox(),
	}
	p.rebuild()
	return p
}

func (p *attributePanel) Object() fyne.CanvasObject {
	return container.NewBorder(p.title, nil, nil, nil, container.NewVScroll(p.form))
}

// sync rebuilds the form when another tool became active.
func (p *attributePanel) sync() {
	if p.board.ActiveTool() != p.kind {
		p.rebuild()
	}
}

func (p *attributePanel) rebuild() {
	p.kind = p.board.ActiveTool()
	p.title.SetText(string(p.kind))
	p.form.RemoveAll()
	for _, f := range tools.Schema(p.kind) {
		p.form.Add(p.field(f))
	}
	p.form.Refresh()
}

func (p *attributePanel) value(f tools.Field) string {
	v, err := p.board.FieldValue(f.Name)
	if err != nil {
		return ""
	}
	return v
}

func (p *attributePanel) apply(field, raw string, refresh bool) {
	if err := p.board.ChangeAttribute(field, raw); err != nil {
		dialog.ShowError(err, p.win)
		refresh = true
	}
	if refresh {
		p.rebuild()
	}
}

func (p *attributePanel) field(f tools.Field) fyne.CanvasObject {
	var input fyne.CanvasObject
	switch f.Type {
	case tools.FieldColor:
		input = p.colorField(f)
	case tools.FieldRange:
		v, _ := strconv.ParseFloat(p.value(f), 64)
		value := widget.NewLabel(strconv.FormatFloat(v, 'f', -1, 64))
		slider := widget.NewSlider(f.Min, f.Max)
		slider.Step = f.Step
		slider.SetValue(v)
		slider.OnChanged = func(v float64) { value.SetText(strconv.FormatFloat(v, 'f', -1, 64)) }
		slider.OnChangeEnded = func(v float64) { p.apply(f.Name, strconv.FormatFloat(v, 'f', -1, 64), false) }
		input = container.NewBorder(nil, nil, nil, value, slider)
	case tools.FieldCheckbox:
		check := widget.NewCheck(f.Label, nil)
		check.SetChecked(p.value(f) == "true")
		check.OnChanged = func(on bool) { p.apply(f.Name, strconv.FormatBool(on), false) }
		return withTooltip(check, f.Tooltip)
	case tools.FieldSelect:
		sel := widget.NewSelect(f.Options, nil)
		sel.SetSelected(p.value(f))
		sel.OnChanged = func(v string) { p.apply(f.Name, v, false) }
		input = sel
	case tools.FieldTextArea:
		entry := widget.NewMultiLineEntry()
		entry.SetPlaceHolder(f.Placeholder)
		entry.SetText(p.value(f))
		entry.OnChanged = func(v string) { p.apply(f.Name, v, false) }
		input = entry
	case tools.FieldImage:
		input = p.imageField(f)
	default:
		input = widget.NewLabel(p.value(f))
	}
	return withTooltip(container.NewVBox(widget.NewLabel(f.Label), input), f.Tooltip)
}

func withTooltip(obj fyne.CanvasObject, tip string) fyne.CanvasObject {
	if tip == "" {
		return obj
	}
	hint := widget.NewLabelWithStyle(tip, fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	hint.Wrapping = fyne.TextWrapWord
	return container.NewVBox(obj, hint)
}

func (p *attributePanel) colorField(f tools.Field) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetText(p.value(f))
	entry.OnSubmitted = func(v string) { p.apply(f.Name, v, true) }

	pick := func(c color.Color) {
		p.apply(f.Name, geom.Hex(color.RGBAModel.Convert(c).(color.RGBA)), true)
	}
	swatches := container.NewHBox()
	for _, hex := range palette {
		swatches.Add(newColorSwatch(geom.ParseHexOrBlack(hex), pick))
	}
	more := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		picker := dialog.NewColorPicker(f.Label, "", pick, p.win)
		picker.Advanced = true
		picker.Show()
	})
	swatches.Add(layout.NewSpacer())
	swatches.Add(more)
	return container.NewVBox(entry, swatches)
}

func (p *attributePanel) imageField(f tools.Field) fyne.CanvasObject {
	status := widget.NewLabel("No image")
	if p.value(f) != "" {
		status.SetText("Image loaded")
	}
	choose := widget.NewButtonWithIcon("Choose image", theme.FolderOpenIcon(), func() {
		open := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, p.win)
				return
			}
			if r == nil {
				return
			}
			defer r.Close()
			raw, err := io.ReadAll(r)
			if err != nil {
				dialog.ShowError(err, p.win)
				return
			}
			p.apply(f.Name, draw.EncodeImage(raw), true)
		}, p.win)
		open.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
		open.Show()
	})
	return container.NewVBox(status, choose)
}
