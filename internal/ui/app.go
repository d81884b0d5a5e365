// Package ui is the fyne desktop front end of a board. It only binds
// events; all behaviour lives in the board package.
package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"LocalBoard/internal/board"
	"LocalBoard/internal/history"
)

// Options configure the window.
type Options struct {
	Title string
	// Link is the hub address shown in the status bar; empty means offline.
	Link   string
	Logger *log.Logger
}

// Run opens the board window and blocks until it is closed or ctx is
// cancelled. It must be called from the main goroutine.
func Run(ctx context.Context, b *board.Board, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Title == "" {
		opts.Title = "LocalBoard"
	}

	a := app.New()
	win := a.NewWindow(opts.Title)
	win.Resize(fyne.NewSize(1280, 860))

	canvasWidget := NewBoardWidget(b)
	view := newBoardView(canvasWidget)
	attrs := newAttributePanel(win, b)
	side := newSidePanel(win, b)
	status := widget.NewLabel("")

	updateStatus := func() {
		where := "Offline"
		if opts.Link != "" {
			where = "Board: " + opts.Link
		}
		status.SetText(fmt.Sprintf("%s  ·  Tool: %s  ·  %d peers", where, b.ActiveTool(), len(b.Users())))
	}

	b.SetNotifier(history.NotifierFunc(func(msg string) {
		fyne.Do(func() { dialog.ShowInformation(opts.Title, msg, win) })
	}))
	b.OnChange(func() {
		fyne.Do(func() {
			canvasWidget.Refresh()
			attrs.sync()
			side.sync()
			updateStatus()
		})
	})

	registerShortcuts(win, b)
	a.Lifecycle().SetOnExitedForeground(b.Blur)
	stop := context.AfterFunc(ctx, func() { fyne.Do(a.Quit) })
	defer stop()

	left := container.NewBorder(nil, nil, nil, nil, attrs.Object())
	center := container.NewHSplit(view, side.Object())
	center.Offset = 0.8
	body := container.NewHSplit(left, center)
	body.Offset = 0.18

	win.SetContent(container.NewBorder(NewToolbar(win, b, view, opts.Logger), status, nil, nil, body))
	updateStatus()
	side.sync()
	win.ShowAndRun()
	return ctx.Err()
}

// registerShortcuts binds undo and redo on the window. They stay inert
// while a text input has focus so the entry keeps its own editing keys.
func registerShortcuts(win fyne.Window, b *board.Board) {
	bind := func(key fyne.KeyName, shift bool) {
		mod := fyne.KeyModifierShortcutDefault
		if shift {
			mod |= fyne.KeyModifierShift
		}
		win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) {
			_, typing := win.Canvas().Focused().(*widget.Entry)
			b.SetTextFocus(typing)
			b.HandleKey(board.KeyEvent{Key: string(key), Ctrl: true, Shift: shift})
		})
	}
	bind(fyne.KeyZ, false)
	bind(fyne.KeyZ, true)
	bind(fyne.KeyR, false)
}
