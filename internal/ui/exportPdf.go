package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/charmbracelet/log"

	"LocalBoard/internal/board"
	"LocalBoard/internal/export"
)

// showExport asks for a file and writes the committed board to it as PNG
// or PDF, chosen by the extension.
func showExport(win fyne.Window, b *board.Board, logger *log.Logger) {
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()

		format, err := export.FormatOf(w.URI().Name())
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		img := b.Surface().Snapshot()
		if format == export.FormatPDF {
			err = export.PDF(w, img, "LocalBoard")
		} else {
			err = export.PNG(w, img)
		}
		if err != nil {
			logger.Error("export failed", "uri", w.URI(), "err", err)
			dialog.ShowError(err, win)
			return
		}
		logger.Info("board exported", "uri", w.URI())
	}, win)
	save.SetFileName("board.pdf")
	save.Show()
}
