// Package export writes a rendered board to PNG or PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Formats accepted by WriteFile.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ErrUnknownFormat is returned for file extensions other than .png and .pdf.
var ErrUnknownFormat = errors.New("unknown export format")

// pageMargin is the blank border around the board on a PDF page, in mm.
const pageMargin = 10.0

// PNG encodes img losslessly.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes img as a single A4 page, turned to landscape when the board is
// wider than tall and scaled to fit inside the margins. title is printed
// above the board when not empty.
func PDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return errors.New("export: empty image")
	}
	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetCreator("LocalBoard", true)
	pdf.AddPage()

	top := pageMargin
	if title != "" {
		pdf.SetTitle(title, true)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(pageMargin, pageMargin+4, title)
		top += 8
	}

	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("board", opts, &buf)

	pageW, pageH := pdf.GetPageSize()
	maxW, maxH := pageW-2*pageMargin, pageH-top-pageMargin
	width := maxW
	height := width * float64(b.Dy()) / float64(b.Dx())
	if height > maxH {
		height = maxH
		width = height * float64(b.Dx()) / float64(b.Dy())
	}
	pdf.ImageOptions("board", pageMargin+(maxW-width)/2, top, width, height, false, opts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// FormatOf picks the format from the extension of path.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// WriteFile exports img to path in the format named by its extension.
func WriteFile(path string, img image.Image, title string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatPDF:
		err = PDF(f, img, title)
	default:
		err = PNG(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
	}
	return err
}
