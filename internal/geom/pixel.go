package geom

import "image"

// Offset is the index of pixel (x, y) in a row-major buffer of width w.
func Offset(x, y, w int) int { return y*w + x }

// ValidPixel reports whether (x, y) addresses a pixel of a w*h buffer.
func ValidPixel(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}

var (
	neighbours4 = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neighbours8 = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Neighbours appends the 4 (or 8 when diagonal) neighbours of p to dst.
// Callers bounds-check the result.
func Neighbours(dst []image.Point, p image.Point, diagonal bool) []image.Point {
	set := neighbours4
	if diagonal {
		set = neighbours8
	}
	for _, d := range set {
		dst = append(dst, p.Add(d))
	}
	return dst
}
