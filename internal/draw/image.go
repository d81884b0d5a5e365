package draw

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// DecodeImage decodes the base64 payload of an image command. A data URL
// prefix ("data:image/png;base64,") is accepted.
func DecodeImage(source string) (image.Image, error) {
	if i := strings.Index(source, ","); strings.HasPrefix(source, "data:") && i >= 0 {
		source = source[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(source)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeImage is the inverse of DecodeImage for raw PNG or JPEG bytes.
func EncodeImage(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Image scales the source into the box from origin to end, shrinking one
// side to the image's aspect ratio when PreserveAspectRatio is set.
func Image(l Layer, origin, end geom.Point, attrs state.ImageAttributes) error {
	if attrs.Source == "" {
		return fmt.Errorf("%w: no image selected", ErrInvalidAction)
	}
	img, err := DecodeImage(attrs.Source)
	if err != nil {
		return err
	}
	w, h := end.X-origin.X, end.Y-origin.Y
	if attrs.PreserveAspectRatio {
		size := img.Bounds().Size()
		if size.Y > 0 {
			w, h = geom.PreservedDimensions(w, h, float64(size.X)/float64(size.Y))
		}
	}
	l.DrawImage(img, geom.Rect(origin, w, h))
	return nil
}
