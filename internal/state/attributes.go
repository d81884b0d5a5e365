package state

import (
	"encoding/json"
	"fmt"
)

// Attributes is the closed set of per-tool attribute records carried by a
// Command. Only the types in this file implement it.
type Attributes interface {
	attributes()
}

// FreehandAttributes configure the pencil.
type FreehandAttributes struct {
	StrokeStyle string  `json:"strokeStyle"`
	StrokeWidth float64 `json:"strokeWidth"`
	LineCap     string  `json:"lineCap"`
	// SpeedFactor scales the stroke width with pointer speed; 0 disables it.
	SpeedFactor float64 `json:"speedDependenceFactor"`
}

// ShapeAttributes configure rectangle, ellipse and line.
type ShapeAttributes struct {
	StrokeStyle string  `json:"strokeStyle"`
	StrokeWidth float64 `json:"strokeWidth"`
	IsFilled    bool    `json:"isFilled"`
	FillStyle   string  `json:"fillStyle"`
	// IsEqual forces a square, a circle or a 15 degree line.
	IsEqual bool `json:"isEqual"`
}

// FillAttributes configure the flood fill.
type FillAttributes struct {
	FillColor string `json:"fillColor"`
	// Tolerance > 0 switches to squared-RGB-distance matching.
	Tolerance int  `json:"tolerance,omitempty"`
	Diagonal  bool `json:"diagonal,omitempty"`
}

// TextAttributes configure text placement. IsEqual enables drag-sized text.
type TextAttributes struct {
	ShapeAttributes
	Font        string  `json:"font"`
	FontSize    float64 `json:"fontSize"`
	Align       string  `json:"align"`
	TextContent string  `json:"textContent"`
}

// ImageAttributes configure image placement. Source is a base64 encoded
// PNG or JPEG.
type ImageAttributes struct {
	Source              string `json:"imageData,omitempty"`
	PreserveAspectRatio bool   `json:"preserveAspectRatio"`
}

// ClearAttributes is the empty payload of a clear command.
type ClearAttributes struct{}

func (FreehandAttributes) attributes() {}
func (ShapeAttributes) attributes()    {}
func (FillAttributes) attributes()     {}
func (TextAttributes) attributes()     {}
func (ImageAttributes) attributes()    {}
func (ClearAttributes) attributes()    {}

// Text alignments.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Font families.
const (
	FontSerif     = "serif"
	FontSansSerif = "sans-serif"
	FontMonospace = "monospace"
)

// Freehand line caps.
const (
	CapSquare = "square"
	CapRound  = "round"
	CapButt   = "butt"
)

// DefaultAttributes returns the starting attributes for kind.
func DefaultAttributes(kind ToolKind) Attributes {
	switch kind {
	case ToolFreehand:
		return FreehandAttributes{StrokeStyle: "#000000", StrokeWidth: 2, LineCap: CapSquare}
	case ToolRectangle, ToolEllipse:
		return ShapeAttributes{StrokeStyle: "#000000", StrokeWidth: 1, FillStyle: "#000000"}
	case ToolLine:
		return ShapeAttributes{StrokeStyle: "#000000", StrokeWidth: 1}
	case ToolFill:
		return FillAttributes{FillColor: "#000000"}
	case ToolText:
		return TextAttributes{
			ShapeAttributes: ShapeAttributes{StrokeStyle: "#000000", StrokeWidth: 1, FillStyle: "#000000"},
			Font:            FontSerif,
			FontSize:        12,
			Align:           AlignLeft,
		}
	case ToolImage:
		return ImageAttributes{PreserveAspectRatio: true}
	default:
		return ClearAttributes{}
	}
}

// DecodeAttributes decodes raw into the variant for kind. Fields missing
// from raw keep their default values.
func DecodeAttributes(kind ToolKind, raw json.RawMessage) (Attributes, error) {
	def := DefaultAttributes(kind)
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}
	var err error
	switch a := def.(type) {
	case FreehandAttributes:
		err = json.Unmarshal(raw, &a)
		def = a
	case ShapeAttributes:
		err = json.Unmarshal(raw, &a)
		def = a
	case FillAttributes:
		err = json.Unmarshal(raw, &a)
		def = a
	case TextAttributes:
		err = json.Unmarshal(raw, &a)
		def = a
	case ImageAttributes:
		err = json.Unmarshal(raw, &a)
		def = a
	case ClearAttributes:
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s attributes: %w", kind, err)
	}
	return def, nil
}
