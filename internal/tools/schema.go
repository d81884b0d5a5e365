package tools

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"LocalBoard/internal/draw"
	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

// FieldType selects the input widget for an attribute.
type FieldType string

const (
	FieldColor    FieldType = "color"
	FieldRange    FieldType = "range"
	FieldCheckbox FieldType = "checkbox"
	FieldSelect   FieldType = "select"
	FieldTextArea FieldType = "text-area"
	FieldImage    FieldType = "image"
)

// Field describes one editable attribute. Name is the attribute's JSON key.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Min, Max    float64
	Step        float64
	Options     []string
	Placeholder string
	Tooltip     string
}

// Stroke width limits shared by every tool.
const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 50
)

var (
	strokeFields = []Field{
		{Name: "strokeStyle", Label: "Stroke color", Type: FieldColor},
		{Name: "strokeWidth", Label: "Stroke width", Type: FieldRange, Min: MinStrokeWidth, Max: MaxStrokeWidth, Step: 1},
	}
	fillFields = []Field{
		{Name: "isFilled", Label: "Fill", Type: FieldCheckbox},
		{Name: "fillStyle", Label: "Fill color", Type: FieldColor},
	}
	equalField = Field{Name: "isEqual", Label: "Fix aspect ratio", Type: FieldCheckbox, Tooltip: "Press Shift to toggle this checkbox"}
)

var schemas = map[state.ToolKind][]Field{
	state.ToolFreehand: {
		strokeFields[0],
		strokeFields[1],
		{Name: "lineCap", Label: "Line cap", Type: FieldSelect, Options: []string{state.CapSquare, state.CapRound, state.CapButt}},
		{Name: "speedDependenceFactor", Label: "Speed dependence", Type: FieldRange, Min: -1, Max: 1, Step: 0.1,
			Tooltip: "Positive widens fast strokes, negative thins them"},
	},
	state.ToolRectangle: slices.Concat(strokeFields, fillFields, []Field{equalField}),
	state.ToolEllipse:   slices.Concat(strokeFields, fillFields, []Field{equalField}),
	state.ToolLine:      slices.Concat(strokeFields, []Field{{Name: "isEqual", Label: "Snap angle", Type: FieldCheckbox, Tooltip: "Press Shift to toggle this checkbox"}}),
	state.ToolFill: {
		{Name: "fillColor", Label: "Fill color", Type: FieldColor},
		{Name: "tolerance", Label: "Tolerance", Type: FieldRange, Min: 0, Max: 3 * 255 * 255, Step: 100},
		{Name: "diagonal", Label: "Spread diagonally", Type: FieldCheckbox},
	},
	state.ToolText: {
		{Name: "fontSize", Label: "Font size", Type: FieldRange, Min: 3, Max: 50, Step: 1},
		{Name: "font", Label: "Font", Type: FieldSelect, Options: []string{state.FontSerif, state.FontSansSerif, state.FontMonospace}},
		{Name: "align", Label: "Align", Type: FieldSelect, Options: []string{state.AlignLeft, state.AlignRight, state.AlignCenter}},
		{Name: "fillStyle", Label: "Text color", Type: FieldColor},
		{Name: "isEqual", Label: "Size by drag", Type: FieldCheckbox, Tooltip: "Press Shift to toggle this checkbox"},
		{Name: "textContent", Label: "Text", Type: FieldTextArea, Placeholder: "Type your text here"},
	},
	state.ToolImage: {
		{Name: "imageData", Label: "Image", Type: FieldImage},
		{Name: "preserveAspectRatio", Label: "Preserve aspect ratio", Type: FieldCheckbox},
	},
}

// Schema lists the editable attributes of kind in display order.
func Schema(kind state.ToolKind) []Field {
	return slices.Clone(schemas[kind])
}

func lookupField(kind state.ToolKind, name string) (Field, error) {
	for _, f := range schemas[kind] {
		if f.Name == name {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%s has no attribute %q", kind, name)
}

// ApplyChange returns attrs with field set from the raw input value. Colours
// are normalised, ranges clamped and selects checked against their options.
// Choosing a fill colour also switches filling on.
func ApplyChange(kind state.ToolKind, attrs state.Attributes, field, raw string) (state.Attributes, error) {
	f, err := lookupField(kind, field)
	if err != nil {
		return attrs, err
	}
	fields, err := toMap(attrs)
	if err != nil {
		return attrs, err
	}

	switch f.Type {
	case FieldColor:
		c, err := geom.ParseHex(raw)
		if err != nil {
			return attrs, err
		}
		fields[f.Name] = geom.Hex(c)
		if f.Name == "fillStyle" && kind != state.ToolText {
			fields["isFilled"] = true
		}
	case FieldRange:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return attrs, fmt.Errorf("%s: %w", f.Name, err)
		}
		v = geom.Clamp(v, f.Min, f.Max)
		if f.Name == "tolerance" {
			fields[f.Name] = int(v)
		} else {
			fields[f.Name] = v
		}
	case FieldCheckbox:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return attrs, fmt.Errorf("%s: %w", f.Name, err)
		}
		fields[f.Name] = v
	case FieldSelect:
		if !slices.Contains(f.Options, raw) {
			return attrs, fmt.Errorf("%s: %q is not one of %v", f.Name, raw, f.Options)
		}
		fields[f.Name] = raw
	case FieldImage:
		if raw != "" {
			if _, err := draw.DecodeImage(raw); err != nil {
				return attrs, err
			}
		}
		fields[f.Name] = raw
	default:
		fields[f.Name] = raw
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return attrs, err
	}
	return state.DecodeAttributes(kind, data)
}

// FieldValue formats the current value of field for an input widget.
func FieldValue(kind state.ToolKind, attrs state.Attributes, field string) (string, error) {
	if _, err := lookupField(kind, field); err != nil {
		return "", err
	}
	fields, err := toMap(attrs)
	if err != nil {
		return "", err
	}
	switch v := fields[field].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toMap(attrs state.Attributes) (map[string]any, error) {
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
