package blueprint

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// RoofShape is the closed set of roof profiles the renderer knows how to draw.
type RoofShape uint8

const (
	// RoofGable narrows linearly toward a single centered ridge.
	RoofGable RoofShape = iota
	// RoofHip narrows from both outer edges toward the center.
	RoofHip
	// RoofFlat is one slab spanning the overhung width.
	RoofFlat
	// RoofCap is the one-layer closing cap for segments without a roof.
	// It never appears in decoded input.
	RoofCap
)

var roofShapeNames = [...]string{
	RoofGable: "gable",
	RoofHip:   "hip",
	RoofFlat:  "flat",
	RoofCap:   "cap",
}

// ParseRoofShape maps free-form input onto the closed set, ignoring case
// and surrounding space. Unrecognized values, including "cap", yield
// RoofGable.
func ParseRoofShape(s string) RoofShape {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hip":
		return RoofHip
	case "flat":
		return RoofFlat
	default:
		return RoofGable
	}
}

// String returns the lowercase shape name.
func (s RoofShape) String() string {
	if int(s) < len(roofShapeNames) {
		return roofShapeNames[s]
	}
	return roofShapeNames[RoofGable]
}

// MarshalText implements encoding.TextMarshaler.
func (s RoofShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (s *RoofShape) UnmarshalText(text []byte) error {
	*s = ParseRoofShape(string(text))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Non-string scalars fall back
// to gable like any other unrecognized value.
func (s *RoofShape) UnmarshalYAML(value *yaml.Node) error {
	*s = ParseRoofShape(value.Value)
	return nil
}
