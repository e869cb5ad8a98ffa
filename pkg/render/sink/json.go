package sink

import (
	"encoding/json"

	"github.com/blockprint/blockprint/pkg/render/draw"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	density float64
	palette string
}

// WithJSONDensity records the pixel density the commands were scaled by.
func WithJSONDensity(d float64) JSONOption { return func(r *jsonRenderer) { r.density = d } }

// WithJSONPalette records the palette name in the output.
func WithJSONPalette(name string) JSONOption { return func(r *jsonRenderer) { r.palette = name } }

// Pass is the JSON document for one render pass. Width and Height are the
// surface size in CSS pixels; command coordinates are device pixels, that is
// CSS pixels times Density.
type Pass struct {
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Density  float64        `json:"density,omitempty"`
	Palette  string         `json:"palette,omitempty"`
	Commands []draw.Command `json:"commands"`
}

// NewPass wraps cmds for encoding. A nil command list encodes as [].
func NewPass(cmds []draw.Command, width, height float64, opts ...JSONOption) Pass {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if cmds == nil {
		cmds = []draw.Command{}
	}
	return Pass{Width: width, Height: height, Density: r.density, Palette: r.palette, Commands: cmds}
}

// RenderJSON encodes cmds as a Pass document. width and height are in CSS
// pixels.
func RenderJSON(cmds []draw.Command, width, height float64, opts ...JSONOption) ([]byte, error) {
	return json.Marshal(NewPass(cmds, width, height, opts...))
}
