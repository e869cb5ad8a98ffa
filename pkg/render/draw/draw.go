// Package draw defines the drawing command vocabulary shared by the preview
// renderer, interactive surfaces and file sinks.
//
// A render pass is an ordered []Command. Coordinates are device pixels: the
// renderer computes in CSS pixels and the [Recorder] multiplies every
// coordinate, width and font size by the surface density before emitting.
// Consumers replay commands in order; later commands paint over earlier ones.
package draw

import (
	"fmt"
	"image/color"
	"math"
)

// Op names a drawing primitive.
type Op string

const (
	OpClearRect  Op = "clear_rect"
	OpFillRect   Op = "fill_rect"
	OpStrokeRect Op = "stroke_rect"
	OpLine       Op = "line"
	OpText       Op = "text"
)

// Color is an sRGB color with straight (non-premultiplied) alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA builds a Color, clamping alpha into [0,1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: clamp01(a)}
}

// String formats the color as a CSS rgba() value.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, formatAlpha(c.A))
}

// Hex returns the opaque #rrggbb part of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp01(c.A) * 255))}
}

// Over composites c over an opaque backdrop and returns the opaque result.
func (c Color) Over(dst Color) Color {
	a := clamp01(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	return Color{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: 1}
}

// MarshalText encodes the color in its CSS form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses "rgba(r,g,b,a)", "rgb(r,g,b)" or "#rrggbb".
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses the CSS forms produced by Color.String and Color.Hex.
func ParseColor(s string) (Color, error) {
	var (
		r, g, b int
		a       float64 = 1
	)
	switch {
	case len(s) == 7 && s[0] == '#':
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	case len(s) > 5 && s[:5] == "rgba(":
		if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	case len(s) > 4 && s[:4] == "rgb(":
		if _, err := fmt.Sscanf(s, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("parse color %q: unsupported form", s)
	}
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("parse color %q: component out of range", s)
		}
	}
	return RGBA(uint8(r), uint8(g), uint8(b), a), nil
}

// Command is one drawing primitive in device pixels.
//
// Rect ops use X, Y, W, H. Line uses X, Y to X2, Y2. Text is centered
// horizontally on X with its baseline at Y.
type Command struct {
	Op        Op      `json:"op"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"w,omitempty"`
	H         float64 `json:"h,omitempty"`
	X2        float64 `json:"x2,omitempty"`
	Y2        float64 `json:"y2,omitempty"`
	Color     Color   `json:"color"`
	LineWidth float64 `json:"line_width,omitempty"`
	Text      string  `json:"text,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
}

// Count returns how many commands in cmds use op.
func Count(cmds []Command, op Op) int {
	n := 0
	for _, c := range cmds {
		if c.Op == op {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func formatAlpha(a float64) string {
	return fmt.Sprintf("%g", math.Round(a*1000)/1000)
}
