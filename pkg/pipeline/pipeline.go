// Package pipeline provides the render pipeline shared by the CLI and the
// HTTP server.
//
// A pipeline run takes a decoded blueprint and produces one artifact per
// requested format. Two visualization types exist:
//
//   - preview: the front-elevation drawing pass from [preview.Render],
//     encoded by the sinks as SVG, PNG, PDF, JSON commands, or terminal cells
//   - structure: a Graphviz diagram of the blueprint's segments, roofs and
//     openings
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Width:   800,
//	    Height:  600,
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, bp, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/blueprint"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/preview"
	"github.com/blockprint/blockprint/pkg/render/sink"
	"github.com/blockprint/blockprint/pkg/render/styles"
)

const (
	// DefaultWidth is the default viewport width in CSS pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in CSS pixels.
	DefaultHeight = 600.0

	// DefaultDensity is the default device pixel ratio.
	DefaultDensity = 1.0
)

// Visualization types.
const (
	VizTypePreview   = "preview"
	VizTypeStructure = "structure"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypePreview

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatTXT  = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatTXT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypePreview:   true,
	VizTypeStructure: true,
}

// ContentTypes maps output formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatTXT:  "text/plain; charset=utf-8",
}

// Options contains all configuration for a render run.
// This struct supports JSON serialization for API requests.
type Options struct {
	VizType string   `json:"viz_type,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Density float64  `json:"density,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Palette string   `json:"palette,omitempty"`

	HideGrid  bool   `json:"hide_grid,omitempty"`
	HideLabel bool   `json:"hide_label,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"` // structure labels
	Title     string `json:"title,omitempty"`

	// Columns and Rows size the txt output in terminal cells. When unset the
	// viewport is divided by the default cell size.
	Columns int `json:"columns,omitempty"`
	Rows    int `json:"rows,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Commands is the drawing pass for preview runs.
	Commands []draw.Command

	// DOT is the Graphviz source for structure runs.
	DOT string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains counts and timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Segments    int
	WidthBlocks int
	TotalBlocks int
	Commands    int
	RenderTime  time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return bperrors.New(bperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return bperrors.New(bperrors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: preview, structure)", vizType)
	}
	return nil
}

// MaxDeviceSide is the largest surface side accepted, in device pixels.
const MaxDeviceSide = 8192.0

// ValidateViewport rejects sizes that cannot describe a drawing surface.
// Zero is allowed; the layout clamps the scale for degenerate areas. A zero
// density counts as 1 when checking the device size against MaxDeviceSide.
func ValidateViewport(width, height, density float64) error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"width", width}, {"height", height}, {"density", density}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value < 0 {
			return bperrors.New(bperrors.ErrCodeInvalidViewport, "invalid %s: %v", v.name, v.value)
		}
	}
	d := density
	if d == 0 {
		d = 1
	}
	if w, h := width*d, height*d; w > MaxDeviceSide || h > MaxDeviceSide {
		return bperrors.New(bperrors.ErrCodeInvalidViewport,
			"viewport %vx%v at density %v exceeds %v device pixels per side", width, height, d, MaxDeviceSide)
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults applies defaults and validates every field.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Density == 0 {
		o.Density = DefaultDensity
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Palette == "" {
		o.Palette = styles.DefaultName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateViewport(o.Width, o.Height, o.Density); err != nil {
		return err
	}
	if o.Columns < 0 || o.Rows < 0 ||
		float64(o.Columns)*sink.DefaultCellWidth > MaxDeviceSide || float64(o.Rows)*sink.DefaultCellHeight > MaxDeviceSide {
		return bperrors.New(bperrors.ErrCodeInvalidViewport, "invalid terminal size %dx%d", o.Columns, o.Rows)
	}
	_, err := styles.Lookup(o.Palette)
	return err
}

// Viewport returns the preview viewport described by the options.
func (o *Options) Viewport() preview.Viewport {
	return preview.Viewport{Width: o.Width, Height: o.Height, Density: o.Density}
}

// IsStructure returns true if this is a structure visualization.
func (o *Options) IsStructure() bool {
	return o.VizType == VizTypeStructure
}

// StatsFor returns the blueprint counts reported alongside a render.
func StatsFor(bp *blueprint.Blueprint) Stats {
	return Stats{
		Segments:    len(bp.Segments()),
		WidthBlocks: bp.TotalWidth(),
		TotalBlocks: bp.BlockCount(),
	}
}
