package preview

import (
	"fmt"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/styles"
)

const lineWidth = 1.0

// Option configures a render pass.
type Option func(*renderer)

type renderer struct {
	palette   styles.Palette
	showGrid  bool
	showLabel bool
}

// WithPalette selects the colors used for every role.
func WithPalette(p styles.Palette) Option {
	return func(r *renderer) { r.palette = p }
}

// WithGrid toggles the block grid (default on).
func WithGrid(enabled bool) Option {
	return func(r *renderer) { r.showGrid = enabled }
}

// WithLabel toggles the "<n> blocks total" label (default on).
func WithLabel(enabled bool) Option {
	return func(r *renderer) { r.showLabel = enabled }
}

// Render produces one full pass for bp in vp. The first command always
// clears the whole surface; an empty blueprint yields only that clear.
func Render(bp *blueprint.Blueprint, vp Viewport, opts ...Option) []draw.Command {
	return RenderSegments(Canonicalize(bp), vp, opts...)
}

// RenderSegments is Render for already canonical segments.
func RenderSegments(segs []Segment, vp Viewport, opts ...Option) []draw.Command {
	r := renderer{palette: styles.Default(), showGrid: true, showLabel: true}
	for _, opt := range opts {
		opt(&r)
	}

	rec := draw.NewRecorder(vp.Density)
	rec.ClearRect(0, 0, vp.Width, vp.Height, r.palette.Background)

	l, ok := Resolve(segs, vp)
	if !ok {
		return rec.Commands()
	}

	cumulative := 0
	for _, s := range segs {
		r.segment(rec, s, l.SegmentLeft(cumulative), l)
		cumulative += s.Width
	}

	if r.showLabel {
		rec.Text(l.BaseOffsetX+l.Width()/2, l.GroundY+LabelOffset,
			Label(l.TotalWidthBlocks), r.palette.Label, LabelFontSize)
	}
	return rec.Commands()
}

// Label formats the aggregate width label.
func Label(totalWidthBlocks int) string {
	return fmt.Sprintf("%d blocks total", totalWidthBlocks)
}

func (r *renderer) segment(rec *draw.Recorder, s Segment, left float64, l Layout) {
	scale, ground := l.Scale, l.GroundY
	wallTop := ground - float64(s.WallHeight)*scale

	if r.showGrid {
		r.drawGrid(rec, s, left, wallTop, l)
	}

	rec.FillRect(left, wallTop, float64(s.Width)*scale, float64(s.WallHeight)*scale, r.palette.Wall)

	for _, layer := range RoofLayers(left, wallTop, s.Width, scale, s.Roof) {
		rec.FillRect(layer.X, layer.Y, layer.W, layer.H, r.palette.RoofFill)
		rec.StrokeRect(layer.X, layer.Y, layer.W, layer.H, r.palette.RoofStroke, lineWidth)
	}

	for _, o := range s.Openings {
		px := ProjectOpening(left, ground, scale, o)
		rec.FillRect(px.X, px.Y, px.W, px.H, r.palette.Opening(o.Kind.IsDoor()))
		rec.StrokeRect(px.X, px.Y, px.W, px.H, r.palette.OpeningStroke, lineWidth)
	}
}
