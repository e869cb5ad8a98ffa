package preview

import (
	"math"

	"github.com/blockprint/blockprint/pkg/blueprint"
)

const (
	// Padding is the margin in CSS pixels kept free on every side.
	Padding = 40.0

	// MinScale is the smallest block size in CSS pixels. Viewports too
	// small to fit the composition inside the padding are clamped to it.
	MinScale = 0.1

	// LabelOffset is the distance from the ground line to the label baseline.
	LabelOffset = 20.0

	// LabelFontSize is the label font size in CSS pixels.
	LabelFontSize = 12.0
)

// Viewport is the drawing surface size in CSS pixels plus its pixel density.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Density float64 `json:"density"`
}

// DevicePixels returns the surface size in device pixels.
func (v Viewport) DevicePixels() (w, h float64) {
	d := v.Density
	if !(d > 0) {
		d = 1
	}
	return v.Width * d, v.Height * d
}

// Segment is a canonical segment. Roof is always set; segments described
// without a roof carry a RoofCap of height 1.
type Segment struct {
	Width      int
	WallHeight int
	Roof       blueprint.Roof
	Openings   []blueprint.Opening
}

// TotalHeight returns the segment's silhouette height in blocks.
func (s Segment) TotalHeight() int {
	return s.WallHeight + s.Roof.HeightBlocks
}

// Canonicalize converts the blueprint's segment sequence into canonical
// segments, substituting the cap wherever a roof is missing.
func Canonicalize(bp *blueprint.Blueprint) []Segment {
	src := bp.Segments()
	if len(src) == 0 {
		return nil
	}
	out := make([]Segment, len(src))
	for i, b := range src {
		roof := blueprint.Roof{Shape: blueprint.RoofCap, HeightBlocks: 1}
		if b.Roof != nil {
			roof = *b.Roof
		}
		out[i] = Segment{
			Width:      b.WidthBlocks,
			WallHeight: b.WallHeightBlocks,
			Roof:       roof,
			Openings:   b.Openings,
		}
	}
	return out
}

// Layout holds the shared placement of a composition inside a viewport.
type Layout struct {
	Scale            float64 // CSS pixels per block
	BaseOffsetX      float64 // left edge of the first segment
	GroundY          float64 // shared ground line
	TotalWidthBlocks int
	MaxHeightBlocks  int
}

// Resolve computes the layout for segs in vp. It reports false when there
// is nothing to lay out (no segments or a non-positive total width).
//
// The scale is the largest block size that fits the total width and the
// tallest silhouette inside the padded viewport. A composition with zero
// height is scaled by width alone. Non-finite scales and scales below
// MinScale are clamped to MinScale.
func Resolve(segs []Segment, vp Viewport) (Layout, bool) {
	l := Layout{}
	for _, s := range segs {
		l.TotalWidthBlocks += s.Width
		l.MaxHeightBlocks = max(l.MaxHeightBlocks, s.TotalHeight())
	}
	if len(segs) == 0 || l.TotalWidthBlocks <= 0 {
		return Layout{}, false
	}

	scale := (vp.Width - 2*Padding) / float64(l.TotalWidthBlocks)
	if l.MaxHeightBlocks > 0 {
		scale = math.Min(scale, (vp.Height-2*Padding)/float64(l.MaxHeightBlocks))
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < MinScale {
		scale = MinScale
	}

	l.Scale = scale
	l.BaseOffsetX = (vp.Width - float64(l.TotalWidthBlocks)*scale) / 2
	l.GroundY = (vp.Height + float64(l.MaxHeightBlocks)*scale) / 2
	return l, true
}

// SegmentLeft returns the left edge of a segment preceded by cumulative
// blocks of other segments.
func (l Layout) SegmentLeft(cumulative int) float64 {
	return l.BaseOffsetX + float64(cumulative)*l.Scale
}

// Width returns the composition width in CSS pixels.
func (l Layout) Width() float64 {
	return float64(l.TotalWidthBlocks) * l.Scale
}
