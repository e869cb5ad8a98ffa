package preview

import (
	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/render/draw"
)

// drawGrid emits the faint block grid behind a segment.
//
// Verticals run at every wall block boundary from the ground to the segment
// top. Boundaries that exist only because of the roof overhang start at the
// wall top. Horizontals mark every wall course and, for real roofs, every
// roof layer across the overhung width. The cap gets no roof lines.
func (r *renderer) drawGrid(rec *draw.Recorder, s Segment, left, wallTop float64, l Layout) {
	scale, ground := l.Scale, l.GroundY
	top := ground - float64(s.TotalHeight())*scale
	c := r.palette.Grid

	for x := 0; x <= s.Width; x++ {
		px := left + float64(x)*scale
		rec.Line(px, ground, px, top, c, lineWidth)
	}

	ov := s.Roof.Overhang
	if s.Roof.Shape == blueprint.RoofCap {
		ov = 0
	}
	roofLeft := left - float64(ov)*scale
	for x := 0; x <= s.Width+2*ov; x++ {
		if x >= ov && x <= s.Width+ov {
			continue
		}
		px := roofLeft + float64(x)*scale
		rec.Line(px, wallTop, px, top, c, lineWidth)
	}

	right := left + float64(s.Width)*scale
	for y := 0; y <= s.WallHeight; y++ {
		py := ground - float64(y)*scale
		rec.Line(left, py, right, py, c, lineWidth)
	}

	if s.Roof.Shape == blueprint.RoofCap {
		return
	}
	roofRight := roofLeft + float64(s.Width+2*ov)*scale
	for y := 1; y <= s.Roof.HeightBlocks; y++ {
		py := wallTop - float64(y)*scale
		rec.Line(roofLeft, py, roofRight, py, c, lineWidth)
	}
}
