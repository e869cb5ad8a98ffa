package preview

import "github.com/blockprint/blockprint/pkg/blueprint"

// ProjectOpening maps an opening from block space (origin at the segment's
// bottom-left, Y up) to CSS pixels (Y down). Openings outside the wall are
// projected as given.
func ProjectOpening(left, groundY, scale float64, o blueprint.Opening) Rect {
	return Rect{
		X: left + float64(o.X)*scale,
		Y: groundY - float64(o.Y+o.H)*scale,
		W: float64(o.W) * scale,
		H: float64(o.H) * scale,
	}
}
