package preview

import "github.com/blockprint/blockprint/pkg/blueprint"

// Rect is an axis-aligned rectangle in CSS pixels, Y growing downward.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// RoofLayers synthesizes the stepped roof above a wall whose top edge is at
// wallTop and whose left edge is at left. Layers are returned bottom to top.
//
// Gable and hip produce HeightBlocks layers, each one block tall. Flat
// produces one slab two blocks tall across the overhung width. The cap is a
// single one-block layer over the bare wall width.
func RoofLayers(left, wallTop float64, widthBlocks int, scale float64, roof blueprint.Roof) []Rect {
	wallWidth := float64(widthBlocks) * scale
	roofLeft := left - float64(roof.Overhang)*scale
	full := float64(widthBlocks+2*roof.Overhang) * scale
	h := roof.HeightBlocks

	switch roof.Shape {
	case blueprint.RoofCap:
		return []Rect{{X: left, Y: wallTop - scale, W: wallWidth, H: scale}}

	case blueprint.RoofFlat:
		return []Rect{{X: roofLeft, Y: wallTop - 2*scale, W: full, H: 2 * scale}}

	case blueprint.RoofHip:
		if h <= 0 {
			return nil
		}
		center := roofLeft + full/2
		out := make([]Rect, 0, 2*h)
		for r := 0; r < h; r++ {
			half := (full / 2) * (1 - float64(r)/float64(h))
			top := wallTop - float64(r+1)*scale
			out = append(out,
				Rect{X: roofLeft, Y: top, W: half, H: scale},
				Rect{X: center, Y: top, W: half, H: scale},
			)
		}
		return out

	case blueprint.RoofGable:
		if h <= 0 {
			return nil
		}
		out := make([]Rect, 0, h)
		for r := 0; r < h; r++ {
			step := full * (1 - float64(r)/float64(h))
			out = append(out, Rect{
				X: roofLeft + (full-step)/2,
				Y: wallTop - float64(r+1)*scale,
				W: step,
				H: scale,
			})
		}
		return out

	default:
		panic("preview: unhandled roof shape " + roof.Shape.String())
	}
}

// RoofLayerCount returns how many layers RoofLayers emits for roof,
// counting a hip layer's two halves once.
func RoofLayerCount(roof blueprint.Roof) int {
	switch roof.Shape {
	case blueprint.RoofCap, blueprint.RoofFlat:
		return 1
	default:
		return max(roof.HeightBlocks, 0)
	}
}
