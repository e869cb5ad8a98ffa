package blueprint

// DecorBlocks is the flat per-tag allowance for decoration.
const DecorBlocks = 5

// BlockCount estimates how many blocks a physical build will place.
// Each segment contributes its floor, its wall perimeter times the wall
// height and its roof: half the footprint volume for sloped roofs, one
// footprint layer otherwise. Every decor tag adds DecorBlocks.
func (b *Blueprint) BlockCount() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, s := range b.Segments() {
		total += s.BlockCount()
	}
	return total + len(b.Style.Decor)*DecorBlocks
}

// BlockCount estimates the blocks for a single segment.
func (s Building) BlockCount() int {
	footprint := s.WidthBlocks * s.DepthBlocks
	walls := 2 * (s.WidthBlocks + s.DepthBlocks) * s.WallHeightBlocks

	roof := footprint
	if s.Roof != nil && (s.Roof.Shape == RoofGable || s.Roof.Shape == RoofHip) {
		roof = footprint * s.Roof.HeightBlocks / 2
	}
	return footprint + walls + roof
}
