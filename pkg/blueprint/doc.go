// Package blueprint defines the structural description of a block building.
//
// A [Blueprint] describes a front view of one building or of several adjoining
// segments laid out left to right. All dimensions are integer block counts.
// Two schemas are accepted on input: a single "building" object, or a
// "segments" array. [Blueprint.Segments] hides the difference and always
// yields the ordered render sequence.
//
// # Roof Shapes
//
// Roof shapes form a closed set ([RoofGable], [RoofHip], [RoofFlat]) plus
// [RoofCap], the one-layer closing cap used for segments without a roof.
// [ParseRoofShape] is the only place where free-form input is mapped onto
// that set; anything it does not recognize becomes [RoofGable].
//
// # Reading
//
//	bp, err := blueprint.ReadFile("house.json") // or .yaml / .yml
//	for _, seg := range bp.Segments() {
//	    fmt.Println(seg.WidthBlocks, seg.WallHeightBlocks)
//	}
//
// Raw generator output can be cleaned up with [Normalize], which fills the
// same defaults the generation backend applies and reports what it changed.
package blueprint
