package blueprint_test

import (
	"fmt"
	"strings"

	"github.com/blockprint/blockprint/pkg/blueprint"
)

func Example() {
	bp, err := blueprint.Read(strings.NewReader(`{
		"segments": [
			{"width_blocks": 10, "wall_height_blocks": 6, "roof": {"type": "gable", "height_blocks": 4}},
			{"width_blocks": 6, "wall_height_blocks": 4}
		]
	}`))
	if err != nil {
		panic(err)
	}
	for i, seg := range bp.Segments() {
		fmt.Printf("segment %d: %d wide, %d tall\n", i, seg.WidthBlocks, seg.TotalHeight())
	}
	// Output:
	// segment 0: 10 wide, 10 tall
	// segment 1: 6 wide, 5 tall
}

func ExampleParseRoofShape() {
	for _, s := range []string{"HIP", "flat", "mansard"} {
		fmt.Println(blueprint.ParseRoofShape(s))
	}
	// Output:
	// hip
	// flat
	// gable
}

func ExampleNormalize() {
	bp, warnings, err := blueprint.Normalize(map[string]any{
		"building": map[string]any{
			"width_blocks":       12,
			"wall_height_blocks": 5,
			"openings": []any{
				map[string]any{"type": "door", "x": 5, "y": 0, "w": 4, "h": 4},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	door := bp.Segments()[0].Openings[0]
	fmt.Printf("door %dx%d\n", door.W, door.H)
	fmt.Println(warnings)
	// Output:
	// door 1x2
	// [building: depth_blocks missing, using 10]
}
