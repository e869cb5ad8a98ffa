// Package styles defines the color palettes used by the preview renderer.
//
// A [Palette] assigns a color to every visual role in a front-view preview:
// the background clear, the block grid, walls, roof layers, doors, windows,
// opening outlines and the summary label. Palettes are looked up by name:
//
//	p, err := styles.Lookup("paper")
//	cmds := preview.Render(bp, vp, preview.WithPalette(p))
//
// The default palette, [Night], matches the dark blueprint look of the
// preview canvas. [Paper] is a light variant suited to printed output.
package styles

import (
	"sort"
	"strings"

	"github.com/blockprint/blockprint/pkg/render/draw"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// DefaultName is the palette used when none is requested.
const DefaultName = "night"

// Palette maps preview roles to colors.
type Palette struct {
	Name          string
	Background    draw.Color
	Grid          draw.Color
	Wall          draw.Color
	RoofFill      draw.Color
	RoofStroke    draw.Color
	Door          draw.Color
	Window        draw.Color
	OpeningStroke draw.Color
	Label         draw.Color
}

// Night is the default translucent palette for dark surfaces.
var Night = Palette{
	Name:          "night",
	Background:    draw.RGBA(0, 0, 0, 0.3),
	Grid:          draw.RGBA(255, 255, 255, 0.05),
	Wall:          draw.RGBA(139, 105, 20, 0.6),
	RoofFill:      draw.RGBA(139, 69, 19, 0.85),
	RoofStroke:    draw.RGBA(100, 50, 10, 0.5),
	Door:          draw.RGBA(101, 67, 33, 0.9),
	Window:        draw.RGBA(135, 206, 235, 0.5),
	OpeningStroke: draw.RGBA(255, 255, 255, 0.3),
	Label:         draw.RGBA(255, 255, 255, 0.6),
}

// Paper is an opaque light palette for documents.
var Paper = Palette{
	Name:          "paper",
	Background:    draw.RGBA(250, 246, 236, 1),
	Grid:          draw.RGBA(60, 60, 90, 0.12),
	Wall:          draw.RGBA(176, 138, 70, 0.8),
	RoofFill:      draw.RGBA(120, 60, 30, 0.9),
	RoofStroke:    draw.RGBA(70, 35, 15, 0.7),
	Door:          draw.RGBA(90, 58, 28, 1),
	Window:        draw.RGBA(96, 160, 200, 0.7),
	OpeningStroke: draw.RGBA(40, 40, 40, 0.5),
	Label:         draw.RGBA(40, 40, 40, 0.8),
}

var palettes = map[string]Palette{
	Night.Name: Night,
	Paper.Name: Paper,
}

// Lookup returns the palette registered under name (case-insensitive).
// An empty name selects the default.
func Lookup(name string) (Palette, error) {
	if name == "" {
		return Default(), nil
	}
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, bperrors.New(bperrors.ErrCodeInvalidPalette,
			"unknown palette %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Default returns the default palette.
func Default() Palette { return Night }

// Names lists the registered palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Opening returns the fill color for an opening of the given kind.
func (p Palette) Opening(isDoor bool) draw.Color {
	if isDoor {
		return p.Door
	}
	return p.Window
}
