package blueprint

import (
	"fmt"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// ViewFront is the only supported view.
const ViewFront = "front"

// OpeningKind distinguishes doors from windows.
type OpeningKind string

const (
	OpeningDoor   OpeningKind = "door"
	OpeningWindow OpeningKind = "window"
)

// IsDoor reports whether k is a door. Every other kind is drawn as a window.
func (k OpeningKind) IsDoor() bool { return k == OpeningDoor }

// Opening is a door or window rectangle in block space. The origin is the
// bottom-left corner of the owning segment and Y grows upward from the ground.
type Opening struct {
	Kind OpeningKind `json:"type" yaml:"type"`
	X    int         `json:"x" yaml:"x"`
	Y    int         `json:"y" yaml:"y"`
	W    int         `json:"w" yaml:"w"`
	H    int         `json:"h" yaml:"h"`
}

// Roof describes the stepped roof sitting on a segment's walls.
type Roof struct {
	Shape        RoofShape `json:"type" yaml:"type"`
	HeightBlocks int       `json:"height_blocks" yaml:"height_blocks"`
	Overhang     int       `json:"overhang" yaml:"overhang"`
}

// Building is one independently walled segment.
// DepthBlocks is descriptive only; the front view never draws it.
type Building struct {
	WidthBlocks      int       `json:"width_blocks" yaml:"width_blocks"`
	WallHeightBlocks int       `json:"wall_height_blocks" yaml:"wall_height_blocks"`
	DepthBlocks      int       `json:"depth_blocks" yaml:"depth_blocks"`
	Roof             *Roof     `json:"roof,omitempty" yaml:"roof,omitempty"`
	Openings         []Opening `json:"openings" yaml:"openings"`
}

// RoofHeight returns the number of block layers above the wall top:
// the roof height when a roof is present, otherwise 1 for the cap.
func (b Building) RoofHeight() int {
	if b.Roof == nil {
		return 1
	}
	return b.Roof.HeightBlocks
}

// TotalHeight returns the rendered height in blocks (walls plus roof or cap).
func (b Building) TotalHeight() int {
	return b.WallHeightBlocks + b.RoofHeight()
}

// Materials maps building parts to block material names.
type Materials struct {
	Foundation string `json:"foundation" yaml:"foundation"`
	Wall       string `json:"wall" yaml:"wall"`
	Trim       string `json:"trim" yaml:"trim"`
	Roof       string `json:"roof" yaml:"roof"`
	Window     string `json:"window" yaml:"window"`
	Door       string `json:"door" yaml:"door"`
}

// DefaultMaterials returns the material set used when a blueprint names none.
func DefaultMaterials() Materials {
	return Materials{
		Foundation: "mossy_cobblestone",
		Wall:       "oak_planks",
		Trim:       "stripped_oak_log",
		Roof:       "spruce_stairs",
		Window:     "glass_pane",
		Door:       "oak_door",
	}
}

// Style carries presentation data for the surrounding UI.
// The geometry renderer never reads it.
type Style struct {
	Theme     string    `json:"theme" yaml:"theme"`
	Materials Materials `json:"materials" yaml:"materials"`
	Decor     []string  `json:"decor" yaml:"decor"`
	Variation float64   `json:"variation" yaml:"variation"`
}

// DefaultStyle returns the style applied to blueprints without one.
func DefaultStyle() Style {
	return Style{
		Theme:     "ghibli",
		Materials: DefaultMaterials(),
		Decor:     []string{},
		Variation: 0.15,
	}
}

// Blueprint is the full structural description produced by the generator.
// Exactly one of Building or Composition is normally set; when both are,
// a non-empty Composition wins.
type Blueprint struct {
	View        string     `json:"view" yaml:"view"`
	Building    *Building  `json:"building,omitempty" yaml:"building,omitempty"`
	Composition []Building `json:"segments,omitempty" yaml:"segments,omitempty"`
	Style       Style      `json:"style" yaml:"style"`
}

// Segments returns the ordered render sequence. An explicit non-empty
// segment list is returned unchanged; otherwise a single building becomes a
// one-element sequence; otherwise the result is empty.
func (b *Blueprint) Segments() []Building {
	if b == nil {
		return nil
	}
	if len(b.Composition) > 0 {
		return b.Composition
	}
	if b.Building != nil {
		return []Building{*b.Building}
	}
	return nil
}

// TotalWidth returns the summed width of all segments in blocks.
func (b *Blueprint) TotalWidth() int {
	total := 0
	for _, s := range b.Segments() {
		total += s.WidthBlocks
	}
	return total
}

// Validate checks the structural invariants: at least one segment, positive
// widths, and non-negative heights and overhangs. Opening positions are not
// checked; out-of-range openings are drawn as given.
func (b *Blueprint) Validate() error {
	segs := b.Segments()
	if len(segs) == 0 {
		return bperrors.New(bperrors.ErrCodeInvalidBlueprint, "blueprint has no building or segments")
	}
	for i, s := range segs {
		if err := s.validate(); err != nil {
			return bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "segment %d", i)
		}
	}
	return nil
}

func (b Building) validate() error {
	if b.WidthBlocks <= 0 {
		return fmt.Errorf("width_blocks must be positive, got %d", b.WidthBlocks)
	}
	if b.WallHeightBlocks < 0 {
		return fmt.Errorf("wall_height_blocks must not be negative, got %d", b.WallHeightBlocks)
	}
	if b.Roof != nil {
		if b.Roof.HeightBlocks < 0 {
			return fmt.Errorf("roof height_blocks must not be negative, got %d", b.Roof.HeightBlocks)
		}
		if b.Roof.Overhang < 0 {
			return fmt.Errorf("roof overhang must not be negative, got %d", b.Roof.Overhang)
		}
	}
	return nil
}
