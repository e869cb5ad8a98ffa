package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blockprint/blockprint/pkg/blueprint"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/observability"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/sink"
)

func cottage() *blueprint.Blueprint {
	return &blueprint.Blueprint{
		View: blueprint.ViewFront,
		Building: &blueprint.Building{
			WidthBlocks: 7, WallHeightBlocks: 4, DepthBlocks: 5,
			Roof:     &blueprint.Roof{Shape: blueprint.RoofGable, HeightBlocks: 2, Overhang: 1},
			Openings: []blueprint.Opening{{Kind: blueprint.OpeningDoor, X: 3, W: 1, H: 2}},
		},
		Style: blueprint.DefaultStyle(),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"txt", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !bperrors.Is(err, bperrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, bperrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"preview", false},
		{"structure", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name          string
		w, h, density float64
		wantErr       bool
	}{
		{"normal", 800, 600, 2, false},
		{"zero", 0, 0, 0, false},
		{"negative width", -1, 600, 1, true},
		{"nan height", 800, math.NaN(), 1, true},
		{"inf density", 800, 600, math.Inf(1), true},
		{"largest side", MaxDeviceSide, 600, 1, false},
		{"largest side at density", MaxDeviceSide / 2, 600, 2, false},
		{"too wide", MaxDeviceSide + 1, 600, 1, true},
		{"too tall at density", 800, MaxDeviceSide/2 + 1, 2, true},
		{"huge", 1e6, 1e6, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.w, tt.h, tt.density)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !bperrors.Is(err, bperrors.ErrCodeInvalidViewport) {
				t.Errorf("code = %s", bperrors.GetCode(err))
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" SVG, png,,json ")
	want := []string{"svg", "png", "json"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if ParseFormats("") != nil {
		t.Error("empty input should give no formats")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var o Options
	o.SetRenderDefaults()

	if o.VizType != VizTypePreview {
		t.Errorf("VizType = %q", o.VizType)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Density != DefaultDensity {
		t.Errorf("viewport = %v x %v @ %v", o.Width, o.Height, o.Density)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Palette != "night" {
		t.Errorf("Palette = %q", o.Palette)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateForRenderTerminalLimit(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
		wantErr    bool
	}{
		{"fits", 1024, 512, false},
		{"too many columns", 1025, 12, true},
		{"too many rows", 40, 513, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Options{Formats: []string{FormatTXT}, Columns: tt.cols, Rows: tt.rows}
			err := o.ValidateForRender()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !bperrors.Is(err, bperrors.ErrCodeInvalidViewport) {
				t.Errorf("code = %s", bperrors.GetCode(err))
			}
		})
	}
}

func TestValidateForRenderPalette(t *testing.T) {
	o := Options{Palette: "neon"}
	err := o.ValidateForRender()
	if !bperrors.Is(err, bperrors.ErrCodeInvalidPalette) {
		t.Errorf("unknown palette error = %v", err)
	}

	o = Options{Columns: -1}
	if err := o.ValidateForRender(); !bperrors.Is(err, bperrors.ErrCodeInvalidViewport) {
		t.Errorf("negative columns error = %v", err)
	}
}

func TestExecutePreview(t *testing.T) {
	r := NewRunner(nil)
	res, err := r.Execute(context.Background(), cottage(), Options{
		Width:   400,
		Height:  300,
		Density: 2,
		Formats: []string{FormatSVG, FormatPNG, FormatJSON, FormatTXT},
		Title:   "cottage",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Segments != 1 || res.Stats.WidthBlocks != 7 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.TotalBlocks != cottage().BlockCount() {
		t.Errorf("TotalBlocks = %d, want %d", res.Stats.TotalBlocks, cottage().BlockCount())
	}
	if res.Stats.Commands != len(res.Commands) || len(res.Commands) == 0 {
		t.Errorf("commands = %d (stats %d)", len(res.Commands), res.Stats.Commands)
	}
	if res.Commands[0].Op != draw.OpClearRect {
		t.Errorf("first command = %s, want clear_rect", res.Commands[0].Op)
	}

	svg := string(res.Artifacts[FormatSVG])
	if !strings.Contains(svg, `width="800" height="600"`) || !strings.Contains(svg, "<title>cottage</title>") {
		t.Errorf("svg header wrong: %.200s", svg)
	}

	img, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("png bounds = %v", b)
	}

	var pass sink.Pass
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &pass); err != nil {
		t.Fatalf("json: %v", err)
	}
	if pass.Density != 2 || pass.Palette != "night" || len(pass.Commands) != len(res.Commands) {
		t.Errorf("json pass = %v %q %d", pass.Density, pass.Palette, len(pass.Commands))
	}
	if pass.Width != 400 || pass.Height != 300 {
		t.Errorf("json pass size = %vx%v, want CSS size 400x300", pass.Width, pass.Height)
	}

	txt := strings.TrimSuffix(string(res.Artifacts[FormatTXT]), "\n")
	// 800/8 columns by 600/16 rows
	if rows := strings.Count(txt, "\n") + 1; rows != 38 {
		t.Errorf("txt rows = %d, want 38", rows)
	}
}

func TestExecuteHideLabel(t *testing.T) {
	res, err := NewRunner(nil).Execute(context.Background(), cottage(), Options{HideLabel: true, HideGrid: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := draw.Count(res.Commands, draw.OpText); n != 0 {
		t.Errorf("text commands = %d, want 0", n)
	}
	if n := draw.Count(res.Commands, draw.OpLine); n != 0 {
		t.Errorf("grid lines = %d, want 0", n)
	}
}

func TestExecuteEmptyBlueprint(t *testing.T) {
	res, err := NewRunner(nil).Execute(context.Background(), nil, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("empty blueprint should render: %v", err)
	}
	if len(res.Commands) != 1 || res.Commands[0].Op != draw.OpClearRect {
		t.Errorf("commands = %+v, want a single clear", res.Commands)
	}
}

func TestExecuteInvalid(t *testing.T) {
	bad := &blueprint.Blueprint{Building: &blueprint.Building{WidthBlocks: 0, WallHeightBlocks: 3}}
	_, err := NewRunner(nil).Execute(context.Background(), bad, Options{})
	if !bperrors.Is(err, bperrors.ErrCodeInvalidBlueprint) {
		t.Errorf("error = %v, want INVALID_BLUEPRINT", err)
	}

	_, err = NewRunner(nil).Execute(context.Background(), cottage(), Options{Formats: []string{"gif"}})
	if !bperrors.Is(err, bperrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteStructureText(t *testing.T) {
	res, err := NewRunner(nil).Execute(context.Background(), cottage(), Options{
		VizType: VizTypeStructure,
		Formats: []string{FormatTXT, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Commands != nil {
		t.Error("structure runs should not produce drawing commands")
	}
	if string(res.Artifacts[FormatTXT]) != res.DOT || !strings.HasPrefix(res.DOT, "digraph G {") {
		t.Errorf("txt artifact should be the DOT source, got %.60s", res.Artifacts[FormatTXT])
	}
	var doc structureDocument
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil || doc.DOT != res.DOT {
		t.Errorf("json doc = %+v, err %v", doc, err)
	}
}

type recordingHooks struct {
	observability.NoopRenderHooks
	mu       sync.Mutex
	started  []string
	finished []error
}

func (h *recordingHooks) OnRenderStart(_ context.Context, vizType string, _ []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, vizType)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ string, _ []string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, err)
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetRenderHooks(hooks)
	defer observability.Reset()

	if _, err := NewRunner(nil).Execute(context.Background(), cottage(), Options{}); err != nil {
		t.Fatal(err)
	}
	if len(hooks.started) != 1 || hooks.started[0] != VizTypePreview {
		t.Errorf("started = %v", hooks.started)
	}
	if len(hooks.finished) != 1 || hooks.finished[0] != nil {
		t.Errorf("finished = %v", hooks.finished)
	}
}

func TestCellGrid(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		w, h       float64
		cols, rows int
	}{
		{"derived", Options{}, 800, 600, 100, 38},
		{"explicit", Options{Columns: 40, Rows: 12}, 800, 600, 40, 12},
		{"tiny", Options{}, 2, 2, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := cellGrid(tt.opts, tt.w, tt.h)
			if c != tt.cols || r != tt.rows {
				t.Errorf("cellGrid = %dx%d, want %dx%d", c, r, tt.cols, tt.rows)
			}
		})
	}
}
