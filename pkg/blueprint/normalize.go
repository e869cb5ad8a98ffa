package blueprint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// Fallback dimensions for generator output that omits them.
const (
	DefaultWidthBlocks      = 24
	DefaultWallHeightBlocks = 12
	DefaultDepthBlocks      = 10
)

// Normalize turns loosely structured generator output into a Blueprint.
//
// A non-empty "segments" list takes precedence over "building". Every
// segment gets an openings list; openings without a size get w=1 and h=2
// (door) or h=3 (anything else); doors are always forced to 1x2. Missing
// width, wall height or depth fall back to 24, 12 and 10 and produce a
// warning. A missing roof stays missing and is rendered as a cap. Block
// counts and opening coordinates given as numeric strings ("12") or as
// whole floats (12.0) are read as integers.
//
// The returned warnings describe every default applied to a dimension.
func Normalize(raw map[string]any) (*Blueprint, []string, error) {
	var warnings []string

	out := map[string]any{"view": ViewFront}
	if v, ok := raw["view"].(string); ok && v != "" {
		out["view"] = v
	}

	switch segs, _ := raw["segments"].([]any); {
	case len(segs) > 0:
		norm := make([]any, 0, len(segs))
		for i, s := range segs {
			m, ok := s.(map[string]any)
			if !ok {
				return nil, warnings, bperrors.New(bperrors.ErrCodeInvalidBlueprint, "segment %d is not an object", i)
			}
			norm = append(norm, normalizeBuilding(m, fmt.Sprintf("segment %d", i), &warnings))
		}
		out["segments"] = norm
	default:
		m, _ := raw["building"].(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		out["building"] = normalizeBuilding(m, "building", &warnings)
	}

	if style, ok := raw["style"].(map[string]any); ok {
		out["style"] = style
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, warnings, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "encode normalized blueprint")
	}

	bp := &Blueprint{Style: DefaultStyle()}
	if err := json.Unmarshal(data, bp); err != nil {
		return nil, warnings, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "decode normalized blueprint")
	}
	bp.fillStyleDefaults()
	return bp, warnings, nil
}

func normalizeBuilding(b map[string]any, label string, warnings *[]string) map[string]any {
	out := make(map[string]any, len(b))
	for k, v := range b {
		out[k] = v
	}
	coerceInts(out, "width_blocks", "wall_height_blocks", "depth_blocks")
	if roof, ok := out["roof"].(map[string]any); ok {
		r := make(map[string]any, len(roof))
		for k, v := range roof {
			r[k] = v
		}
		coerceInts(r, "height_blocks", "overhang")
		out["roof"] = r
	}

	for _, d := range []struct {
		key string
		def int
	}{
		{"width_blocks", DefaultWidthBlocks},
		{"wall_height_blocks", DefaultWallHeightBlocks},
		{"depth_blocks", DefaultDepthBlocks},
	} {
		if v, ok := out[d.key]; !ok || v == nil {
			out[d.key] = d.def
			*warnings = append(*warnings, fmt.Sprintf("%s: %s missing, using %d", label, d.key, d.def))
		}
	}

	ops, _ := out["openings"].([]any)
	norm := make([]any, 0, len(ops))
	for _, o := range ops {
		m, ok := o.(map[string]any)
		if !ok {
			continue
		}
		norm = append(norm, normalizeOpening(m))
	}
	out["openings"] = norm
	return out
}

func normalizeOpening(o map[string]any) map[string]any {
	out := make(map[string]any, len(o)+2)
	for k, v := range o {
		out[k] = v
	}
	coerceInts(out, "x", "y", "w", "h")
	door := out["type"] == string(OpeningDoor)
	if v, ok := out["w"]; !ok || v == nil {
		out["w"] = 1
	}
	if v, ok := out["h"]; !ok || v == nil {
		if door {
			out["h"] = 2
		} else {
			out["h"] = 3
		}
	}
	if door {
		out["w"] = 1
		out["h"] = 2
	}
	return out
}

// coerceInts rewrites numeric strings and whole floats under keys as ints.
// Anything else is left for decoding to reject.
func coerceInts(m map[string]any, keys ...string) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				m[k] = n
			} else if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
				m[k] = int(f)
			}
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				m[k] = int(v)
			}
		}
	}
}

func (b *Blueprint) fillStyleDefaults() {
	def := DefaultStyle()
	s := &b.Style
	if s.Theme == "" {
		s.Theme = def.Theme
	}
	if s.Decor == nil {
		s.Decor = []string{}
	}
	m := &s.Materials
	dm := def.Materials
	for _, f := range []struct {
		v   *string
		def string
	}{
		{&m.Foundation, dm.Foundation},
		{&m.Wall, dm.Wall},
		{&m.Trim, dm.Trim},
		{&m.Roof, dm.Roof},
		{&m.Window, dm.Window},
		{&m.Door, dm.Door},
	} {
		if *f.v == "" {
			*f.v = f.def
		}
	}
}
