// Package structure renders a blueprint's composition as a Graphviz diagram.
//
// Where the preview shows what a building looks like, the structure diagram
// shows what it is made of: the blueprint node, one node per segment in
// render order, and each segment's roof and openings. Adjacent segments are
// linked left to right.
//
//	dot := structure.ToDOT(bp, structure.Options{Detailed: true})
//	svg, err := structure.RenderSVG(ctx, dot)
package structure

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/blockprint/blockprint/pkg/blueprint"
)

// Options configures structure diagrams.
type Options struct {
	// Detailed adds opening positions and the block estimate to labels.
	Detailed bool
}

// ToDOT converts a blueprint to Graphviz DOT source.
func ToDOT(bp *blueprint.Blueprint, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	segs := bp.Segments()
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=\"#f5deb3\"];\n", "blueprint", rootLabel(bp, len(segs), opts.Detailed))

	for i, s := range segs {
		id := segmentID(i)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, segmentLabel(i, s))
		fmt.Fprintf(&buf, "  %q -> %q;\n", "blueprint", id)

		roofID := id + "/roof"
		fmt.Fprintf(&buf, "  %q [%s];\n", roofID, roofAttrs(s.Roof))
		fmt.Fprintf(&buf, "  %q -> %q;\n", id, roofID)

		for j, o := range s.Openings {
			oid := fmt.Sprintf("%s/opening-%d", id, j)
			fmt.Fprintf(&buf, "  %q [%s];\n", oid, openingAttrs(o, opts.Detailed))
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, oid)
		}
	}

	if len(segs) > 1 {
		buf.WriteString("\n  { rank=same; ")
		for i := range segs {
			fmt.Fprintf(&buf, "%q; ", segmentID(i))
		}
		buf.WriteString("}\n")
		for i := 1; i < len(segs); i++ {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none, label=\"adjoins\"];\n", segmentID(i-1), segmentID(i))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func segmentID(i int) string { return fmt.Sprintf("segment-%d", i) }

func rootLabel(bp *blueprint.Blueprint, n int, detailed bool) string {
	view := blueprint.ViewFront
	if bp != nil && bp.View != "" {
		view = bp.View
	}
	parts := []string{
		fmt.Sprintf("blueprint (%s)", view),
		fmt.Sprintf("%d segment(s), %d blocks wide", n, bp.TotalWidth()),
	}
	if detailed && bp != nil {
		parts = append(parts, fmt.Sprintf("theme: %s", bp.Style.Theme))
		parts = append(parts, fmt.Sprintf("~%d blocks to place", bp.BlockCount()))
	}
	return strings.Join(parts, "\n")
}

func segmentLabel(i int, s blueprint.Building) string {
	return fmt.Sprintf("segment %d\n%d x %d x %d", i, s.WidthBlocks, s.WallHeightBlocks, s.DepthBlocks)
}

func roofAttrs(r *blueprint.Roof) string {
	if r == nil {
		return `label="cap\n1 layer", style="rounded,filled,dashed", fillcolor=lightgrey`
	}
	label := fmt.Sprintf("%s roof\n%d layers, overhang %d", r.Shape, r.HeightBlocks, r.Overhang)
	return fmt.Sprintf("label=%q, fillcolor=\"#deb887\"", label)
}

func openingAttrs(o blueprint.Opening, detailed bool) string {
	label := string(o.Kind)
	if label == "" {
		label = string(blueprint.OpeningWindow)
	}
	if detailed {
		label = fmt.Sprintf("%s\n%dx%d at (%d,%d)", label, o.W, o.H, o.X, o.Y)
	}
	color := "lightblue"
	if o.Kind.IsDoor() {
		color = "\"#c4a484\""
	}
	return fmt.Sprintf("label=%q, shape=ellipse, fillcolor=%s", label, color)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// Size returns the width and height declared by an SVG viewBox, or zeros.
func Size(svg []byte) (w, h float64) {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return 0, 0
	}
	w, _ = strconv.ParseFloat(string(match[3]), 64)
	h, _ = strconv.ParseFloat(string(match[4]), 64)
	return w, h
}

func normalizeViewBox(svg []byte) []byte {
	w, h := Size(svg)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
