package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/render"
	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/preview"
	"github.com/blockprint/blockprint/pkg/render/sink"
	"github.com/blockprint/blockprint/pkg/render/structure"
	"github.com/blockprint/blockprint/pkg/render/styles"
)

// Commands runs the preview drawing pass for bp with the given options.
// Options must already be validated.
func Commands(bp *blueprint.Blueprint, opts Options) []draw.Command {
	palette, err := styles.Lookup(opts.Palette)
	if err != nil {
		palette = styles.Default()
	}
	return preview.Render(bp, opts.Viewport(),
		preview.WithPalette(palette),
		preview.WithGrid(!opts.HideGrid),
		preview.WithLabel(!opts.HideLabel))
}

// RenderPreview encodes a drawing pass in the requested formats.
func RenderPreview(ctx context.Context, cmds []draw.Command, opts Options) (map[string][]byte, error) {
	w, h := opts.Viewport().DevicePixels()
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(cmds, w, h, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(cmds, w, h)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, cmds, w, h, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(cmds, opts.Width, opts.Height,
				sink.WithJSONDensity(opts.Density),
				sink.WithJSONPalette(opts.Palette))
		case FormatTXT:
			cols, rows := cellGrid(opts, w, h)
			data = []byte(sink.RenderCells(cmds, cols, rows,
				sink.WithCellSize(w/float64(cols), h/float64(rows))) + "\n")
		default:
			return nil, fmt.Errorf("unsupported preview format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// structureDocument is the JSON form of a structure diagram.
type structureDocument struct {
	VizType string `json:"viz_type"`
	DOT     string `json:"dot"`
}

// RenderStructure renders a DOT diagram in the requested formats. txt
// returns the DOT source itself.
func RenderStructure(ctx context.Context, dot string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte)

	var svg []byte
	rendered := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = structure.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = rendered()
		case FormatPNG:
			if data, err = rendered(); err == nil {
				data, err = render.ToPNG(ctx, data, 2*opts.Density)
			}
		case FormatPDF:
			if data, err = rendered(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatJSON:
			data, err = json.Marshal(structureDocument{VizType: VizTypeStructure, DOT: dot})
		case FormatTXT:
			data = []byte(dot)
		default:
			return nil, fmt.Errorf("unsupported structure format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}

// cellGrid picks the terminal size for txt output.
func cellGrid(opts Options, w, h float64) (cols, rows int) {
	cols, rows = opts.Columns, opts.Rows
	if cols == 0 {
		cols = int(math.Round(w / sink.DefaultCellWidth))
	}
	if rows == 0 {
		rows = int(math.Round(h / sink.DefaultCellHeight))
	}
	return max(cols, 1), max(rows, 1)
}
