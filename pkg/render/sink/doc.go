// Package sink replays drawing commands into output formats.
//
// # Overview
//
// A sink takes one complete render pass ([]draw.Command, device pixels) and
// the surface size, and produces a document:
//
//   - SVG: one element per command, colors split into fill and opacity
//   - PNG: rasterized with fogleman/gg at device resolution
//   - PDF: the SVG converted with rsvg-convert
//   - JSON: the command list itself, for remote surfaces
//   - Cells: a terminal rendering built from half-block glyphs
//
// Commands are replayed strictly in order. clear_rect replaces the region
// with its color; every other primitive composites over what is below.
//
// # Usage
//
//	cmds := preview.Render(bp, vp)
//	w, h := vp.DevicePixels()
//	svg := sink.RenderSVG(cmds, w, h)
//	png, err := sink.RenderPNG(cmds, w, h)
//	txt := sink.RenderCells(cmds, 100, 30)
package sink
