// Package render hosts blockprint's rendering stack.
//
// # Overview
//
// Rendering is split into small packages that hand data forward:
//
//   - [draw]: the drawing command vocabulary and a density-aware recorder
//   - [styles]: color palettes for every visual role
//   - [preview]: the front-view geometry renderer (blueprint to commands)
//   - [structure]: a Graphviz diagram of a blueprint's composition
//   - [sink]: replays commands as SVG, PNG, PDF, JSON or terminal cells
//
// This package itself only provides external format conversion. [ToPDF] and
// [ToPNG] convert an SVG document with the rsvg-convert tool from librsvg:
//
//	svg := sink.RenderSVG(cmds, w, h)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [draw]: github.com/blockprint/blockprint/pkg/render/draw
// [styles]: github.com/blockprint/blockprint/pkg/render/styles
// [preview]: github.com/blockprint/blockprint/pkg/render/preview
// [structure]: github.com/blockprint/blockprint/pkg/render/structure
// [sink]: github.com/blockprint/blockprint/pkg/render/sink
package render
