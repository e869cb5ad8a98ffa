// Package pkg provides the core libraries for Blockprint building previews.
//
// # Overview
//
// Blockprint turns blueprints (structured descriptions of Minecraft-style
// buildings made of stacked block segments) into front-view drawings and
// sends them to a build backend. The pkg directory is organized into:
//
//  1. [blueprint] - the blueprint model, decoding and normalization
//  2. [render] - geometry, palettes and output sinks
//  3. [viewport] - keeps a live surface in sync with a blueprint
//  4. [pipeline] - orchestration (validate, render, encode)
//  5. [build] - build requests and progress tracking
//  6. [store], [cache] - blueprint storage on file, Redis or MongoDB
//  7. [integrations] - the generator and build backend client
//
// # Data flow
//
//	Blueprint JSON / YAML
//	         ↓
//	    [blueprint] package (decode + validate)
//	         ↓
//	    [render/preview] package (layout + drawing commands)
//	         ↓
//	    [render/sink] package (SVG/PNG/PDF/JSON/terminal)
//
// # Quick Start
//
//	bp, _ := blueprint.ReadFile("cottage.json")
//	cmds := preview.Render(bp, preview.Viewport{Width: 800, Height: 600, Density: 1})
//	svg := sink.RenderSVG(cmds, 800, 600)
//
// Or let the pipeline handle every format at once:
//
//	res, err := pipeline.NewRunner(logger).Execute(ctx, bp, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//
// [blueprint]: github.com/blockprint/blockprint/pkg/blueprint
// [render]: github.com/blockprint/blockprint/pkg/render
// [render/preview]: github.com/blockprint/blockprint/pkg/render/preview
// [render/sink]: github.com/blockprint/blockprint/pkg/render/sink
// [viewport]: github.com/blockprint/blockprint/pkg/viewport
// [pipeline]: github.com/blockprint/blockprint/pkg/pipeline
// [build]: github.com/blockprint/blockprint/pkg/build
// [store]: github.com/blockprint/blockprint/pkg/store
// [cache]: github.com/blockprint/blockprint/pkg/cache
// [integrations]: github.com/blockprint/blockprint/pkg/integrations
package pkg
