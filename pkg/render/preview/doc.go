// Package preview renders a blueprint's front view as drawing commands.
//
// # Overview
//
// [Render] is a pure function from a blueprint and a viewport to an ordered
// []draw.Command. It holds no state between calls; every pass re-emits the
// full scene starting with a clear of the whole surface.
//
// The pass runs in four stages:
//
//  1. [Canonicalize] turns the blueprint into a []Segment in which every
//     segment has a roof. Segments without one get a one-layer cap.
//  2. [Resolve] computes one uniform scale, the horizontal offset that
//     centers the composition and the shared ground line.
//  3. Each segment is drawn left to right at its cumulative offset: grid,
//     walls, roof layers ([RoofLayers]), then openings ([ProjectOpening]).
//  4. A centered "<n> blocks total" label is drawn under the ground line.
//
// # Coordinates
//
// Layout math happens in CSS pixels with the origin at the top-left of the
// surface and Y growing downward. Block space has its origin at a segment's
// bottom-left with Y growing upward. Commands are emitted in device pixels
// (CSS pixels times [Viewport].Density).
//
// # Usage
//
//	cmds := preview.Render(bp, preview.Viewport{Width: 800, Height: 600, Density: 2})
//	svg := sink.RenderSVG(cmds, 1600, 1200)
package preview
