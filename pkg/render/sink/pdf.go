package sink

import (
	"context"

	"github.com/blockprint/blockprint/pkg/render"
	"github.com/blockprint/blockprint/pkg/render/draw"
)

// RenderPDF renders cmds as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, cmds []draw.Command, width, height float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(cmds, width, height, opts...))
}
