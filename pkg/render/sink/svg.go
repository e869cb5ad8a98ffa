package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/blockprint/blockprint/pkg/render/draw"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fontFamily string
	title      string
}

// WithFontFamily sets the CSS font family for text (default sans-serif).
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

// WithTitle adds a <title> element to the document.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG renders cmds onto a width x height SVG document.
func RenderSVG(cmds []draw.Command, width, height float64, opts ...SVGOption) []byte {
	r := svgRenderer{fontFamily: "sans-serif"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		buf.WriteString("  <title>")
		xml.EscapeText(&buf, []byte(r.title))
		buf.WriteString("</title>\n")
	}

	for _, c := range cmds {
		r.command(&buf, c)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) command(buf *bytes.Buffer, c draw.Command) {
	switch c.Op {
	case draw.OpClearRect:
		fmt.Fprintf(buf, `  <rect class="clear" x="%.2f" y="%.2f" width="%.2f" height="%.2f" %s/>`+"\n",
			c.X, c.Y, c.W, c.H, paint("fill", c.Color))
	case draw.OpFillRect:
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" %s/>`+"\n",
			c.X, c.Y, c.W, c.H, paint("fill", c.Color))
	case draw.OpStrokeRect:
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" %s stroke-width="%.2f"/>`+"\n",
			c.X, c.Y, c.W, c.H, paint("stroke", c.Color), c.LineWidth)
	case draw.OpLine:
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" %s stroke-width="%.2f"/>`+"\n",
			c.X, c.Y, c.X2, c.Y2, paint("stroke", c.Color), c.LineWidth)
	case draw.OpText:
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="%.2f" %s>`,
			c.X, c.Y, r.fontFamily, c.FontSize, paint("fill", c.Color))
		xml.EscapeText(buf, []byte(c.Text))
		buf.WriteString("</text>\n")
	}
}

func paint(attr string, c draw.Color) string {
	return fmt.Sprintf(`%s="%s" %s-opacity="%g"`, attr, c.Hex(), attr, c.A)
}
