package sink

import (
	"bytes"
	"fmt"
	"image"
	imagedraw "image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/blockprint/blockprint/pkg/render/draw"
)

// RenderPNG rasterizes cmds onto a width x height image.
func RenderPNG(cmds []draw.Command, width, height float64) ([]byte, error) {
	dc, err := rasterize(cmds, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize replays cmds onto a new image of the given size.
func Rasterize(cmds []draw.Command, width, height float64) (image.Image, error) {
	dc, err := rasterize(cmds, width, height)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func rasterize(cmds []draw.Command, width, height float64) (*gg.Context, error) {
	w, h := int(math.Ceil(width)), int(math.Ceil(height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize: invalid size %vx%v", width, height)
	}

	dc := gg.NewContext(w, h)
	faces := map[float64]font.Face{}
	for _, c := range cmds {
		switch c.Op {
		case draw.OpClearRect:
			clearRect(dc, c)
		case draw.OpFillRect:
			setColor(dc, c.Color)
			dc.DrawRectangle(c.X, c.Y, c.W, c.H)
			dc.Fill()
		case draw.OpStrokeRect:
			setColor(dc, c.Color)
			dc.SetLineWidth(c.LineWidth)
			dc.DrawRectangle(c.X, c.Y, c.W, c.H)
			dc.Stroke()
		case draw.OpLine:
			setColor(dc, c.Color)
			dc.SetLineWidth(c.LineWidth)
			dc.DrawLine(c.X, c.Y, c.X2, c.Y2)
			dc.Stroke()
		case draw.OpText:
			face, err := faceFor(faces, c.FontSize)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			setColor(dc, c.Color)
			dc.DrawStringAnchored(c.Text, c.X, c.Y, 0.5, 0)
		}
	}
	return dc, nil
}

func setColor(dc *gg.Context, c draw.Color) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, c.A)
}

// clearRect replaces pixels instead of compositing over them.
func clearRect(dc *gg.Context, c draw.Command) {
	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		setColor(dc, c.Color)
		dc.DrawRectangle(c.X, c.Y, c.W, c.H)
		dc.Fill()
		return
	}
	rect := image.Rect(
		int(math.Floor(c.X)), int(math.Floor(c.Y)),
		int(math.Ceil(c.X+c.W)), int(math.Ceil(c.Y+c.H)),
	).Intersect(rgba.Bounds())
	imagedraw.Draw(rgba, rect, image.NewUniform(c.Color.NRGBA()), image.Point{}, imagedraw.Src)
}

func faceFor(cache map[float64]font.Face, size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	if f, ok := cache[size]; ok {
		return f, nil
	}
	ttf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	f, err := opentype.NewFace(ttf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	cache[size] = f
	return f, nil
}
