package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/blockprint/blockprint/pkg/render/draw"
)

// Default terminal cell size in device pixels.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

const halfBlock = "▀"

// CellOption configures terminal rendering.
type CellOption func(*cellRenderer)

type cellRenderer struct {
	cellW, cellH float64
	backdrop     draw.Color
	renderer     *lipgloss.Renderer
}

// WithCellSize sets how many device pixels one terminal cell covers.
func WithCellSize(w, h float64) CellOption {
	return func(r *cellRenderer) {
		if w > 0 && h > 0 {
			r.cellW, r.cellH = w, h
		}
	}
}

// WithRenderer selects the lipgloss renderer, and with it the color profile.
func WithRenderer(lr *lipgloss.Renderer) CellOption {
	return func(r *cellRenderer) { r.renderer = lr }
}

// CellSize converts a terminal size to a surface size in device pixels
// using the default cell dimensions.
func CellSize(cols, rows int) (width, height float64) {
	return float64(cols) * DefaultCellWidth, float64(rows) * DefaultCellHeight
}

type cell struct {
	top, bottom draw.Color
	text        rune
	textColor   draw.Color
}

// RenderCells renders cmds as cols x rows terminal cells. Each cell shows
// two vertically stacked samples using the upper half block glyph. Fills
// and clears are sampled; strokes and lines are too thin to show and are
// skipped. Text is overlaid character by character.
func RenderCells(cmds []draw.Command, cols, rows int, opts ...CellOption) string {
	r := cellRenderer{
		cellW:    DefaultCellWidth,
		cellH:    DefaultCellHeight,
		backdrop: draw.RGBA(0, 0, 0, 1),
		renderer: lipgloss.DefaultRenderer(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if cols <= 0 || rows <= 0 {
		return ""
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			cx := (float64(x) + 0.5) * r.cellW
			grid[y][x] = cell{
				top:    r.sample(cmds, cx, (float64(y)+0.25)*r.cellH),
				bottom: r.sample(cmds, cx, (float64(y)+0.75)*r.cellH),
			}
		}
	}

	for _, c := range cmds {
		if c.Op == draw.OpText {
			r.overlay(grid, c)
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteString(r.cell(c))
		}
	}
	return b.String()
}

func (r *cellRenderer) sample(cmds []draw.Command, x, y float64) draw.Color {
	out := r.backdrop
	for _, c := range cmds {
		if c.Op != draw.OpClearRect && c.Op != draw.OpFillRect {
			continue
		}
		if x < c.X || x >= c.X+c.W || y < c.Y || y >= c.Y+c.H {
			continue
		}
		if c.Op == draw.OpClearRect {
			out = c.Color.Over(r.backdrop)
		} else {
			out = c.Color.Over(out)
		}
	}
	return out
}

func (r *cellRenderer) overlay(grid [][]cell, c draw.Command) {
	row := int(math.Floor(c.Y / r.cellH))
	if row < 0 || row >= len(grid) {
		return
	}
	runes := []rune(c.Text)
	start := int(math.Round(c.X/r.cellW - float64(len(runes))/2))
	for i, ch := range runes {
		col := start + i
		if col < 0 || col >= len(grid[row]) {
			continue
		}
		grid[row][col].text = ch
		grid[row][col].textColor = c.Color
	}
}

func (r *cellRenderer) cell(c cell) string {
	if c.text != 0 {
		bg := c.top
		return r.renderer.NewStyle().
			Foreground(lipgloss.Color(c.textColor.Over(bg).Hex())).
			Background(lipgloss.Color(bg.Hex())).
			Render(string(c.text))
	}
	return r.renderer.NewStyle().
		Foreground(lipgloss.Color(c.top.Hex())).
		Background(lipgloss.Color(c.bottom.Hex())).
		Render(halfBlock)
}
