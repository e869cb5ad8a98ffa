package draw

// Recorder accumulates commands. Its methods take CSS pixels and record
// device pixels scaled by the density given at construction.
type Recorder struct {
	density float64
	cmds    []Command
}

// NewRecorder returns a Recorder for a surface with the given pixel density.
// Non-positive densities are treated as 1.
func NewRecorder(density float64) *Recorder {
	if !(density > 0) {
		density = 1
	}
	return &Recorder{density: density}
}

// Density returns the device pixels per CSS pixel.
func (r *Recorder) Density() float64 { return r.density }

// ClearRect resets a region to the surface background.
func (r *Recorder) ClearRect(x, y, w, h float64, c Color) {
	r.rect(OpClearRect, x, y, w, h, c, 0)
}

// FillRect paints a solid rectangle.
func (r *Recorder) FillRect(x, y, w, h float64, c Color) {
	r.rect(OpFillRect, x, y, w, h, c, 0)
}

// StrokeRect outlines a rectangle with the given line width.
func (r *Recorder) StrokeRect(x, y, w, h float64, c Color, lineWidth float64) {
	r.rect(OpStrokeRect, x, y, w, h, c, lineWidth)
}

// Line draws a straight segment from (x1, y1) to (x2, y2).
func (r *Recorder) Line(x1, y1, x2, y2 float64, c Color, lineWidth float64) {
	d := r.density
	r.cmds = append(r.cmds, Command{
		Op: OpLine, X: x1 * d, Y: y1 * d, X2: x2 * d, Y2: y2 * d,
		Color: c, LineWidth: lineWidth * d,
	})
}

// Text draws s horizontally centered on x with its baseline at y.
func (r *Recorder) Text(x, y float64, s string, c Color, fontSize float64) {
	d := r.density
	r.cmds = append(r.cmds, Command{
		Op: OpText, X: x * d, Y: y * d, Color: c, Text: s, FontSize: fontSize * d,
	})
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []Command { return r.cmds }

// Len returns the number of recorded commands.
func (r *Recorder) Len() int { return len(r.cmds) }

func (r *Recorder) rect(op Op, x, y, w, h float64, c Color, lineWidth float64) {
	d := r.density
	r.cmds = append(r.cmds, Command{
		Op: op, X: x * d, Y: y * d, W: w * d, H: h * d,
		Color: c, LineWidth: lineWidth * d,
	})
}
