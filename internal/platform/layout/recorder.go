package layout

import "image/color"

// Op is one drawing call captured by a Recorder.
type Op struct {
	Kind  string // "fill", "stroke", "line", "text"
	Rect  Rect
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
	Text  string
	Font  Font
	Color color.Color
}

// Recorder is a Canvas that keeps every call instead of drawing it. It is
// the measuring surface used to check pages without a raster.
type Recorder struct {
	Measurer
	Ops []Op
}

// NewRecorder returns a recorder that measures with m, or with a
// MonoMeasurer when m is nil.
func NewRecorder(m Measurer) *Recorder {
	if m == nil {
		m = MonoMeasurer{}
	}
	return &Recorder{Measurer: m}
}

func (r *Recorder) FillRect(rect Rect, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Rect: rect, Color: c})
}

func (r *Recorder) StrokeRect(rect Rect, c color.Color, _ float64) {
	r.Ops = append(r.Ops, Op{Kind: "stroke", Rect: rect, Color: c})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, c color.Color, _ float64) {
	r.Ops = append(r.Ops, Op{Kind: "line", X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c})
}

func (r *Recorder) Text(x, y float64, s string, f Font, c color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "text", X1: x, Y1: y, Text: s, Font: f, Color: c})
}

// Texts returns the strings drawn, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops all recorded operations.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
