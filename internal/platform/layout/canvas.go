package layout

import (
	"image/color"
	"unicode/utf8"
)

// Font selects a face by size (points) and weight.
type Font struct {
	Size float64
	Bold bool
}

// LineHeight is the vertical advance used for one line of text in f.
func (f Font) LineHeight() float64 { return f.Size * 1.3 }

// Report fonts.
var (
	FontBody    = Font{Size: 8.5}
	FontSmall   = Font{Size: 7}
	FontTitle   = Font{Size: 10, Bold: true}
	FontHeading = Font{Size: 14, Bold: true}
)

// Measurer reports the advance width of a string, in points, when set in f.
type Measurer interface {
	TextWidth(s string, f Font) float64
}

// MeasureFunc adapts an ordinary function to Measurer.
type MeasureFunc func(s string, f Font) float64

func (fn MeasureFunc) TextWidth(s string, f Font) float64 { return fn(s, f) }

// MonoMeasurer measures every rune as Advance×Size points wide. It stands in
// for real font metrics wherever exact glyph widths do not matter.
type MonoMeasurer struct {
	Advance float64
}

func (m MonoMeasurer) TextWidth(s string, f Font) float64 {
	adv := m.Advance
	if adv <= 0 {
		adv = 0.5
	}
	return float64(utf8.RuneCountInString(s)) * adv * f.Size
}

// Canvas is the drawing surface a page is rendered onto. Coordinates are in
// points, origin top left. Text is positioned by the top of its line box.
type Canvas interface {
	Measurer
	FillRect(r Rect, c color.Color)
	StrokeRect(r Rect, c color.Color, width float64)
	Line(x1, y1, x2, y2 float64, c color.Color, width float64)
	Text(x, y float64, s string, f Font, c color.Color)
}

// Palette shared by the report renderers.
var (
	ColorText      = color.RGBA{R: 33, G: 37, B: 41, A: 255}
	ColorMuted     = color.RGBA{R: 108, G: 117, B: 125, A: 255}
	ColorAccent    = color.RGBA{R: 30, G: 58, B: 95, A: 255}
	ColorRule      = color.RGBA{R: 206, G: 212, B: 218, A: 255}
	ColorPanel     = color.RGBA{R: 241, G: 245, B: 249, A: 255}
	ColorWhite     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorHighlight = color.RGBA{R: 192, G: 57, B: 43, A: 255}
)
