// Package layout computes the vertical placement of report blocks on fixed
// size pages. It never draws pixels itself: measuring goes through a
// Measurer and drawing through a Canvas, both injected by the caller, so the
// whole package can be exercised with a height-only surface.
package layout

import (
	"fmt"
	"strings"
)

// Rect is an axis-aligned rectangle in points with the origin at the top
// left corner of the page. Y grows downward.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inset shrinks the rectangle by dx on the left and right and dy on the top
// and bottom.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Geometry describes one portrait page. All values are in points.
type Geometry struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	HeaderHeight float64
	FooterHeight float64
	BlockGap     float64
}

// Standard page sizes in points.
const (
	A4Width      = 595.28
	A4Height     = 841.89
	LetterWidth  = 612
	LetterHeight = 792
)

// DefaultGeometry returns the A4 portrait geometry used for reports.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:        A4Width,
		Height:       A4Height,
		MarginTop:    32,
		MarginBottom: 28,
		MarginLeft:   36,
		MarginRight:  36,
		HeaderHeight: 58,
		FooterHeight: 24,
		BlockGap:     10,
	}
}

// GeometryFor returns the default geometry resized to a named paper size.
// Supported names are "A4" and "Letter" (case-insensitive).
func GeometryFor(size string) (Geometry, error) {
	g := DefaultGeometry()
	switch strings.ToLower(size) {
	case "", "a4":
	case "letter":
		g.Width, g.Height = LetterWidth, LetterHeight
	default:
		return Geometry{}, fmt.Errorf("unsupported page size %q", size)
	}
	return g, nil
}

// ContentTop is the first y coordinate below the page header.
func (g Geometry) ContentTop() float64 { return g.MarginTop + g.HeaderHeight }

// ContentBottom is the last y coordinate usable by blocks, above the footer
// reserve.
func (g Geometry) ContentBottom() float64 { return g.Height - g.MarginBottom - g.FooterHeight }

// ContentWidth is the horizontal space between the side margins.
func (g Geometry) ContentWidth() float64 { return g.Width - g.MarginLeft - g.MarginRight }

// PrintableHeight is the vertical space available to blocks on one page.
func (g Geometry) PrintableHeight() float64 { return g.ContentBottom() - g.ContentTop() }

// HeaderRect is the band at the top of every page reserved for the header.
func (g Geometry) HeaderRect() Rect {
	return Rect{X: g.MarginLeft, Y: g.MarginTop, W: g.ContentWidth(), H: g.HeaderHeight}
}

// FooterRect is the band at the bottom of every page reserved for the footer.
func (g Geometry) FooterRect() Rect {
	return Rect{X: g.MarginLeft, Y: g.ContentBottom(), W: g.ContentWidth(), H: g.FooterHeight}
}

// Validate reports geometries that leave no room for content.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("page size must be positive, got %.2fx%.2f", g.Width, g.Height)
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("horizontal margins leave no content width")
	}
	if g.PrintableHeight() <= 0 {
		return fmt.Errorf("margins, header and footer leave no printable height")
	}
	return nil
}
