// Package chart plots aligned numeric series as line charts onto a
// layout.Canvas. All series on one chart share a single min/max
// normalization; series on different natural scales belong on separate
// charts.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

// Series is one labelled line. Points are aligned by record index; a nil
// point means the value was not measured for that record.
type Series struct {
	Label  string     `json:"label"`
	Points []*float64 `json:"points"`
}

// Chart is a titled group of series plotted against a shared y scale.
type Chart struct {
	Title    string   `json:"title"`
	Unit     string   `json:"unit,omitempty"`
	Decimals int      `json:"decimals"`
	XLabels  []string `json:"x_labels,omitempty"` // first and last entries are annotated
	Series   []Series `json:"series"`
}

// Slots is the number of aligned x positions: the longest series length.
func (c Chart) Slots() int {
	n := 0
	for _, s := range c.Series {
		if len(s.Points) > n {
			n = len(s.Points)
		}
	}
	return n
}

// Point is a plotted position in page coordinates.
type Point struct {
	X, Y float64
}

// Segment connects two present, adjacent points of one series.
type Segment struct {
	Series int
	From   int // slot index
	To     int
	A, B   Point
}

// Plot is the geometry of a chart inside its plotting rectangle.
type Plot struct {
	Empty   bool // fewer than two values in total
	YMin    float64
	YMax    float64
	Span    float64
	Points  [][]*Point // per series, per slot; nil where absent
	Segment []Segment
}

// Compute normalizes every present value of every series into rect using
// one shared min/max and returns the point and segment geometry. It does not
// draw.
func Compute(rect layout.Rect, c Chart) Plot {
	var pool []float64
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0) {
				pool = append(pool, *p)
			}
		}
	}
	if len(pool) < 2 {
		return Plot{Empty: true}
	}

	yMin, yMax := pool[0], pool[0]
	for _, v := range pool[1:] {
		yMin = math.Min(yMin, v)
		yMax = math.Max(yMax, v)
	}
	span := yMax - yMin
	if span == 0 {
		span = 1
	}

	n := c.Slots()
	xAt := func(i int) float64 {
		if n <= 1 {
			return rect.Left()
		}
		return rect.Left() + float64(i)/float64(n-1)*(rect.Right()-rect.Left())
	}
	yAt := func(v float64) float64 {
		return rect.Bottom() - (v-yMin)/span*(rect.Bottom()-rect.Top())
	}

	plot := Plot{YMin: yMin, YMax: yMax, Span: span, Points: make([][]*Point, len(c.Series))}
	for si, s := range c.Series {
		pts := make([]*Point, len(s.Points))
		prev := -1
		for i, v := range s.Points {
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				prev = -1
				continue
			}
			pts[i] = &Point{X: xAt(i), Y: yAt(*v)}
			if prev >= 0 {
				plot.Segment = append(plot.Segment, Segment{
					Series: si, From: prev, To: i, A: *pts[prev], B: *pts[i],
				})
			}
			prev = i
		}
		plot.Points[si] = pts
	}
	return plot
}

// Style controls chart decoration.
type Style struct {
	TitleFont           layout.Font
	LabelFont           layout.Font
	LineWidth           float64
	MarkerSize          float64
	LegendHeight        float64
	AxisGutter          float64 // left space for y annotations
	MaxLegendEntries    int
	MaxLegendEntryWidth float64
	Placeholder         string
}

// DefaultStyle is the chart style used on trends pages.
func DefaultStyle() Style {
	return Style{
		TitleFont:           layout.FontTitle,
		LabelFont:           layout.FontSmall,
		LineWidth:           1.4,
		MarkerSize:          3,
		LegendHeight:        14,
		AxisGutter:          42,
		MaxLegendEntries:    6,
		MaxLegendEntryWidth: 140,
		Placeholder:         "Not enough data to plot",
	}
}

// Palette is the series color cycle.
var Palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("17becf"),
}

// SeriesColor returns the palette color for the i-th series.
func SeriesColor(i int) color.Color {
	return Palette[i%len(Palette)]
}

// Areas splits a chart rectangle into title band, plotting area and legend
// band.
func (s Style) Areas(r layout.Rect) (title, plot, legend layout.Rect) {
	th := s.TitleFont.LineHeight()
	title = layout.Rect{X: r.X, Y: r.Y, W: r.W, H: th}
	legend = layout.Rect{X: r.X + s.AxisGutter, Y: r.Bottom() - s.LegendHeight, W: r.W - s.AxisGutter, H: s.LegendHeight}
	axisLabels := s.LabelFont.LineHeight()
	plot = layout.Rect{
		X: r.X + s.AxisGutter,
		Y: r.Y + th + 6,
		W: r.W - s.AxisGutter - 8,
		H: r.H - th - 6 - axisLabels - 4 - s.LegendHeight,
	}
	return title, plot, legend
}

func formatValue(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Draw renders c into r: title, frame, series lines, min/max annotations,
// first/last x labels and the legend. With fewer than two values in total a
// placeholder replaces the axes.
func Draw(cv layout.Canvas, r layout.Rect, c Chart, s Style) Plot {
	titleR, plotR, legendR := s.Areas(r)
	title := c.Title
	if c.Unit != "" {
		title = fmt.Sprintf("%s (%s)", c.Title, c.Unit)
	}
	cv.Text(titleR.X, titleR.Y, title, s.TitleFont, layout.ColorAccent)

	plot := Compute(plotR, c)
	if plot.Empty {
		cv.StrokeRect(plotR, layout.ColorRule, 0.5)
		msg := s.Placeholder
		w := cv.TextWidth(msg, s.LabelFont)
		cv.Text(plotR.X+(plotR.W-w)/2, plotR.Y+plotR.H/2-s.LabelFont.LineHeight()/2, msg, s.LabelFont, layout.ColorMuted)
		return plot
	}

	cv.FillRect(plotR, layout.ColorWhite)
	for i := 1; i < 4; i++ {
		y := plotR.Y + float64(i)*plotR.H/4
		cv.Line(plotR.Left(), y, plotR.Right(), y, layout.ColorPanel, 0.5)
	}
	cv.StrokeRect(plotR, layout.ColorRule, 0.6)

	lf := s.LabelFont
	maxLabel := formatValue(plot.YMax, c.Decimals)
	minLabel := formatValue(plot.YMin, c.Decimals)
	cv.Text(plotR.X-4-cv.TextWidth(maxLabel, lf), plotR.Top()-lf.LineHeight()/2, maxLabel, lf, layout.ColorMuted)
	cv.Text(plotR.X-4-cv.TextWidth(minLabel, lf), plotR.Bottom()-lf.LineHeight()/2, minLabel, lf, layout.ColorMuted)

	for _, seg := range plot.Segment {
		cv.Line(seg.A.X, seg.A.Y, seg.B.X, seg.B.Y, SeriesColor(seg.Series), s.LineWidth)
	}
	for si, pts := range plot.Points {
		for _, p := range pts {
			if p == nil {
				continue
			}
			half := s.MarkerSize / 2
			cv.FillRect(layout.Rect{X: p.X - half, Y: p.Y - half, W: s.MarkerSize, H: s.MarkerSize}, SeriesColor(si))
		}
	}

	if n := len(c.XLabels); n > 0 {
		ly := plotR.Bottom() + 3
		cv.Text(plotR.Left(), ly, c.XLabels[0], lf, layout.ColorMuted)
		if n > 1 {
			last := c.XLabels[n-1]
			cv.Text(plotR.Right()-cv.TextWidth(last, lf), ly, last, lf, layout.ColorMuted)
		}
	}

	drawLegend(cv, legendR, c.Series, s)
	return plot
}

// LegendEntryWidth divides the legend width evenly among the drawn series,
// capped at MaxLegendEntryWidth.
func (s Style) LegendEntryWidth(legendWidth float64, series int) float64 {
	if series <= 0 {
		return 0
	}
	if s.MaxLegendEntries > 0 && series > s.MaxLegendEntries {
		series = s.MaxLegendEntries
	}
	w := legendWidth / float64(series)
	if s.MaxLegendEntryWidth > 0 && w > s.MaxLegendEntryWidth {
		w = s.MaxLegendEntryWidth
	}
	return w
}

func drawLegend(cv layout.Canvas, r layout.Rect, series []Series, s Style) {
	shown := len(series)
	if s.MaxLegendEntries > 0 && shown > s.MaxLegendEntries {
		shown = s.MaxLegendEntries
	}
	entryW := s.LegendEntryWidth(r.W, len(series))
	lf := s.LabelFont
	swatch := lf.Size
	for i := 0; i < shown; i++ {
		x := r.X + float64(i)*entryW
		y := r.Y + (r.H-swatch)/2
		cv.FillRect(layout.Rect{X: x, Y: y, W: swatch, H: swatch}, SeriesColor(i))
		label := fitText(cv, series[i].Label, entryW-swatch-8, lf)
		cv.Text(x+swatch+3, r.Y+(r.H-lf.LineHeight())/2, label, lf, layout.ColorText)
	}
	if rest := len(series) - shown; rest > 0 {
		more := fmt.Sprintf("+%d more", rest)
		cv.Text(r.Right()-cv.TextWidth(more, lf), r.Y+(r.H-lf.LineHeight())/2, more, lf, layout.ColorMuted)
	}
}

// fitText shortens s with an ellipsis until it fits width.
func fitText(m layout.Measurer, s string, width float64, f layout.Font) string {
	if m.TextWidth(s, f) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "…"; m.TextWidth(c, f) <= width {
			return c
		}
	}
	return ""
}

// Block adapts a chart to layout.Block with a fixed height.
type Block struct {
	Chart  Chart
	Height float64
	Style  Style
}

// NewBlock returns a chart block of height h with the default style.
func NewBlock(c Chart, h float64) *Block {
	return &Block{Chart: c, Height: h, Style: DefaultStyle()}
}

func (b *Block) Measure(layout.Measurer, float64) float64 { return b.Height }

func (b *Block) Draw(c layout.Canvas, r layout.Rect) { Draw(c, r, b.Chart, b.Style) }
