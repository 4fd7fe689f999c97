package layout

import (
	"image/color"
	"math"
	"strings"
)

// Block is a unit of page content. Measure and Draw are separate so the
// composer can size a block before committing it to a page. Draw must fill
// exactly the height Measure reported for the same width.
type Block interface {
	Measure(m Measurer, width float64) float64
	Draw(c Canvas, r Rect)
}

// BlockStyle holds the spacing shared by table and note blocks.
type BlockStyle struct {
	TitleFont     Font
	BodyFont      Font
	TitlePadding  float64 // between title line and first row
	RowPadding    float64 // added below every row
	BottomPadding float64
	Inset         float64 // horizontal text inset inside a cell
	LabelFraction float64 // share of the width given to the label column
}

// DefaultBlockStyle is the style used by report pages.
func DefaultBlockStyle() BlockStyle {
	return BlockStyle{
		TitleFont:     FontTitle,
		BodyFont:      FontBody,
		TitlePadding:  5,
		RowPadding:    3,
		BottomPadding: 5,
		Inset:         5,
		LabelFraction: 0.45,
	}
}

func (s BlockStyle) orDefault() BlockStyle {
	if s.TitleFont.Size == 0 || s.BodyFont.Size == 0 {
		return DefaultBlockStyle()
	}
	return s
}

// TableRow is one label/value line of a table block.
type TableRow struct {
	Label string
	Value string
	Muted bool
}

// TableBlock renders a titled two-column key/value table.
type TableBlock struct {
	Title string
	Rows  []TableRow
	Style BlockStyle
}

func (b *TableBlock) columns(width float64) (labelW, valueW float64) {
	s := b.Style.orDefault()
	labelW = math.Floor(width * s.LabelFraction)
	return labelW, width - labelW
}

func (b *TableBlock) rowLines(m Measurer, width float64, row TableRow) (label, value []string) {
	s := b.Style.orDefault()
	labelW, valueW := b.columns(width)
	label = WrapFont(m, row.Label, labelW-2*s.Inset, s.BodyFont)
	value = WrapFont(m, row.Value, valueW-2*s.Inset, s.BodyFont)
	return label, value
}

func (b *TableBlock) rowHeight(label, value []string) float64 {
	s := b.Style.orDefault()
	n := len(label)
	if len(value) > n {
		n = len(value)
	}
	if n == 0 {
		n = 1
	}
	return float64(n)*s.BodyFont.LineHeight() + s.RowPadding
}

// Measure returns title height + padding + the sum of row heights + bottom
// padding, where each row is as tall as its longer wrapped column.
func (b *TableBlock) Measure(m Measurer, width float64) float64 {
	s := b.Style.orDefault()
	h := s.TitleFont.LineHeight() + s.TitlePadding
	for _, row := range b.Rows {
		label, value := b.rowLines(m, width, row)
		h += b.rowHeight(label, value)
	}
	return h + s.BottomPadding
}

func (b *TableBlock) Draw(c Canvas, r Rect) {
	s := b.Style.orDefault()
	labelW, _ := b.columns(r.W)

	c.FillRect(Rect{X: r.X, Y: r.Y, W: r.W, H: s.TitleFont.LineHeight()}, ColorPanel)
	c.Text(r.X+s.Inset, r.Y, b.Title, s.TitleFont, ColorAccent)
	y := r.Y + s.TitleFont.LineHeight()
	c.Line(r.X, y, r.Right(), y, ColorAccent, 0.8)
	y += s.TitlePadding

	lh := s.BodyFont.LineHeight()
	for i, row := range b.Rows {
		label, value := b.rowLines(c, r.W, row)
		rh := b.rowHeight(label, value)
		if i%2 == 1 {
			c.FillRect(Rect{X: r.X, Y: y - s.RowPadding/2, W: r.W, H: rh}, ColorPanel)
		}
		valueColor := color.Color(ColorText)
		if row.Muted {
			valueColor = ColorMuted
		}
		for j, line := range label {
			c.Text(r.X+s.Inset, y+float64(j)*lh, line, s.BodyFont, ColorMuted)
		}
		for j, line := range value {
			c.Text(r.X+labelW+s.Inset, y+float64(j)*lh, line, s.BodyFont, valueColor)
		}
		y += rh
	}
	c.Line(r.X, r.Bottom()-s.BottomPadding/2, r.Right(), r.Bottom()-s.BottomPadding/2, ColorRule, 0.5)
}

// NoteSeparator joins individual notes into the single paragraph of a note
// block.
const NoteSeparator = " • "

// NoteBlock renders a title followed by one wrapped paragraph.
type NoteBlock struct {
	Title string
	Notes []string
	Style BlockStyle
}

func (b *NoteBlock) paragraph() string {
	parts := make([]string, 0, len(b.Notes))
	for _, n := range b.Notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, NoteSeparator)
}

func (b *NoteBlock) lines(m Measurer, width float64) []string {
	s := b.Style.orDefault()
	return WrapFont(m, b.paragraph(), width-2*s.Inset, s.BodyFont)
}

// Measure returns title height + wrapped line count × line height + paddings.
func (b *NoteBlock) Measure(m Measurer, width float64) float64 {
	s := b.Style.orDefault()
	n := len(b.lines(m, width))
	return s.TitleFont.LineHeight() + s.TitlePadding + float64(n)*s.BodyFont.LineHeight() + s.BottomPadding
}

func (b *NoteBlock) Draw(c Canvas, r Rect) {
	s := b.Style.orDefault()
	c.FillRect(Rect{X: r.X, Y: r.Y, W: r.W, H: s.TitleFont.LineHeight()}, ColorPanel)
	c.Text(r.X+s.Inset, r.Y, b.Title, s.TitleFont, ColorAccent)
	y := r.Y + s.TitleFont.LineHeight()
	c.Line(r.X, y, r.Right(), y, ColorAccent, 0.8)
	y += s.TitlePadding
	for _, line := range b.lines(c, r.W) {
		c.Text(r.X+s.Inset, y, line, s.BodyFont, ColorText)
		y += s.BodyFont.LineHeight()
	}
}

// Spacer is an empty block of fixed height.
type Spacer float64

func (s Spacer) Measure(Measurer, float64) float64 { return float64(s) }
func (s Spacer) Draw(Canvas, Rect)                  {}
