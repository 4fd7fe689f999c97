package report

import (
	"errors"
	"fmt"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

// ErrUnnumbered is returned when a page is rendered before Document.Number.
var ErrUnnumbered = errors.New("page has not been numbered")

// Renderer draws a complete physical page: background, header, the page's
// placed blocks and the footer.
type Renderer struct {
	Geometry layout.Geometry
	Labels   Labels
}

// NewRenderer returns a renderer for the document's geometry and labels.
func NewRenderer(doc *Document) *Renderer {
	return &Renderer{Geometry: doc.Geometry, Labels: doc.Labels}
}

// PageLabel is the "Page i / n" marker.
func PageLabel(index, total int) string {
	return fmt.Sprintf("Page %d / %d", index, total)
}

// Render draws p onto c. Blocks are drawn at the rectangles chosen by the
// composer; anything a clipped block paints below the printable area is
// covered before the footer is drawn.
func (r *Renderer) Render(c layout.Canvas, h Header, p Page) error {
	if p.Index < 1 || p.Total < p.Index {
		return fmt.Errorf("%w: %s page %d/%d", ErrUnnumbered, p.Kind, p.Index, p.Total)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	g := r.Geometry
	c.FillRect(layout.Rect{W: g.Width, H: g.Height}, layout.ColorWhite)

	for _, pl := range p.Blocks {
		pl.Block.Draw(c, pl.Rect)
	}

	clipped := p.Clipped()
	if clipped {
		c.FillRect(layout.Rect{Y: g.ContentBottom(), W: g.Width, H: g.Height - g.ContentBottom()}, layout.ColorWhite)
	}
	// header last so nothing drawn by a block can cover it
	c.FillRect(layout.Rect{W: g.Width, H: g.ContentTop()}, layout.ColorWhite)
	r.header(c, h, p)
	r.footer(c, h, p, clipped)
	return nil
}

func (r *Renderer) header(c layout.Canvas, h Header, p Page) {
	hr := r.Geometry.HeaderRect()
	y := hr.Y

	c.Text(hr.X, y, h.AppName, layout.FontHeading, layout.ColorAccent)
	pl := PageLabel(p.Index, p.Total)
	c.Text(hr.Right()-c.TextWidth(pl, layout.FontBody), y+4, pl, layout.FontBody, layout.ColorMuted)
	y += layout.FontHeading.LineHeight()

	c.Text(hr.X, y, h.SubjectName, layout.FontBody, layout.ColorText)
	gen := "Generated " + h.GeneratedAt.Format(DateTimeLayout)
	c.Text(hr.Right()-c.TextWidth(gen, layout.FontSmall), y+1, gen, layout.FontSmall, layout.ColorMuted)
	y += layout.FontBody.LineHeight() + 2

	c.Text(hr.X, y, p.Title(r.Labels), layout.FontTitle, layout.ColorText)
	c.Line(hr.Left(), hr.Bottom()-4, hr.Right(), hr.Bottom()-4, layout.ColorAccent, 1)
}

func (r *Renderer) footer(c layout.Canvas, h Header, p Page, clipped bool) {
	fr := r.Geometry.FooterRect()
	c.Line(fr.Left(), fr.Top()+4, fr.Right(), fr.Top()+4, layout.ColorRule, 0.5)
	y := fr.Top() + 8

	left := h.SubjectName
	if h.Snapshots > 0 {
		left = fmt.Sprintf("%s · %s to %s", h.SubjectName,
			h.FirstTakenAt.Format(DateLayout), h.LastTakenAt.Format(DateLayout))
	}
	c.Text(fr.X, y, left, layout.FontSmall, layout.ColorMuted)

	if clipped && r.Labels.Truncated != "" {
		w := c.TextWidth(r.Labels.Truncated, layout.FontSmall)
		c.Text(fr.X+(fr.W-w)/2, y, r.Labels.Truncated, layout.FontSmall, layout.ColorHighlight)
	}

	pl := PageLabel(p.Index, p.Total)
	c.Text(fr.Right()-c.TextWidth(pl, layout.FontSmall), y, pl, layout.FontSmall, layout.ColorMuted)
}
