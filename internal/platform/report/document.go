// Package report defines the paginated document produced for one export and
// renders its pages onto a layout.Canvas.
package report

import (
	"fmt"
	"time"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/chart"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

// Timestamp layouts used on pages.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// Kind identifies the page variant.
type Kind int

const (
	KindCover Kind = iota + 1
	KindSnapshot
	KindTrends
)

func (k Kind) String() string {
	switch k {
	case KindCover:
		return "cover"
	case KindSnapshot:
		return "snapshot"
	case KindTrends:
		return "trends"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Header is printed at the top of every page.
type Header struct {
	AppName      string
	SubjectName  string
	GeneratedAt  time.Time
	FirstTakenAt time.Time
	LastTakenAt  time.Time
	Snapshots    int
}

// Row is one label/value line in a section. Missing rows still carry the
// not-available placeholder in Value.
type Row struct {
	Label   string
	Value   string
	Unit    string
	Missing bool
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// Block turns the section into a table block.
func (s Section) Block() *layout.TableBlock {
	rows := make([]layout.TableRow, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = layout.TableRow{Label: r.Label, Value: r.Value, Muted: r.Missing}
	}
	return &layout.TableBlock{Title: s.Title, Rows: rows}
}

// CoverContent is the payload of the summary page.
type CoverContent struct {
	Summary  Section
	Coverage Section
	Changes  Section
}

// SnapshotContent is the payload of one record page.
type SnapshotContent struct {
	Position int // 1-based
	Count    int
	TakenAt  time.Time
	Sections []Section
	Notes    []string
}

// TrendsContent is the payload of the chart appendix.
type TrendsContent struct {
	Charts []chart.Chart
}

// Page is one physical page. Exactly one payload matches Kind. Pages that
// continue a logical page that did not fit share its payload and have
// Part > 0.
type Page struct {
	Kind  Kind
	Index int // 1-based, set by Document.Number
	Total int
	Part  int

	Cover    *CoverContent
	Snapshot *SnapshotContent
	Trends   *TrendsContent

	Blocks []layout.Placement
}

// Validate checks that exactly the payload matching Kind is set.
func (p Page) Validate() error {
	var set int
	for _, ok := range []bool{p.Cover != nil, p.Snapshot != nil, p.Trends != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%s page has %d payloads", p.Kind, set)
	}
	switch {
	case p.Kind == KindCover && p.Cover == nil,
		p.Kind == KindSnapshot && p.Snapshot == nil,
		p.Kind == KindTrends && p.Trends == nil:
		return fmt.Errorf("%s page has mismatched payload", p.Kind)
	}
	return nil
}

// Clipped reports whether any block on the page runs past the printable
// area.
func (p Page) Clipped() bool {
	for _, b := range p.Blocks {
		if b.Clipped {
			return true
		}
	}
	return false
}

// Title is the page heading below the report header.
func (p Page) Title(l Labels) string {
	var t string
	switch p.Kind {
	case KindCover:
		t = "Summary"
	case KindSnapshot:
		s := p.Snapshot
		t = fmt.Sprintf("Record %d of %d · %s", s.Position, s.Count, s.TakenAt.Format(DateTimeLayout))
	case KindTrends:
		t = "Trends"
	}
	if p.Part > 0 && l.Continued != "" {
		t += " " + l.Continued
	}
	return t
}

// Document is the ordered page list for one export.
type Document struct {
	Header   Header
	Geometry layout.Geometry
	Labels   Labels
	Pages    []Page
}

// Number assigns 1-based indices and the shared total. It must run after
// the page list is complete.
func (d *Document) Number() {
	total := len(d.Pages)
	for i := range d.Pages {
		d.Pages[i].Index = i + 1
		d.Pages[i].Total = total
	}
}

// OutlineEntry describes one page without its content.
type OutlineEntry struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Part    int    `json:"part,omitempty"`
	Clipped bool   `json:"clipped,omitempty"`
}

// Outline lists the document's pages in order.
func (d *Document) Outline() []OutlineEntry {
	out := make([]OutlineEntry, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = OutlineEntry{
			Index:   p.Index,
			Total:   p.Total,
			Kind:    p.Kind.String(),
			Title:   p.Title(d.Labels),
			Part:    p.Part,
			Clipped: p.Clipped(),
		}
	}
	return out
}

// Paginate composes blocks onto as many physical pages as they need. Every
// returned page is a copy of tmpl carrying its own placements and part
// number.
func Paginate(g layout.Geometry, m layout.Measurer, tmpl Page, blocks []layout.Block) []Page {
	layouts := layout.Compose(g, m, blocks)
	pages := make([]Page, len(layouts))
	for i, pl := range layouts {
		p := tmpl
		p.Part = i
		p.Blocks = pl.Placements
		pages[i] = p
	}
	return pages
}
