package hemodynamics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/chart"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
)

// ErrNoRecords is returned when a report is requested for a subject without
// snapshots.
var ErrNoRecords = errors.New("no records available")

// Section titles that are not metric groups.
const (
	SectionChanges        = "Changes vs. previous"
	SectionNotes          = "Notes"
	SectionSummary        = "Summary"
	SectionCoverage       = "Measurement coverage"
	SectionOverallChanges = "Overall change (first → last)"
)

// DocumentBuilder turns a subject's snapshots into a numbered page list.
type DocumentBuilder struct {
	AppName  string
	Geometry layout.Geometry
	Labels   report.Labels
	Groups   *GroupCatalog
	Measurer layout.Measurer
	Now      func() time.Time
	Logger   zerolog.Logger
}

// NewDocumentBuilder returns a builder with the default geometry, labels and
// chart groups. m must measure text exactly as the page renderer will.
func NewDocumentBuilder(appName string, m layout.Measurer) *DocumentBuilder {
	return &DocumentBuilder{
		AppName:  appName,
		Geometry: layout.DefaultGeometry(),
		Labels:   report.DefaultLabels(),
		Groups:   DefaultGroups(),
		Measurer: m,
		Now:      time.Now,
		Logger:   zerolog.Nop(),
	}
}

// SortSnapshots returns a copy of snaps ordered by TakenAt. Equal
// timestamps keep their input order.
func SortSnapshots(snaps []*Snapshot) []*Snapshot {
	out := make([]*Snapshot, len(snaps))
	copy(out, snaps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	return out
}

// Build lays out the whole report. With two or more snapshots the document
// opens with a cover page and closes with trend charts; a single snapshot
// yields only its record page.
func (b *DocumentBuilder) Build(subject *Subject, snapshots []*Snapshot) (*report.Document, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoRecords
	}
	if err := b.Geometry.Validate(); err != nil {
		return nil, fmt.Errorf("page geometry: %w", err)
	}
	snaps := SortSnapshots(snapshots)
	n := len(snaps)

	doc := &report.Document{
		Geometry: b.Geometry,
		Labels:   b.Labels,
		Header: report.Header{
			AppName:      b.AppName,
			SubjectName:  subject.DisplayName,
			GeneratedAt:  b.Now(),
			FirstTakenAt: snaps[0].TakenAt,
			LastTakenAt:  snaps[n-1].TakenAt,
			Snapshots:    n,
		},
	}

	if n >= 2 {
		doc.Pages = append(doc.Pages, b.coverPages(snaps)...)
	}
	for i := range snaps {
		doc.Pages = append(doc.Pages, b.snapshotPages(snaps, i)...)
	}
	if n >= 2 {
		doc.Pages = append(doc.Pages, b.trendsPages(snaps)...)
	}
	doc.Number()

	for _, p := range doc.Pages {
		if p.Clipped() {
			b.Logger.Warn().
				Str("kind", p.Kind.String()).
				Int("page", p.Index).
				Msg("block taller than printable area; content truncated")
		}
	}
	return doc, nil
}

func (b *DocumentBuilder) paginate(tmpl report.Page, blocks []layout.Block) []report.Page {
	return report.Paginate(b.Geometry, b.Measurer, tmpl, blocks)
}

func (b *DocumentBuilder) coverPages(snaps []*Snapshot) []report.Page {
	n := len(snaps)
	first, last := snaps[0].TakenAt, snaps[n-1].TakenAt
	days := int(math.Round(last.Sub(first).Hours() / 24))

	cover := &report.CoverContent{
		Summary: report.Section{Title: SectionSummary, Rows: []report.Row{
			{Label: "Records", Value: fmt.Sprintf("%d", n)},
			{Label: "First record", Value: first.Format(report.DateTimeLayout)},
			{Label: "Last record", Value: last.Format(report.DateTimeLayout)},
			{Label: "Span", Value: fmt.Sprintf("%d days", days)},
		}},
		Coverage: report.Section{Title: SectionCoverage},
		Changes:  report.Section{Title: SectionOverallChanges},
	}
	for _, m := range Catalog {
		var measured []*float64
		for _, s := range snaps {
			if v := m.Value(s); v != nil {
				measured = append(measured, v)
			}
		}
		cover.Coverage.Rows = append(cover.Coverage.Rows, report.Row{
			Label:   m.Label,
			Value:   fmt.Sprintf("%d of %d", len(measured), n),
			Missing: len(measured) == 0,
		})

		row := report.Row{Label: m.Label, Unit: m.Unit, Value: b.Labels.NotAvailable, Missing: true}
		if len(measured) >= 2 {
			row.Value = b.Labels.Delta(measured[len(measured)-1], measured[0], m.Decimals, m.Unit)
			row.Missing = false
		}
		cover.Changes.Rows = append(cover.Changes.Rows, row)
	}

	blocks := []layout.Block{cover.Summary.Block(), cover.Coverage.Block(), cover.Changes.Block()}
	return b.paginate(report.Page{Kind: report.KindCover, Cover: cover}, blocks)
}

// SnapshotSections returns the record page sections for snaps[i]: one
// section per metric group followed by the changes against snaps[i-1].
func (b *DocumentBuilder) SnapshotSections(snaps []*Snapshot, i int) []report.Section {
	cur := snaps[i]
	var sections []report.Section
	for _, g := range SectionOrder {
		sec := report.Section{Title: string(g)}
		for _, m := range MetricsIn(g) {
			v, ok := b.Labels.Value(m.Value(cur), m.Decimals, m.Unit)
			sec.Rows = append(sec.Rows, report.Row{Label: m.Label, Value: v, Unit: m.Unit, Missing: !ok})
		}
		sections = append(sections, sec)
	}

	changes := report.Section{Title: SectionChanges}
	if i == 0 {
		changes.Rows = []report.Row{{Label: b.Labels.FirstRecord, Missing: true}}
	} else {
		prev := snaps[i-1]
		for _, m := range Catalog {
			cv, pv := m.Value(cur), m.Value(prev)
			changes.Rows = append(changes.Rows, report.Row{
				Label:   m.Label,
				Value:   b.Labels.Delta(cv, pv, m.Decimals, m.Unit),
				Unit:    m.Unit,
				Missing: cv == nil || pv == nil,
			})
		}
	}
	return append(sections, changes)
}

func (b *DocumentBuilder) snapshotPages(snaps []*Snapshot, i int) []report.Page {
	s := snaps[i]
	content := &report.SnapshotContent{
		Position: i + 1,
		Count:    len(snaps),
		TakenAt:  s.TakenAt,
		Sections: b.SnapshotSections(snaps, i),
		Notes:    s.Notes,
	}

	var blocks []layout.Block
	for _, sec := range content.Sections {
		blocks = append(blocks, sec.Block())
	}
	if hasNotes(s.Notes) {
		blocks = append(blocks, &layout.NoteBlock{Title: SectionNotes, Notes: s.Notes})
	}
	return b.paginate(report.Page{Kind: report.KindSnapshot, Snapshot: content}, blocks)
}

func hasNotes(notes []string) bool {
	for _, n := range notes {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}

func (b *DocumentBuilder) trendsPages(snaps []*Snapshot) []report.Page {
	charts := b.Groups.Charts(snaps)
	blocks := make([]layout.Block, len(charts))
	for i, c := range charts {
		blocks[i] = chart.NewBlock(c, b.Groups.ChartHeight)
	}
	return b.paginate(report.Page{Kind: report.KindTrends, Trends: &report.TrendsContent{Charts: charts}}, blocks)
}
