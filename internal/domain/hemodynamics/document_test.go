package hemodynamics

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/chart"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
)

func fp(v float64) *float64 { return &v }

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestBuilder() *DocumentBuilder {
	b := NewDocumentBuilder("GIPOGO RHC Tools", layout.MonoMeasurer{Advance: 0.55})
	b.Now = func() time.Time { return fixedNow }
	return b
}

func testSubject() *Subject {
	return &Subject{ID: uuid.New(), DisplayName: "Roe, Richard"}
}

func snapAt(day int, v Values) *Snapshot {
	return &Snapshot{
		ID:      uuid.New(),
		TakenAt: time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC),
		Values:  v,
	}
}

func fullValues(mpap float64) Values {
	return Values{
		SBP: fp(120), DBP: fp(75), MAP: fp(90), RA: fp(8), PAS: fp(40), PAD: fp(15), MPAP: fp(mpap), PCWP: fp(12),
		HR: fp(72), CO: fp(4.5), CI: fp(2.3), SV: fp(62), CPO: fp(0.9), PAPI: fp(3.1), SVR: fp(1400), PVR: fp(3.0),
	}
}

func findSection(sections []report.Section, title string) *report.Section {
	for i := range sections {
		if sections[i].Title == title {
			return &sections[i]
		}
	}
	return nil
}

func TestBuild_NoSnapshots(t *testing.T) {
	_, err := newTestBuilder().Build(testSubject(), nil)
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if err.Error() != "no records available" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestBuild_SingleSnapshot(t *testing.T) {
	doc, err := newTestBuilder().Build(testSubject(), []*Snapshot{snapAt(3, fullValues(25))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	p := doc.Pages[0]
	if p.Kind != report.KindSnapshot {
		t.Errorf("expected snapshot page, got %s", p.Kind)
	}
	if p.Index != 1 || p.Total != 1 {
		t.Errorf("expected page 1/1, got %d/%d", p.Index, p.Total)
	}
	changes := findSection(p.Snapshot.Sections, SectionChanges)
	if changes == nil {
		t.Fatal("missing changes section")
	}
	if len(changes.Rows) != 1 || changes.Rows[0].Label != "not comparable — first record" {
		t.Errorf("unexpected first-record changes: %+v", changes.Rows)
	}
}

func TestBuild_CoverAndTrendsWithTwoOrMore(t *testing.T) {
	snaps := []*Snapshot{snapAt(20, fullValues(30)), snapAt(5, fullValues(25)), snapAt(12, fullValues(28))}
	doc, err := newTestBuilder().Build(testSubject(), snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Pages[0].Kind != report.KindCover {
		t.Fatalf("first page should be the cover, got %s", doc.Pages[0].Kind)
	}
	var snapshotPages []report.Page
	for _, p := range doc.Pages {
		if p.Kind == report.KindSnapshot {
			snapshotPages = append(snapshotPages, p)
		}
	}
	if len(snapshotPages) != 3 {
		t.Fatalf("expected 3 snapshot pages, got %d", len(snapshotPages))
	}
	for i, p := range snapshotPages {
		if p.Snapshot.Position != i+1 || p.Snapshot.Count != 3 {
			t.Errorf("page %d: position %d of %d", i, p.Snapshot.Position, p.Snapshot.Count)
		}
		if i > 0 && !p.Snapshot.TakenAt.After(snapshotPages[i-1].Snapshot.TakenAt) {
			t.Errorf("snapshot pages out of order at %d", i)
		}
	}
	last := doc.Pages[len(doc.Pages)-1]
	if last.Kind != report.KindTrends {
		t.Errorf("last page should be trends, got %s", last.Kind)
	}
	if doc.Header.FirstTakenAt.Day() != 5 || doc.Header.LastTakenAt.Day() != 20 {
		t.Errorf("header range wrong: %v to %v", doc.Header.FirstTakenAt, doc.Header.LastTakenAt)
	}
}

func TestBuild_NumberingIsConsistent(t *testing.T) {
	var snaps []*Snapshot
	for d := 1; d <= 7; d++ {
		snaps = append(snaps, snapAt(d, fullValues(20+float64(d))))
	}
	doc, err := newTestBuilder().Build(testSubject(), snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range doc.Pages {
		if p.Index != i+1 {
			t.Errorf("page %d has index %d", i, p.Index)
		}
		if p.Total != len(doc.Pages) {
			t.Errorf("page %d has total %d, want %d", i, p.Total, len(doc.Pages))
		}
		if err := p.Validate(); err != nil {
			t.Errorf("page %d: %v", i, err)
		}
	}
}

func TestBuild_MissingValuesKeepEveryRow(t *testing.T) {
	doc, err := newTestBuilder().Build(testSubject(), []*Snapshot{snapAt(1, Values{CI: fp(2.2)})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flow := findSection(doc.Pages[0].Snapshot.Sections, string(GroupFlow))
	if flow == nil {
		t.Fatal("missing flow section")
	}
	if len(flow.Rows) != len(MetricsIn(GroupFlow)) {
		t.Fatalf("expected %d rows, got %d", len(MetricsIn(GroupFlow)), len(flow.Rows))
	}
	for _, r := range flow.Rows {
		if r.Label == "Cardiac index" {
			if r.Missing || r.Value != "2.2 L/min/m²" {
				t.Errorf("unexpected CI row %+v", r)
			}
			continue
		}
		if !r.Missing || r.Value != "N/A" {
			t.Errorf("expected %s to be N/A, got %+v", r.Label, r)
		}
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	doc, err := newTestBuilder().Build(testSubject(), []*Snapshot{snapAt(1, fullValues(20))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Flow & performance", "Resistance", "Pressures", "Changes vs. previous"}
	var got []string
	for _, s := range doc.Pages[0].Snapshot.Sections {
		got = append(got, s.Title)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuild_DeltasAgainstPrevious(t *testing.T) {
	a := fullValues(25)
	b := fullValues(30)
	b.CI = fp(2.34) // rounds to 2.3, same as a
	b.PCWP = nil
	doc, err := newTestBuilder().Build(testSubject(), []*Snapshot{snapAt(1, a), snapAt(2, b)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var second *report.SnapshotContent
	for _, p := range doc.Pages {
		if p.Kind == report.KindSnapshot && p.Snapshot.Position == 2 {
			second = p.Snapshot
		}
	}
	if second == nil {
		t.Fatal("second snapshot page not found")
	}
	changes := findSection(second.Sections, SectionChanges)
	want := map[string]string{
		"Mean PA pressure":                   "↑ +5 mmHg",
		"Cardiac index":                      "→ +0.0 L/min/m²",
		"Pulmonary capillary wedge pressure": "N/A",
	}
	for _, r := range changes.Rows {
		if w, ok := want[r.Label]; ok && r.Value != w {
			t.Errorf("%s: expected %q, got %q", r.Label, w, r.Value)
		}
	}
	if len(changes.Rows) != len(Catalog) {
		t.Errorf("expected one change row per metric, got %d", len(changes.Rows))
	}
}

func TestBuild_NotesBlock(t *testing.T) {
	withNotes := snapAt(1, fullValues(20))
	withNotes.Notes = []string{"Vasoreactivity test negative.", "  "}
	blank := snapAt(2, fullValues(21))
	blank.Notes = []string{" "}

	b := newTestBuilder()
	doc, err := b.Build(testSubject(), []*Snapshot{withNotes, blank})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := func(pos int) int {
		n := 0
		for _, p := range doc.Pages {
			if p.Kind != report.KindSnapshot || p.Snapshot.Position != pos {
				continue
			}
			for _, pl := range p.Blocks {
				if _, ok := pl.Block.(*layout.NoteBlock); ok {
					n++
				}
			}
		}
		return n
	}
	if count(1) != 1 {
		t.Errorf("expected a notes block on the first record page")
	}
	if count(2) != 0 {
		t.Errorf("expected no notes block for blank notes")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	snaps := []*Snapshot{snapAt(9, fullValues(30)), snapAt(2, fullValues(25)), snapAt(4, Values{MPAP: fp(27)})}
	subject := testSubject()
	a, err := newTestBuilder().Build(subject, snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := newTestBuilder().Build(subject, snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a.Pages, b.Pages) {
		t.Error("identical input produced different page lists")
	}
	if !reflect.DeepEqual(a.Outline(), b.Outline()) {
		t.Error("identical input produced different outlines")
	}
}

func TestBuild_TrendChartsKeepGaps(t *testing.T) {
	mid := fullValues(0)
	mid.MPAP = nil
	snaps := []*Snapshot{snapAt(1, fullValues(25)), snapAt(2, mid), snapAt(3, fullValues(31))}
	doc, err := newTestBuilder().Build(testSubject(), snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var trends *report.TrendsContent
	for _, p := range doc.Pages {
		if p.Kind == report.KindTrends {
			trends = p.Trends
		}
	}
	if trends == nil {
		t.Fatal("no trends page")
	}
	var found bool
	for _, c := range trends.Charts {
		for _, s := range c.Series {
			if s.Label != "mPAP" {
				continue
			}
			found = true
			if len(s.Points) != 3 || s.Points[1] != nil {
				t.Errorf("expected a gap at index 1, got %v", s.Points)
			}
			plot := chart.Compute(layout.Rect{W: 100, H: 100}, chart.Chart{Series: []chart.Series{s}})
			if len(plot.Segment) != 0 {
				t.Errorf("gap must not be bridged, got %d segments", len(plot.Segment))
			}
		}
	}
	if !found {
		t.Error("mPAP series not charted")
	}
}

func TestBuild_FiftySnapshots(t *testing.T) {
	var snaps []*Snapshot
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		s := &Snapshot{ID: uuid.New(), TakenAt: start.AddDate(0, i, 0), Values: fullValues(20 + float64(i%10))}
		s.Notes = []string{"Routine follow-up study."}
		snaps = append(snaps, s)
	}
	doc, err := newTestBuilder().Build(testSubject(), snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cover, records, trends int
	for _, p := range doc.Pages {
		switch p.Kind {
		case report.KindCover:
			cover++
		case report.KindSnapshot:
			records++
		case report.KindTrends:
			trends++
		}
		if p.Clipped() {
			t.Errorf("page %d unexpectedly clipped", p.Index)
		}
	}
	if cover != 1 || records != 50 || trends == 0 {
		t.Errorf("unexpected page mix: cover=%d records=%d trends=%d", cover, records, trends)
	}
}

func TestSortSnapshots_StableAndNonDestructive(t *testing.T) {
	a := snapAt(5, Values{})
	b := snapAt(5, Values{})
	c := snapAt(1, Values{})
	in := []*Snapshot{a, b, c}
	out := SortSnapshots(in)
	if out[0] != c || out[1] != a || out[2] != b {
		t.Error("expected stable ascending order")
	}
	if in[0] != a {
		t.Error("input slice must not be reordered")
	}
}

func TestMetric_ValueRounds(t *testing.T) {
	m, _ := MetricByKey("co")
	s := &Snapshot{Values: Values{CO: fp(4.567)}}
	if v := m.Value(s); v == nil || *v != 4.57 {
		t.Errorf("expected 4.57, got %v", v)
	}
	if m.Value(&Snapshot{}) != nil {
		t.Error("expected nil for missing value")
	}
	m.Set(s, nil)
	if s.Values.CO != nil {
		t.Error("Set(nil) should clear the value")
	}
}

func TestCatalog_KeysUniqueAndGrouped(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Catalog {
		if seen[m.Key] {
			t.Errorf("duplicate key %s", m.Key)
		}
		seen[m.Key] = true
	}
	total := 0
	for _, g := range SectionOrder {
		total += len(MetricsIn(g))
	}
	if total != len(Catalog) {
		t.Errorf("every metric must belong to a section, %d of %d do", total, len(Catalog))
	}
}
