package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// five points per rune at size 10
func monoMeasure(s string) float64 {
	return MonoMeasurer{Advance: 0.5}.TextWidth(s, Font{Size: 10})
}

func TestWrap_Empty(t *testing.T) {
	assert.Empty(t, Wrap("", 100, monoMeasure))
	assert.Empty(t, Wrap("   \t ", 100, monoMeasure))
}

func TestWrap_Greedy(t *testing.T) {
	lines := Wrap("aaa bbb ccc", 35, monoMeasure)
	assert.Equal(t, []string{"aaa bbb", "ccc"}, lines)
}

func TestWrap_FitsOnOneLine(t *testing.T) {
	lines := Wrap("cardiac index", 1000, monoMeasure)
	assert.Equal(t, []string{"cardiac index"}, lines)
}

func TestWrap_OverlongWordStandsAlone(t *testing.T) {
	lines := Wrap("a supercalifragilistic b", 20, monoMeasure)
	assert.Equal(t, []string{"a", "supercalifragilistic", "b"}, lines)
}

func TestWrap_CollapsesWhitespace(t *testing.T) {
	lines := Wrap("  mean   PA\npressure ", 1000, monoMeasure)
	assert.Equal(t, []string{"mean PA pressure"}, lines)
}

func TestWrap_Idempotent(t *testing.T) {
	text := "Right heart catheterization performed via the right internal jugular vein " +
		"under local anaesthesia without complications; thermodilution cardiac output in triplicate"
	for _, width := range []float64{20, 60, 95, 150, 400} {
		first := Wrap(text, width, monoMeasure)
		second := Wrap(strings.Join(first, " "), width, monoMeasure)
		assert.Equal(t, first, second, "width %.0f", width)
	}
}

func TestWrap_Deterministic(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	assert.Equal(t, Wrap(text, 42, monoMeasure), Wrap(text, 42, monoMeasure))
}

func TestTableBlock_Measure(t *testing.T) {
	m := MonoMeasurer{Advance: 0.5}
	b := &TableBlock{
		Title: "Flow",
		Rows: []TableRow{
			{Label: "HR", Value: "72 bpm"},
			{Label: "Note", Value: "aaaa bbbb cccc dddd eeee ffff"},
		},
	}
	s := DefaultBlockStyle()
	lh := s.BodyFont.LineHeight()
	want := s.TitleFont.LineHeight() + s.TitlePadding +
		(lh + s.RowPadding) +
		(2*lh + s.RowPadding) +
		s.BottomPadding
	assert.InDelta(t, want, b.Measure(m, 200), 1e-9)
}

func TestTableBlock_LongerColumnWins(t *testing.T) {
	m := MonoMeasurer{Advance: 0.5}
	short := &TableBlock{Title: "T", Rows: []TableRow{{Label: "x", Value: "y"}}}
	tall := &TableBlock{Title: "T", Rows: []TableRow{{Label: "aaaa bbbb cccc dddd eeee ffff gggg", Value: "y"}}}
	assert.Greater(t, tall.Measure(m, 200), short.Measure(m, 200))
}

func TestTableBlock_DrawStaysInsideMeasuredHeight(t *testing.T) {
	m := MonoMeasurer{Advance: 0.5}
	b := &TableBlock{Title: "Pressures", Rows: []TableRow{
		{Label: "RA", Value: "8 mmHg"},
		{Label: "PCWP", Value: "N/A", Muted: true},
	}}
	h := b.Measure(m, 300)
	rec := NewRecorder(m)
	r := Rect{X: 10, Y: 100, W: 300, H: h}
	b.Draw(rec, r)

	for _, op := range rec.Ops {
		if op.Kind == "text" {
			assert.GreaterOrEqual(t, op.Y1, r.Top())
			assert.LessOrEqual(t, op.Y1+op.Font.LineHeight(), r.Bottom()+1e-9)
		}
	}
	assert.Contains(t, rec.Texts(), "N/A")
	assert.Contains(t, rec.Texts(), "Pressures")
}

func TestNoteBlock_Measure(t *testing.T) {
	m := MonoMeasurer{Advance: 0.5}
	b := &NoteBlock{Title: "Notes", Notes: []string{"first", "  ", "second"}}
	s := DefaultBlockStyle()
	assert.Equal(t, "first"+NoteSeparator+"second", b.paragraph())
	want := s.TitleFont.LineHeight() + s.TitlePadding + s.BodyFont.LineHeight() + s.BottomPadding
	assert.InDelta(t, want, b.Measure(m, 300), 1e-9)
}

func testGeometry() Geometry {
	return Geometry{Width: 100, Height: 100, HeaderHeight: 10, FooterHeight: 10}
}

func TestEnsureSpace_FitsWithoutBreak(t *testing.T) {
	g := testGeometry()
	cur, broke := g.EnsureSpace(Cursor{Y: 20}, 70)
	assert.False(t, broke)
	assert.Equal(t, Cursor{Y: 20}, cur)
}

func TestEnsureSpace_BreaksWhenFull(t *testing.T) {
	g := testGeometry()
	cur, broke := g.EnsureSpace(Cursor{Page: 2, Y: 50}, 45)
	assert.True(t, broke)
	assert.Equal(t, Cursor{Page: 3, Y: 10}, cur)
}

func TestEnsureSpace_EmptyPageNeverBreaks(t *testing.T) {
	g := testGeometry()
	cur, broke := g.EnsureSpace(g.Start(), 500)
	assert.False(t, broke)
	assert.Equal(t, g.Start(), cur)
}

func TestCompose_PageBreaks(t *testing.T) {
	g := testGeometry()
	pages := Compose(g, MonoMeasurer{}, []Block{Spacer(30), Spacer(30), Spacer(30)})
	require.Len(t, pages, 2)
	require.Len(t, pages[0].Placements, 2)
	require.Len(t, pages[1].Placements, 1)
	assert.Equal(t, 10.0, pages[0].Placements[0].Rect.Y)
	assert.Equal(t, 40.0, pages[0].Placements[1].Rect.Y)
	assert.Equal(t, 10.0, pages[1].Placements[0].Rect.Y)
}

func TestCompose_OverTallBlockIsPlacedAndFlagged(t *testing.T) {
	g := testGeometry()
	pages := Compose(g, MonoMeasurer{}, []Block{Spacer(20), Spacer(120), Spacer(10)})
	require.Len(t, pages, 3)
	assert.False(t, pages[0].Placements[0].Clipped)
	big := pages[1].Placements[0]
	assert.Equal(t, 10.0, big.Rect.Y)
	assert.True(t, big.Clipped)
	assert.Len(t, pages[2].Placements, 1)
}

func TestCompose_Deterministic(t *testing.T) {
	g := DefaultGeometry()
	m := MonoMeasurer{Advance: 0.55}
	blocks := []Block{
		&TableBlock{Title: "A", Rows: []TableRow{{Label: "x", Value: "1"}}},
		&NoteBlock{Title: "B", Notes: []string{strings.Repeat("word ", 400)}},
		Spacer(300),
	}
	a := Compose(g, m, blocks)
	b := Compose(g, m, blocks)
	assert.Equal(t, a, b)
}

func TestCompose_NoBlocks(t *testing.T) {
	pages := Compose(DefaultGeometry(), MonoMeasurer{}, nil)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Placements)
}

func TestGeometryFor(t *testing.T) {
	g, err := GeometryFor("letter")
	require.NoError(t, err)
	assert.Equal(t, float64(LetterWidth), g.Width)
	assert.NoError(t, g.Validate())

	_, err = GeometryFor("A3")
	assert.Error(t, err)
}

func TestGeometry_Validate(t *testing.T) {
	g := DefaultGeometry()
	g.HeaderHeight = g.Height
	assert.Error(t, g.Validate())
}
