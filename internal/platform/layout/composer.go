package layout

// Cursor is the composer's layout state: the zero-based physical page being
// filled and the next free y coordinate on it.
type Cursor struct {
	Page int
	Y    float64
}

// Start returns the cursor at the top of the first page's content area.
func (g Geometry) Start() Cursor {
	return Cursor{Page: 0, Y: g.ContentTop()}
}

// EnsureSpace reports whether a block of height h fits below cur. When it
// does not and the current page already holds content, the result is a
// cursor at the top of a fresh page and true: finalizing the current page
// and starting the next is a single transition. A block that is taller than
// an empty page stays where it is; the caller places it as-is.
func (g Geometry) EnsureSpace(cur Cursor, h float64) (Cursor, bool) {
	if cur.Y+h <= g.ContentBottom() {
		return cur, false
	}
	if cur.Y <= g.ContentTop() {
		return cur, false
	}
	return Cursor{Page: cur.Page + 1, Y: g.ContentTop()}, true
}

// Placement records where a block was put on a page.
type Placement struct {
	Block   Block
	Rect    Rect
	Clipped bool // the block runs past the printable area
}

// PageLayout is the ordered list of placements on one physical page.
type PageLayout struct {
	Placements []Placement
}

// Composer places blocks top to bottom across as many pages as needed.
type Composer struct {
	geom   Geometry
	m      Measurer
	cursor Cursor
	pages  []PageLayout
}

// NewComposer returns a composer positioned at the top of an empty first
// page.
func NewComposer(g Geometry, m Measurer) *Composer {
	return &Composer{
		geom:   g,
		m:      m,
		cursor: g.Start(),
		pages:  []PageLayout{{}},
	}
}

// PlaceBlock measures b, breaks the page if it does not fit, records its
// placement and advances the cursor by its height plus the block gap.
func (c *Composer) PlaceBlock(b Block) Placement {
	width := c.geom.ContentWidth()
	h := b.Measure(c.m, width)

	next, broke := c.geom.EnsureSpace(c.cursor, h)
	if broke {
		c.pages = append(c.pages, PageLayout{})
	}
	c.cursor = next

	p := Placement{
		Block:   b,
		Rect:    Rect{X: c.geom.MarginLeft, Y: c.cursor.Y, W: width, H: h},
		Clipped: c.cursor.Y+h > c.geom.ContentBottom(),
	}
	page := &c.pages[c.cursor.Page]
	page.Placements = append(page.Placements, p)
	c.cursor.Y += h + c.geom.BlockGap
	return p
}

// Cursor returns the current layout state.
func (c *Composer) Cursor() Cursor { return c.cursor }

// Pages returns the physical pages composed so far. The last page may be
// empty only when no block was placed at all.
func (c *Composer) Pages() []PageLayout { return c.pages }

// Compose places blocks in order and returns the resulting pages.
func Compose(g Geometry, m Measurer, blocks []Block) []PageLayout {
	c := NewComposer(g, m)
	for _, b := range blocks {
		c.PlaceBlock(b)
	}
	return c.Pages()
}
