package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

// Canvas is a layout.Canvas backed by a single RGBA image sized for one
// page. Strokes go through the go-chart raster graphic context; fills and
// text are drawn straight into the image.
type Canvas struct {
	*Fonts
	img   *image.RGBA
	gc    *drawing.RasterGraphicContext
	scale float64 // pixels per point
}

// NewCanvas allocates the page raster for g at the fonts' resolution.
func NewCanvas(g layout.Geometry, fonts *Fonts) (*Canvas, error) {
	scale := fonts.DPI() / 72
	w := int(math.Ceil(g.Width * scale))
	h := int(math.Ceil(g.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("graphic context: %w", err)
	}
	c := &Canvas{Fonts: fonts, img: img, gc: gc, scale: scale}
	c.Reset()
	return c, nil
}

// Image returns the backing raster. It is overwritten by the next Reset.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Reset paints the whole raster white.
func (c *Canvas) Reset() {
	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)
}

func (c *Canvas) px(v float64) float64 { return v * c.scale }

func (c *Canvas) pixelRect(r layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(c.px(r.Left()))), int(math.Round(c.px(r.Top()))),
		int(math.Round(c.px(r.Right()))), int(math.Round(c.px(r.Bottom()))),
	).Intersect(c.img.Bounds())
}

func (c *Canvas) FillRect(r layout.Rect, col color.Color) {
	draw.Draw(c.img, c.pixelRect(r), image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *Canvas) StrokeRect(r layout.Rect, col color.Color, width float64) {
	c.stroke(col, width, func() {
		c.gc.MoveTo(c.px(r.Left()), c.px(r.Top()))
		c.gc.LineTo(c.px(r.Right()), c.px(r.Top()))
		c.gc.LineTo(c.px(r.Right()), c.px(r.Bottom()))
		c.gc.LineTo(c.px(r.Left()), c.px(r.Bottom()))
		c.gc.Close()
	})
}

func (c *Canvas) Line(x1, y1, x2, y2 float64, col color.Color, width float64) {
	c.stroke(col, width, func() {
		c.gc.MoveTo(c.px(x1), c.px(y1))
		c.gc.LineTo(c.px(x2), c.px(y2))
	})
}

func (c *Canvas) stroke(col color.Color, width float64, path func()) {
	c.gc.BeginPath()
	c.gc.SetStrokeColor(col)
	c.gc.SetLineWidth(math.Max(c.px(width), 1))
	path()
	c.gc.Stroke()
}

// Text draws s with the top of its line box at y. The baseline sits so the
// glyphs are centered vertically within Font.LineHeight.
func (c *Canvas) Text(x, y float64, s string, lf layout.Font, col color.Color) {
	if s == "" {
		return
	}
	face, err := c.Face(lf)
	if err != nil {
		return
	}
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	baseline := c.px(y) + (c.px(lf.LineHeight())-ascent-descent)/2 + ascent

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(c.px(x) * 64), Y: fixed.Int26_6(baseline * 64)},
	}
	d.DrawString(s)
}
