// Package raster draws report pages into an RGBA image and streams the page
// images into a PDF, one page at a time.
package raster

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

var (
	parseOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	parseErr    error
)

func parsedFonts() (*opentype.Font, *opentype.Font, error) {
	parseOnce.Do(func() {
		regularFont, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			return
		}
		boldFont, parseErr = opentype.Parse(gobold.TTF)
	})
	return regularFont, boldFont, parseErr
}

// Fonts holds the faces used by one export at one resolution. Faces are not
// safe for concurrent use; every export owns its own Fonts.
type Fonts struct {
	dpi     float64
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[layout.Font]font.Face
}

// NewFonts returns the Go regular/bold families at dpi.
func NewFonts(dpi float64) (*Fonts, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %v", dpi)
	}
	reg, bold, err := parsedFonts()
	if err != nil {
		return nil, fmt.Errorf("parse fonts: %w", err)
	}
	return &Fonts{dpi: dpi, regular: reg, bold: bold, faces: make(map[layout.Font]font.Face)}, nil
}

// DPI is the resolution faces are built at.
func (f *Fonts) DPI() float64 { return f.dpi }

// Face returns the cached face for lf, building it on first use.
func (f *Fonts) Face(lf layout.Font) (font.Face, error) {
	if face, ok := f.faces[lf]; ok {
		return face, nil
	}
	src := f.regular
	if lf.Bold {
		src = f.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    lf.Size,
		DPI:     f.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %.1fpt: %w", lf.Size, err)
	}
	f.faces[lf] = face
	return face, nil
}

// TextWidth implements layout.Measurer in points.
func (f *Fonts) TextWidth(s string, lf layout.Font) float64 {
	face, err := f.Face(lf)
	if err != nil {
		return layout.MonoMeasurer{}.TextWidth(s, lf)
	}
	px := float64(font.MeasureString(face, s)) / 64
	return px * 72 / f.dpi
}

// Close releases all faces.
func (f *Fonts) Close() error {
	var first error
	for k, face := range f.faces {
		if err := face.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.faces, k)
	}
	return first
}
