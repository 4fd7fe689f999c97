package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
)

// ImageFormat selects how page rasters are embedded.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// ParseImageFormat accepts "png", "jpeg" or "jpg".
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

func (f ImageFormat) pdfType() string {
	if f == FormatJPEG {
		return "JPG"
	}
	return "PNG"
}

// Metadata is written into the PDF information dictionary.
type Metadata struct {
	Title   string
	Author  string
	Creator string
	Created time.Time
}

// PDFWriter appends page rasters to a PDF document, one full-bleed image
// per page.
type PDFWriter struct {
	pdf     *fpdf.Fpdf
	geom    layout.Geometry
	format  ImageFormat
	quality int
	enc     png.Encoder
	buf     bytes.Buffer
	pages   int
}

// NewPDFWriter starts an empty document sized to g.
func NewPDFWriter(g layout.Geometry, format ImageFormat, jpegQuality int, meta Metadata) *PDFWriter {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
		pdf.SetModificationDate(meta.Created)
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &PDFWriter{
		pdf:     pdf,
		geom:    g,
		format:  format,
		quality: jpegQuality,
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// AddPage encodes img and appends it as the next page. The image may be
// reused by the caller as soon as AddPage returns.
func (w *PDFWriter) AddPage(img image.Image) error {
	w.buf.Reset()
	var err error
	switch w.format {
	case FormatJPEG:
		err = jpeg.Encode(&w.buf, img, &jpeg.Options{Quality: w.quality})
	default:
		err = w.enc.Encode(&w.buf, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", w.format, err)
	}

	name := fmt.Sprintf("page-%04d", w.pages+1)
	opts := fpdf.ImageOptions{ImageType: w.format.pdfType()}
	w.pdf.AddPage()
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(w.buf.Bytes()))
	w.pdf.ImageOptions(name, 0, 0, w.geom.Width, w.geom.Height, false, opts, 0, "")
	if err := w.pdf.Error(); err != nil {
		return err
	}
	w.pages++
	return nil
}

// Pages is the number of pages appended so far.
func (w *PDFWriter) Pages() int { return w.pages }

// Output finalizes the document and writes it to out.
func (w *PDFWriter) Output(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	if err := w.pdf.Output(cw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
