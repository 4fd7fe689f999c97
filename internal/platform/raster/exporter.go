package raster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
)

var (
	ErrRender = errors.New("render page")
	ErrWrite  = errors.New("write page")
)

// PageRenderer draws one physical page onto a canvas.
type PageRenderer interface {
	Render(c layout.Canvas, h report.Header, p report.Page) error
}

// Observer is notified when the page raster is taken by the renderer and
// when the writer hands it back.
type Observer interface {
	RasterAcquired(page int)
	RasterReleased(page int)
}

type nopObserver struct{}

func (nopObserver) RasterAcquired(int) {}
func (nopObserver) RasterReleased(int) {}

// Options configures the page rasters and their encoding.
type Options struct {
	DPI         float64
	Format      ImageFormat
	JPEGQuality int
	Creator     string
}

// DefaultOptions renders at 150 dpi and embeds PNG.
func DefaultOptions() Options {
	return Options{DPI: 150, Format: FormatPNG, JPEGQuality: 88}
}

// Result summarizes a finished export.
type Result struct {
	Pages int
	Bytes int64
}

// Exporter turns a numbered document into a PDF. Rendering and writing run
// on two goroutines that pass a single reused raster back and forth: page
// n+1 is not drawn until the writer has consumed page n.
type Exporter struct {
	opts     Options
	renderer func(*report.Document) PageRenderer
	observer Observer
	logger   zerolog.Logger
}

// NewExporter returns an exporter that draws pages with report.Renderer.
func NewExporter(opts Options, logger zerolog.Logger) *Exporter {
	return &Exporter{
		opts:     opts,
		renderer: func(d *report.Document) PageRenderer { return report.NewRenderer(d) },
		observer: nopObserver{},
		logger:   logger,
	}
}

// WithObserver sets the raster observer.
func (e *Exporter) WithObserver(o Observer) *Exporter {
	if o == nil {
		o = nopObserver{}
	}
	e.observer = o
	return e
}

// WithRenderer replaces the page renderer.
func (e *Exporter) WithRenderer(r PageRenderer) *Exporter {
	e.renderer = func(*report.Document) PageRenderer { return r }
	return e
}

// Export renders every page of doc and writes the PDF to w. Cancellation is
// observed between pages. The first render or write failure aborts the
// export; nothing is written to w in that case.
func (e *Exporter) Export(ctx context.Context, doc *report.Document, w io.Writer) (Result, error) {
	start := time.Now()
	fonts, err := NewFonts(e.opts.DPI)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer fonts.Close()

	canvas, err := NewCanvas(doc.Geometry, fonts)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRender, err)
	}
	pdf := NewPDFWriter(doc.Geometry, e.opts.Format, e.opts.JPEGQuality, Metadata{
		Title:   fmt.Sprintf("%s: %s", doc.Header.AppName, doc.Header.SubjectName),
		Author:  doc.Header.AppName,
		Creator: e.opts.Creator,
		Created: doc.Header.GeneratedAt,
	})
	renderer := e.renderer(doc)

	handoff := make(chan int)
	release := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(handoff)
		for i := range doc.Pages {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := e.renderPage(renderer, canvas, doc, i); err != nil {
				return err
			}
			select {
			case handoff <- i:
			case <-gctx.Done():
				e.observer.RasterReleased(i)
				return gctx.Err()
			}
			select {
			case <-release:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for i := range handoff {
			err := pdf.AddPage(canvas.Image())
			e.observer.RasterReleased(i)
			if err != nil {
				return fmt.Errorf("%w %d: %w", ErrWrite, i+1, err)
			}
			e.logger.Debug().Int("page", i+1).Int("total", len(doc.Pages)).Msg("page written")
			select {
			case release <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	n, err := pdf.Output(w)
	if err != nil {
		return Result{}, fmt.Errorf("%w: output: %w", ErrWrite, err)
	}
	res := Result{Pages: pdf.Pages(), Bytes: n}
	e.logger.Info().
		Int("pages", res.Pages).
		Int64("bytes", res.Bytes).
		Dur("duration", time.Since(start)).
		Msg("pdf exported")
	return res, nil
}

func (e *Exporter) renderPage(r PageRenderer, c *Canvas, doc *report.Document, i int) (err error) {
	e.observer.RasterAcquired(i)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			e.observer.RasterReleased(i)
			err = fmt.Errorf("%w %d: %w", ErrRender, i+1, err)
		}
	}()
	c.Reset()
	return r.Render(c, doc.Header, doc.Pages[i])
}
