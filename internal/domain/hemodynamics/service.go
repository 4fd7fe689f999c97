package hemodynamics

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/raster"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
)

// ReportConfig collects the settings that shape an export.
type ReportConfig struct {
	AppName       string
	Geometry      layout.Geometry
	Labels        report.Labels
	Groups        *GroupCatalog
	Raster        raster.Options
	OutputDir     string
	MaxConcurrent int64
}

// DefaultReportConfig is an A4 PNG export at 150 dpi.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		AppName:       "GIPOGO RHC Tools",
		Geometry:      layout.DefaultGeometry(),
		Labels:        report.DefaultLabels(),
		Groups:        DefaultGroups(),
		Raster:        raster.DefaultOptions(),
		OutputDir:     os.TempDir(),
		MaxConcurrent: 2,
	}
}

type Service struct {
	subjects  SubjectRepository
	snapshots SnapshotRepository
	cfg       ReportConfig
	sem       *semaphore.Weighted
	logger    zerolog.Logger
	now       func() time.Time
	observer  raster.Observer
}

func NewService(subjects SubjectRepository, snapshots SnapshotRepository, cfg ReportConfig, logger zerolog.Logger) *Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Groups == nil {
		cfg.Groups = DefaultGroups()
	}
	return &Service{
		subjects:  subjects,
		snapshots: snapshots,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:    logger.With().Str("component", "report").Logger(),
		now:       time.Now,
	}
}

// SetClock replaces the generation timestamp source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetObserver installs a raster observer on every export.
func (s *Service) SetObserver(o raster.Observer) { s.observer = o }

func (s *Service) CreateSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.SubjectID == uuid.Nil {
		return fmt.Errorf("subject_id is required")
	}
	if snap.TakenAt.IsZero() {
		return fmt.Errorf("taken_at is required")
	}
	for _, m := range Catalog {
		if v := m.Raw(snap); v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%s must be a finite number", m.Key)
		}
	}
	if _, err := s.subjects.GetByID(ctx, snap.SubjectID); err != nil {
		return err
	}
	return s.snapshots.Create(ctx, snap)
}

func (s *Service) ListSnapshots(ctx context.Context, subjectID uuid.UUID, limit, offset int) ([]*Snapshot, int, error) {
	return s.snapshots.ListBySubject(ctx, subjectID, limit, offset)
}

// BuildDocument lays out the report for one subject, measuring text with the
// same fonts the exporter renders with.
func (s *Service) BuildDocument(ctx context.Context, subjectID uuid.UUID) (*report.Document, error) {
	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	snaps, err := s.snapshots.AllBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, ErrNoRecords
	}

	fonts, err := raster.NewFonts(s.cfg.Raster.DPI)
	if err != nil {
		return nil, err
	}
	defer fonts.Close()

	b := NewDocumentBuilder(s.cfg.AppName, fonts)
	b.Geometry = s.cfg.Geometry
	b.Labels = s.cfg.Labels
	b.Groups = s.cfg.Groups
	b.Now = s.now
	b.Logger = s.logger.With().Str("subject_id", subjectID.String()).Logger()
	return b.Build(subject, snaps)
}

func (s *Service) Outline(ctx context.Context, subjectID uuid.UUID) ([]report.OutlineEntry, error) {
	doc, err := s.BuildDocument(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return doc.Outline(), nil
}

// Export writes the subject's report PDF to w. At most MaxConcurrent exports
// run at once; callers beyond that wait or give up with ctx.
func (s *Service) Export(ctx context.Context, subjectID uuid.UUID, w io.Writer) (raster.Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return raster.Result{}, err
	}
	defer s.sem.Release(1)

	start := time.Now()
	doc, err := s.BuildDocument(ctx, subjectID)
	if err != nil {
		return raster.Result{}, err
	}
	log := s.logger.With().Str("subject_id", subjectID.String()).Logger()
	log.Info().
		Int("snapshots", doc.Header.Snapshots).
		Int("pages", len(doc.Pages)).
		Msg("export started")

	exp := raster.NewExporter(s.cfg.Raster, log).WithObserver(s.observer)
	res, err := exp.Export(ctx, doc, w)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return raster.Result{}, err
	}
	log.Info().
		Int("pages", res.Pages).
		Int64("bytes", res.Bytes).
		Dur("duration", time.Since(start)).
		Msg("export finished")
	return res, nil
}

// ExportFile exports to path. The PDF is written to a temporary file in the
// same directory and renamed into place only when the export succeeds.
func (s *Service) ExportFile(ctx context.Context, subjectID uuid.UUID, path string) (raster.Result, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*.pdf.tmp")
	if err != nil {
		return raster.Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	res, err := s.Export(ctx, subjectID, tmp)
	if err != nil {
		return raster.Result{}, err
	}
	if err := tmp.Close(); err != nil {
		return raster.Result{}, fmt.Errorf("%w: close: %w", raster.ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return raster.Result{}, fmt.Errorf("%w: commit: %w", raster.ErrWrite, err)
	}
	committed = true
	return res, nil
}

// ExportToOutputDir exports into the configured output directory under a
// unique name derived from the subject and the current time, and returns the
// path.
func (s *Service) ExportToOutputDir(ctx context.Context, subjectID uuid.UUID) (string, raster.Result, error) {
	name := fmt.Sprintf("rhc-report-%s-%s-%s.pdf", subjectID, s.now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(s.cfg.OutputDir, name)
	res, err := s.ExportFile(ctx, subjectID, path)
	if err != nil {
		return "", raster.Result{}, err
	}
	return path, res, nil
}
