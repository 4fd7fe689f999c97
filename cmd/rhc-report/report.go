package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/config"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/domain/hemodynamics"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/layout"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/raster"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON to out, or console output in development.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// reportConfig translates environment settings into export settings.
func reportConfig(cfg *config.Config) (hemodynamics.ReportConfig, error) {
	rc := hemodynamics.DefaultReportConfig()
	rc.AppName = cfg.AppName

	g, err := layout.GeometryFor(cfg.ReportPageSize)
	if err != nil {
		return rc, err
	}
	rc.Geometry = g

	format, err := raster.ParseImageFormat(cfg.ReportImageFormat)
	if err != nil {
		return rc, err
	}
	rc.Raster.Format = format
	rc.Raster.DPI = float64(cfg.ReportDPI)
	rc.Raster.JPEGQuality = cfg.ReportJPEGQuality
	rc.Raster.Creator = fmt.Sprintf("rhc-report %s", version)

	rc.Labels.NotAvailable = cfg.ReportNotAvailable

	groups, err := hemodynamics.LoadGroups(cfg.ReportChartGroupsFile)
	if err != nil {
		return rc, err
	}
	rc.Groups = groups

	if cfg.ReportOutputDir != "" {
		rc.OutputDir = cfg.ReportOutputDir
	}
	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return rc, fmt.Errorf("create report output dir: %w", err)
	}
	rc.MaxConcurrent = cfg.ReportMaxConcurrent
	return rc, nil
}
