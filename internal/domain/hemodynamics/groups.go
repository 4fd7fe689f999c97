package hemodynamics

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/chart"
	"github.com/GiovannyPonte/GIPOGORHCTools-sub001/internal/platform/report"
)

//go:embed groups.yaml
var defaultGroupsYAML []byte

const defaultChartHeight = 150

// ChartGroup is one trend chart: a title and the metrics plotted on it.
type ChartGroup struct {
	Title   string   `yaml:"title"`
	Metrics []string `yaml:"metrics"`
}

// GroupCatalog is the ordered list of trend charts.
type GroupCatalog struct {
	ChartHeight float64      `yaml:"chart_height"`
	Charts      []ChartGroup `yaml:"charts"`
}

// ParseGroups decodes and validates a YAML chart catalog.
func ParseGroups(data []byte) (*GroupCatalog, error) {
	var gc GroupCatalog
	if err := yaml.Unmarshal(data, &gc); err != nil {
		return nil, fmt.Errorf("parse chart groups: %w", err)
	}
	if gc.ChartHeight == 0 {
		gc.ChartHeight = defaultChartHeight
	}
	if err := gc.Validate(); err != nil {
		return nil, err
	}
	return &gc, nil
}

// Validate checks that every chart names at least one known metric.
func (gc *GroupCatalog) Validate() error {
	if gc.ChartHeight < 60 {
		return fmt.Errorf("chart_height must be at least 60, got %v", gc.ChartHeight)
	}
	if len(gc.Charts) == 0 {
		return fmt.Errorf("chart groups: no charts defined")
	}
	for i, g := range gc.Charts {
		if strings.TrimSpace(g.Title) == "" {
			return fmt.Errorf("chart %d: title is required", i+1)
		}
		if len(g.Metrics) == 0 {
			return fmt.Errorf("chart %q: no metrics", g.Title)
		}
		for _, k := range g.Metrics {
			if _, ok := MetricByKey(k); !ok {
				return fmt.Errorf("chart %q: unknown metric %q", g.Title, k)
			}
		}
	}
	return nil
}

// DefaultGroups returns the embedded chart catalog.
func DefaultGroups() *GroupCatalog {
	gc, err := ParseGroups(defaultGroupsYAML)
	if err != nil {
		panic(err)
	}
	return gc
}

// LoadGroups reads a chart catalog from path, or returns the embedded one
// when path is empty.
func LoadGroups(path string) (*GroupCatalog, error) {
	if path == "" {
		return DefaultGroups(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart groups: %w", err)
	}
	return ParseGroups(data)
}

// Charts builds one chart per group from snapshots sorted by time. Each
// series has exactly one point per snapshot, nil where the metric was not
// measured.
func (gc *GroupCatalog) Charts(snaps []*Snapshot) []chart.Chart {
	xLabels := make([]string, len(snaps))
	for i, s := range snaps {
		xLabels[i] = s.TakenAt.Format(report.DateLayout)
	}

	charts := make([]chart.Chart, 0, len(gc.Charts))
	for _, g := range gc.Charts {
		c := chart.Chart{Title: g.Title, XLabels: xLabels}
		units := map[string]bool{}
		for _, k := range g.Metrics {
			m, _ := MetricByKey(k)
			units[m.Unit] = true
			if m.Decimals > c.Decimals {
				c.Decimals = m.Decimals
			}
			pts := make([]*float64, len(snaps))
			for i, s := range snaps {
				pts[i] = m.Value(s)
			}
			c.Series = append(c.Series, chart.Series{Label: m.Short, Points: pts})
		}
		if len(units) == 1 {
			m, _ := MetricByKey(g.Metrics[0])
			c.Unit = m.Unit
		}
		charts = append(charts, c)
	}
	return charts
}
