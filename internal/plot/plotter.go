package plot

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"healthplots/internal/config"
	"healthplots/internal/dataset"
)

// Recorder observes finished chart jobs. internal/metrics implements it.
type Recorder interface {
	ObserveChart(name string, duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveChart(string, time.Duration, error) {}

// Plotter renders the chart set into a single output directory.
type Plotter struct {
	dir      string
	width    int
	height   int
	bins     int
	workers  int
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Plotter.
type Option func(*Plotter)

// WithLogger sets the logger used for chart progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plotter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder attaches a chart metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Plotter) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPlotter creates a Plotter writing PNG files below dir.
func NewPlotter(dir string, cfg config.PlotConfig, opts ...Option) *Plotter {
	p := &Plotter{
		dir:      dir,
		width:    cfg.Width,
		height:   cfg.Height,
		bins:     cfg.HistogramBins,
		workers:  cfg.Workers,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	if p.width <= 0 {
		p.width = config.DefaultPlotWidth
	}
	if p.height <= 0 {
		p.height = config.DefaultPlotHeight
	}
	if p.bins <= 0 {
		p.bins = config.DefaultHistogramBins
	}
	if p.workers <= 0 {
		p.workers = config.DefaultPlotWorkers
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "plot"))
	return p
}

// Dir returns the output directory.
func (p *Plotter) Dir() string {
	return p.dir
}

func (p *Plotter) path(filename string) string {
	return filepath.Join(p.dir, filename)
}

// observe logs and records the outcome of one chart.
func (p *Plotter) observe(filename string, start time.Time, err error) {
	d := time.Since(start)
	p.recorder.ObserveChart(filename, d, err)
	if err != nil {
		p.logger.Error("Chart failed",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		return
	}
	p.logger.Info("Chart saved",
		slog.String("file", p.path(filename)),
		slog.Duration("duration", d))
}

// Label turns a column name into a display label: "age_group" becomes
// "Age Group".
func Label(column string) string {
	return dataset.TitleCase(strings.ReplaceAll(column, "_", " "))
}

// DistributionFile names the histogram output for column.
func DistributionFile(column string) string {
	return fmt.Sprintf("%s_distribution.png", column)
}

// RelationshipsFile names the count-plot grid output for base.
func RelationshipsFile(base string) string {
	return fmt.Sprintf("%s_relationships.png", base)
}

// SingleRelationshipFile names the single count-plot output.
func SingleRelationshipFile(field, hue string) string {
	return fmt.Sprintf("%s_vs_%s.png", field, hue)
}
