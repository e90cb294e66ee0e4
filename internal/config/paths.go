package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "healthplots/internal/errors"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	WorkingDir string
	InputFile  string
	PlotsDir   string
	ReportsDir string
	LogsDir    string

	// Well-known report files
	SummaryJSON string
	CleanCSV    string
	Workbook    string
	DescribeCSV string
	MetricsFile string
	TraceFile   string
}

// GetPaths resolves the configured paths to absolute paths under the
// current working directory.
func GetPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePaths(wd, cfg), nil
}

// ResolvePaths resolves the configured paths against base.
func ResolvePaths(base string, cfg *Config) *Paths {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	reportsDir := abs(cfg.Paths.ReportsDir)
	inReports := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(reportsDir, p)
	}

	return &Paths{
		WorkingDir: base,
		InputFile:  abs(cfg.Paths.InputFile),
		PlotsDir:   abs(cfg.Paths.PlotsDir),
		ReportsDir: reportsDir,
		LogsDir:    abs(cfg.Paths.LogsDir),

		SummaryJSON: filepath.Join(reportsDir, SummaryFileName),
		CleanCSV:    filepath.Join(reportsDir, CleanCSVFileName),
		Workbook:    filepath.Join(reportsDir, WorkbookFileName),
		DescribeCSV: filepath.Join(reportsDir, DescribeFileName),
		MetricsFile: inReports(cfg.Telemetry.MetricsFile, "metrics.prom"),
		TraceFile:   inReports(cfg.Telemetry.TraceFile, TraceFileName),
	}
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.PlotsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("plots", p.PlotsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("input", p.InputFile),
			slog.String("summary", p.SummaryJSON),
			slog.String("clean_csv", p.CleanCSV),
			slog.String("workbook", p.Workbook),
			slog.String("metrics", p.MetricsFile),
		))
}
