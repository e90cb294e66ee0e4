package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"healthplots/internal/config"
	apperrors "healthplots/internal/errors"
	"healthplots/internal/pipeline"
	"healthplots/internal/validation"
)

// PlotInfo describes one rendered chart.
type PlotInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	URL      string    `json:"url"`
}

// ResultsService gives read-only access to the outputs of the last run.
type ResultsService struct {
	paths     *config.Paths
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewResultsService creates a results service over paths.
func NewResultsService(paths *config.Paths, logger *slog.Logger) *ResultsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsService{
		paths:     paths,
		validator: validation.NewFileValidator(logger),
		logger:    logger.With(slog.String("service", "results")),
	}
}

// Summary returns the summary of the last run.
func (s *ResultsService) Summary(ctx context.Context) (*pipeline.RunSummary, error) {
	summary, err := pipeline.ReadSummary(s.paths.SummaryJSON)
	if err != nil {
		s.logger.DebugContext(ctx, "Run summary unavailable",
			slog.String("path", s.paths.SummaryJSON),
			slog.String("error", err.Error()))
		return nil, err
	}
	return summary, nil
}

// Plots lists the PNG files of the plots directory, sorted by name. A
// missing directory yields an empty list.
func (s *ResultsService) Plots(ctx context.Context) ([]PlotInfo, error) {
	files, err := s.validator.ListFiles(s.paths.PlotsDir, "*.png")
	if err != nil {
		return nil, err
	}

	plots := make([]PlotInfo, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		name := filepath.Base(f)
		plots = append(plots, PlotInfo{
			Name:     name,
			Size:     info.Size(),
			Modified: info.ModTime(),
			URL:      "/api/plots/" + name,
		})
	}
	s.logger.DebugContext(ctx, "Plots listed", slog.Int("count", len(plots)))
	return plots, nil
}

// PlotPath resolves a chart name to its file. Names must be bare PNG file
// names; anything that could leave the plots directory is rejected.
func (s *ResultsService) PlotPath(ctx context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) || !strings.EqualFold(filepath.Ext(name), ".png") {
		return "", apperrors.NewAppValidationError(fmt.Sprintf("invalid plot name %q", name))
	}

	path := filepath.Join(s.paths.PlotsDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("plot %s", name))
	}
	return path, nil
}
