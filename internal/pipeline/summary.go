package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	apperrors "healthplots/internal/errors"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusEmpty     = "empty"
)

// RunSummary is the record of one pipeline run. It is written as JSON to
// the reports directory and served by the HTTP API.
type RunSummary struct {
	mu sync.Mutex

	RunID     string    `json:"run_id"`
	TraceID   string    `json:"trace_id"`
	Profile   Profile   `json:"profile"`
	Input     string    `json:"input"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`

	RowsRead    int            `json:"rows_read"`
	RowsCleaned int            `json:"rows_cleaned"`
	RowsValid   int            `json:"rows_valid"`
	Dropped     map[string]int `json:"dropped,omitempty"`

	Plots   []string         `json:"plots"`
	Reports []string         `json:"reports"`
	Stages  []StageExecution `json:"stages"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	Stage     string    `json:"stage"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

func newRunSummary(runID, traceID string, profile Profile, input string, start time.Time) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		TraceID:   traceID,
		Profile:   profile,
		Input:     input,
		StartTime: start,
		Status:    StatusRunning,
		Plots:     []string{},
		Reports:   []string{},
		Stages:    []StageExecution{},
	}
}

// recordStage appends a finished stage.
func (s *RunSummary) recordStage(stage string, start, end time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exec := StageExecution{
		Stage:     stage,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).String(),
		Status:    StatusCompleted,
	}
	if err != nil {
		exec.Status = StatusFailed
		exec.Error = err.Error()
	}
	s.Stages = append(s.Stages, exec)
}

func (s *RunSummary) addReports(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reports = append(s.Reports, paths...)
	sort.Strings(s.Reports)
}

// finish stamps the end of the run. A run already marked empty keeps that
// status.
func (s *RunSummary) finish(end time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.EndTime = end
	s.Duration = end.Sub(s.StartTime).String()
	switch {
	case err != nil:
		s.Status = StatusFailed
		s.Error = err.Error()
	case s.Status == StatusRunning:
		s.Status = StatusCompleted
	}
}

// WriteFile writes the summary as indented JSON.
func (s *RunSummary) WriteFile(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeParsing, "encode run summary", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create reports directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError("write run summary", err)
	}
	return nil
}

// ReadSummary loads a summary written by WriteFile.
func ReadSummary(path string) (*RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("run summary")
		}
		return nil, apperrors.NewStorageError("read run summary", err)
	}
	var s RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.NewParsingError("decode run summary", err)
	}
	return &s, nil
}
