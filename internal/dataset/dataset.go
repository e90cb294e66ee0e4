package dataset

import (
	"context"
	"log/slog"

	"healthplots/internal/validation"
	"healthplots/pkg/contracts/domain"
)

// Dataset is the cleaned and validated patient dataset plus the row
// accounting of each step.
type Dataset struct {
	Path        string
	Records     []domain.PatientRecord
	RowsRead    int
	RowsCleaned int
	Report      Report
}

// Empty reports whether no record survived.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// Loader runs load, clean and validate with logging.
type Loader struct {
	logger    *slog.Logger
	files     *validation.FileValidator
	validator *RecordValidator
}

// NewLoader creates a Loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset"))
	return &Loader{
		logger:    logger,
		files:     validation.NewFileValidator(logger),
		validator: NewRecordValidator(),
	}
}

// LoadDataset reads path, cleans the rows and drops invalid records. The
// path must name a readable CSV or XLSX file. An empty file yields an empty
// Dataset, not an error.
func (l *Loader) LoadDataset(ctx context.Context, path string) (*Dataset, error) {
	if err := l.files.ValidateDatasetFile(path); err != nil {
		return nil, err
	}

	res, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Path: path, RowsRead: len(res.Rows)}
	if res.Empty() {
		l.logger.WarnContext(ctx, "Dataset is empty", slog.String("path", path))
		return ds, nil
	}
	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("path", path),
		slog.Int("rows", ds.RowsRead),
		slog.Int("columns", len(res.Header)))

	cleaned := Clean(res.Rows)
	ds.RowsCleaned = len(cleaned)
	l.logger.InfoContext(ctx, "Initial cleaning completed",
		slog.Int("rows", ds.RowsCleaned),
		slog.Int("dropped_missing", ds.RowsRead-ds.RowsCleaned))
	if len(cleaned) > 0 {
		l.logger.DebugContext(ctx, "First cleaned record", slog.Any("record", cleaned[0]))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	valid, report, err := l.validator.Validate(cleaned)
	if err != nil {
		return nil, err
	}
	ds.Records = valid
	ds.Report = report
	l.logger.InfoContext(ctx, "Validation completed",
		slog.Int("rows", report.Valid),
		slog.Int("dropped", report.Dropped),
		slog.Any("failures", report.Failures))

	return ds, nil
}
