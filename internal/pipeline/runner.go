package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"healthplots/internal/config"
	"healthplots/internal/dataset"
	apperrors "healthplots/internal/errors"
	"healthplots/internal/exporter"
	"healthplots/internal/frame"
	"healthplots/internal/infrastructure"
	"healthplots/internal/metrics"
	"healthplots/internal/plot"
	"healthplots/internal/validation"
	"healthplots/pkg/contracts/domain"
)

// Profile selects the dataset layout and chart set of a run.
type Profile string

const (
	ProfileHealthcare Profile = "healthcare"
	ProfileVehicles   Profile = "vehicles"
)

// ParseProfile validates a profile name.
func ParseProfile(name string) (Profile, error) {
	switch p := Profile(name); p {
	case ProfileHealthcare, ProfileVehicles:
		return p, nil
	case "":
		return ProfileHealthcare, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unknown profile %q", name))
	}
}

// Stage names, also used as span names.
const (
	StageLoad     = "load"
	StageDescribe = "describe"
	StagePlot     = "plot"
	StageExport   = "export"
)

// EmptyDatasetMessage is logged when no record survives loading.
const EmptyDatasetMessage = "The Dataset is empty. Please check the file."

// categoryColumns get a value-count sheet in the workbook.
var categoryColumns = []string{
	domain.ColGender,
	domain.ColBloodType,
	domain.ColMedicalCondition,
	domain.ColAgeGroup,
	domain.ColLengthStayGroup,
	domain.ColBillingCategory,
	domain.ColAdmissionType,
	domain.ColTestResults,
}

// Runner executes one batch run: load, describe, plot, export.
type Runner struct {
	cfg      *config.Config
	paths    *config.Paths
	profile  Profile
	logger   *slog.Logger
	metrics  *metrics.Metrics
	otel     *infrastructure.OTelProviders
	loader   *dataset.Loader
	plotter  *plot.Plotter
	exporter *exporter.Exporter
	files    *validation.FileValidator
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records run, dataset and chart metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTelemetry wraps every stage in a span from p.
func WithTelemetry(p *infrastructure.OTelProviders) Option {
	return func(r *Runner) { r.otel = p }
}

// WithProfile selects the healthcare or vehicles run.
func WithProfile(p Profile) Option {
	return func(r *Runner) { r.profile = p }
}

// NewRunner wires the run components from cfg and resolved paths.
func NewRunner(cfg *config.Config, paths *config.Paths, opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:     cfg,
		paths:   paths,
		profile: ProfileHealthcare,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = infrastructure.WithComponent(r.logger, "pipeline")

	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}
	if r.otel == nil {
		p, err := infrastructure.InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, "", nil, r.logger)
		if err != nil {
			return nil, err
		}
		r.otel = p
	}

	r.loader = dataset.NewLoader(r.logger)
	r.plotter = plot.NewPlotter(paths.PlotsDir, cfg.Plot,
		plot.WithLogger(r.logger),
		plot.WithRecorder(r.metrics))
	r.exporter = exporter.NewExporter(paths, r.logger)
	r.files = validation.NewFileValidator(r.logger)
	return r, nil
}

// Run executes the stages for the configured profile. The summary is
// returned and written to the reports directory even when a stage fails.
// An empty dataset ends the run early without an error.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := r.now()
	summary := newRunSummary(uuid.NewString(), infrastructure.GetTraceID(ctx), r.profile, r.paths.InputFile, start)

	logger := r.logger.With(
		slog.String("run_id", summary.RunID),
		slog.String("profile", string(r.profile)))
	logger.InfoContext(ctx, "Pipeline started", slog.String("input", r.paths.InputFile))

	var err error
	switch r.profile {
	case ProfileVehicles:
		err = r.runVehicles(ctx, summary)
	default:
		err = r.runHealthcare(ctx, summary)
	}

	summary.finish(r.now(), err)
	r.metrics.ObserveRun(summary.EndTime.Sub(start), err)

	if werr := summary.WriteFile(r.paths.SummaryJSON); werr != nil {
		logger.ErrorContext(ctx, "Failed to write run summary", slog.String("error", werr.Error()))
	}
	if r.cfg.Telemetry.EnableMetrics {
		if werr := r.metrics.WriteTextfile(r.paths.MetricsFile); werr != nil {
			logger.ErrorContext(ctx, "Failed to write metrics", slog.String("error", werr.Error()))
		}
	}

	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Pipeline failed",
			slog.String("duration", summary.Duration))
		return summary, err
	}
	logger.InfoContext(ctx, "Pipeline finished",
		slog.String("status", summary.Status),
		slog.Int("plots", len(summary.Plots)),
		slog.String("duration", summary.Duration))
	return summary, nil
}

// stage runs fn inside a span and records it on the summary.
func (r *Runner) stage(ctx context.Context, summary *RunSummary, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := r.now()
	sctx, end := r.otel.StartStage(ctx, name)
	err := fn(sctx)
	end(err)
	summary.recordStage(name, start, r.now(), err)
	return err
}

func (r *Runner) runHealthcare(ctx context.Context, summary *RunSummary) error {
	var ds *dataset.Dataset
	err := r.stage(ctx, summary, StageLoad, func(ctx context.Context) error {
		var err error
		ds, err = r.loader.LoadDataset(ctx, r.paths.InputFile)
		if err != nil {
			return err
		}
		summary.RowsRead = ds.RowsRead
		summary.RowsCleaned = ds.RowsCleaned
		summary.RowsValid = len(ds.Records)
		summary.Dropped = ds.Report.Failures
		r.metrics.ObserveDataset(ds.RowsRead, ds.RowsCleaned, len(ds.Records), ds.Report.Failures)
		infrastructure.AddSpanEvent(ctx, "dataset loaded",
			attribute.Int("rows_read", ds.RowsRead),
			attribute.Int("rows_valid", len(ds.Records)))
		return nil
	})
	if err != nil {
		return err
	}

	if ds.Empty() {
		r.logger.WarnContext(ctx, EmptyDatasetMessage, slog.String("input", r.paths.InputFile))
		summary.Status = StatusEmpty
		return nil
	}

	df := frame.FromRecords(ds.Records)
	if err := r.describe(ctx, summary, df); err != nil {
		return err
	}
	if err := r.plot(ctx, summary, func(ctx context.Context) ([]string, error) {
		return r.plotter.ExecutePlots(ctx, df)
	}); err != nil {
		return err
	}

	return r.stage(ctx, summary, StageExport, func(ctx context.Context) error {
		if err := r.exporter.WriteCleanCSV(r.paths.CleanCSV, ds.Records); err != nil {
			return err
		}
		summary.addReports(r.paths.CleanCSV)

		sheets := make([]exporter.CountSheet, 0, len(categoryColumns))
		for _, col := range categoryColumns {
			counts, err := frame.ValueCounts(df, col)
			if err != nil {
				return err
			}
			sheets = append(sheets, exporter.CountSheet{Column: col, Counts: counts})
		}
		if err := r.exporter.WriteWorkbook(r.paths.Workbook, ds.Records, sheets); err != nil {
			return err
		}
		summary.addReports(r.paths.Workbook)
		return nil
	})
}

func (r *Runner) runVehicles(ctx context.Context, summary *RunSummary) error {
	var df dataframe.DataFrame
	err := r.stage(ctx, summary, StageLoad, func(ctx context.Context) error {
		if err := r.files.ValidateFile(r.paths.InputFile); err != nil {
			return err
		}
		f, err := os.Open(r.paths.InputFile)
		if err != nil {
			return apperrors.NewStorageError("open input file", err)
		}
		defer f.Close()

		df, err = frame.ReadCSV(f)
		if err != nil {
			return err
		}
		summary.RowsRead = df.Nrow()
		summary.RowsCleaned = df.Nrow()
		summary.RowsValid = df.Nrow()
		r.metrics.ObserveDataset(df.Nrow(), df.Nrow(), df.Nrow(), nil)
		return nil
	})
	if err != nil {
		return err
	}

	if df.Nrow() == 0 {
		r.logger.WarnContext(ctx, EmptyDatasetMessage, slog.String("input", r.paths.InputFile))
		summary.Status = StatusEmpty
		return nil
	}

	if err := r.describe(ctx, summary, df); err != nil {
		return err
	}
	return r.plot(ctx, summary, func(ctx context.Context) ([]string, error) {
		return r.plotter.ExecuteVehiclePlots(ctx, df)
	})
}

func (r *Runner) describe(ctx context.Context, summary *RunSummary, df dataframe.DataFrame) error {
	return r.stage(ctx, summary, StageDescribe, func(ctx context.Context) error {
		r.logger.InfoContext(ctx, "Data Analysis",
			slog.Int("rows", df.Nrow()),
			slog.Int("columns", df.Ncol()),
			slog.Any("column_names", df.Names()))

		if err := r.files.ValidateOutputDirectory(r.paths.ReportsDir); err != nil {
			return err
		}
		if err := r.exporter.WriteDescribe(r.paths.DescribeCSV, frame.Describe(df)); err != nil {
			return err
		}
		summary.addReports(r.paths.DescribeCSV)
		return nil
	})
}

func (r *Runner) plot(ctx context.Context, summary *RunSummary, execute func(ctx context.Context) ([]string, error)) error {
	return r.stage(ctx, summary, StagePlot, func(ctx context.Context) error {
		if err := r.files.ValidateOutputDirectory(r.paths.PlotsDir); err != nil {
			return err
		}
		files, err := execute(ctx)
		summary.mu.Lock()
		summary.Plots = append(summary.Plots, files...)
		summary.mu.Unlock()
		return err
	})
}
