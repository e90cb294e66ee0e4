package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"healthplots/internal/config"
	"healthplots/internal/infrastructure"
	"healthplots/internal/metrics"
	"healthplots/internal/pipeline"
)

type runOptions struct {
	input   string
	plots   string
	reports string
	profile string
	workers int
	json    bool
}

func runCmd(configFile *string) *cobra.Command {
	var opts runOptions

	c := &cobra.Command{
		Use:   "run",
		Short: "Load, clean and validate the dataset, then render the charts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := pipeline.ParseProfile(opts.profile)
			if err != nil {
				return err
			}
			cfg, paths, logger, err := setup(*configFile, opts.apply)
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			summary, err := runPipeline(cmd.Context(), cfg, paths, profile, logger)
			if summary != nil {
				if perr := printSummary(cmd.OutOrStdout(), summary, opts.json); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}

	c.Flags().StringVarP(&opts.input, "input", "i", "", "input CSV or XLSX file (default "+config.DefaultInputFile+")")
	c.Flags().StringVar(&opts.plots, "plots", "", "output directory for charts (default "+config.DefaultPlotsDir+")")
	c.Flags().StringVar(&opts.reports, "reports", "", "output directory for reports (default "+config.DefaultReportsDir+")")
	c.Flags().StringVar(&opts.profile, "profile", string(pipeline.ProfileHealthcare), "dataset profile: healthcare|vehicles")
	c.Flags().IntVar(&opts.workers, "workers", 0, "charts rendered concurrently (default from config)")
	c.Flags().BoolVar(&opts.json, "json", false, "print the run summary as JSON")
	return c
}

func (o runOptions) apply(cfg *config.Config) error {
	if o.input != "" {
		cfg.Paths.InputFile = o.input
	}
	if o.plots != "" {
		cfg.Paths.PlotsDir = o.plots
	}
	if o.reports != "" {
		cfg.Paths.ReportsDir = o.reports
	}
	if o.workers < 0 {
		return fmt.Errorf("--workers must be positive, got %d", o.workers)
	}
	if o.workers > 0 {
		cfg.Plot.Workers = o.workers
	}
	return nil
}

// runPipeline wires metrics and telemetry around one pipeline run.
func runPipeline(ctx context.Context, cfg *config.Config, paths *config.Paths, profile pipeline.Profile, logger *slog.Logger) (*pipeline.RunSummary, error) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, paths.TraceFile, registry, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	runner, err := pipeline.NewRunner(cfg, paths,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
		pipeline.WithTelemetry(providers),
		pipeline.WithProfile(profile))
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

func printSummary(w io.Writer, s *pipeline.RunSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	if s.Status == pipeline.StatusEmpty {
		fmt.Fprintln(w, pipeline.EmptyDatasetMessage)
		return nil
	}

	fmt.Fprintf(w, "Run:      %s (%s)\n", s.RunID, s.Status)
	fmt.Fprintf(w, "Input:    %s\n", s.Input)
	fmt.Fprintf(w, "Rows:     %d read, %d cleaned, %d valid\n", s.RowsRead, s.RowsCleaned, s.RowsValid)
	if len(s.Dropped) > 0 {
		cols := make([]string, 0, len(s.Dropped))
		for col := range s.Dropped {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		fmt.Fprint(w, "Dropped: ")
		for _, col := range cols {
			fmt.Fprintf(w, " %s=%d", col, s.Dropped[col])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Duration: %s\n", s.Duration)
	for _, p := range s.Plots {
		fmt.Fprintf(w, "- %s\n", p)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", s.Error)
	}
	return nil
}
