package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"healthplots/internal/config"
	"healthplots/internal/infrastructure"
)

// Execute runs the healthplots command line and returns the exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree. Command output goes to out; logs go
// where the logging config says, stderr by default.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          config.AppName,
		Short:        "Clean a healthcare dataset and render its charts",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default: config.yaml or configs/config.yaml)")

	root.AddCommand(
		runCmd(&configFile),
		serveCmd(&configFile),
		versionCmd(),
	)
	return root
}

// setup loads the configuration, lets override adjust it, resolves the
// paths and initializes the process logger.
func setup(configFile string, override func(*config.Config) error) (*config.Config, *config.Paths, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, nil, nil, err
		}
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.WorkingDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	paths.LogPathResolution(logger)
	return cfg, paths, logger, nil
}
