// Package config provides centralized configuration management for
// healthplots. It handles loading configuration from multiple sources,
// validation, and path resolution for inputs and generated artefacts.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file (config.yaml or configs/config.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern HEALTHPLOTS_<SECTION>_<FIELD>:
//
//	HEALTHPLOTS_PATHS_INPUT_FILE=data/healthcare_dataset.csv
//	HEALTHPLOTS_PATHS_PLOTS_DIR=plots
//	HEALTHPLOTS_LOGGING_LEVEL=debug
//	HEALTHPLOTS_PLOT_WORKERS=8
//	HEALTHPLOTS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Paths resolves every configured location to an absolute path:
//
//	paths, err := config.GetPaths(cfg)
//	reportPath := paths.GetReportPath("describe.csv")
//	err = paths.EnsureDirectories()
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
