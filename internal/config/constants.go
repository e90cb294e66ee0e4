package config

// Application constants
const (
	AppName    = "healthplots"
	AppVersion = "1.0.0"

	// Default locations, relative to the working directory
	DefaultInputFile  = "data/healthcare_dataset.csv"
	DefaultPlotsDir   = "plots"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"

	// Well-known output files written to the reports directory
	SummaryFileName  = "run_summary.json"
	CleanCSVFileName = "healthcare_clean.csv"
	WorkbookFileName = "healthcare_report.xlsx"
	DescribeFileName = "describe.csv"
	TraceFileName    = "traces.json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Chart rendering
	DefaultPlotWorkers   = 4
	DefaultPlotWidth     = 1000
	DefaultPlotHeight    = 600
	DefaultHistogramBins = 30
)
