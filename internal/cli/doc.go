// Package cli implements the healthplots command line with cobra:
//
//	healthplots run     [--input FILE] [--plots DIR] [--reports DIR] [--profile healthcare|vehicles] [--json]
//	healthplots serve   [--addr ADDR]
//	healthplots version
//
// Every command accepts --config. Settings come from defaults, the YAML
// file and HEALTHPLOTS_* environment variables, with flags applied last.
package cli
