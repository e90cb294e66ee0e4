// Package http exposes the results of pipeline runs over a read-only JSON
// API built on chi:
//
//	GET /api/health        health and output directory checks
//	GET /api/summary       summary of the last run
//	GET /api/plots         rendered charts
//	GET /api/plots/{name}  one chart as image/png
//	GET /metrics           Prometheus metrics
//
// Handlers stay thin and delegate to the services package. Errors are
// answered as RFC 7807 problem details through errors.ErrorHandler.
package http
