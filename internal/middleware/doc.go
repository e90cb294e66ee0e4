// Package middleware holds the chi middleware of the serve command: request
// ids that double as trace ids, structured request logs, panic recovery,
// token bucket rate limiting, security headers and OpenTelemetry request
// spans.
package middleware
