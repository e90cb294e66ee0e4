// Package pipeline runs a batch analysis end to end.
//
// A run loads the input file, stops early on an empty dataset, writes the
// describe table, renders the chart set and exports the cleaned data. Each
// stage runs in its own OpenTelemetry span; a trace id is put on the context
// so every log line of the run carries it. The RunSummary of every run,
// failed ones included, is written to the reports directory together with
// the Prometheus textfile.
package pipeline
