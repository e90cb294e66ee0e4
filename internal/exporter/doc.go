// Package exporter writes the cleaned patient dataset and its summaries.
//
// CSVWriter is the low-level streaming writer. It prefixes a UTF-8 BOM so
// spreadsheet applications read accented names correctly. Exporter builds
// on it:
//
//	WriteCleanCSV   validated records, input columns then derived columns
//	WriteWorkbook   XLSX with a records sheet and one value-count sheet per category
//	WriteDescribe   gota describe table as CSV
//
// Relative paths land in the reports directory.
package exporter
