// Package dataset loads the patient records file and turns it into
// validated domain.PatientRecord values.
//
// The steps are:
//
//	Load      read CSV or XLSX, normalise headers, require every input column
//	Clean     drop incomplete rows, normalise text, parse dates, derive buckets
//	Validate  drop rows breaking a range or membership rule
//
// Values that cannot be parsed never fail a load. They become missing and
// the row is dropped by Clean (numbers) or Validate (dates, through the
// missing length of stay).
package dataset
