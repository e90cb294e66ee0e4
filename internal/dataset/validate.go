package dataset

import (
	stderrors "errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"healthplots/pkg/contracts/domain"
)

// Report summarises a validation pass.
type Report struct {
	Checked int `json:"checked"`
	Valid   int `json:"valid"`
	Dropped int `json:"dropped"`
	// Failures counts rule violations per column. A dropped row may count
	// against several columns.
	Failures map[string]int `json:"failures"`
}

// FailedColumns returns the columns with at least one failure, sorted.
func (r Report) FailedColumns() []string {
	cols := make([]string, 0, len(r.Failures))
	for col := range r.Failures {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// RecordValidator applies the row acceptance rules declared on
// domain.PatientRecord.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator that reports failures by column
// name.
func NewRecordValidator() *RecordValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RecordValidator{validate: v}
}

// Check returns the columns of rec that violate a rule.
func (v *RecordValidator) Check(rec domain.PatientRecord) ([]string, error) {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return nil, err
	}

	cols := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		cols = append(cols, fe.Field())
	}
	return cols, nil
}

// Validate keeps the records that satisfy every rule.
func (v *RecordValidator) Validate(records []domain.PatientRecord) ([]domain.PatientRecord, Report, error) {
	report := Report{Checked: len(records), Failures: make(map[string]int)}
	valid := make([]domain.PatientRecord, 0, len(records))

	for _, rec := range records {
		cols, err := v.Check(rec)
		if err != nil {
			return nil, report, err
		}
		if len(cols) > 0 {
			report.Dropped++
			for _, col := range cols {
				report.Failures[col]++
			}
			continue
		}
		valid = append(valid, rec)
	}

	report.Valid = len(valid)
	return valid, report, nil
}

var defaultValidator = NewRecordValidator()

// Validate filters records with the default rule set.
func Validate(records []domain.PatientRecord) ([]domain.PatientRecord, Report) {
	valid, report, err := defaultValidator.Validate(records)
	if err != nil {
		// only InvalidValidationError is possible here, and PatientRecord
		// is always a struct
		panic(err)
	}
	return valid, report
}
