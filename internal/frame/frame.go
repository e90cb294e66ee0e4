package frame

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"healthplots/internal/dataset"
	apperrors "healthplots/internal/errors"
	"healthplots/pkg/contracts/domain"
)

// Missing is the cell marker gota reads as NaN.
const Missing = "NaN"

// naturalOrder lists the bucket columns whose categories have a fixed order.
var naturalOrder = map[string][]string{
	domain.ColAgeGroup:        domain.AgeGroups,
	domain.ColLengthStayGroup: domain.LengthStayGroups,
	domain.ColBillingCategory: domain.BillingCategories,
}

// FromRecords builds a DataFrame with one column per input field followed
// by the derived columns. Missing values are stored as NaN.
func FromRecords(records []domain.PatientRecord) dataframe.DataFrame {
	n := len(records)
	cols := make(map[string][]string, len(domain.InputColumns)+len(domain.DerivedColumns))
	for _, name := range append(append([]string{}, domain.InputColumns...), domain.DerivedColumns...) {
		cols[name] = make([]string, n)
	}

	for i, r := range records {
		cols[domain.ColName][i] = text(r.Name)
		cols[domain.ColAge][i] = strconv.Itoa(r.Age)
		cols[domain.ColGender][i] = text(r.Gender)
		cols[domain.ColBloodType][i] = text(r.BloodType)
		cols[domain.ColMedicalCondition][i] = text(r.MedicalCondition)
		cols[domain.ColDateOfAdmission][i] = dateText(r.DateOfAdmission)
		cols[domain.ColDoctor][i] = text(r.Doctor)
		cols[domain.ColHospital][i] = text(r.Hospital)
		cols[domain.ColInsuranceProvider][i] = text(r.InsuranceProvider)
		cols[domain.ColBillingAmount][i] = strconv.FormatFloat(r.BillingAmount, 'f', -1, 64)
		cols[domain.ColRoomNumber][i] = strconv.Itoa(r.RoomNumber)
		cols[domain.ColAdmissionType][i] = text(r.AdmissionType)
		cols[domain.ColDischargeDate][i] = dateText(r.DischargeDate)
		cols[domain.ColMedication][i] = text(r.Medication)
		cols[domain.ColTestResults][i] = text(r.TestResults)

		cols[domain.ColLengthStay][i] = Missing
		if r.LengthStay != nil {
			cols[domain.ColLengthStay][i] = strconv.Itoa(*r.LengthStay)
		}
		cols[domain.ColLengthStayGroup][i] = text(r.LengthStayGroup)
		cols[domain.ColAgeGroup][i] = text(r.AgeGroup)
		cols[domain.ColBillingCategory][i] = text(r.BillingCategory)
	}

	types := map[string]series.Type{
		domain.ColAge:           series.Int,
		domain.ColRoomNumber:    series.Int,
		domain.ColLengthStay:    series.Int,
		domain.ColBillingAmount: series.Float,
	}

	all := make([]series.Series, 0, len(cols))
	for _, name := range append(append([]string{}, domain.InputColumns...), domain.DerivedColumns...) {
		typ, ok := types[name]
		if !ok {
			typ = series.String
		}
		all = append(all, series.New(cols[name], typ, name))
	}
	return dataframe.New(all...)
}

// text maps an empty field to Missing. gota string series read the literal
// "NaN" as missing too, so a field whose value is "NaN" is indistinguishable
// from an empty one once in a frame.
func text(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func dateText(t *time.Time) string {
	if t == nil {
		return Missing
	}
	return t.Format("2006-01-02")
}

// ReadCSV loads an arbitrary table with string columns and normalised
// headers. It serves datasets without a fixed schema, such as the vehicle
// listings.
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null"}),
	)
	if df.Err != nil {
		return df, apperrors.NewParsingError("read table", df.Err)
	}

	for _, name := range df.Names() {
		norm := dataset.NormalizeHeader(name)
		if norm != name {
			df = df.Rename(norm, name)
			if df.Err != nil {
				return df, apperrors.NewParsingError(fmt.Sprintf("rename column %q", name), df.Err)
			}
		}
	}
	return df, nil
}

// HasColumn reports whether df has a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns the named column. An absent column, or any column of a
// frame without rows, is reported as a NOT_FOUND error naming the column.
func Column(df dataframe.DataFrame, name string) (series.Series, error) {
	if df.Err != nil || df.Nrow() == 0 || !HasColumn(df, name) {
		return series.Series{}, apperrors.NewColumnNotFoundError(name)
	}
	return df.Col(name), nil
}

// Values returns the non-missing cells of a column in row order.
func Values(df dataframe.DataFrame, name string) ([]string, error) {
	s, err := Column(df, name)
	if err != nil {
		return nil, err
	}
	records := s.Records()
	nan := s.IsNaN()
	out := make([]string, 0, len(records))
	for i, v := range records {
		if nan[i] || v == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Floats returns the numeric cells of a column, skipping missing and
// non-numeric values.
func Floats(df dataframe.DataFrame, name string) ([]float64, error) {
	vals, err := Values(df, name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Levels orders the distinct labels of column: bucket columns keep their
// bin order, everything else is sorted lexically.
func Levels(column string, present map[string]bool) []string {
	var out []string
	if order, ok := naturalOrder[column]; ok {
		for _, l := range order {
			if present[l] {
				out = append(out, l)
			}
		}
		return out
	}
	for l := range present {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Describe returns summary statistics per column.
func Describe(df dataframe.DataFrame) dataframe.DataFrame {
	return df.Describe()
}
