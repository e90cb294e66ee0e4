package dataset

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"healthplots/pkg/contracts/domain"
)

var (
	titlePattern    = regexp.MustCompile(`(?i)^(Dr\.|Mr\.|Mrs\.|Ms\.|Prof\.|Dra\.|Sr\.|Sra\.)\s*`)
	mcPattern       = regexp.MustCompile(`\bMc(\w)`)
	hospitalCommaRe = regexp.MustCompile(`\s*,\s*`)
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// Clean applies the fixed cleaning sequence to rows. Rows with a missing
// input field are dropped; the rest are normalised and get their derived
// columns.
func Clean(rows []domain.PatientRow) []domain.PatientRecord {
	records := make([]domain.PatientRecord, 0, len(rows))
	for _, row := range rows {
		if row.HasMissing() {
			continue
		}
		records = append(records, cleanRow(row))
	}
	return records
}

func cleanRow(row domain.PatientRow) domain.PatientRecord {
	rec := domain.PatientRecord{
		Name:              StandardizeName(StripTitle(row.Name)),
		Age:               *row.Age,
		Gender:            TitleCase(row.Gender),
		BloodType:         strings.ToUpper(row.BloodType),
		MedicalCondition:  TitleCase(row.MedicalCondition),
		DateOfAdmission:   ParseDate(row.DateOfAdmission),
		Doctor:            StandardizeName(StripTitle(row.Doctor)),
		Hospital:          CleanHospitalName(row.Hospital),
		InsuranceProvider: TitleCase(row.InsuranceProvider),
		BillingAmount:     RoundCents(*row.BillingAmount),
		RoomNumber:        *row.RoomNumber,
		AdmissionType:     TitleCase(row.AdmissionType),
		DischargeDate:     ParseDate(row.DischargeDate),
		Medication:        TitleCase(row.Medication),
		TestResults:       TitleCase(row.TestResults),
	}

	rec.LengthStay = LengthOfStay(rec.DateOfAdmission, rec.DischargeDate)
	if rec.LengthStay != nil {
		rec.LengthStayGroup = LengthStayBins.Label(float64(*rec.LengthStay))
	}
	rec.AgeGroup = AgeBins.Label(float64(rec.Age))
	rec.BillingCategory = BillingBins.Label(rec.BillingAmount)
	return rec
}

// StripTitle removes one leading honorific such as "Dr." or "Mrs.".
func StripTitle(name string) string {
	return titlePattern.ReplaceAllString(name, "")
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the others.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// StandardizeName title-cases a person name and restores the capital after
// a "Mc" prefix, so "mary mcdonald" becomes "Mary McDonald" rather than
// "Mary Mcdonald". Apostrophe and hyphen parts are handled by TitleCase.
func StandardizeName(name string) string {
	name = TitleCase(name)
	return mcPattern.ReplaceAllStringFunc(name, func(m string) string {
		return "Mc" + strings.ToUpper(m[2:])
	})
}

// CleanHospitalName strips quotes and whitespace, joins comma separated
// parts with " & " and title-cases the result.
func CleanHospitalName(name string) string {
	name = strings.TrimSpace(strings.Trim(strings.Trim(name, `"`), "'"))
	name = hospitalCommaRe.ReplaceAllString(name, " & ")
	return TitleCase(name)
}

// ParseDate parses s with the accepted layouts, returning nil when none
// match.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// RoundCents rounds to two decimals, halves to even.
func RoundCents(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// LengthOfStay returns the whole days between admission and discharge,
// floored, or nil when either date is missing.
func LengthOfStay(admission, discharge *time.Time) *int {
	if admission == nil || discharge == nil {
		return nil
	}
	days := int(math.Floor(discharge.Sub(*admission).Hours() / 24))
	return &days
}
