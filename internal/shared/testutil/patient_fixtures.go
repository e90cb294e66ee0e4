package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"healthplots/pkg/contracts/domain"
)

// PatientCSVHeader is the header of the healthcare dataset as exported by
// the upstream source, before normalisation.
const PatientCSVHeader = "Name,Age,Gender,Blood Type,Medical Condition,Date of Admission,Doctor,Hospital,Insurance Provider,Billing Amount,Room Number,Admission Type,Discharge Date,Medication,Test Results"

// PatientCSV is a small dataset with one row for each cleaning and
// validation path. Five rows survive cleaning and validation.
const PatientCSV = PatientCSVHeader + `
Dr. John Doe,35,male,A+,flu,2023-01-01,Dr. Jane Smith,"General Hospital",Insurance Co,25000.50,101,Emergency,2023-01-10,Paracetamol,Positive
Mrs. Alice Johnson,28,FEMALE,o-,diabetes,2023-02-15,Dr. House,"Clinic, Ltd",Health Corp,15000,102,Elective,2023-02-25,Insulin,Negative
mary mcdonald,67,Female,B+,asthma,2023-03-01,prof. o'brien,'Saint Mary',Aetna,45000.125,204,Urgent,2023-04-15,Ibuprofen,Normal
Sr. Pedro Perez,15,Male,AB-,Cancer,2023-05-01,Dra. Ana Lopez,City Clinic,Medicare,5000,305,Elective,2023-05-04,Aspirin,Inconclusive
Ms. Old Timer,90,Male,O+,Arthritis,2023-06-01,Dr. Who,Central,Cigna,32000,12,Urgent,2023-07-20,Penicillin,Normal
Bad Age,abc,Male,A+,flu,2023-01-01,Dr. X,H,I,100,1,Urgent,2023-01-02,M,Normal
Too Old,150,Male,A+,flu,2023-01-01,Dr. X,H,I,100,1,Urgent,2023-01-02,M,Normal
Negative Bill,40,Female,A-,flu,2023-01-01,Dr. X,H,I,-10,1,Urgent,2023-01-02,M,Normal
Other Gender,40,Other,A-,flu,2023-01-01,Dr. X,H,I,10,1,Urgent,2023-01-02,M,Normal
Odd Blood,40,Female,X+,flu,2023-01-01,Dr. X,H,I,10,1,Urgent,2023-01-02,M,Normal
Bad Date,40,Female,A-,flu,not a date,Dr. X,H,I,10,1,Urgent,2023-01-02,M,Normal
Backwards,40,Female,A-,flu,2023-01-10,Dr. X,H,I,10,1,Urgent,2023-01-02,M,Normal
Zero Room,40,Female,A-,flu,2023-01-01,Dr. X,H,I,10,0,Urgent,2023-01-02,M,Normal
Missing Doctor,40,Female,A-,flu,2023-01-01,,H,I,10,1,Urgent,2023-01-02,M,Normal
`

// WritePatientCSV writes content (PatientCSV when empty) to a file in a
// fresh temp dir and returns its path.
func WritePatientCSV(t *testing.T, content string) string {
	t.Helper()
	if content == "" {
		content = PatientCSV
	}
	path := filepath.Join(t.TempDir(), "healthcare_dataset.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(v int) *int { return &v }

// SampleRecords returns cleaned and validated records covering every
// category used by the charts.
func SampleRecords() []domain.PatientRecord {
	genders := domain.Genders
	bloods := domain.BloodTypes
	conditions := []string{"Cancer", "Diabetes", "Asthma", "Obesity"}
	hospitals := []string{"General Hospital", "Clinic & Ltd", "Saint Mary"}

	var out []domain.PatientRecord
	for i := 0; i < 48; i++ {
		age := 10 + (i*7)%85
		stay := 2 + (i*5)%70
		bill := float64(1500 + (i*3700)%48000)
		admitted := date("2023-01-01").AddDate(0, 0, i)
		discharged := admitted.AddDate(0, 0, stay)

		rec := domain.PatientRecord{
			Name:              "Patient Number",
			Age:               age,
			Gender:            genders[i%len(genders)],
			BloodType:         bloods[i%len(bloods)],
			MedicalCondition:  conditions[i%len(conditions)],
			DateOfAdmission:   &admitted,
			Doctor:            "Gregory House",
			Hospital:          hospitals[i%len(hospitals)],
			InsuranceProvider: "Medicare",
			BillingAmount:     bill,
			RoomNumber:        100 + i,
			AdmissionType:     "Urgent",
			DischargeDate:     &discharged,
			Medication:        "Aspirin",
			TestResults:       "Normal",
			LengthStay:        intPtr(stay),
		}
		rec.AgeGroup = bucket(float64(age), []float64{0, 18, 30, 45, 60, 75, 100}, domain.AgeGroups)
		rec.LengthStayGroup = bucket(float64(stay), []float64{1, 7, 15, 30, 45, 60, 90}, domain.LengthStayGroups)
		rec.BillingCategory = bucket(bill, []float64{0, 10000, 20000, 30000, 40000, 1e18}, domain.BillingCategories)
		out = append(out, rec)
	}
	return out
}

func bucket(v float64, edges []float64, labels []string) string {
	for i := 0; i+1 < len(edges); i++ {
		if v > edges[i] && v <= edges[i+1] {
			return labels[i]
		}
	}
	return ""
}
