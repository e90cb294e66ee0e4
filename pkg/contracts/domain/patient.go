package domain

import "time"

// Column names of the patient dataset after header normalisation.
const (
	ColName              = "name"
	ColAge               = "age"
	ColGender            = "gender"
	ColBloodType         = "blood_type"
	ColMedicalCondition  = "medical_condition"
	ColDateOfAdmission   = "date_of_admission"
	ColDoctor            = "doctor"
	ColHospital          = "hospital"
	ColInsuranceProvider = "insurance_provider"
	ColBillingAmount     = "billing_amount"
	ColRoomNumber        = "room_number"
	ColAdmissionType     = "admission_type"
	ColDischargeDate     = "discharge_date"
	ColMedication        = "medication"
	ColTestResults       = "test_results"

	// Derived during cleaning
	ColLengthStay      = "length_stay"
	ColLengthStayGroup = "length_stay_group"
	ColAgeGroup        = "age_group"
	ColBillingCategory = "billing_category"
)

// InputColumns lists the columns every patient dataset must provide, in
// their canonical order.
var InputColumns = []string{
	ColName, ColAge, ColGender, ColBloodType, ColMedicalCondition,
	ColDateOfAdmission, ColDoctor, ColHospital, ColInsuranceProvider,
	ColBillingAmount, ColRoomNumber, ColAdmissionType, ColDischargeDate,
	ColMedication, ColTestResults,
}

// DerivedColumns lists the columns added by cleaning.
var DerivedColumns = []string{
	ColLengthStay, ColLengthStayGroup, ColAgeGroup, ColBillingCategory,
}

// Valid category values.
var (
	Genders    = []string{"Male", "Female"}
	BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// Bucket labels in bin order.
var (
	LengthStayGroups  = []string{"1-7", "8-15", "16-30", "31-45", "46-60", "60+"}
	AgeGroups         = []string{"0-18", "19-30", "31-45", "46-60", "61-75", "75+"}
	BillingCategories = []string{"<10k", "10k-20k", "20k-30k", "30k-40k", "40k+"}
)

// PatientRow is one row as read from the input file. Empty strings and nil
// pointers mark missing or unparseable cells.
type PatientRow struct {
	Name              string
	Age               *int
	Gender            string
	BloodType         string
	MedicalCondition  string
	DateOfAdmission   string
	Doctor            string
	Hospital          string
	InsuranceProvider string
	BillingAmount     *float64
	RoomNumber        *int
	AdmissionType     string
	DischargeDate     string
	Medication        string
	TestResults       string
}

// HasMissing reports whether any input field is missing.
func (r PatientRow) HasMissing() bool {
	if r.Age == nil || r.BillingAmount == nil || r.RoomNumber == nil {
		return true
	}
	for _, s := range []string{
		r.Name, r.Gender, r.BloodType, r.MedicalCondition, r.DateOfAdmission,
		r.Doctor, r.Hospital, r.InsuranceProvider, r.AdmissionType,
		r.DischargeDate, r.Medication, r.TestResults,
	} {
		if s == "" {
			return true
		}
	}
	return false
}

// PatientRecord is a cleaned patient row. Dates and LengthStay are nil when
// the source date could not be parsed; bucket labels are empty when the value
// falls outside every bin.
//
// The validate tags are the row-level acceptance rules applied after
// cleaning.
type PatientRecord struct {
	Name              string     `json:"name"`
	Age               int        `json:"age" validate:"gte=0,lte=120"`
	Gender            string     `json:"gender" validate:"oneof=Male Female"`
	BloodType         string     `json:"blood_type" validate:"oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalCondition  string     `json:"medical_condition"`
	DateOfAdmission   *time.Time `json:"date_of_admission"`
	Doctor            string     `json:"doctor"`
	Hospital          string     `json:"hospital"`
	InsuranceProvider string     `json:"insurance_provider"`
	BillingAmount     float64    `json:"billing_amount" validate:"gte=0"`
	RoomNumber        int        `json:"room_number" validate:"gt=0"`
	AdmissionType     string     `json:"admission_type"`
	DischargeDate     *time.Time `json:"discharge_date"`
	Medication        string     `json:"medication"`
	TestResults       string     `json:"test_results"`

	LengthStay      *int   `json:"length_stay" validate:"required,gte=0"`
	LengthStayGroup string `json:"length_stay_group,omitempty"`
	AgeGroup        string `json:"age_group,omitempty"`
	BillingCategory string `json:"billing_category,omitempty"`
}
