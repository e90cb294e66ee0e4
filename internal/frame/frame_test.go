package frame

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/shared/testutil"
	"healthplots/pkg/contracts/domain"
)

func TestFromRecords(t *testing.T) {
	records := testutil.SampleRecords()
	records[0].LengthStay = nil
	records[0].LengthStayGroup = ""

	df := FromRecords(records)
	require.NoError(t, df.Err)

	assert.Equal(t, len(records), df.Nrow())
	assert.Equal(t, append(append([]string{}, domain.InputColumns...), domain.DerivedColumns...), df.Names())

	stay := df.Col(domain.ColLengthStay)
	assert.True(t, stay.IsNaN()[0])
	assert.False(t, stay.IsNaN()[1])

	groups, err := Values(df, domain.ColLengthStayGroup)
	require.NoError(t, err)
	assert.Len(t, groups, len(records)-1)

	ages, err := Floats(df, domain.ColAge)
	require.NoError(t, err)
	require.Len(t, ages, len(records))
	assert.Equal(t, float64(records[0].Age), ages[0])

	dates, err := Values(df, domain.ColDateOfAdmission)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", dates[0])
}

func TestFromRecords_NaNTextIsMissing(t *testing.T) {
	records := testutil.SampleRecords()
	records[0].Doctor = "NaN"

	doctors, err := Values(FromRecords(records), domain.ColDoctor)
	require.NoError(t, err)
	assert.Len(t, doctors, len(records)-1)
	assert.NotContains(t, doctors, "NaN")
}

func TestColumn_Errors(t *testing.T) {
	df := FromRecords(testutil.SampleRecords())

	_, err := Column(df, "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	empty := FromRecords(nil)
	assert.Zero(t, empty.Nrow())
	_, err = Column(empty, domain.ColGender)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "gender" not found`)
}

func TestValueCounts(t *testing.T) {
	records := testutil.SampleRecords()[:5]
	records[0].BloodType = "O+"
	records[1].BloodType = "O+"
	records[2].BloodType = "A-"
	records[3].BloodType = "B+"
	records[4].BloodType = "A-"

	counts, err := ValueCounts(FromRecords(records), domain.ColBloodType)
	require.NoError(t, err)
	assert.Equal(t, []Count{
		{Label: "A-", Count: 2},
		{Label: "O+", Count: 2},
		{Label: "B+", Count: 1},
	}, counts)

	_, err = ValueCounts(FromRecords(records), "insurance")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestCrossCounts_NaturalOrder(t *testing.T) {
	records := testutil.SampleRecords()[:4]
	records[0].AgeGroup, records[0].Gender = "75+", "Male"
	records[1].AgeGroup, records[1].Gender = "0-18", "Female"
	records[2].AgeGroup, records[2].Gender = "0-18", "Female"
	records[3].AgeGroup, records[3].Gender = "", "Male"

	tab, err := CrossCounts(FromRecords(records), domain.ColAgeGroup, domain.ColGender)
	require.NoError(t, err)

	assert.Equal(t, []string{"0-18", "75+"}, tab.X)
	assert.Equal(t, []string{"Female", "Male"}, tab.Hue)
	assert.Equal(t, [][]int{{2, 0}, {0, 1}}, tab.Counts)
	assert.Equal(t, 2, tab.Get("0-18", "Female"))
	assert.Equal(t, 0, tab.Get("19-30", "Female"))
	assert.Equal(t, 2, tab.Max())
}

func TestCrossCounts_MissingColumn(t *testing.T) {
	df := FromRecords(testutil.SampleRecords())
	_, err := CrossCounts(df, domain.ColAgeGroup, "weight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "weight" not found`)
}

func TestLevels(t *testing.T) {
	present := map[string]bool{"40k+": true, "<10k": true, "20k-30k": true}
	assert.Equal(t, []string{"<10k", "20k-30k", "40k+"}, Levels(domain.ColBillingCategory, present))

	present = map[string]bool{"Obesity": true, "Asthma": true}
	assert.Equal(t, []string{"Asthma", "Obesity"}, Levels(domain.ColMedicalCondition, present))
}

const vehiclesCSV = `Brand,City,Department,Estimated Market Value,Accident History,Status
Toyota,Bogota,Cundinamarca,50000000,False,Active
Mazda,Medellin,Antioquia,42000000,False,Active
Renault,Cali,Valle,,False,Inactive
Chevrolet,Bogota,Cundinamarca,30000000,False,Inactive
`

func TestReadCSV_Vehicles(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(vehiclesCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"brand", "city", "department", "estimated_market_value", "accident_history", "status"}, df.Names())
	assert.Equal(t, 4, df.Nrow())

	counts, err := ValueCounts(df, "accident_history")
	require.NoError(t, err)
	assert.Equal(t, []Count{{Label: "False", Count: 4}}, counts)

	values, err := Floats(df, "estimated_market_value")
	require.NoError(t, err)
	assert.Len(t, values, 3)
}

func TestMeanBy(t *testing.T) {
	df, err := ReadCSV(strings.NewReader(vehiclesCSV))
	require.NoError(t, err)

	means, err := MeanBy(df, "status", "estimated_market_value")
	require.NoError(t, err)
	assert.Equal(t, []GroupMean{
		{Group: "Active", Mean: 46000000, N: 2},
		{Group: "Inactive", Mean: 30000000, N: 1},
	}, means)

	_, err = MeanBy(df, "status", "brand")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestDescribe(t *testing.T) {
	df := FromRecords(testutil.SampleRecords())
	desc := Describe(df)
	require.NoError(t, desc.Err)
	assert.Equal(t, df.Ncol()+1, desc.Ncol())
	assert.Positive(t, desc.Nrow())
}
