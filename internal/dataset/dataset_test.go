package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/shared/testutil"
	"healthplots/pkg/contracts/domain"
)

func TestValidate(t *testing.T) {
	base := Clean([]domain.PatientRow{completeRow()})
	require.Len(t, base, 1)

	tests := []struct {
		name    string
		mutate  func(r *domain.PatientRecord)
		wantCol string
	}{
		{"valid", func(r *domain.PatientRecord) {}, ""},
		{"age above range", func(r *domain.PatientRecord) { r.Age = 150 }, "age"},
		{"age below range", func(r *domain.PatientRecord) { r.Age = -1 }, "age"},
		{"age upper bound", func(r *domain.PatientRecord) { r.Age = 120 }, ""},
		{"negative billing", func(r *domain.PatientRecord) { r.BillingAmount = -1000 }, "billing_amount"},
		{"zero billing", func(r *domain.PatientRecord) { r.BillingAmount = 0 }, ""},
		{"zero room", func(r *domain.PatientRecord) { r.RoomNumber = 0 }, "room_number"},
		{"unknown gender", func(r *domain.PatientRecord) { r.Gender = "Unknown" }, "gender"},
		{"lower case gender", func(r *domain.PatientRecord) { r.Gender = "male" }, "gender"},
		{"unknown blood type", func(r *domain.PatientRecord) { r.BloodType = "X+" }, "blood_type"},
		{"missing stay", func(r *domain.PatientRecord) { r.LengthStay = nil }, "length_stay"},
		{"negative stay", func(r *domain.PatientRecord) { r.LengthStay = intp(-3) }, "length_stay"},
		{"zero stay", func(r *domain.PatientRecord) { r.LengthStay = intp(0) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base[0]
			tt.mutate(&rec)

			valid, report := Validate([]domain.PatientRecord{rec})
			assert.Equal(t, 1, report.Checked)
			if tt.wantCol == "" {
				assert.Len(t, valid, 1)
				assert.Zero(t, report.Dropped)
				return
			}
			assert.Empty(t, valid)
			assert.Equal(t, 1, report.Dropped)
			assert.Equal(t, map[string]int{tt.wantCol: 1}, report.Failures)
		})
	}
}

func TestValidate_AllBloodTypes(t *testing.T) {
	base := Clean([]domain.PatientRow{completeRow()})[0]
	var records []domain.PatientRecord
	for _, bt := range domain.BloodTypes {
		rec := base
		rec.BloodType = bt
		records = append(records, rec)
	}

	valid, report := Validate(records)
	assert.Len(t, valid, len(domain.BloodTypes))
	assert.Empty(t, report.FailedColumns())
}

func TestLoader_LoadDataset(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := testutil.WritePatientCSV(t, "")

	ds, err := NewLoader(logger).LoadDataset(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 14, ds.RowsRead)
	assert.Equal(t, 12, ds.RowsCleaned)
	assert.Equal(t, 5, ds.Report.Valid)
	assert.Equal(t, 7, ds.Report.Dropped)
	assert.Equal(t, map[string]int{
		"age":            1,
		"billing_amount": 1,
		"gender":         1,
		"blood_type":     1,
		"length_stay":    2,
		"room_number":    1,
	}, ds.Report.Failures)

	byName := make(map[string]domain.PatientRecord)
	for _, rec := range ds.Records {
		byName[rec.Name] = rec
		assert.GreaterOrEqual(t, rec.Age, 0)
		assert.LessOrEqual(t, rec.Age, 120)
		assert.GreaterOrEqual(t, rec.BillingAmount, 0.0)
		assert.Contains(t, domain.Genders, rec.Gender)
		assert.Contains(t, domain.BloodTypes, rec.BloodType)
	}

	require.Contains(t, byName, "John Doe")
	assert.Equal(t, "Jane Smith", byName["John Doe"].Doctor)
	assert.Equal(t, 9, *byName["John Doe"].LengthStay)

	require.Contains(t, byName, "Alice Johnson")
	alice := byName["Alice Johnson"]
	assert.Equal(t, "Female", alice.Gender)
	assert.Equal(t, "O-", alice.BloodType)
	assert.Equal(t, "Clinic & Ltd", alice.Hospital)
	assert.Equal(t, "19-30", alice.AgeGroup)

	require.Contains(t, byName, "Mary McDonald")
	mary := byName["Mary McDonald"]
	assert.Equal(t, "O'Brien", mary.Doctor)
	assert.Equal(t, "Saint Mary", mary.Hospital)
	assert.Equal(t, 45000.12, mary.BillingAmount)
	assert.Equal(t, "40k+", mary.BillingCategory)
	assert.Equal(t, 45, *mary.LengthStay)
	assert.Equal(t, "31-45", mary.LengthStayGroup)

	require.Contains(t, byName, "Pedro Perez")
	assert.Equal(t, "Ana Lopez", byName["Pedro Perez"].Doctor)
	assert.Equal(t, "0-18", byName["Pedro Perez"].AgeGroup)
	assert.Equal(t, "1-7", byName["Pedro Perez"].LengthStayGroup)

	require.Contains(t, byName, "Old Timer")
	assert.Equal(t, "75+", byName["Old Timer"].AgeGroup)
	assert.Equal(t, "46-60", byName["Old Timer"].LengthStayGroup)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Dataset loaded")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Validation completed")
	testutil.AssertLogAttr(t, handler, "dropped_missing", int64(2))
	testutil.AssertNoErrors(t, handler)
}

func TestLoader_LoadDataset_Empty(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := testutil.WritePatientCSV(t, testutil.PatientCSVHeader+"\n")

	ds, err := NewLoader(logger).LoadDataset(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ds.Empty())
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Dataset is empty")
}

func TestLoader_LoadDataset_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	notes := filepath.Join(dir, "patients.txt")
	require.NoError(t, os.WriteFile(notes, []byte(testutil.PatientCSV), 0644))

	tests := []struct {
		name    string
		path    string
		errType apperrors.ErrorType
	}{
		{"missing file", filepath.Join(dir, "absent.csv"), apperrors.ErrTypeNotFound},
		{"directory", dir, apperrors.ErrTypeValidation},
		{"unsupported extension", notes, apperrors.ErrTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			ds, err := NewLoader(logger).LoadDataset(context.Background(), tt.path)
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.True(t, apperrors.IsType(err, tt.errType), err.Error())
		})
	}
}
