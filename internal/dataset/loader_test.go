package dataset

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/shared/testutil"
	"healthplots/pkg/contracts/domain"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "blood_type", NormalizeHeader(" Blood Type "))
	assert.Equal(t, "date_of_admission", NormalizeHeader("Date of Admission"))
	assert.Equal(t, "name", NormalizeHeader("\ufeffName"))
}

func TestReadCSV(t *testing.T) {
	res, err := ReadCSV(context.Background(), strings.NewReader(testutil.PatientCSV))
	require.NoError(t, err)

	assert.Len(t, res.Rows, 14)
	assert.Equal(t, domain.InputColumns, res.Header)

	first := res.Rows[0]
	assert.Equal(t, "Dr. John Doe", first.Name)
	require.NotNil(t, first.Age)
	assert.Equal(t, 35, *first.Age)
	assert.Equal(t, "General Hospital", first.Hospital)
	require.NotNil(t, first.BillingAmount)
	assert.Equal(t, 25000.50, *first.BillingAmount)

	badAge := res.Rows[5]
	assert.Equal(t, "Bad Age", badAge.Name)
	assert.Nil(t, badAge.Age, "unparseable numbers load as missing")
	assert.True(t, badAge.HasMissing())
}

func TestReadCSV_IndentedRowsAndBlankLines(t *testing.T) {
	data := testutil.PatientCSVHeader + `
        Dr. John Doe,35,male,A+,flu,2023-01-01,Dr. Jane Smith,"General Hospital",Insurance Co,25000.50,101,Emergency,2023-01-10,Paracetamol,Positive

        `
	res, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Dr. John Doe", res.Rows[0].Name)
}

func TestReadCSV_ColumnOrderIndependent(t *testing.T) {
	data := "Test Results,Name,Age,Gender,Blood Type,Medical Condition,Date of Admission,Doctor,Hospital,Insurance Provider,Billing Amount,Room Number,Admission Type,Discharge Date,Medication,Extra\n" +
		"Normal,Jane Roe,40,Female,B-,Flu,2023-01-01,Dr. X,H,I,10,7,Urgent,2023-01-05,M,ignored\n"

	res, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Jane Roe", res.Rows[0].Name)
	assert.Equal(t, "Normal", res.Rows[0].TestResults)
	assert.Equal(t, 7, *res.Rows[0].RoomNumber)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	header := strings.Replace(testutil.PatientCSVHeader, ",Blood Type", "", 1)

	_, err := ReadCSV(context.Background(), strings.NewReader(header+"\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Contains(t, err.Error(), `column "blood_type" not found`)
}

func TestReadCSV_Empty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no content", ""},
		{"header only", testutil.PatientCSVHeader + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ReadCSV(context.Background(), strings.NewReader(tt.data))
			require.NoError(t, err)
			assert.True(t, res.Empty())
		})
	}
}

func TestReadCSV_Cancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString(testutil.PatientCSVHeader + "\n")
	for i := 0; i < 1500; i++ {
		b.WriteString("A,1,Male,A+,F,2023-01-01,D,H,I,1,1,U,2023-01-02,M,N\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(b.String()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_File(t *testing.T) {
	path := testutil.WritePatientCSV(t, "")

	res, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Len(t, res.Rows, 14)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestLoad_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		toRow(strings.Split(testutil.PatientCSVHeader, ",")),
		{"Mr. Tom Hanks", 64, "male", "o+", "heart disease", "2023-03-01", "Dr. Who", "St. Luke", "Aetna", 12000.456, 12, "urgent", "2023-03-05", "aspirin", "normal"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "Mr. Tom Hanks", row.Name)
	require.NotNil(t, row.Age)
	assert.Equal(t, 64, *row.Age)
	require.NotNil(t, row.BillingAmount)
	assert.InDelta(t, 12000.456, *row.BillingAmount, 1e-9)
	assert.Equal(t, "2023-03-05", row.DischargeDate)
}

func toRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
