package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/frame"
	"healthplots/pkg/contracts/domain"
)

// RecordsSheet is the workbook sheet holding the cleaned records.
const RecordsSheet = "records"

// CountSheet is one sheet of value counts for a category column.
type CountSheet struct {
	Column string
	Counts []frame.Count
}

// WriteWorkbook writes the records and one value-count sheet per category
// column to an XLSX file.
func (e *Exporter) WriteWorkbook(filePath string, records []domain.PatientRecord, counts []CountSheet) (err error) {
	fullPath := e.csvWriter.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("create directory", err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.NewStorageError("close workbook", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		return apperrors.NewStorageError("name records sheet", err)
	}
	if err := writeRecordsSheet(f, records); err != nil {
		return err
	}

	for _, cs := range counts {
		if err := writeCountSheet(f, cs); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(fullPath); err != nil {
		return apperrors.NewStorageError("save workbook", err)
	}

	e.logger.Info("Workbook exported",
		slog.String("file", fullPath),
		slog.Int("rows", len(records)),
		slog.Int("count_sheets", len(counts)))
	return nil
}

func writeRecordsSheet(f *excelize.File, records []domain.PatientRecord) error {
	sw, err := f.NewStreamWriter(RecordsSheet)
	if err != nil {
		return apperrors.NewStorageError("open records sheet", err)
	}

	headers := RecordHeaders()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return apperrors.NewStorageError("write records header", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("records cell", err)
		}
		if err := sw.SetRow(cell, recordCells(r)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("write record %d", i), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("flush records sheet", err)
	}
	return nil
}

// recordCells keeps numbers numeric so the sheet can be summed and sorted.
func recordCells(r domain.PatientRecord) []interface{} {
	var stay interface{} = ""
	if r.LengthStay != nil {
		stay = *r.LengthStay
	}
	return []interface{}{
		r.Name,
		r.Age,
		r.Gender,
		r.BloodType,
		r.MedicalCondition,
		formatDate(r.DateOfAdmission),
		r.Doctor,
		r.Hospital,
		r.InsuranceProvider,
		r.BillingAmount,
		r.RoomNumber,
		r.AdmissionType,
		formatDate(r.DischargeDate),
		r.Medication,
		r.TestResults,
		stay,
		r.LengthStayGroup,
		r.AgeGroup,
		r.BillingCategory,
	}
}

func writeCountSheet(f *excelize.File, cs CountSheet) error {
	if _, err := f.NewSheet(cs.Column); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("create sheet %q", cs.Column), err)
	}
	if err := f.SetSheetRow(cs.Column, "A1", &[]interface{}{cs.Column, "count"}); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write sheet %q", cs.Column), err)
	}
	for i, c := range cs.Counts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("count cell", err)
		}
		if err := f.SetSheetRow(cs.Column, cell, &[]interface{}{c.Label, c.Count}); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("write sheet %q", cs.Column), err)
		}
	}
	return nil
}
