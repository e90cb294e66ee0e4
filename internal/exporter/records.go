package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"healthplots/internal/config"
	apperrors "healthplots/internal/errors"
	"healthplots/pkg/contracts/domain"
)

// Exporter writes the cleaned dataset and its summaries next to the charts.
type Exporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
	logger    *slog.Logger
}

// NewExporter creates an exporter. Relative output paths resolve to the
// reports directory of paths.
func NewExporter(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
		logger:    logger,
	}
}

// RecordHeaders lists the input columns followed by the derived ones.
func RecordHeaders() []string {
	return append(append([]string{}, domain.InputColumns...), domain.DerivedColumns...)
}

// RecordRow converts a record to CSV cells in RecordHeaders order.
func RecordRow(r domain.PatientRecord) []string {
	return []string{
		r.Name,
		formatInt(r.Age),
		r.Gender,
		r.BloodType,
		r.MedicalCondition,
		formatDate(r.DateOfAdmission),
		r.Doctor,
		r.Hospital,
		r.InsuranceProvider,
		formatFloat(r.BillingAmount),
		formatInt(r.RoomNumber),
		r.AdmissionType,
		formatDate(r.DischargeDate),
		r.Medication,
		r.TestResults,
		formatOptionalInt(r.LengthStay),
		r.LengthStayGroup,
		r.AgeGroup,
		r.BillingCategory,
	}
}

// WriteCleanCSV streams the cleaned and validated records to a CSV file with
// a UTF-8 BOM.
func (e *Exporter) WriteCleanCSV(filePath string, records []domain.PatientRecord) error {
	sw, err := e.csvWriter.CreateStreamWriter(filePath, RecordHeaders())
	if err != nil {
		return err
	}
	for i, r := range records {
		if err := sw.WriteRecord(RecordRow(r)); err != nil {
			sw.Close()
			return apperrors.NewStorageError(fmt.Sprintf("write record %d", i), err)
		}
	}
	if err := sw.Close(); err != nil {
		return apperrors.NewStorageError("close clean dataset", err)
	}

	e.logger.Info("Clean dataset exported",
		slog.String("file", e.csvWriter.resolvePath(filePath)),
		slog.Int("rows", sw.Rows()))
	return nil
}

// WriteDescribe writes the summary statistics of df as CSV.
func (e *Exporter) WriteDescribe(filePath string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return apperrors.NewParsingError("describe table", df.Err)
	}
	fullPath := e.csvWriter.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewStorageError("create directory", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewStorageError("create describe file", err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return apperrors.NewStorageError("write describe table", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("close describe file", err)
	}

	e.logger.Info("Describe table exported",
		slog.String("file", fullPath),
		slog.Int("columns", df.Ncol()))
	return nil
}
