package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "healthplots/internal/errors"
	"healthplots/pkg/contracts/domain"
)

// LoadResult holds the raw rows of a patient dataset.
type LoadResult struct {
	Path   string
	Header []string
	Rows   []domain.PatientRow
}

// Empty reports whether the dataset has no data rows.
func (r *LoadResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// NormalizeHeader trims, lower-cases and replaces spaces with underscores.
func NormalizeHeader(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

// Load reads the patient dataset at path. CSV and XLSX (first sheet) are
// supported. Every input column must be present; cells that cannot be
// parsed into their numeric type are kept as missing.
func Load(ctx context.Context, path string) (*LoadResult, error) {
	var (
		res *LoadResult
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		res, err = loadWorkbook(ctx, path)
	default:
		var file *os.File
		file, err = os.Open(path)
		if err != nil {
			return nil, apperrors.NewStorageError("open dataset", err).WithContext("path", path)
		}
		defer file.Close()
		res, err = ReadCSV(ctx, file)
	}
	if err != nil {
		return nil, err
	}

	res.Path = path
	return res, nil
}

// ReadCSV reads a patient dataset in CSV form from r.
func ReadCSV(ctx context.Context, r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &LoadResult{}, nil
	}
	if err != nil {
		return nil, apperrors.NewParsingError("read header", err)
	}

	b, err := newRowBuilder(header)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("read line %d", line), err)
		}
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		b.add(record)
	}

	return b.result(), nil
}

func loadWorkbook(ctx context.Context, path string) (*LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &LoadResult{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return &LoadResult{}, nil
	}

	b, err := newRowBuilder(rows[0])
	if err != nil {
		return nil, err
	}
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.add(row)
	}
	return b.result(), nil
}

// rowBuilder maps header positions to PatientRow fields.
type rowBuilder struct {
	header []string
	index  map[string]int
	rows   []domain.PatientRow
}

func newRowBuilder(rawHeader []string) (*rowBuilder, error) {
	header := make([]string, len(rawHeader))
	index := make(map[string]int, len(rawHeader))
	for i, col := range rawHeader {
		header[i] = NormalizeHeader(col)
		if _, dup := index[header[i]]; !dup {
			index[header[i]] = i
		}
	}

	for _, col := range domain.InputColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewColumnNotFoundError(col)
		}
	}

	return &rowBuilder{header: header, index: index}, nil
}

func (b *rowBuilder) add(record []string) {
	blank := true
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			blank = false
			break
		}
	}
	if blank {
		return
	}

	get := func(col string) string {
		i := b.index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	b.rows = append(b.rows, domain.PatientRow{
		Name:              get(domain.ColName),
		Age:               parseInt(get(domain.ColAge)),
		Gender:            get(domain.ColGender),
		BloodType:         get(domain.ColBloodType),
		MedicalCondition:  get(domain.ColMedicalCondition),
		DateOfAdmission:   get(domain.ColDateOfAdmission),
		Doctor:            get(domain.ColDoctor),
		Hospital:          get(domain.ColHospital),
		InsuranceProvider: get(domain.ColInsuranceProvider),
		BillingAmount:     parseFloat(get(domain.ColBillingAmount)),
		RoomNumber:        parseInt(get(domain.ColRoomNumber)),
		AdmissionType:     get(domain.ColAdmissionType),
		DischargeDate:     get(domain.ColDischargeDate),
		Medication:        get(domain.ColMedication),
		TestResults:       get(domain.ColTestResults),
	})
}

func (b *rowBuilder) result() *LoadResult {
	return &LoadResult{Header: b.header, Rows: b.rows}
}

// parseInt accepts integers and floats with no fractional part.
func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	v := int(f)
	return &v
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
