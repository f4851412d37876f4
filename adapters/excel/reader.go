package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	"gocleanse/internal"
)

// DataReader handles reading Excel and CSV files into a dataset
type DataReader struct {
	config   Config
	fileType string // "xlsx" or "csv"
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader creates a data reader that handles both Excel and CSV files
func NewDataReader(config Config, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" || ext == ".txt" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &DataReader{
		config:   config,
		fileType: fileType,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
		logger:   logger,
	}
}

// Load reads the file. The first row is the header; every other cell goes
// through the type coercer. Short rows are padded with missing cells.
func (r *DataReader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] reading %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.config.FilePath)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	default:
		rows, err = r.readExcel()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %v (%d rows)", r.config.FilePath, time.Since(start), len(rows))

	return r.processRows(rows)
}

// readExcel reads the configured sheet, or the first one
func (r *DataReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewInputError("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads all records. Rows may have differing widths.
func ReadCSV(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into a typed dataset
func (r *DataReader) processRows(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) < 2 {
		return nil, core.NewInputError(fmt.Sprintf("%s must have a header row and at least one data row", r.config.FilePath))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	ds := dataset.New(headers...)
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		values := make([]dataset.Value, len(headers))
		for j := range headers {
			if j < len(rows[i]) {
				values[j] = r.coercer.CoerceValue(rows[i][j])
			} else {
				values[j] = dataset.NewMissingValue()
			}
		}
		if len(rows[i]) > len(headers) {
			r.logger.Warn("[DataReader] row %d has %d cells, ignoring the %d beyond the header", i+1, len(rows[i]), len(rows[i])-len(headers))
		}
		ds.Rows = append(ds.Rows, values)
	}

	r.logger.Info("[DataReader] %s loaded (%d columns, %d rows)", filepath.Base(r.config.FilePath), ds.ColumnCount(), ds.RowCount())
	return ds, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// commonEntityColumns are header names that usually hold a row identifier
var commonEntityColumns = []string{
	"id",
	"entity_id",
	"customer_id",
	"user_id",
	"account_id",
	"record_id",
	"key",
	"primary_key",
}

// DetectEntityColumn returns the column most likely to be a row identifier:
// a well-known id header, else the first column, provided the values are
// mostly present and mostly unique
func DetectEntityColumn(ds *dataset.Dataset) (string, bool) {
	if ds.IsEmpty() {
		return "", false
	}
	for _, name := range commonEntityColumns {
		for _, header := range ds.Columns {
			if strings.EqualFold(header, name) && isEntityColumn(ds, header) {
				return header, true
			}
		}
	}
	if len(ds.Columns) > 0 && isEntityColumn(ds, ds.Columns[0]) && !anyNumeric(ds, 0) {
		return ds.Columns[0], true
	}
	return "", false
}

// isEntityColumn requires under 50% missing and over 90% distinct values
func isEntityColumn(ds *dataset.Dataset, column string) bool {
	values, err := ds.Column(column)
	if err != nil {
		return false
	}
	distinct := make(map[string]bool)
	empty := 0
	for _, v := range values {
		if v.IsMissing() {
			empty++
			continue
		}
		distinct[v.Key()] = true
	}
	total := float64(len(values))
	return float64(empty)/total < 0.5 && float64(len(distinct))/total > 0.9
}

func anyNumeric(ds *dataset.Dataset, j int) bool {
	for _, row := range ds.Rows {
		if row[j].IsNumeric() {
			return true
		}
	}
	return false
}
