package importing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one parsed data row: raw column header to raw cell value.
type Row map[string]string

// Fatal-to-import parse failures. These abort before any record is touched.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrNoData              = errors.New("no data found in file")
	ErrParse               = errors.New("unable to parse file")
)

// ParseOptions bounds what the parser accepts.
type ParseOptions struct {
	// AllowedExtensions defaults to .csv and .xlsx. Legacy .xls workbooks
	// are OLE compound files excelize cannot read, so they are rejected
	// upfront instead of failing mid-parse.
	AllowedExtensions []string
	MaxBytes          int64 // 0 means unlimited
}

func (o ParseOptions) allowed(ext string) bool {
	exts := o.AllowedExtensions
	if len(exts) == 0 {
		exts = []string{".csv", ".xlsx"}
	}
	for _, allowed := range exts {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// ParseFile converts an uploaded spreadsheet or delimited file into the
// ordered header slice plus an ordered sequence of rows. The first line is
// treated as the header row; header order is preserved because it decides
// which raw header wins when several satisfy the same canonical field.
func ParseFile(filename string, data []byte, opts ParseOptions) ([]string, []Row, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !opts.allowed(ext) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}

	var (
		records [][]string
		err     error
	)
	switch ext {
	case ".csv":
		records, err = readCSV(data)
	default:
		records, err = readExcel(data)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrNoData
	}

	headers, rows := buildRows(records[0], records[1:])
	if len(rows) == 0 {
		return nil, nil, ErrNoData
	}
	return headers, rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrParse, err)
	}
	return records, nil
}

func readExcel(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: workbook: %v", ErrParse, err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %s: %v", ErrParse, sheets[0], err)
	}
	return records, nil
}

// buildRows zips the header row with each data row. Columns with a blank
// header are dropped; short rows are padded with empty values, and rows that
// are entirely blank are skipped.
func buildRows(rawHeaders []string, records [][]string) ([]string, []Row) {
	headers := make([]string, 0, len(rawHeaders))
	indexes := make([]int, 0, len(rawHeaders))
	for i, header := range rawHeaders {
		if strings.TrimSpace(header) == "" {
			continue
		}
		headers = append(headers, header)
		indexes = append(indexes, i)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(headers))
		blank := true
		for pos, header := range headers {
			var value string
			if idx := indexes[pos]; idx < len(record) {
				value = record[idx]
			}
			if strings.TrimSpace(value) != "" {
				blank = false
			}
			row[header] = value
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return headers, rows
}
