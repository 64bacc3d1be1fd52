package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is the raw content of one source file: a header row and the data
// rows beneath it, as text.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// SourceError reports a source file that could not be read as tabular data.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReadSource reads a spreadsheet (.xlsx, .xlsm) or delimited (.csv, .tsv)
// file. Only the first worksheet of a workbook is read.
func ReadSource(path string) (*Table, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readDelimited(path, ',')
	case ".tsv", ".txt":
		rows, err = readDelimited(path, '\t')
	default:
		rows, err = readWorkbook(path)
	}
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	t := &Table{Path: path}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = cleanHeader(rows[0])
	for _, row := range rows[1:] {
		if !blankRow(row) {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = comma
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// cleanHeader trims column names and strips a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
