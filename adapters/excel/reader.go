package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"stringcalc/domain/instrument"
)

// Sheet is an exported table read back: the header row and the body rows,
// each body row padded or cut to the header width.
type Sheet struct {
	Headers  []string
	Snapshot instrument.TableSnapshot
}

// ReadFile reads an .xlsx or .csv export.
func ReadFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f)
	}
	return ReadXLSX(f)
}

// ReadXLSX reads Sheet1 of a workbook
func ReadXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetName, err)
	}
	log.Printf("[Import] %s read (%d rows)", SheetName, len(rows))
	return toSheet(rows), nil
}

// ReadCSV reads a CSV export
func ReadCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[Import] CSV read (%d rows)", len(rows))
	return toSheet(rows), nil
}

// toSheet fixes every body row to the header width; excelize drops
// trailing empty cells so short rows are expected.
func toSheet(rows [][]string) *Sheet {
	s := &Sheet{Headers: []string{}, Snapshot: instrument.TableSnapshot{}}
	if len(rows) == 0 {
		return s
	}
	s.Headers = rows[0]
	width := len(s.Headers)
	for _, row := range rows[1:] {
		values := make([]string, width)
		copy(values, row)
		s.Snapshot = append(s.Snapshot, values)
	}
	return s
}
