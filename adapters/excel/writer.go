package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"stringcalc/domain/instrument"
	"stringcalc/ports"
)

// SheetName is the sheet every export writes to and every import reads.
const SheetName = "Sheet1"

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// XLSXExporter writes a snapshot as a single-sheet workbook
type XLSXExporter struct{}

// CSVExporter writes a snapshot as CSV, header first
type CSVExporter struct{}

var (
	_ ports.SnapshotExporter = XLSXExporter{}
	_ ports.SnapshotExporter = CSVExporter{}
)

// ExporterFor picks an exporter from a file name or bare format ("xlsx", "csv")
func ExporterFor(name string) (ports.SnapshotExporter, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if format == "" {
		format = strings.ToLower(name)
	}
	switch format {
	case "xlsx":
		return XLSXExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", name)
	}
}

func (XLSXExporter) ContentType() string { return contentTypeXLSX }

// Export writes headers in row 1 and the snapshot from row 2 on.
// Cells are written as strings so values round-trip unchanged.
func (XLSXExporter) Export(w io.Writer, headers []string, snapshot instrument.TableSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, headers); err != nil {
		return err
	}
	for r, row := range snapshot {
		if err := setRow(f, r+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	log.Printf("[Export] xlsx written (%d columns, %d rows)", len(headers), len(snapshot))
	return nil
}

func setRow(f *excelize.File, rowIdx int, values []string) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", cell, err)
		}
	}
	return nil
}

func (CSVExporter) ContentType() string { return contentTypeCSV }

func (CSVExporter) Export(w io.Writer, headers []string, snapshot instrument.TableSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range snapshot {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	log.Printf("[Export] csv written (%d columns, %d rows)", len(headers), len(snapshot))
	return nil
}
