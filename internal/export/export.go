// Package export writes resampled tables to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/tse-eval/resampler/internal/core/series"
)

// TimeLayout formats the time index in every export.
const TimeLayout = "2006-01-02 15:04:05"

// SheetName is the worksheet holding the table in XLSX exports.
const SheetName = "resampled"

const indexHeader = "time"

// Header returns the exported column order: the entity key (keyed tables
// only), the time index, numeric columns and label columns.
func Header(tbl *series.Table) []string {
	var header []string
	if tbl.Keyed() {
		header = append(header, keyHeader(tbl))
	}
	header = append(header, indexHeader)
	for _, c := range tbl.Numeric {
		header = append(header, c.Name)
	}
	for _, l := range tbl.Labels {
		header = append(header, l.Name)
	}
	return header
}

func keyHeader(tbl *series.Table) string {
	if tbl.KeyName == "" {
		return "entity"
	}
	return tbl.KeyName
}

// FormatValue renders one numeric cell. Absent values render empty and
// integer columns render without a fractional part.
func FormatValue(v float64, integer bool) string {
	if series.Absent(v) {
		return ""
	}
	if integer {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Records renders tbl as string rows, header first.
func Records(tbl *series.Table) [][]string {
	records := make([][]string, 0, tbl.Len()+1)
	records = append(records, Header(tbl))
	for i := range tbl.Len() {
		row := make([]string, 0, len(records[0]))
		if tbl.Keyed() {
			row = append(row, tbl.Keys[i])
		}
		row = append(row, tbl.Time[i].UTC().Format(TimeLayout))
		for _, c := range tbl.Numeric {
			row = append(row, FormatValue(c.Values[i], c.Integer))
		}
		for _, l := range tbl.Labels {
			row = append(row, l.Values[i])
		}
		records = append(records, row)
	}
	return records
}

// WriteCSV writes tbl to path, creating parent directories as needed.
func WriteCSV(path string, tbl *series.Table) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export csv: create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(Records(tbl)); err != nil {
		return fmt.Errorf("export csv: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export csv: close %s: %w", path, err)
	}

	slog.Info("[Export] Wrote CSV", "path", path, "rows", tbl.Len())
	return nil
}

// WriteXLSX writes tbl to a single-sheet workbook at path. Numeric cells are
// stored as numbers; absent values leave the cell empty.
func WriteXLSX(path string, tbl *series.Table) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export xlsx: create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	header := Header(tbl)
	for col, name := range header {
		if err := setCell(f, col, 1, name); err != nil {
			return err
		}
	}

	for i := range tbl.Len() {
		row := i + 2
		col := 0
		if tbl.Keyed() {
			if err := setCell(f, col, row, tbl.Keys[i]); err != nil {
				return err
			}
			col++
		}
		if err := setCell(f, col, row, tbl.Time[i].UTC().Format(TimeLayout)); err != nil {
			return err
		}
		col++
		for _, c := range tbl.Numeric {
			if v := c.Values[i]; !series.Absent(v) {
				var cell any = v
				if c.Integer {
					cell = int64(math.Round(v))
				}
				if err := setCell(f, col, row, cell); err != nil {
					return err
				}
			}
			col++
		}
		for _, l := range tbl.Labels {
			if err := setCell(f, col, row, l.Values[i]); err != nil {
				return err
			}
			col++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export xlsx: save %s: %w", path, err)
	}

	slog.Info("[Export] Wrote XLSX", "path", path, "rows", tbl.Len())
	return nil
}

// setCell writes value at the zero-based column and one-based row.
func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("export xlsx: set %s: %w", cell, err)
	}
	return nil
}
