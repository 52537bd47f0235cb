package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/extractor"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrSourceNotFound means the workbook path does not exist.
	ErrSourceNotFound = errors.New("workbook not found")
	// ErrSourceParse means the workbook could not be opened or read.
	ErrSourceParse = errors.New("workbook unreadable")
)

// Workbook is an open .xlsx file.
type Workbook struct {
	f *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceParse, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceParse, err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// lookup finds a sheet by case-insensitive name.
func (w *Workbook) lookup(name string) (string, bool) {
	for _, s := range w.f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return "", false
}

// Sheet reads the named sheet into header-keyed rows. The first row is the
// header and blank-header columns are dropped. A row is skipped when every
// kept cell is empty, so a value under a blank header alone does not keep
// the row. An absent sheet returns no rows and no error.
func (w *Workbook) Sheet(name string) ([]extractor.Row, error) {
	sheet, ok := w.lookup(name)
	if !ok {
		return nil, nil
	}

	formatted, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrSourceParse, sheet, err)
	}
	if len(formatted) == 0 {
		return nil, nil
	}
	raw, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrSourceParse, sheet, err)
	}

	headers := make([]string, len(formatted[0]))
	for i, h := range formatted[0] {
		headers[i] = strings.TrimSpace(h)
	}

	dates := newDateStyles(w.f)
	var rows []extractor.Row
	for r := 1; r < len(formatted); r++ {
		cells := formatted[r]
		row := make(extractor.Row, len(headers))
		empty := true
		for c, h := range headers {
			if h == "" {
				continue
			}
			var v any
			var text string
			if c < len(cells) {
				text = cells[c]
				v = text
			}
			if stored := rawCell(raw, r, c); text != "" || stored != "" {
				empty = false
				v = w.cellValue(sheet, dates, c, r, text, stored)
			}
			row[h] = v
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// cellValue returns the computed value of the zero-based cell (col, row).
// Numeric cells yield their stored number, or a time when the style is a
// date format. Everything else yields the displayed text.
func (w *Workbook) cellValue(sheet string, dates *dateStyles, col, row int, text, raw string) any {
	serial, ok := parseSerial(raw)
	if !ok {
		return text
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return text
	}
	typ, err := w.f.GetCellType(sheet, axis)
	if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
		return text
	}
	if t, ok := dates.cellTime(sheet, axis, serial); ok {
		return t
	}
	return strings.TrimSpace(raw)
}

func rawCell(raw [][]string, r, c int) string {
	if r < len(raw) && c < len(raw[r]) {
		return raw[r][c]
	}
	return ""
}

// Load opens the workbook at path and extracts all four sheets.
func Load(path string, names extractor.SheetNames) (*model.Dataset, error) {
	wb, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return extractor.Extract(wb, names)
}

// parseSerial reads an Excel serial date number.
func parseSerial(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
