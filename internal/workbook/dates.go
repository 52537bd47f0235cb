package workbook

import (
	"time"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the built-in number format IDs that render dates.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 27: true, 30: true, 36: true,
	45: true, 46: true, 47: true, 50: true, 57: true,
}

// dateStyles memoises which style IDs carry a date number format.
type dateStyles struct {
	f     *excelize.File
	cache map[int]bool
}

func newDateStyles(f *excelize.File) *dateStyles {
	return &dateStyles{f: f, cache: make(map[int]bool)}
}

func (d *dateStyles) isDate(styleID int) bool {
	if v, ok := d.cache[styleID]; ok {
		return v
	}
	v := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		switch {
		case style.CustomNumFmt != nil:
			v = isDateFormatCode(*style.CustomNumFmt)
		default:
			v = builtinDateFormats[style.NumFmt]
		}
	}
	d.cache[styleID] = v
	return v
}

// cellTime converts the serial value at axis to a time when the cell's
// style is a date format.
func (d *dateStyles) cellTime(sheet, axis string, serial float64) (time.Time, bool) {
	styleID, err := d.f.GetCellStyle(sheet, axis)
	if err != nil || !d.isDate(styleID) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isDateFormatCode reports whether a custom number format renders a date:
// it has a day or year token outside quoted literals and bracketed sections.
func isDateFormatCode(code string) bool {
	var inQuote, inBracket bool
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			switch c {
			case 'd', 'D', 'y', 'Y':
				return true
			}
		}
	}
	return false
}
