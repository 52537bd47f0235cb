package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// Row is one spreadsheet row keyed by header. Values are nil, string or
// time.Time (for date-formatted cells); numeric kinds are tolerated too.
type Row map[string]any

const isoDate = "2006-01-02"

// buddhistEraOffset converts Thai Buddhist Era years to Gregorian.
const buddhistEraOffset = 543

// Resolve returns the value of the first key in keys that exists in row,
// or def when none do.
func Resolve(row Row, keys []string, def any) any {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return v
		}
	}
	return def
}

// ToText returns the trimmed string form of v, or "" for nil.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format(isoDate)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case interface{ String() string }:
		return strings.TrimSpace(x.String())
	default:
		return ""
	}
}

// ToFloat converts v to a float64. Thousands separators are stripped;
// anything that still does not parse yields 0.
func ToFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	s := strings.ReplaceAll(ToText(v), ",", "")
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ToInt rounds ToFloat(v) half-to-even.
func ToInt(v any) int {
	return int(math.RoundToEven(ToFloat(v)))
}

var (
	// digitDate is a numeric day/month/year with dot or dash separators.
	digitDate = regexp.MustCompile(`^(\d{1,2})[.-](\d{1,2})[.-](\d{2,4})$`)
	yearToken = regexp.MustCompile(`\d{4}`)
	allDigits = regexp.MustCompile(`^\d+$`)
)

// ParseDate formats v as YYYY-MM-DD. Native dates are formatted directly;
// text is parsed month-first, then day-first. Buddhist Era years are
// converted before parsing. ok is false when v is empty or nothing parses.
func ParseDate(v any) (string, bool) {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return "", false
		}
		return t.Format(isoDate), true
	}
	s := ToText(v)
	if s == "" {
		return "", false
	}
	// Bare numbers would otherwise read as years or unix timestamps.
	if allDigits.MatchString(s) && len(s) != 8 {
		return "", false
	}
	s = fromBuddhistEra(s)
	s = digitDate.ReplaceAllString(s, "$1/$2/$3")

	t, err := dateparse.ParseAny(s)
	if err != nil {
		t, err = dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
		if err != nil {
			return "", false
		}
	}
	return t.Format(isoDate), true
}

// fromBuddhistEra rewrites four-digit years of 2400 or later as Gregorian.
func fromBuddhistEra(s string) string {
	return yearToken.ReplaceAllStringFunc(s, func(y string) string {
		n, err := strconv.Atoi(y)
		if err != nil || n < 2400 {
			return y
		}
		return strconv.Itoa(n - buddhistEraOffset)
	})
}
