package sheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// unitSuffixRegexp strips currency and area units typed into numeric cells
	unitSuffixRegexp = regexp.MustCompile(`(?i)\s*(kr\.?|dkk|m2|m²)$`)
	// numberRegexp accepts digits with optional sign and separators
	numberRegexp = regexp.MustCompile(`^[-+]?[\d.,]+$`)
	// dotGroupRegexp matches a single Danish thousands group such as 100.000
	dotGroupRegexp = regexp.MustCompile(`^[-+]?[1-9]\d{0,2}\.\d{3}$`)

	blankReplacer = strings.NewReplacer(" ", "", "\u00a0", "", "'", "")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02-01-2006",
	"02.01.2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-06",
	"02.01.06",
}

// ParseNumber converts cell text to a float. It accepts plain and scientific
// notation as written by spreadsheet tools, and Danish or English grouping
// ("1.234.567,5", "1,234,567.5", "1 234 567").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}

	s = unitSuffixRegexp.ReplaceAllString(s, "")
	s = blankReplacer.Replace(s)
	if !numberRegexp.MatchString(s) {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// ParseAmount is ParseNumber for prices, areas and counts. A lone dot
// followed by exactly three digits is read as a thousands separator, so
// "100.000" is one hundred thousand. Coordinates must use ParseNumber.
func ParseAmount(s string) (float64, bool) {
	t := unitSuffixRegexp.ReplaceAllString(strings.TrimSpace(s), "")
	t = blankReplacer.Replace(t)
	if dotGroupRegexp.MatchString(t) {
		return ParseNumber(strings.Replace(t, ".", "", 1))
	}
	return ParseNumber(s)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDate converts cell text to a date. Numeric text is read as an Excel
// serial date (1900 date system).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatNumber renders f so that ParseNumber returns exactly f again.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt renders an integer cell.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}
