package cleaner

import (
	"strconv"
	"strings"
	"time"
)

// Kind names a target cell representation for type coercion.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
)

// Case names a text casing mode.
type Case string

const (
	CaseLower Case = "lower"
	CaseUpper Case = "upper"
	CaseTitle Case = "title"
)

// dateLayouts are the input formats accepted when parsing heterogeneous date
// text. The first matching layout wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"02-Jan-2006",
	time.RFC3339,
}

// parseDate parses date text into a calendar date (midnight UTC).
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			y, m, d := ts.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// asFloat reports the numeric value of a cell, parsing numeric text.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asInt reports the integer value of a cell. Float values convert only when
// they carry no fractional part.
func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		// Numeric text like "12.0" still counts as an integer.
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// coerce converts a cell to the requested kind. Missing stays missing.
func coerce(v any, kind Kind) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch kind {
	case KindString:
		switch t := v.(type) {
		case string:
			return t, true
		case int64:
			return strconv.FormatInt(t, 10), true
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case time.Time:
			return t.Format("2006-01-02"), true
		default:
			return nil, false
		}
	case KindInt:
		n, ok := asInt(v)
		return n, ok
	case KindFloat:
		f, ok := asFloat(v)
		return f, ok
	default:
		return nil, false
	}
}
