// Package cleaner implements composable cleaning operations over ordered
// tables. Every operation returns a new Cleaner holding a new table state, so
// callers can chain operations and still inspect intermediate results.
//
// Operations never return errors: record-level problems (unparseable values,
// out-of-bounds numbers) drop or null the affected record and are reported
// through the injected event sink.
package cleaner

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"salesdw/internal/table"
)

// DefaultPlaceholders is the closed set of tokens treated as missing values,
// compared case-insensitively after trimming.
var DefaultPlaceholders = []string{"n/a", "na", "null", "none", "unknown", ""}

// Event describes the effect of one cleaning operation.
type Event struct {
	Op       string
	Field    string
	Dropped  int
	Filled   int
	Replaced int
}

// EventSink receives cleaning events. The cleaner never logs directly; the
// caller decides where diagnostics go.
type EventSink func(Event)

// Cleaner wraps a table state and an event sink. The zero sink discards
// events.
type Cleaner struct {
	t    table.Table
	sink EventSink
}

// New wraps a table. The table is cloned so later operations never alias the
// caller's data.
func New(t table.Table, sink EventSink) Cleaner {
	return Cleaner{t: t.Clone(), sink: sink}
}

// Table returns the current table state.
func (c Cleaner) Table() table.Table { return c.t }

func (c Cleaner) emit(e Event) {
	if c.sink != nil {
		c.sink(e)
	}
}

// next returns a Cleaner holding the new table state.
func (c Cleaner) next(t table.Table) Cleaner {
	return Cleaner{t: t, sink: c.sink}
}

// RemoveDuplicateRecords drops records whose key-tuple has appeared earlier,
// keeping the first occurrence. With no keys, the whole record is the key.
// Order-preserving and idempotent.
func (c Cleaner) RemoveDuplicateRecords(keys ...string) Cleaner {
	idx := make([]int, 0, len(keys))
	if len(keys) == 0 {
		for i := range c.t.Columns {
			idx = append(idx, i)
		}
	} else {
		for _, k := range keys {
			idx = append(idx, c.t.MustColumnIndex(k))
		}
	}

	out := table.New(c.t.Columns...)
	seen := make(map[string]struct{}, len(c.t.Rows))
	dropped := 0

	for _, row := range c.t.Rows {
		var b strings.Builder
		for _, i := range idx {
			b.WriteString(table.FormatCell(row[i]))
			b.WriteByte('\x1f')
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out.AppendRow(row)
	}

	c.emit(Event{Op: "remove_duplicates", Field: strings.Join(keys, ","), Dropped: dropped})
	return c.next(out)
}

// ReplacePlaceholders maps placeholder tokens to the missing-value marker.
// Tokens are matched case-insensitively after trimming. With no tokens,
// DefaultPlaceholders applies.
func (c Cleaner) ReplacePlaceholders(tokens ...string) Cleaner {
	if len(tokens) == 0 {
		tokens = DefaultPlaceholders
	}
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}

	out := table.New(c.t.Columns...)
	replaced := 0
	for _, row := range c.t.Rows {
		nr := append([]any(nil), row...)
		for i, v := range nr {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if _, hit := set[strings.ToLower(strings.TrimSpace(s))]; hit {
				nr[i] = nil
				replaced++
			}
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "replace_placeholders", Replaced: replaced})
	return c.next(out)
}

// StandardizeTextColumn trims whitespace and applies a casing mode to one
// column. Non-text values are left untouched.
func (c Cleaner) StandardizeTextColumn(field string, mode Case) Cleaner {
	i := c.t.MustColumnIndex(field)

	caser := cases.Title(language.English)

	out := table.New(c.t.Columns...)
	changed := 0
	for _, row := range c.t.Rows {
		nr := append([]any(nil), row...)
		if s, ok := nr[i].(string); ok {
			v := strings.TrimSpace(s)
			switch mode {
			case CaseLower:
				v = strings.ToLower(v)
			case CaseUpper:
				v = strings.ToUpper(v)
			case CaseTitle:
				v = caser.String(v)
			}
			if v != s {
				changed++
			}
			nr[i] = v
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "standardize_text", Field: field, Replaced: changed})
	return c.next(out)
}

// MapValues rewrites cell values of one column through a canonical value map.
// Map keys are matched case-insensitively after trimming; unmapped values are
// kept as-is (trimmed). Non-text values are untouched.
func (c Cleaner) MapValues(field string, mapping map[string]string) Cleaner {
	i := c.t.MustColumnIndex(field)

	lower := make(map[string]string, len(mapping))
	for k, v := range mapping {
		lower[strings.ToLower(strings.TrimSpace(k))] = v
	}

	out := table.New(c.t.Columns...)
	replaced := 0
	for _, row := range c.t.Rows {
		nr := append([]any(nil), row...)
		if s, ok := nr[i].(string); ok {
			s = strings.TrimSpace(s)
			if canon, hit := lower[strings.ToLower(s)]; hit {
				if canon != s {
					replaced++
				}
				s = canon
			}
			nr[i] = s
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "map_values", Field: field, Replaced: replaced})
	return c.next(out)
}

// HandleMissingData drops records missing any required field and fills
// missing optional fields with configured defaults.
func (c Cleaner) HandleMissingData(required []string, fill map[string]any) Cleaner {
	reqIdx := make([]int, 0, len(required))
	for _, f := range required {
		reqIdx = append(reqIdx, c.t.MustColumnIndex(f))
	}
	fillIdx := make(map[int]any, len(fill))
	for f, v := range fill {
		fillIdx[c.t.MustColumnIndex(f)] = v
	}

	out := table.New(c.t.Columns...)
	dropped, filled := 0, 0
	for _, row := range c.t.Rows {
		missingRequired := false
		for _, i := range reqIdx {
			if row[i] == nil {
				missingRequired = true
				break
			}
		}
		if missingRequired {
			dropped++
			continue
		}

		nr := append([]any(nil), row...)
		for i, def := range fillIdx {
			if nr[i] == nil {
				nr[i] = def
				filled++
			}
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "handle_missing", Dropped: dropped, Filled: filled})
	return c.next(out)
}

// FilterColumnOutliers drops records whose numeric field falls outside the
// inclusive [min, max] bound. Missing values are not outliers. Non-numeric
// values in the field drop the record (they cannot satisfy the bound).
func (c Cleaner) FilterColumnOutliers(field string, min, max float64) Cleaner {
	i := c.t.MustColumnIndex(field)

	out := table.New(c.t.Columns...)
	dropped := 0
	for _, row := range c.t.Rows {
		if row[i] != nil {
			f, ok := asFloat(row[i])
			if !ok || f < min || f > max {
				dropped++
				continue
			}
		}
		out.AppendRow(row)
	}

	c.emit(Event{Op: "filter_outliers", Field: field, Dropped: dropped})
	return c.next(out)
}

// FilterDateOutliers drops records whose date field falls outside the
// inclusive [min, max] range. Missing values are not outliers; values that
// are not calendar dates drop the record. Run ParseDates on the field first.
func (c Cleaner) FilterDateOutliers(field string, min, max time.Time) Cleaner {
	i := c.t.MustColumnIndex(field)

	out := table.New(c.t.Columns...)
	dropped := 0
	for _, row := range c.t.Rows {
		if row[i] != nil {
			ts, ok := row[i].(time.Time)
			if !ok || ts.Before(min) || ts.After(max) {
				dropped++
				continue
			}
		}
		out.AppendRow(row)
	}

	c.emit(Event{Op: "filter_date_outliers", Field: field, Dropped: dropped})
	return c.next(out)
}

// ConvertColumnType coerces the field to the target kind. Records whose value
// cannot be coerced are dropped; missing values stay missing.
func (c Cleaner) ConvertColumnType(field string, kind Kind) Cleaner {
	i := c.t.MustColumnIndex(field)

	out := table.New(c.t.Columns...)
	dropped := 0
	for _, row := range c.t.Rows {
		v, ok := coerce(row[i], kind)
		if !ok {
			dropped++
			continue
		}
		nr := append([]any(nil), row...)
		nr[i] = v
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "convert_type", Field: field, Dropped: dropped})
	return c.next(out)
}

// ParseDates parses heterogeneous date text in the field into calendar dates.
// Unparseable dates become missing for that field (the missing-data policy
// decides what happens next).
func (c Cleaner) ParseDates(field string) Cleaner {
	i := c.t.MustColumnIndex(field)

	out := table.New(c.t.Columns...)
	replaced, nulled := 0, 0
	for _, row := range c.t.Rows {
		nr := append([]any(nil), row...)
		switch v := nr[i].(type) {
		case nil, time.Time:
			// already parsed or missing
		case string:
			if ts, ok := parseDate(v); ok {
				nr[i] = ts
				replaced++
			} else {
				nr[i] = nil
				nulled++
			}
		default:
			nr[i] = nil
			nulled++
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "parse_dates", Field: field, Replaced: replaced, Dropped: nulled})
	return c.next(out)
}

// RenameColumns renames columns per mapping. Structural only.
func (c Cleaner) RenameColumns(mapping map[string]string) Cleaner {
	out := c.t.Clone()
	for i, col := range out.Columns {
		if nn, ok := mapping[col]; ok {
			out.Columns[i] = nn
		}
	}
	c.emit(Event{Op: "rename_columns"})
	return c.next(out)
}

// ReorderColumns reshapes the table to exactly the named columns in order.
// Columns not named are dropped. Naming an absent column is a caller bug.
func (c Cleaner) ReorderColumns(order ...string) Cleaner {
	idx := make([]int, len(order))
	for i, col := range order {
		idx[i] = c.t.MustColumnIndex(col)
	}

	out := table.New(order...)
	for _, row := range c.t.Rows {
		nr := make([]any, len(idx))
		for i, src := range idx {
			nr[i] = row[src]
		}
		out.AppendRow(nr)
	}

	c.emit(Event{Op: "reorder_columns"})
	return c.next(out)
}

// DropColumns removes the named columns. Absent names are ignored.
func (c Cleaner) DropColumns(names ...string) Cleaner {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	keep := make([]string, 0, len(c.t.Columns))
	for _, col := range c.t.Columns {
		if _, gone := drop[col]; !gone {
			keep = append(keep, col)
		}
	}
	return c.ReorderColumns(keep...)
}
