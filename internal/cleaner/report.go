package cleaner

import (
	"strings"

	"salesdw/internal/table"
)

// Consistency reports null counts per column and the number of records whose
// key-tuple appears more than once. It is diagnostic output, never control
// flow.
type Consistency struct {
	NullCounts map[string]int
	Duplicates int
}

// Check computes a consistency report over the current table state. With no
// keys, the whole record is the duplicate key.
func (c Cleaner) Check(keys ...string) Consistency {
	t := c.t

	idx := make([]int, 0, len(keys))
	if len(keys) == 0 {
		for i := range t.Columns {
			idx = append(idx, i)
		}
	} else {
		for _, k := range keys {
			idx = append(idx, t.MustColumnIndex(k))
		}
	}

	out := Consistency{NullCounts: make(map[string]int, len(t.Columns))}
	seen := make(map[string]struct{}, len(t.Rows))

	for _, row := range t.Rows {
		for i, v := range row {
			if v == nil {
				out.NullCounts[t.Columns[i]]++
			}
		}

		var b strings.Builder
		for _, i := range idx {
			b.WriteString(tableCellKey(row[i]))
			b.WriteByte('\x1f')
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			out.Duplicates++
		}
		seen[k] = struct{}{}
	}

	return out
}

func tableCellKey(v any) string {
	if v == nil {
		return "\x00"
	}
	return strings.TrimSpace(table.FormatCell(v))
}
