// Package table defines the ordered tabular structure the cleaning and
// loading stages operate on. A nil cell is the canonical missing-value
// marker; non-missing cells hold string, int64, float64 or time.Time.
package table

import "fmt"

// Table is an ordered sequence of records with named columns.
//
// Tables are treated as immutable by the pipeline: stages build new Tables
// instead of mutating the one they received, so before/after states stay
// inspectable.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given column order.
func New(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of a column, or -1 if absent.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// MustColumnIndex is ColumnIndex for columns the caller knows exist.
// Referencing a column that is not in the table is a programming error.
func (t Table) MustColumnIndex(name string) int {
	i := t.ColumnIndex(name)
	if i < 0 {
		panic(fmt.Sprintf("table: unknown column %q", name))
	}
	return i
}

// Value returns the cell at (row, column name); nil means missing.
func (t Table) Value(row int, column string) any {
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil
	}
	return t.Rows[row][i]
}

// Clone returns a deep copy of the table's structure: fresh column and row
// slices. Cell values are shared (they are immutable scalars).
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}

// AppendRow adds a record. The row length must match the column count.
func (t *Table) AppendRow(row []any) {
	if len(row) != len(t.Columns) {
		panic(fmt.Sprintf("table: row has %d cells, table has %d columns", len(row), len(t.Columns)))
	}
	t.Rows = append(t.Rows, row)
}
