// The schema types live here so both the star loader and the backend
// packages can import them without circular deps.
package storage

// TableSpec describes one warehouse table in backend-neutral terms.
//
// Column types use portable tokens ("text", "integer", "real", "date",
// "timestamp"); each backend maps them to its native types.
type TableSpec struct {
	Name       string
	PrimaryKey string // column name; type comes from Columns
	Columns    []ColumnSpec
	Indexes    []IndexSpec
}

type ColumnSpec struct {
	Name       string
	Type       string // "text" | "integer" | "real" | "date" | "timestamp"
	Nullable   *bool  // nil means nullable
	References string // "table(column)", informational FK
	DefaultNow bool   // timestamp column defaults to insert time
}

type IndexSpec struct {
	Name    string
	Columns []string
}

// NotNull is a convenience for ColumnSpec.Nullable.
func NotNull() *bool {
	b := false
	return &b
}
