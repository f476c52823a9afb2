package mssql

import (
	"strings"
	"testing"

	"salesdw/internal/storage"
)

func TestBuildInsertSQLNamedPlaceholders(t *testing.T) {
	sql, args, err := buildInsertSQL("sales", []string{"sale_id", "amount"}, [][]any{
		{"T1", 10.0},
		{"T2", 20.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `INSERT INTO [sales] ([sale_id], [amount]) VALUES (@p1, @p2), (@p3, @p4);`
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildCreateTableSQLGuardsExistence(t *testing.T) {
	spec := storage.TableSpec{
		Name:       "customers",
		PrimaryKey: "customer_id",
		Columns: []storage.ColumnSpec{
			{Name: "customer_id", Type: "text", Nullable: storage.NotNull()},
			{Name: "join_date", Type: "date"},
			{Name: "loyalty_points", Type: "integer"},
			{Name: "created_at", Type: "timestamp", DefaultNow: true},
		},
	}

	got, err := buildCreateTableSQL(spec)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`IF OBJECT_ID(N'customers', N'U') IS NULL`,
		`CREATE TABLE [customers]`,
		`[customer_id] NVARCHAR(255) NOT NULL`,
		`[join_date] DATE`,
		`[loyalty_points] BIGINT`,
		`[created_at] DATETIME2 DEFAULT SYSUTCDATETIME()`,
		`PRIMARY KEY ([customer_id])`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DDL missing %q:\n%s", want, got)
		}
	}
}

func TestBuildCreateIndexSQLGuardsExistence(t *testing.T) {
	got := buildCreateIndexSQL("sales", storage.IndexSpec{
		Name: "idx_sales_store_id", Columns: []string{"store_id"},
	})
	if !strings.Contains(got, `IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_sales_store_id'`) {
		t.Errorf("index DDL not guarded:\n%s", got)
	}
	if !strings.Contains(got, `CREATE INDEX [idx_sales_store_id] ON [sales] ([store_id]);`) {
		t.Errorf("index DDL malformed:\n%s", got)
	}
}

func TestMsIdentEscapesBrackets(t *testing.T) {
	if got := msIdent("we]ird"); got != "[we]]ird]" {
		t.Errorf("msIdent = %q", got)
	}
}
