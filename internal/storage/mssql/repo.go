package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"salesdw/internal/storage"
)

// Repo implements storage.Repository for Microsoft SQL Server.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so EnsureSchema guards every DDL
// statement with an OBJECT_ID / sys.indexes existence check to stay
// idempotent across reloads.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}

	// Conservative defaults for ETL-style bursty loads.
	db.SetMaxOpenConns(64)
	db.SetMaxIdleConns(64)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("mssql: create table %s: %w", t.Name, err)
		}
		for _, idx := range t.Indexes {
			if _, err := r.db.ExecContext(ctx, buildCreateIndexSQL(t.Name, idx)); err != nil {
				return fmt.Errorf("mssql: create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

func (r *Repo) Begin(ctx context.Context) (storage.Batch, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &batch{tx: tx}, nil
}

func (r *Repo) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+msIdent(table)).Scan(&n)
	return n, err
}

func (r *Repo) CountMissingRefs(ctx context.Context, factTable, factColumn, dimTable, dimColumn string) (int64, error) {
	q := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s f LEFT JOIN %s d ON f.%s = d.%s WHERE f.%s IS NOT NULL AND d.%s IS NULL`,
		msIdent(factTable), msIdent(dimTable),
		msIdent(factColumn), msIdent(dimColumn), msIdent(factColumn), msIdent(dimColumn),
	)
	var n int64
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

type batch struct {
	tx *sql.Tx
}

func (b *batch) Clear(ctx context.Context, tables []string) error {
	for _, t := range tables {
		if _, err := b.tx.ExecContext(ctx, "DELETE FROM "+msIdent(t)); err != nil {
			return fmt.Errorf("mssql: clear %s: %w", t, err)
		}
	}
	return nil
}

// Insert performs a multi-row INSERT using @pN placeholders.
//
// SQL Server caps a statement at 2100 parameters, so wide batches are split
// into chunks below that limit.
func (b *batch) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: insert %s: no columns", table)
	}

	maxRows := 2000 / len(columns)
	if maxRows < 1 {
		maxRows = 1
	}

	var total int64
	for start := 0; start < len(rows); start += maxRows {
		end := start + maxRows
		if end > len(rows) {
			end = len(rows)
		}
		q, args, err := buildInsertSQL(table, columns, rows[start:end])
		if err != nil {
			return total, err
		}
		res, err := b.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return total, fmt.Errorf("mssql: insert %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (b *batch) Commit(ctx context.Context) error   { return b.tx.Commit() }
func (b *batch) Rollback(ctx context.Context) error { return b.tx.Rollback() }

func msIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(msIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(msIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mssql: insert %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args, nil
}

func buildCreateTableSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", msIdent(c.Name), columnType(c.Type))
		if c.Nullable != nil && !*c.Nullable {
			col += " NOT NULL"
		}
		if c.DefaultNow {
			col += " DEFAULT SYSUTCDATETIME()"
		}
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		parts = append(parts, col)
	}
	if t.PrimaryKey != "" {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", msIdent(t.PrimaryKey)))
	}

	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		t.Name, msIdent(t.Name), strings.Join(parts, ",\n  "),
	), nil
}

func buildCreateIndexSQL(table string, idx storage.IndexSpec) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, msIdent(c))
	}
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'%s' AND object_id = OBJECT_ID(N'%s'))\nCREATE INDEX %s ON %s (%s);",
		idx.Name, table, msIdent(idx.Name), msIdent(table), strings.Join(cols, ", "),
	)
}

func columnType(portable string) string {
	switch strings.ToLower(strings.TrimSpace(portable)) {
	case "integer":
		return "BIGINT"
	case "real":
		return "FLOAT"
	case "date":
		return "DATE"
	case "timestamp":
		return "DATETIME2"
	default:
		return "NVARCHAR(255)"
	}
}
