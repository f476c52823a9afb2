package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"salesdw/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// Key design points vs Postgres:
//   - SQLite has no native DATE type; date cells are stored as TEXT in
//     "YYYY-MM-DD" form, which sorts and compares correctly.
//   - Foreign key REFERENCES clauses are emitted for documentation value but
//     enforcement depends on PRAGMA foreign_keys; the loader guarantees
//     referential completeness itself, so the pragma is left off.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	// The warehouse load is a single writer; one connection avoids
	// SQLITE_BUSY between the batch transaction and verification reads.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// EnsureSchema creates warehouse tables and indexes. Idempotent: every
// statement uses IF NOT EXISTS, so reloads are safe.
func (r *Repo) EnsureSchema(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: create table %s: %w", t.Name, err)
		}
		for _, idx := range t.Indexes {
			if _, err := r.db.ExecContext(ctx, buildCreateIndexSQL(t.Name, idx)); err != nil {
				return fmt.Errorf("sqlite: create index %s: %w", idx.Name, err)
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
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+sqlIdent(table)).Scan(&n)
	return n, err
}

func (r *Repo) CountMissingRefs(ctx context.Context, factTable, factColumn, dimTable, dimColumn string) (int64, error) {
	q := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s f LEFT JOIN %s d ON f.%s = d.%s WHERE f.%s IS NOT NULL AND d.%s IS NULL`,
		sqlIdent(factTable), sqlIdent(dimTable),
		sqlIdent(factColumn), sqlIdent(dimColumn), sqlIdent(factColumn), sqlIdent(dimColumn),
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
		if _, err := b.tx.ExecContext(ctx, "DELETE FROM "+sqlIdent(t)); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", t, err)
		}
	}
	return nil
}

// Insert performs a multi-row INSERT with ? placeholders.
func (b *batch) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	colList := make([]string, 0, len(columns))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c))
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(sqlIdent(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(colList, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("sqlite: insert %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholders)
		args = append(args, row...)
	}

	res, err := b.tx.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (b *batch) Commit(ctx context.Context) error   { return b.tx.Commit() }
func (b *batch) Rollback(ctx context.Context) error { return b.tx.Rollback() }

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateTableSQL generates idempotent DDL for one warehouse table.
//
// It is pure, so identifier quoting and type mapping are unit-testable
// without a database.
func buildCreateTableSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", sqlIdent(c.Name), columnType(c.Type))
		if c.Nullable != nil && !*c.Nullable {
			col += " NOT NULL"
		}
		if c.DefaultNow {
			col += " DEFAULT CURRENT_TIMESTAMP"
		}
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		parts = append(parts, col)
	}
	if t.PrimaryKey != "" {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", sqlIdent(t.PrimaryKey)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func buildCreateIndexSQL(table string, idx storage.IndexSpec) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, sqlIdent(c))
	}
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
		sqlIdent(idx.Name), sqlIdent(table), strings.Join(cols, ", "),
	)
}

// columnType maps portable schema types to SQLite storage classes.
func columnType(portable string) string {
	switch strings.ToLower(strings.TrimSpace(portable)) {
	case "integer":
		return "INTEGER"
	case "real":
		return "REAL"
	case "date", "timestamp", "text":
		return "TEXT"
	default:
		return "TEXT"
	}
}
