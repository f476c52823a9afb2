package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesdw/internal/storage"
)

// Repo implements storage.Repository for Postgres using a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

// EnsureSchema creates warehouse tables and indexes with IF NOT EXISTS
// semantics, so reloads are safe against an existing warehouse.
func (r *Repo) EnsureSchema(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: create table %s: %w", t.Name, err)
		}
		for _, idx := range t.Indexes {
			if _, err := r.pool.Exec(ctx, buildCreateIndexSQL(t.Name, idx)); err != nil {
				return fmt.Errorf("postgres: create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

func (r *Repo) Begin(ctx context.Context) (storage.Batch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &batch{tx: tx}, nil
}

func (r *Repo) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgIdent(table)).Scan(&n)
	return n, err
}

func (r *Repo) CountMissingRefs(ctx context.Context, factTable, factColumn, dimTable, dimColumn string) (int64, error) {
	q := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s f LEFT JOIN %s d ON f.%s = d.%s WHERE f.%s IS NOT NULL AND d.%s IS NULL`,
		pgIdent(factTable), pgIdent(dimTable),
		pgIdent(factColumn), pgIdent(dimColumn), pgIdent(factColumn), pgIdent(dimColumn),
	)
	var n int64
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}

type batch struct {
	tx pgx.Tx
}

func (b *batch) Clear(ctx context.Context, tables []string) error {
	for _, t := range tables {
		if _, err := b.tx.Exec(ctx, "DELETE FROM "+pgIdent(t)); err != nil {
			return fmt.Errorf("postgres: clear %s: %w", t, err)
		}
	}
	return nil
}

func (b *batch) Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	sql, args, err := buildInsertSQL(table, columns, rows)
	if err != nil {
		return 0, err
	}
	cmd, err := b.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert %s: %w", table, err)
	}
	return cmd.RowsAffected(), nil
}

func (b *batch) Commit(ctx context.Context) error { return b.tx.Commit(ctx) }

func (b *batch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildInsertSQL constructs a single multi-row INSERT and its args.
//
// It is pure and deterministic, so placeholder numbering can be unit tested
// without a database.
func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("postgres: insert %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
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
		col := fmt.Sprintf("%s %s", pgIdent(c.Name), columnType(c.Type))
		if c.Nullable != nil && !*c.Nullable {
			col += " NOT NULL"
		}
		if c.DefaultNow {
			col += " DEFAULT now()"
		}
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		parts = append(parts, col)
	}
	if t.PrimaryKey != "" {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", pgIdent(t.PrimaryKey)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", pgIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func buildCreateIndexSQL(table string, idx storage.IndexSpec) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, pgIdent(c))
	}
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
		pgIdent(idx.Name), pgIdent(table), strings.Join(cols, ", "),
	)
}

func columnType(portable string) string {
	switch strings.ToLower(strings.TrimSpace(portable)) {
	case "integer":
		return "BIGINT"
	case "real":
		return "DOUBLE PRECISION"
	case "date":
		return "DATE"
	case "timestamp":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
