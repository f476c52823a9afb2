package sqlite

import (
	"context"
	"strings"
	"testing"

	"salesdw/internal/storage"
)

func TestBuildCreateTableSQL(t *testing.T) {
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
		`CREATE TABLE IF NOT EXISTS "customers"`,
		`"customer_id" TEXT NOT NULL`,
		`"join_date" TEXT`,
		`"loyalty_points" INTEGER`,
		`"created_at" TEXT DEFAULT CURRENT_TIMESTAMP`,
		`PRIMARY KEY ("customer_id")`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("DDL missing %q:\n%s", want, got)
		}
	}
}

func TestBuildCreateTableSQLEmptyName(t *testing.T) {
	if _, err := buildCreateTableSQL(storage.TableSpec{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildCreateIndexSQL(t *testing.T) {
	got := buildCreateIndexSQL("sales", storage.IndexSpec{
		Name: "idx_sales_store_id", Columns: []string{"store_id"},
	})
	want := `CREATE INDEX IF NOT EXISTS "idx_sales_store_id" ON "sales" ("store_id");`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, err := New(ctx, storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	tables := []storage.TableSpec{{
		Name:       "things",
		PrimaryKey: "id",
		Columns: []storage.ColumnSpec{
			{Name: "id", Type: "text", Nullable: storage.NotNull()},
			{Name: "label", Type: "text"},
		},
		Indexes: []storage.IndexSpec{{Name: "idx_things_label", Columns: []string{"label"}}},
	}}

	if err := repo.EnsureSchema(ctx, tables); err != nil {
		t.Fatal(err)
	}
	if err := repo.EnsureSchema(ctx, tables); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestBatchInsertAndCount(t *testing.T) {
	ctx := context.Background()
	repo, err := New(ctx, storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	tables := []storage.TableSpec{{
		Name:       "things",
		PrimaryKey: "id",
		Columns: []storage.ColumnSpec{
			{Name: "id", Type: "text", Nullable: storage.NotNull()},
			{Name: "n", Type: "integer"},
		},
	}}
	if err := repo.EnsureSchema(ctx, tables); err != nil {
		t.Fatal(err)
	}

	b, err := repo.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	n, err := b.Insert(ctx, "things", []string{"id", "n"}, [][]any{
		{"a", int64(1)},
		{"b", int64(2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("inserted = %d", n)
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountRows(ctx, "things")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d", count)
	}
}

func TestBatchRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	repo, err := New(ctx, storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	tables := []storage.TableSpec{{
		Name:       "things",
		PrimaryKey: "id",
		Columns:    []storage.ColumnSpec{{Name: "id", Type: "text", Nullable: storage.NotNull()}},
	}}
	if err := repo.EnsureSchema(ctx, tables); err != nil {
		t.Fatal(err)
	}

	b, err := repo.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Insert(ctx, "things", []string{"id"}, [][]any{{"a"}}); err != nil {
		t.Fatal(err)
	}
	if err := b.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountRows(ctx, "things")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %d after rollback", count)
	}
}

func TestCountMissingRefs(t *testing.T) {
	ctx := context.Background()
	repo, err := New(ctx, storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	tables := []storage.TableSpec{
		{
			Name:       "dims",
			PrimaryKey: "id",
			Columns:    []storage.ColumnSpec{{Name: "id", Type: "text", Nullable: storage.NotNull()}},
		},
		{
			Name:       "facts",
			PrimaryKey: "fid",
			Columns: []storage.ColumnSpec{
				{Name: "fid", Type: "text", Nullable: storage.NotNull()},
				{Name: "dim_id", Type: "text"},
			},
		},
	}
	if err := repo.EnsureSchema(ctx, tables); err != nil {
		t.Fatal(err)
	}

	b, _ := repo.Begin(ctx)
	if _, err := b.Insert(ctx, "dims", []string{"id"}, [][]any{{"d1"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Insert(ctx, "facts", []string{"fid", "dim_id"}, [][]any{
		{"f1", "d1"},
		{"f2", "d2"}, // unresolved
		{"f3", nil},  // null FK does not count
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	missing, err := repo.CountMissingRefs(ctx, "facts", "dim_id", "dims", "id")
	if err != nil {
		t.Fatal(err)
	}
	if missing != 1 {
		t.Errorf("missing = %d, want 1", missing)
	}
}
