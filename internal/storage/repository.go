package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Config is the minimal configuration needed to open a warehouse repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic interface for the star-schema warehouse.
//
// IMPORTANT: This interface is intentionally minimal and focused on the
// operations the warehouse loader and verifier need. Each backend implements
// these semantics in its own idiomatic way (pgx pools, database/sql, etc).
type Repository interface {
	// Close releases backend resources (connections, prepared statements).
	// Callers should treat Close as "call once" at process shutdown.
	Close()

	// EnsureSchema creates tables and indexes as needed. Idempotent; safe to
	// run on every load.
	EnsureSchema(ctx context.Context, tables []TableSpec) error

	// Begin starts a write batch. All Clear/Insert calls on the returned
	// Batch happen inside a single transaction; nothing becomes visible
	// until Commit.
	Begin(ctx context.Context) (Batch, error)

	// CountRows returns the number of rows in table.
	CountRows(ctx context.Context, table string) (int64, error)

	// CountMissingRefs returns the number of rows in factTable whose
	// factColumn value has no matching dimColumn value in dimTable.
	CountMissingRefs(ctx context.Context, factTable, factColumn, dimTable, dimColumn string) (int64, error)
}

// Batch is a single warehouse write transaction.
//
// Callers are responsible for ordering: facts must be cleared before the
// dimensions they reference, and dimensions inserted before the facts.
type Batch interface {
	// Clear deletes all rows from the named tables, in the given order.
	Clear(ctx context.Context, tables []string) error

	// Insert bulk-inserts rows into table. Every row must have the same
	// length as columns.
	Insert(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	Commit(ctx context.Context) error

	// Rollback discards the batch. Safe to defer after Commit.
	Rollback(ctx context.Context) error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend factory under a kind (e.g. "postgres", "sqlite").
//
// Call Register from an init() function in a backend package. The kind string
// becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing storage.kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// NormalizeKey renders a dimension key in the canonical trimmed-string form
// used for key-set membership. Prepared CSV cells arrive as strings, database
// scans may yield []byte or int64 for the same column, and synthesized
// placeholder ids are plain strings; all of them must compare equal when they
// name the same member.
func NormalizeKey(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(k)
	case []byte:
		return strings.TrimSpace(string(k))
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(k))
	}
}
