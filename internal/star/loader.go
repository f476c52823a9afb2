package star

import (
	"context"
	"fmt"
	"time"

	"salesdw/internal/cleaner"
	"salesdw/internal/logging"
	"salesdw/internal/metrics"
	"salesdw/internal/rules"
	"salesdw/internal/storage"
	"salesdw/internal/table"
)

// State tracks loader progress through one run.
type State int

const (
	StateStart State = iota
	StateSchemaEnsured
	StateCleared
	StateDimensionsLoaded
	StateOrphansBackfilled
	StateFactsLoaded
	StateCommitted
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSchemaEnsured:
		return "schema_ensured"
	case StateCleared:
		return "cleared"
	case StateDimensionsLoaded:
		return "dimensions_loaded"
	case StateOrphansBackfilled:
		return "orphans_backfilled"
	case StateFactsLoaded:
		return "facts_loaded"
	case StateCommitted:
		return "committed"
	case StateVerified:
		return "verified"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Summary reports one completed load.
type Summary struct {
	Inserted   map[string]int64
	Backfilled map[string]int64
	Report     Report
}

// Loader drives a full warehouse load inside a single repository batch.
// A run either commits everything or leaves the previous committed state
// untouched; there is no row-level retry.
type Loader struct {
	repo  storage.Repository
	state State
}

func NewLoader(repo storage.Repository) *Loader {
	return &Loader{repo: repo, state: StateStart}
}

// State returns the stage the loader last completed.
func (l *Loader) State() State { return l.state }

// Run loads prepared customer, product and sale tables into the warehouse:
// ensure schema, clear fact-first, insert dimensions, backfill orphaned
// dimension members, insert facts with derived net amounts, commit, verify.
//
// Verification runs after commit and is read-only; a verification failure is
// reported in the Summary but does not undo the committed load.
//
// Input tables may carry source column names (CustomerID, SaleDate, ...) and
// untyped CSV text; Run renames and coerces them before writing.
func (l *Loader) Run(ctx context.Context, customers, products, sales table.Table) (Summary, error) {
	sum := Summary{
		Inserted:   make(map[string]int64),
		Backfilled: make(map[string]int64),
	}
	start := time.Now()

	fail := func(err error) (Summary, error) {
		return sum, fmt.Errorf("load: stage %s: %w", l.state, err)
	}

	if err := l.repo.EnsureSchema(ctx, Tables()); err != nil {
		return fail(err)
	}
	l.state = StateSchemaEnsured

	custDim, err := toWarehouse(rules.ForTable("customers"), customers)
	if err != nil {
		return fail(fmt.Errorf("prepared customers: %w", err))
	}
	prodDim, err := toWarehouse(rules.ForTable("products"), products)
	if err != nil {
		return fail(fmt.Errorf("prepared products: %w", err))
	}
	fact, err := toWarehouse(rules.ForTable("sales"), sales)
	if err != nil {
		return fail(fmt.Errorf("prepared sales: %w", err))
	}

	batch, err := l.repo.Begin(ctx)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = batch.Rollback(ctx) }()

	if err := batch.Clear(ctx, clearOrder); err != nil {
		return fail(err)
	}
	l.state = StateCleared

	dims := DimensionRules()
	known := make(map[string]map[string]bool, len(dims))

	// Source-backed dimensions come straight from their prepared tables;
	// store and campaign members are derived from the fact table.
	for _, rule := range dims {
		var (
			rows [][]any
			err  error
		)
		switch rule.Table {
		case TableCustomers:
			rows, err = dimensionRows(custDim, rule.Columns)
		case TableProducts:
			rows, err = dimensionRows(prodDim, rule.Columns)
		default:
			rows, err = ExtractDimension(fact, rule)
		}
		if err != nil {
			return fail(err)
		}

		n, err := batch.Insert(ctx, rule.Table, rule.Columns, forDB(rows))
		if err != nil {
			return fail(err)
		}
		sum.Inserted[rule.Table] = n
		known[rule.Table] = rowKeySet(rows, 0)
		logging.Info().Str("table", rule.Table).Int64("rows", n).Msg("dimension loaded")
	}
	l.state = StateDimensionsLoaded

	for _, rule := range dims {
		missing, err := MissingKeys(fact, rule.FactColumn, known[rule.Table])
		if err != nil {
			return fail(err)
		}
		if len(missing) == 0 {
			continue
		}

		rows := make([][]any, 0, len(missing))
		for _, id := range missing {
			rows = append(rows, rule.Synthesize(id))
		}
		n, err := batch.Insert(ctx, rule.Table, rule.Columns, forDB(rows))
		if err != nil {
			return fail(err)
		}
		sum.Backfilled[rule.Table] = n
		metrics.IncCounter("load.rows_backfilled", float64(n), "table:"+rule.Table)
		logging.Warn().Str("table", rule.Table).Strs("ids", missing).Msg("backfilled orphaned dimension members")
	}
	l.state = StateOrphansBackfilled

	factCols, factRows, err := factRows(fact)
	if err != nil {
		return fail(err)
	}
	n, err := batch.Insert(ctx, TableSales, factCols, forDB(factRows))
	if err != nil {
		return fail(err)
	}
	sum.Inserted[TableSales] = n
	l.state = StateFactsLoaded

	if err := batch.Commit(ctx); err != nil {
		return fail(err)
	}
	l.state = StateCommitted

	for t, n := range sum.Inserted {
		metrics.IncCounter("load.rows_inserted", float64(n), "table:"+t)
	}
	metrics.ObserveDuration("load.duration", time.Since(start))

	report, err := Verify(ctx, l.repo)
	if err != nil {
		return fail(err)
	}
	sum.Report = report
	l.state = StateVerified

	logging.Info().
		Dur("elapsed", time.Since(start)).
		Bool("verified", report.Pass()).
		Msg("warehouse load complete")
	return sum, nil
}

// toWarehouse coerces column types, parses dates and renames columns so a
// table read back from a prepared CSV matches the warehouse shape. All
// operations are no-ops on already-typed cells.
//
// Prepared input must already be coercible; a row lost to a failed coercion
// means the file was edited or corrupted after prepare, so the load aborts
// rather than committing with rows silently missing.
func toWarehouse(rs rules.RuleSet, t table.Table) (table.Table, error) {
	c := cleaner.New(t, nil)
	for field, kind := range rs.Coercions {
		c = c.ConvertColumnType(field, kind)
	}
	for _, field := range rs.DateFields {
		c = c.ParseDates(field)
	}
	out := c.RenameColumns(rs.Rename).Table()
	if out.Len() < t.Len() {
		return table.Table{}, fmt.Errorf("%d of %d rows failed type coercion", t.Len()-out.Len(), t.Len())
	}
	return out, nil
}

// dimensionRows projects a prepared dimension table onto the warehouse
// column order.
func dimensionRows(t table.Table, columns []string) ([][]any, error) {
	idx := make([]int, len(columns))
	for i, col := range columns {
		j := t.ColumnIndex(col)
		if j < 0 {
			return nil, fmt.Errorf("star: dimension table has no column %q", col)
		}
		idx[i] = j
	}

	rows := make([][]any, 0, t.Len())
	for _, row := range t.Rows {
		nr := make([]any, len(idx))
		for i, src := range idx {
			nr[i] = row[src]
		}
		rows = append(rows, nr)
	}
	return rows, nil
}

var factColumns = []string{
	"sale_id", "transaction_date", "customer_id", "product_id", "store_id",
	"campaign_id", "sale_amount", "discount_percent", "net_sale_amount",
	"payment_method",
}

// factRows builds sale rows with net_sale_amount derived from sale_amount
// and discount_percent. A missing discount counts as zero.
func factRows(fact table.Table) ([]string, [][]any, error) {
	src := map[string]int{}
	for _, col := range factColumns {
		if col == "net_sale_amount" {
			continue
		}
		j := fact.ColumnIndex(col)
		if j < 0 {
			return nil, nil, fmt.Errorf("star: fact table has no column %q", col)
		}
		src[col] = j
	}

	amountIdx := src["sale_amount"]
	discountIdx := src["discount_percent"]

	rows := make([][]any, 0, fact.Len())
	for i, row := range fact.Rows {
		amount, ok := row[amountIdx].(float64)
		if !ok {
			return nil, nil, fmt.Errorf("star: fact row %d: non-numeric sale_amount %v", i, row[amountIdx])
		}
		discount := 0.0
		if row[discountIdx] != nil {
			d, ok := row[discountIdx].(float64)
			if !ok {
				return nil, nil, fmt.Errorf("star: fact row %d: non-numeric discount_percent %v", i, row[discountIdx])
			}
			discount = d
		}
		net := amount * (1 - discount/100)

		nr := make([]any, 0, len(factColumns))
		for _, col := range factColumns {
			if col == "net_sale_amount" {
				nr = append(nr, net)
				continue
			}
			nr = append(nr, row[src[col]])
		}
		rows = append(rows, nr)
	}
	return factColumns, rows, nil
}

// forDB formats cells for database parameters: dates become "YYYY-MM-DD"
// text, which every backend's date type accepts.
func forDB(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		nr := make([]any, len(row))
		for j, v := range row {
			if ts, ok := v.(time.Time); ok {
				nr[j] = ts.Format("2006-01-02")
				continue
			}
			nr[j] = v
		}
		out[i] = nr
	}
	return out
}

func rowKeySet(rows [][]any, keyIdx int) map[string]bool {
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[storage.NormalizeKey(row[keyIdx])] = true
	}
	return out
}
