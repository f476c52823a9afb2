package star

import (
	"fmt"
	"time"

	"salesdw/internal/storage"
	"salesdw/internal/table"
)

// placeholderJoinDate is the join_date written for backfilled customers.
var placeholderJoinDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DimensionRule ties a dimension table to the fact column that references it
// and knows how to synthesize a member for an id that has no source row.
//
// Two uses:
//   - stores/campaigns are derived entirely from the fact table, so every
//     member is synthesized
//   - customers/products get placeholder members only for orphaned fact ids
type DimensionRule struct {
	Table      string
	KeyColumn  string
	FactColumn string
	Columns    []string

	// Synthesize returns a full row (matching Columns) for an id.
	Synthesize func(id string) []any
}

// DimensionRules lists the four dimensions in load order. The FactColumn
// names refer to the fact table after warehouse renaming.
func DimensionRules() []DimensionRule {
	return []DimensionRule{
		{
			Table:      TableCustomers,
			KeyColumn:  "customer_id",
			FactColumn: "customer_id",
			Columns:    []string{"customer_id", "name", "region", "join_date", "loyalty_points", "preferred_contact"},
			Synthesize: func(id string) []any {
				return []any{id, "Unknown Customer " + id, "Unknown", placeholderJoinDate, int64(0), "Unknown"}
			},
		},
		{
			Table:      TableProducts,
			KeyColumn:  "product_id",
			FactColumn: "product_id",
			Columns:    []string{"product_id", "product_name", "category", "unit_price", "stock_quantity", "supplier"},
			Synthesize: func(id string) []any {
				return []any{id, "Unknown Product " + id, "Uncategorized", 0.01, int64(0), "Unknown"}
			},
		},
		{
			Table:      TableStores,
			KeyColumn:  "store_id",
			FactColumn: "store_id",
			Columns:    []string{"store_id", "store_name", "region"},
			Synthesize: func(id string) []any {
				return []any{id, "Store-" + id, nil}
			},
		},
		{
			Table:      TableCampaigns,
			KeyColumn:  "campaign_id",
			FactColumn: "campaign_id",
			Columns:    []string{"campaign_id", "campaign_name"},
			Synthesize: func(id string) []any {
				return []any{id, "Campaign-" + id}
			},
		},
	}
}

// FactKeys returns the distinct non-null values of a fact column in
// first-appearance order. Deterministic so repeated loads emit dimension
// members in the same order.
func FactKeys(fact table.Table, column string) ([]string, error) {
	idx := fact.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("star: fact table has no column %q", column)
	}

	seen := make(map[string]bool)
	var keys []string
	for _, row := range fact.Rows {
		v := row[idx]
		if v == nil {
			continue
		}
		k := storage.NormalizeKey(v)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys, nil
}

// ExtractDimension synthesizes one dimension row per distinct fact key.
func ExtractDimension(fact table.Table, rule DimensionRule) ([][]any, error) {
	keys, err := FactKeys(fact, rule.FactColumn)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, rule.Synthesize(k))
	}
	return rows, nil
}

// MissingKeys returns fact keys absent from known, preserving
// first-appearance order.
func MissingKeys(fact table.Table, factColumn string, known map[string]bool) ([]string, error) {
	keys, err := FactKeys(fact, factColumn)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, k := range keys {
		if !known[k] {
			missing = append(missing, k)
		}
	}
	return missing, nil
}
