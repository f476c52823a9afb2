// Package rules holds the per-entity cleaning rule sets: required fields,
// default fills, value bounds, canonical value maps and output shape. It is a
// pure lookup; asking for an unknown table is a caller bug.
package rules

import (
	"fmt"
	"time"

	"salesdw/internal/cleaner"
)

// Bounds is an inclusive numeric range.
type Bounds struct {
	Min, Max float64
}

// DateBounds is an inclusive calendar-date range. A zero Max means "today"
// and is resolved by the caller at run time so the lookup stays pure.
type DateBounds struct {
	Min, Max time.Time
}

// RuleSet is the full cleaning contract for one entity table.
type RuleSet struct {
	Table string

	// Keys identify a record for deduplication.
	Keys []string

	// Required fields: records missing any of these are dropped.
	Required []string

	// Defaults fill missing optional fields.
	Defaults map[string]any

	// Placeholders are tokens treated as missing (case-insensitive).
	Placeholders []string

	// Bounds are inclusive numeric ranges per field; out-of-range records
	// are dropped as outliers.
	Bounds map[string]Bounds

	// DateBounds are inclusive date ranges per field.
	DateBounds map[string]DateBounds

	// TextCase standardizes casing of free-text fields.
	TextCase map[string]cleaner.Case

	// ValueMaps rewrite known variant spellings to canonical values.
	ValueMaps map[string]map[string]string

	// Coercions force a field to a target representation; records whose
	// value cannot be coerced are dropped.
	Coercions map[string]cleaner.Kind

	// DateFields are parsed into calendar dates before bounds apply.
	DateFields []string

	// Rename maps raw column names to warehouse column names.
	Rename map[string]string

	// Order is the final prepared column order.
	Order []string
}

var regionMap = map[string]string{
	"east": "East", "west": "West", "north": "North", "south": "South",
	"central": "Central",
	"south-west": "Southwest", "south-east": "Southeast",
	"north-west": "Northwest", "north-east": "Northeast",
}

var contactMap = map[string]string{
	"email": "Email", "phone": "Phone", "sms": "SMS",
	"text": "Text", "mail": "Mail",
}

var supplierMap = map[string]string{
	"globaltech": "GlobalTech", "megacorp": "MegaCorp",
	"bestsource": "BestSource", "supplypro": "SupplyPro",
}

var paymentMap = map[string]string{
	"cash": "Cash", "credit card": "Credit Card", "debit card": "Debit Card",
	"check": "Check", "paypal": "PayPal", "gift card": "Gift Card",
}

var ruleSets = map[string]RuleSet{
	"customers": {
		Table:        "customers",
		Keys:         []string{"CustomerID"},
		Required:     []string{"CustomerID", "Name", "JoinDate"},
		Defaults:     map[string]any{"Region": "Unknown", "LoyaltyPoints": int64(0), "PreferredContact": "Email"},
		Placeholders: cleaner.DefaultPlaceholders,
		Bounds:       map[string]Bounds{"LoyaltyPoints": {Min: 0, Max: 10000}},
		DateBounds:   map[string]DateBounds{"JoinDate": {Min: date(2010, 1, 1)}},
		ValueMaps:    map[string]map[string]string{"Region": regionMap, "PreferredContact": contactMap},
		Coercions:    map[string]cleaner.Kind{"CustomerID": cleaner.KindString, "LoyaltyPoints": cleaner.KindInt},
		DateFields:   []string{"JoinDate"},
		Rename: map[string]string{
			"CustomerID": "customer_id", "Name": "name", "Region": "region",
			"JoinDate": "join_date", "LoyaltyPoints": "loyalty_points",
			"PreferredContact": "preferred_contact",
		},
		Order: []string{"CustomerID", "Name", "Region", "JoinDate", "LoyaltyPoints", "PreferredContact"},
	},

	"products": {
		Table:        "products",
		Keys:         []string{"ProductID"},
		Required:     []string{"ProductID", "ProductName", "UnitPrice"},
		Defaults:     map[string]any{"Category": "Uncategorized", "StockQuantity": int64(0), "Supplier": "Unknown"},
		Placeholders: cleaner.DefaultPlaceholders,
		// UnitPrice is strictly positive; 0.01 is the smallest currency
		// amount, so the inclusive bound matches (0, 10000].
		Bounds: map[string]Bounds{
			"UnitPrice":     {Min: 0.01, Max: 10000},
			"StockQuantity": {Min: 0, Max: 2000},
		},
		TextCase:  map[string]cleaner.Case{"Category": cleaner.CaseTitle},
		ValueMaps: map[string]map[string]string{"Supplier": supplierMap},
		Coercions: map[string]cleaner.Kind{
			"ProductID": cleaner.KindString, "UnitPrice": cleaner.KindFloat,
			"StockQuantity": cleaner.KindInt,
		},
		Rename: map[string]string{
			"ProductID": "product_id", "ProductName": "product_name",
			"Category": "category", "UnitPrice": "unit_price",
			"StockQuantity": "stock_quantity", "Supplier": "supplier",
		},
		Order: []string{"ProductID", "ProductName", "Category", "UnitPrice", "StockQuantity", "Supplier"},
	},

	"sales": {
		Table:        "sales",
		Keys:         []string{"TransactionID"},
		Required:     []string{"TransactionID", "SaleDate", "CustomerID", "ProductID", "StoreID", "SaleAmount"},
		Defaults:     map[string]any{"CampaignID": "0", "DiscountPercent": float64(0), "PaymentType": "Unknown"},
		Placeholders: cleaner.DefaultPlaceholders,
		Bounds: map[string]Bounds{
			"SaleAmount":      {Min: 0, Max: 50000},
			"DiscountPercent": {Min: 0, Max: 100},
		},
		DateBounds: map[string]DateBounds{"SaleDate": {Min: date(2020, 1, 1)}},
		ValueMaps:  map[string]map[string]string{"PaymentType": paymentMap},
		Coercions: map[string]cleaner.Kind{
			"TransactionID": cleaner.KindString, "CustomerID": cleaner.KindString,
			"ProductID": cleaner.KindString, "StoreID": cleaner.KindString,
			"CampaignID": cleaner.KindString, "SaleAmount": cleaner.KindFloat,
			"DiscountPercent": cleaner.KindFloat,
		},
		DateFields: []string{"SaleDate"},
		Rename: map[string]string{
			"TransactionID": "sale_id", "SaleDate": "transaction_date",
			"CustomerID": "customer_id", "ProductID": "product_id",
			"StoreID": "store_id", "CampaignID": "campaign_id",
			"SaleAmount": "sale_amount", "DiscountPercent": "discount_percent",
			"PaymentType": "payment_method",
		},
		Order: []string{
			"TransactionID", "SaleDate", "CustomerID", "ProductID", "StoreID",
			"CampaignID", "SaleAmount", "DiscountPercent", "PaymentType",
		},
	},
}

// ForTable returns the rule set for an entity table. Unknown names panic:
// table names come from code, not user input.
func ForTable(name string) RuleSet {
	rs, ok := ruleSets[name]
	if !ok {
		panic(fmt.Sprintf("rules: no rule set for table %q", name))
	}
	return rs
}

// Tables lists the entity tables with rule sets, in load order.
func Tables() []string {
	return []string{"customers", "products", "sales"}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
