// Package seed generates raw CSV fixtures with realistic data quality
// problems: duplicate ids, placeholder tokens, missing required fields,
// out-of-range numbers, unparseable and future dates, inconsistent casing
// and orphaned foreign keys. The cleaning and load pipelines are expected
// to repair or drop every defect it injects.
package seed

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v7"

	"salesdw/internal/logging"
	"salesdw/internal/prepare"
	"salesdw/internal/table"
)

// Options sizes the generated fixture set.
type Options struct {
	Customers int
	Products  int
	Sales     int

	// Seed makes generation reproducible; 0 uses a random source.
	Seed uint64
}

// DefaultOptions matches a small coursework-sized dataset.
func DefaultOptions() Options {
	return Options{Customers: 60, Products: 30, Sales: 400}
}

var (
	dirtyRegions  = []string{"east", "WEST", "North", "south", "central", "north-east", "N/A", "unknown"}
	dirtyContacts = []string{"email", "PHONE", "sms", "Text", "mail", "", "null"}
	dirtySuppliers = []string{"globaltech", "MegaCorp", "BESTSOURCE", "supplypro", "none"}
	dirtyCategories = []string{"electronics", "home goods", "CLOTHING", "toys", "n/a", ""}
	dirtyPayments  = []string{"cash", "CREDIT CARD", "debit card", "PayPal", "gift card", "check", "unknown"}
	dirtyDates     = []string{"2023-04-12", "2023/07/01", "04/18/2024", "15.03.2023", "not-a-date", "2035-06-01"}
)

// Run writes customers_data.csv, products_data.csv and sales_data.csv into
// rawDir.
func Run(ctx context.Context, rawDir string, opts Options) error {
	f := gofakeit.New(opts.Seed)

	for _, gen := range []struct {
		entity string
		build  func(f *gofakeit.Faker, opts Options) table.Table
	}{
		{"customers", customers},
		{"products", products},
		{"sales", sales},
	} {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := gen.build(f, opts)
		path := filepath.Join(rawDir, prepare.RawFileName(gen.entity))
		if err := table.WriteCSVFile(path, t); err != nil {
			return fmt.Errorf("seed %s: %w", gen.entity, err)
		}
		logging.Info().Str("entity", gen.entity).Int("rows", t.Len()).Str("path", path).Msg("raw fixture written")
	}
	return nil
}

func customers(f *gofakeit.Faker, opts Options) table.Table {
	t := table.New("CustomerID", "Name", "Region", "JoinDate", "LoyaltyPoints", "PreferredContact")

	for i := 1; i <= opts.Customers; i++ {
		row := []any{
			fmt.Sprintf("C%d", i),
			f.Name(),
			pick(f, dirtyRegions),
			pick(f, dirtyDates),
			fmt.Sprintf("%d", f.Number(0, 9000)),
			pick(f, dirtyContacts),
		}

		switch {
		case chance(f, 5): // missing required name
			row[1] = ""
		case chance(f, 4): // loyalty outliers
			row[4] = pick(f, []string{"-50", "25000", "12.0"})
		}

		t.AppendRow(row)
		if chance(f, 6) {
			t.AppendRow(append([]any(nil), row...))
		}
	}
	return t
}

func products(f *gofakeit.Faker, opts Options) table.Table {
	t := table.New("ProductID", "ProductName", "Category", "UnitPrice", "StockQuantity", "Supplier")

	for i := 1; i <= opts.Products; i++ {
		row := []any{
			fmt.Sprintf("P%d", i),
			f.ProductName(),
			pick(f, dirtyCategories),
			fmt.Sprintf("%.2f", f.Float64Range(1, 800)),
			fmt.Sprintf("%d", f.Number(0, 1500)),
			pick(f, dirtySuppliers),
		}

		switch {
		case chance(f, 5): // price outliers, incl the zero that must be dropped
			row[3] = pick(f, []string{"0", "-9.99", "20000"})
		case chance(f, 4):
			row[4] = pick(f, []string{"-10", "5000"})
		case chance(f, 4): // missing required price
			row[3] = ""
		}

		t.AppendRow(row)
		if chance(f, 6) {
			t.AppendRow(append([]any(nil), row...))
		}
	}
	return t
}

func sales(f *gofakeit.Faker, opts Options) table.Table {
	t := table.New("TransactionID", "SaleDate", "CustomerID", "ProductID", "StoreID",
		"CampaignID", "SaleAmount", "DiscountPercent", "PaymentType")

	for i := 1; i <= opts.Sales; i++ {
		customerID := fmt.Sprintf("C%d", f.Number(1, opts.Customers))
		if chance(f, 4) { // orphaned customer reference
			customerID = fmt.Sprintf("C%d", f.Number(9000, 9020))
		}
		productID := fmt.Sprintf("P%d", f.Number(1, opts.Products))
		if chance(f, 3) { // orphaned product reference
			productID = fmt.Sprintf("P%d", f.Number(9000, 9010))
		}

		campaignID := fmt.Sprintf("%d", f.Number(1, 5))
		if chance(f, 20) { // missing campaign, defaults to "0"
			campaignID = ""
		}

		row := []any{
			fmt.Sprintf("T%d", i),
			pick(f, dirtyDates),
			customerID,
			productID,
			fmt.Sprintf("S%d", f.Number(401, 408)),
			campaignID,
			fmt.Sprintf("%.2f", f.Float64Range(5, 2000)),
			fmt.Sprintf("%d", f.Number(0, 40)),
			pick(f, dirtyPayments),
		}

		switch {
		case chance(f, 4): // amount outliers
			row[6] = pick(f, []string{"-100", "99999"})
		case chance(f, 3): // discount outliers
			row[7] = pick(f, []string{"150", "-5"})
		case chance(f, 3): // missing required amount
			row[6] = pick(f, []string{"", "N/A"})
		}

		t.AppendRow(row)
		if chance(f, 5) {
			t.AppendRow(append([]any(nil), row...))
		}
	}
	return t
}

func pick(f *gofakeit.Faker, values []string) string {
	return values[f.Number(0, len(values)-1)]
}

func chance(f *gofakeit.Faker, percent int) bool {
	return f.Number(1, 100) <= percent
}
