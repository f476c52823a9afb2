package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdw/internal/table"
)

func TestRunWritesAllRawFiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Customers: 20, Products: 10, Sales: 50, Seed: 42}

	require.NoError(t, Run(context.Background(), dir, opts))

	customers, err := table.ReadCSVFile(filepath.Join(dir, "customers_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CustomerID", "Name", "Region", "JoinDate", "LoyaltyPoints", "PreferredContact"}, customers.Columns)
	assert.GreaterOrEqual(t, customers.Len(), opts.Customers)

	products, err := table.ReadCSVFile(filepath.Join(dir, "products_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ProductID", "ProductName", "Category", "UnitPrice", "StockQuantity", "Supplier"}, products.Columns)
	assert.GreaterOrEqual(t, products.Len(), opts.Products)

	sales, err := table.ReadCSVFile(filepath.Join(dir, "sales_data.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{"TransactionID", "SaleDate", "CustomerID", "ProductID", "StoreID",
		"CampaignID", "SaleAmount", "DiscountPercent", "PaymentType"}, sales.Columns)
	assert.GreaterOrEqual(t, sales.Len(), opts.Sales)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	opts := Options{Customers: 15, Products: 8, Sales: 40, Seed: 7}

	dirA, dirB := t.TempDir(), t.TempDir()
	require.NoError(t, Run(context.Background(), dirA, opts))
	require.NoError(t, Run(context.Background(), dirB, opts))

	for _, name := range []string{"customers_data.csv", "products_data.csv", "sales_data.csv"} {
		a, err := table.ReadCSVFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := table.ReadCSVFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a.Rows, b.Rows, name)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, t.TempDir(), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomersInjectDuplicateIDs(t *testing.T) {
	f := gofakeit.New(1)
	tab := customers(f, Options{Customers: 200})

	seen := map[any]int{}
	for _, row := range tab.Rows {
		seen[row[0]]++
	}

	dupes := 0
	for _, n := range seen {
		if n > 1 {
			dupes++
		}
	}
	assert.Greater(t, dupes, 0, "expected at least one duplicated CustomerID")
}

func TestSalesInjectOrphanReferences(t *testing.T) {
	f := gofakeit.New(1)
	opts := Options{Customers: 10, Products: 5, Sales: 500}
	tab := sales(f, opts)

	orphanCustomers, orphanProducts := 0, 0
	for _, row := range tab.Rows {
		if id, ok := row[2].(string); ok && len(id) == 5 && id[:2] == "C9" {
			orphanCustomers++
		}
		if id, ok := row[3].(string); ok && len(id) == 5 && id[:2] == "P9" {
			orphanProducts++
		}
	}
	assert.Greater(t, orphanCustomers, 0, "expected orphaned CustomerIDs")
	assert.Greater(t, orphanProducts, 0, "expected orphaned ProductIDs")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 60, opts.Customers)
	assert.Equal(t, 30, opts.Products)
	assert.Equal(t, 400, opts.Sales)
}
