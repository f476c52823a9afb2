package star

import (
	"context"
	"testing"

	"salesdw/internal/storage"
	_ "salesdw/internal/storage/sqlite"
	"salesdw/internal/table"
)

func openMemoryRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(repo.Close)
	return repo
}

func TestLoaderAgainstSQLite(t *testing.T) {
	repo := openMemoryRepo(t)
	ctx := context.Background()

	customers, products, sales := preparedFixtures()
	sum, err := NewLoader(repo).Run(ctx, customers, products, sales)
	if err != nil {
		t.Fatal(err)
	}

	if !sum.Report.Pass() {
		t.Fatalf("verification failed: %+v", sum.Report)
	}
	if got := sum.Report.Check(TableCustomers).Rows; got != 3 {
		t.Errorf("customers rows = %d, want 2 source + 1 placeholder", got)
	}
	if got := sum.Report.Check(TableProducts).Rows; got != 2 {
		t.Errorf("products rows = %d, want 1 source + 1 placeholder", got)
	}
	if got := sum.Report.Check(TableStores).Rows; got != 2 {
		t.Errorf("stores rows = %d", got)
	}
	if got := sum.Report.Check(TableCampaigns).Rows; got != 2 {
		t.Errorf("campaigns rows = %d", got)
	}
	if got := sum.Report.Check(TableSales).Rows; got != 2 {
		t.Errorf("sales rows = %d", got)
	}
	if got := sum.Report.Check(TableSales).MissingRefs; got != 0 {
		t.Errorf("unresolved refs = %d", got)
	}
}

func TestLoaderReloadIsIdempotent(t *testing.T) {
	repo := openMemoryRepo(t)
	ctx := context.Background()

	customers, products, sales := preparedFixtures()

	first, err := NewLoader(repo).Run(ctx, customers, products, sales)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewLoader(repo).Run(ctx, customers, products, sales)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{TableCustomers, TableProducts, TableStores, TableCampaigns, TableSales} {
		a, b := first.Report.Check(name).Rows, second.Report.Check(name).Rows
		if a != b {
			t.Errorf("%s: reload changed row count %d -> %d", name, a, b)
		}
	}
	if !second.Report.Pass() {
		t.Errorf("second load failed verification: %+v", second.Report)
	}
}

func TestLoaderCoercesUntypedCSVInput(t *testing.T) {
	repo := openMemoryRepo(t)
	ctx := context.Background()

	// All cells as strings, exactly as a prepared CSV reads back.
	customers := table.New("CustomerID", "Name", "Region", "JoinDate", "LoyaltyPoints", "PreferredContact")
	customers.AppendRow([]any{"C1", "Ann", "East", "2022-03-04", "120", "Email"})

	products := table.New("ProductID", "ProductName", "Category", "UnitPrice", "StockQuantity", "Supplier")
	products.AppendRow([]any{"P1", "Lamp", "Home Goods", "24.99", "40", "GlobalTech"})

	sales := table.New("TransactionID", "SaleDate", "CustomerID", "ProductID", "StoreID",
		"CampaignID", "SaleAmount", "DiscountPercent", "PaymentType")
	sales.AppendRow([]any{"T1", "2024-02-01", "C1", "P1", "S401", "0", "200", "25", "Cash"})

	sum, err := NewLoader(repo).Run(ctx, customers, products, sales)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Report.Pass() {
		t.Fatalf("verification failed: %+v", sum.Report)
	}
	if sum.Inserted[TableSales] != 1 {
		t.Errorf("sales inserted = %d", sum.Inserted[TableSales])
	}
}
