// Package star builds and verifies the sales star schema: customer, product,
// store and campaign dimensions around a sales fact table.
package star

import "salesdw/internal/storage"

// Warehouse table names.
const (
	TableCustomers = "customers"
	TableProducts  = "products"
	TableStores    = "stores"
	TableCampaigns = "campaigns"
	TableSales     = "sales"
)

// clearOrder deletes facts before the dimensions they reference.
var clearOrder = []string{TableSales, TableCustomers, TableProducts, TableStores, TableCampaigns}

// Tables returns the warehouse schema in creation order.
func Tables() []storage.TableSpec {
	return []storage.TableSpec{
		{
			Name:       TableCustomers,
			PrimaryKey: "customer_id",
			Columns: []storage.ColumnSpec{
				{Name: "customer_id", Type: "text", Nullable: storage.NotNull()},
				{Name: "name", Type: "text", Nullable: storage.NotNull()},
				{Name: "region", Type: "text", Nullable: storage.NotNull()},
				{Name: "join_date", Type: "date", Nullable: storage.NotNull()},
				{Name: "loyalty_points", Type: "integer"},
				{Name: "preferred_contact", Type: "text"},
				{Name: "created_at", Type: "timestamp", DefaultNow: true},
			},
		},
		{
			Name:       TableProducts,
			PrimaryKey: "product_id",
			Columns: []storage.ColumnSpec{
				{Name: "product_id", Type: "text", Nullable: storage.NotNull()},
				{Name: "product_name", Type: "text", Nullable: storage.NotNull()},
				{Name: "category", Type: "text", Nullable: storage.NotNull()},
				{Name: "unit_price", Type: "real", Nullable: storage.NotNull()},
				{Name: "stock_quantity", Type: "integer"},
				{Name: "supplier", Type: "text"},
				{Name: "created_at", Type: "timestamp", DefaultNow: true},
			},
		},
		{
			Name:       TableStores,
			PrimaryKey: "store_id",
			Columns: []storage.ColumnSpec{
				{Name: "store_id", Type: "text", Nullable: storage.NotNull()},
				{Name: "store_name", Type: "text"},
				{Name: "region", Type: "text"},
				{Name: "created_at", Type: "timestamp", DefaultNow: true},
			},
		},
		{
			Name:       TableCampaigns,
			PrimaryKey: "campaign_id",
			Columns: []storage.ColumnSpec{
				{Name: "campaign_id", Type: "text", Nullable: storage.NotNull()},
				{Name: "campaign_name", Type: "text"},
				{Name: "created_at", Type: "timestamp", DefaultNow: true},
			},
		},
		{
			Name:       TableSales,
			PrimaryKey: "sale_id",
			Columns: []storage.ColumnSpec{
				{Name: "sale_id", Type: "text", Nullable: storage.NotNull()},
				{Name: "transaction_date", Type: "date", Nullable: storage.NotNull()},
				{Name: "customer_id", Type: "text", Nullable: storage.NotNull(), References: "customers(customer_id)"},
				{Name: "product_id", Type: "text", Nullable: storage.NotNull(), References: "products(product_id)"},
				{Name: "store_id", Type: "text", Nullable: storage.NotNull(), References: "stores(store_id)"},
				{Name: "campaign_id", Type: "text", References: "campaigns(campaign_id)"},
				{Name: "sale_amount", Type: "real", Nullable: storage.NotNull()},
				{Name: "discount_percent", Type: "real"},
				{Name: "net_sale_amount", Type: "real", Nullable: storage.NotNull()},
				{Name: "payment_method", Type: "text", Nullable: storage.NotNull()},
				{Name: "created_at", Type: "timestamp", DefaultNow: true},
			},
			Indexes: []storage.IndexSpec{
				{Name: "idx_sales_transaction_date", Columns: []string{"transaction_date"}},
				{Name: "idx_sales_customer_id", Columns: []string{"customer_id"}},
				{Name: "idx_sales_product_id", Columns: []string{"product_id"}},
				{Name: "idx_sales_store_id", Columns: []string{"store_id"}},
				{Name: "idx_sales_campaign_id", Columns: []string{"campaign_id"}},
			},
		},
	}
}
