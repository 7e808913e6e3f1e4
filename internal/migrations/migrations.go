package migrations

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/internal/database"
)

// Money columns hold minor units (1/1000). Quantity columns hold ten-thousandths.
// Dates used for grouping are TEXT 'YYYY-MM-DD' in both dialects.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT {{true}},
		created_at {{ts}}
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id {{pk}},
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}}
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id {{pk}},
		category_id {{int}} REFERENCES categories(id) ON DELETE SET NULL,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price {{int}} NOT NULL DEFAULT 0,
		cost {{int}} NOT NULL DEFAULT 0,
		is_available BOOLEAN NOT NULL DEFAULT {{true}},
		created_at {{ts}}
	);`,
	`CREATE TABLE IF NOT EXISTS dining_tables (
		id {{pk}},
		name TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}}
	);`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id {{pk}},
		name TEXT NOT NULL,
		quantity {{int}} NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		unit_cost {{int}},
		min_quantity {{int}} NOT NULL DEFAULT 0,
		created_at {{ts}},
		updated_at {{ts}}
	);`,
	`CREATE TABLE IF NOT EXISTS recipe_links (
		id {{pk}},
		product_id {{int}} NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		inventory_item_id {{int}} NOT NULL REFERENCES inventory_items(id) ON DELETE CASCADE,
		quantity_per_order {{int}} NOT NULL CHECK (quantity_per_order > 0),
		created_at {{ts}},
		UNIQUE (product_id, inventory_item_id)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id {{pk}},
		order_number TEXT NOT NULL UNIQUE,
		cashier_id {{int}} NOT NULL REFERENCES users(id),
		subtotal {{int}} NOT NULL,
		total_amount {{int}} NOT NULL,
		tax_amount {{int}} NOT NULL,
		discount_amount {{int}} NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL,
		table_id {{int}} REFERENCES dining_tables(id) ON DELETE SET NULL,
		order_status TEXT NOT NULL DEFAULT 'completed',
		business_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_business_date ON orders (business_date);`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id {{pk}},
		order_id {{int}} NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id {{int}} NOT NULL REFERENCES products(id),
		quantity {{int}} NOT NULL CHECK (quantity > 0),
		unit_price {{int}} NOT NULL,
		subtotal {{int}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS inventory_deduction_log (
		id {{pk}},
		order_id {{int}} NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		order_line_id {{int}} NOT NULL REFERENCES order_lines(id) ON DELETE CASCADE,
		product_id {{int}} NOT NULL,
		product_name TEXT NOT NULL,
		inventory_item_id {{int}} NOT NULL,
		inventory_item_name TEXT NOT NULL,
		quantity_deducted {{int}} NOT NULL,
		unit_selling_price {{int}} NOT NULL,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS daily_reports (
		report_date TEXT PRIMARY KEY,
		total_orders {{int}} NOT NULL DEFAULT 0,
		total_sales {{int}} NOT NULL DEFAULT 0,
		total_tax {{int}} NOT NULL DEFAULT 0,
		total_discount {{int}} NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS daily_closures (
		id {{pk}},
		closure_date TEXT NOT NULL UNIQUE,
		closed_by_user_id {{int}} NOT NULL REFERENCES users(id),
		cashier_name TEXT NOT NULL,
		total_orders {{int}} NOT NULL DEFAULT 0,
		total_sales {{int}} NOT NULL DEFAULT 0,
		total_tax {{int}} NOT NULL DEFAULT 0,
		total_discount {{int}} NOT NULL DEFAULT 0,
		cash_sales {{int}} NOT NULL DEFAULT 0,
		card_sales {{int}} NOT NULL DEFAULT 0,
		opening_balance {{int}},
		closing_balance {{int}},
		notes TEXT,
		closed_at TEXT NOT NULL
	);`,
}

var (
	sqliteTypes = strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{int}}", "INTEGER",
		"{{ts}}", "DATETIME DEFAULT CURRENT_TIMESTAMP",
		"{{true}}", "1",
	)
	postgresTypes = strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{int}}", "BIGINT",
		"{{ts}}", "TIMESTAMPTZ DEFAULT NOW()",
		"{{true}}", "TRUE",
	)
)

// Run creates the database schema required for the POS backend.
func Run(db *sqlx.DB) error {
	types := sqliteTypes
	if database.IsPostgres(db) {
		types = postgresTypes
	}
	for _, stmt := range schema {
		if _, err := db.Exec(types.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
