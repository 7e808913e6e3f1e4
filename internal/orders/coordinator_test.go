package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/database/dbtest"
	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/orders"
	"mirmaia/pos/internal/quantity"
	"mirmaia/pos/internal/reports"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db      *sqlx.DB
	coord   *orders.Coordinator
	cashier int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	cashier := dbtest.Insert(t, db, `INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?) RETURNING id`,
		"Cashier", "cashier@example.com", "x", "cashier")
	coord := orders.NewCoordinator(db, nil, nil, orders.Options{
		TaxRate: orders.DefaultTaxRate,
		Now:     func() time.Time { return fixedNow },
	})
	return fixture{db: db, coord: coord, cashier: cashier}
}

func (f fixture) product(t *testing.T, name string, price money.Money) int64 {
	t.Helper()
	return dbtest.Insert(t, f.db, `INSERT INTO products (name, price) VALUES (?, ?) RETURNING id`, name, price)
}

func (f fixture) item(t *testing.T, name string, qty quantity.Quantity) int64 {
	t.Helper()
	return dbtest.Insert(t, f.db, `INSERT INTO inventory_items (name, quantity) VALUES (?, ?) RETURNING id`, name, qty)
}

func (f fixture) link(t *testing.T, productID, itemID int64, perOrder quantity.Quantity) {
	t.Helper()
	dbtest.Insert(t, f.db, `INSERT INTO recipe_links (product_id, inventory_item_id, quantity_per_order) VALUES (?, ?, ?) RETURNING id`,
		productID, itemID, perOrder)
}

func (f fixture) stock(t *testing.T, itemID int64) quantity.Quantity {
	t.Helper()
	var q quantity.Quantity
	if err := f.db.Get(&q, `SELECT quantity FROM inventory_items WHERE id = ?`, itemID); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return q
}

func (f fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCreatePricesDeductsAndAggregates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	cups := f.item(t, "Cups", quantity.FromInt(3))
	milk := f.item(t, "Milk", quantity.FromFloat(1.0))
	f.link(t, latte, cups, quantity.FromInt(1))
	f.link(t, latte, milk, quantity.FromFloat(0.2))

	receipt, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items:         []orders.Item{{ProductID: latte, Quantity: 1, UnitPrice: money.FromMinor(3000)}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if receipt.Subtotal != 3000 || receipt.TaxAmount != 150 || receipt.TotalAmount != 3150 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if receipt.OrderNumber == "" || receipt.OrderID == 0 {
		t.Fatalf("missing identity in receipt %+v", receipt)
	}
	if got := f.stock(t, cups); got != quantity.FromInt(2) {
		t.Fatalf("cups = %s, want 2", got)
	}
	if got := f.stock(t, milk); got != quantity.FromFloat(0.8) {
		t.Fatalf("milk = %s, want 0.8", got)
	}
	if n := f.count(t, "inventory_deduction_log"); n != 2 {
		t.Fatalf("log rows = %d, want 2", n)
	}

	agg, err := reports.NewService(f.db, nil, func() time.Time { return fixedNow }).Aggregate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalOrders != 1 || agg.TotalSales != 3000 || agg.TotalTax != 150 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}

	var stored struct {
		Subtotal money.Money `db:"subtotal"`
		Total    money.Money `db:"total_amount"`
		Tax      money.Money `db:"tax_amount"`
	}
	if err := f.db.Get(&stored, `SELECT subtotal, total_amount, tax_amount FROM orders WHERE id = ?`, receipt.OrderID); err != nil {
		t.Fatalf("read order: %v", err)
	}
	if stored.Subtotal != 3000 || stored.Total != 3000 || stored.Tax != 150 {
		t.Fatalf("stored order amounts %+v, want total before tax", stored)
	}
}

func TestStoredTotalIsAfterDiscountBeforeTax(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))

	receipt, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items:          []orders.Item{{ProductID: latte, Quantity: 2, UnitPrice: money.FromMinor(3000)}},
		DiscountAmount: money.FromMinor(1000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if receipt.Subtotal != 6000 || receipt.TaxAmount != 250 || receipt.TotalAmount != 5250 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	detail, err := f.coord.Get(ctx, receipt.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.TotalAmount != 5000 {
		t.Fatalf("stored total = %s, want 5.000", detail.TotalAmount)
	}
	agg, err := reports.NewService(f.db, nil, func() time.Time { return fixedNow }).Aggregate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalSales != 5000 || agg.TotalTax != 250 || agg.TotalDiscount != 1000 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}

func TestCreateRejectsShortageWithoutWriting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	cups := f.item(t, "Cups", quantity.FromInt(3))
	f.link(t, latte, cups, quantity.FromInt(1))

	_, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items: []orders.Item{{ProductID: latte, Quantity: 4, UnitPrice: money.FromMinor(3000)}},
	})
	var shortage *orders.ShortageError
	if !errors.As(err, &shortage) {
		t.Fatalf("expected shortage, got %v", err)
	}
	if len(shortage.Shortages) != 1 {
		t.Fatalf("shortages = %+v", shortage.Shortages)
	}
	s := shortage.Shortages[0]
	if s.Name != "Cups" || s.Required != quantity.FromInt(4) || s.Available != quantity.FromInt(3) {
		t.Fatalf("unexpected shortage %+v", s)
	}
	if got := f.stock(t, cups); got != quantity.FromInt(3) {
		t.Fatalf("stock changed to %s", got)
	}
	for _, table := range []string{"orders", "order_lines", "inventory_deduction_log", "daily_reports"} {
		if n := f.count(t, table); n != 0 {
			t.Fatalf("%s has %d rows after rejection", table, n)
		}
	}
}

func TestShortageOnSecondLineLeavesFirstLineStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	muffin := f.product(t, "Muffin", money.FromMinor(2000))
	cups := f.item(t, "Cups", quantity.FromInt(10))
	flour := f.item(t, "Flour", quantity.FromFloat(0.1))
	f.link(t, latte, cups, quantity.FromInt(1))
	f.link(t, muffin, flour, quantity.FromFloat(0.25))

	_, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items: []orders.Item{
			{ProductID: latte, Quantity: 2, UnitPrice: money.FromMinor(3000)},
			{ProductID: muffin, Quantity: 1, UnitPrice: money.FromMinor(2000)},
		},
	})
	var shortage *orders.ShortageError
	if !errors.As(err, &shortage) {
		t.Fatalf("expected shortage, got %v", err)
	}
	if len(shortage.Shortages) != 1 || shortage.Shortages[0].InventoryItemID != flour {
		t.Fatalf("shortages = %+v, want only flour", shortage.Shortages)
	}
	if got := f.stock(t, cups); got != quantity.FromInt(10) {
		t.Fatalf("cups = %s, want 10", got)
	}
	if got := f.stock(t, flour); got != quantity.FromFloat(0.1) {
		t.Fatalf("flour = %s, want 0.1", got)
	}
	for _, table := range []string{"orders", "order_lines", "inventory_deduction_log", "daily_reports"} {
		if n := f.count(t, table); n != 0 {
			t.Fatalf("%s has %d rows after rejection", table, n)
		}
	}
}

func TestFaultAfterDeductionRollsBackEverything(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	cups := f.item(t, "Cups", quantity.FromInt(5))
	f.link(t, latte, cups, quantity.FromInt(1))
	req := orders.CreateRequest{Items: []orders.Item{{ProductID: latte, Quantity: 1, UnitPrice: money.FromMinor(3000)}}}

	if _, err := f.coord.Create(ctx, f.cashier, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TRIGGER daily_reports_no_insert BEFORE INSERT ON daily_reports BEGIN SELECT RAISE(ABORT, 'rollup unavailable'); END`,
		`CREATE TRIGGER daily_reports_no_update BEFORE UPDATE ON daily_reports BEGIN SELECT RAISE(ABORT, 'rollup unavailable'); END`,
	} {
		if _, err := f.db.Exec(stmt); err != nil {
			t.Fatalf("create trigger: %v", err)
		}
	}

	_, err := f.coord.Create(ctx, f.cashier, req)
	if err == nil || orders.IsValidation(err) || orders.IsShortage(err) {
		t.Fatalf("expected a fault, got %v", err)
	}
	if got := f.stock(t, cups); got != quantity.FromInt(4) {
		t.Fatalf("cups = %s, want 4", got)
	}
	for table, want := range map[string]int{"orders": 1, "order_lines": 1, "inventory_deduction_log": 1, "daily_reports": 1} {
		if n := f.count(t, table); n != want {
			t.Fatalf("%s has %d rows, want %d", table, n, want)
		}
	}
	agg, err := reports.NewService(f.db, nil, func() time.Time { return fixedNow }).Aggregate(ctx, "2026-03-14")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalOrders != 1 || agg.TotalSales != 3000 {
		t.Fatalf("aggregate changed to %+v", agg)
	}
}

func TestCreateRejectsOverflowingQuantities(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	sugar := f.product(t, "Sugar sachet", money.FromMinor(1))
	cups := f.item(t, "Cups", quantity.FromInt(3))
	f.link(t, latte, cups, quantity.FromInt(1))
	f.link(t, sugar, cups, quantity.FromInt(2))

	cases := map[string]orders.Item{
		"past stock range":  {ProductID: latte, Quantity: 1844674407370956, UnitPrice: money.FromMinor(3000)},
		"past money range":  {ProductID: latte, Quantity: domain.MaxLineQuantity, UnitPrice: money.FromMinor(3000)},
		"past recipe range": {ProductID: sugar, Quantity: domain.MaxLineQuantity, UnitPrice: money.FromMinor(1)},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{Items: []orders.Item{item}})
			if !orders.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if got := f.stock(t, cups); got != quantity.FromInt(3) {
		t.Fatalf("cups = %s, want 3", got)
	}
	for _, table := range []string{"orders", "order_lines", "inventory_deduction_log", "daily_reports"} {
		if n := f.count(t, table); n != 0 {
			t.Fatalf("%s has %d rows after rejection", table, n)
		}
	}
}

func TestCreateReportsEveryShortItem(t *testing.T) {
	f := setup(t)
	latte := f.product(t, "Latte", money.FromMinor(3000))
	cups := f.item(t, "Cups", quantity.FromInt(1))
	milk := f.item(t, "Milk", quantity.FromFloat(0.1))
	f.link(t, latte, cups, quantity.FromInt(1))
	f.link(t, latte, milk, quantity.FromFloat(0.2))

	_, err := f.coord.Create(context.Background(), f.cashier, orders.CreateRequest{
		Items: []orders.Item{{ProductID: latte, Quantity: 2, UnitPrice: money.FromMinor(3000)}},
	})
	var shortage *orders.ShortageError
	if !errors.As(err, &shortage) || len(shortage.Shortages) != 2 {
		t.Fatalf("expected two shortages, got %v", err)
	}
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := setup(t)
	latte := f.product(t, "Latte", money.FromMinor(3000))
	beans := f.item(t, "Beans", quantity.FromInt(5))
	f.link(t, latte, beans, quantity.FromInt(3))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.Create(context.Background(), f.cashier, orders.CreateRequest{
				Items: []orders.Item{{ProductID: latte, Quantity: 1, UnitPrice: money.FromMinor(3000)}},
			})
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case orders.IsShortage(err):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("succeeded=%d rejected=%d, want 1 and 1", succeeded, rejected)
	}
	if got := f.stock(t, beans); got != quantity.FromInt(2) {
		t.Fatalf("beans = %s, want 2", got)
	}
}

func TestDeductionLogKeepsPriceAtSale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	latte := f.product(t, "Latte", money.FromMinor(3000))
	cups := f.item(t, "Cups", quantity.FromInt(10))
	f.link(t, latte, cups, quantity.FromInt(1))

	receipt, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items: []orders.Item{{ProductID: latte, Quantity: 2, UnitPrice: money.FromMinor(3000)}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.db.Exec(`UPDATE products SET price = ?, name = ? WHERE id = ?`, 4500, "Big Latte", latte); err != nil {
		t.Fatalf("reprice: %v", err)
	}

	var row struct {
		OrderID  int64             `db:"order_id"`
		Product  string            `db:"product_name"`
		Item     string            `db:"inventory_item_name"`
		Deducted quantity.Quantity `db:"quantity_deducted"`
		Price    money.Money       `db:"unit_selling_price"`
	}
	err = f.db.Get(&row, `SELECT order_id, product_name, inventory_item_name, quantity_deducted, unit_selling_price FROM inventory_deduction_log`)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if row.OrderID != receipt.OrderID || row.Product != "Latte" || row.Item != "Cups" {
		t.Fatalf("unexpected log identity %+v", row)
	}
	if row.Deducted != quantity.FromInt(2) || row.Price != 3000 {
		t.Fatalf("unexpected log amounts %+v", row)
	}
}

func TestDiscountIsNotClamped(t *testing.T) {
	f := setup(t)
	water := f.product(t, "Water", money.FromMinor(1000))

	receipt, err := f.coord.Create(context.Background(), f.cashier, orders.CreateRequest{
		Items:          []orders.Item{{ProductID: water, Quantity: 1, UnitPrice: money.FromMinor(1000)}},
		DiscountAmount: money.FromMinor(3000),
		PaymentMethod:  "card",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if receipt.TaxAmount != -100 || receipt.TotalAmount != -2100 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	water := f.product(t, "Water", money.FromMinor(1000))
	missingTable := int64(99)

	cases := map[string]orders.CreateRequest{
		"empty":           {},
		"zero quantity":   {Items: []orders.Item{{ProductID: water, Quantity: 0}}},
		"missing product": {Items: []orders.Item{{ProductID: 0, Quantity: 1}}},
		"unknown product": {Items: []orders.Item{{ProductID: 12345, Quantity: 1}}},
		"bad payment":     {Items: []orders.Item{{ProductID: water, Quantity: 1}}, PaymentMethod: "cheque"},
		"unknown table":   {Items: []orders.Item{{ProductID: water, Quantity: 1}}, TableID: &missingTable},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.coord.Create(context.Background(), f.cashier, req)
			if !orders.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n := f.count(t, "orders"); n != 0 {
		t.Fatalf("orders written: %d", n)
	}
}

func TestListAndGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	water := f.product(t, "Water", money.FromMinor(1000))
	table := dbtest.Insert(t, f.db, `INSERT INTO dining_tables (name) VALUES (?) RETURNING id`, "T1")

	dineIn, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items:   []orders.Item{{ProductID: water, Quantity: 2, UnitPrice: money.FromMinor(1000)}},
		TableID: &table,
	})
	if err != nil {
		t.Fatalf("create dine-in: %v", err)
	}
	if _, err := f.coord.Create(ctx, f.cashier, orders.CreateRequest{
		Items: []orders.Item{{ProductID: water, Quantity: 1, UnitPrice: money.FromMinor(1000)}},
	}); err != nil {
		t.Fatalf("create takeaway: %v", err)
	}

	all, err := f.coord.List(ctx, orders.ListFilter{Date: "2026-03-14"})
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d, %v", len(all), err)
	}
	takeaway := int64(0)
	only, err := f.coord.List(ctx, orders.ListFilter{TableID: &takeaway})
	if err != nil || len(only) != 1 || only[0].TableID != nil {
		t.Fatalf("takeaway list = %+v, %v", only, err)
	}

	detail, err := f.coord.Get(ctx, dineIn.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.TableName == nil || *detail.TableName != "T1" {
		t.Fatalf("table name = %v", detail.TableName)
	}
	if len(detail.Items) != 1 || detail.Items[0].ProductName != "Water" || detail.Items[0].Subtotal != 2000 {
		t.Fatalf("unexpected items %+v", detail.Items)
	}
	if _, err := f.coord.Get(ctx, 999); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
