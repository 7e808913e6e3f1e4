package domain

import "mirmaia/pos/internal/money"

// DailyAggregate is the running per-day rollup maintained by order creation.
type DailyAggregate struct {
	ReportDate    string      `db:"report_date" json:"report_date"`
	TotalOrders   int64       `db:"total_orders" json:"total_orders"`
	TotalSales    money.Money `db:"total_sales" json:"total_sales"`
	TotalTax      money.Money `db:"total_tax" json:"total_tax"`
	TotalDiscount money.Money `db:"total_discount" json:"total_discount"`
}

// DailyClosure is the cashier's end-of-day reconciliation snapshot.
type DailyClosure struct {
	ID             int64        `db:"id" json:"id"`
	ClosureDate    string       `db:"closure_date" json:"closure_date"`
	ClosedByUserID int64        `db:"closed_by_user_id" json:"closed_by_user_id"`
	CashierName    string       `db:"cashier_name" json:"cashier_name"`
	TotalOrders    int64        `db:"total_orders" json:"total_orders"`
	TotalSales     money.Money  `db:"total_sales" json:"total_sales"`
	TotalTax       money.Money  `db:"total_tax" json:"total_tax"`
	TotalDiscount  money.Money  `db:"total_discount" json:"total_discount"`
	CashSales      money.Money  `db:"cash_sales" json:"cash_sales"`
	CardSales      money.Money  `db:"card_sales" json:"card_sales"`
	OpeningBalance *money.Money `db:"opening_balance" json:"opening_balance"`
	ClosingBalance *money.Money `db:"closing_balance" json:"closing_balance"`
	Notes          *string      `db:"notes" json:"notes"`
	ClosedAt       string       `db:"closed_at" json:"closed_at"`
}
