// Package reports maintains the per-day sales rollup and serves read-only
// reporting over committed orders, including the end-of-day cash closure.
package reports

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/internal/money"
)

// DateLayout is the calendar-day key used by orders and aggregates.
const DateLayout = "2006-01-02"

// Delta is what one order adds to its day.
type Delta struct {
	Orders   int64
	Sales    money.Money
	Tax      money.Money
	Discount money.Money
}

// Tracker increments daily aggregates.
type Tracker struct{}

// NewTracker returns a Tracker. It holds no state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// UpsertForDay adds delta to the row for date, creating it on the first order of
// the day. The increment happens in SQL on the caller's transaction so concurrent
// commits cannot lose updates.
func (t *Tracker) UpsertForDay(ctx context.Context, q sqlx.ExtContext, date string, d Delta) error {
	_, err := q.ExecContext(ctx, q.Rebind(`INSERT INTO daily_reports (report_date, total_orders, total_sales, total_tax, total_discount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (report_date) DO UPDATE SET
			total_orders = daily_reports.total_orders + excluded.total_orders,
			total_sales = daily_reports.total_sales + excluded.total_sales,
			total_tax = daily_reports.total_tax + excluded.total_tax,
			total_discount = daily_reports.total_discount + excluded.total_discount`),
		date, d.Orders, d.Sales, d.Tax, d.Discount)
	if err != nil {
		return fmt.Errorf("update daily aggregate for %s: %w", date, err)
	}
	return nil
}
