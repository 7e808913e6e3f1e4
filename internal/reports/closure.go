package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/database"
	"mirmaia/pos/internal/money"
)

var (
	// ErrAlreadyClosed is returned when the business day was closed before.
	ErrAlreadyClosed = errors.New("day already closed")
	// ErrClosureNotFound is returned for an unknown closure id.
	ErrClosureNotFound = errors.New("closure not found")
)

type DaySummary struct {
	TotalOrders   int64       `db:"total_orders" json:"total_orders"`
	TotalSales    money.Money `db:"total_sales" json:"total_sales"`
	TotalTax      money.Money `db:"total_tax" json:"total_tax"`
	TotalDiscount money.Money `db:"total_discount" json:"total_discount"`
	CashSales     money.Money `db:"cash_sales" json:"cash_sales"`
	CardSales     money.Money `db:"card_sales" json:"card_sales"`
}

type TodaySummary struct {
	Date          string     `json:"date"`
	Summary       DaySummary `json:"summary"`
	AlreadyClosed bool       `json:"already_closed"`
	ClosedAt      *string    `json:"closed_at"`
}

const daySummaryQuery = `SELECT COUNT(*) AS total_orders,
		COALESCE(SUM(total_amount), 0) AS total_sales,
		COALESCE(SUM(tax_amount), 0) AS total_tax,
		COALESCE(SUM(discount_amount), 0) AS total_discount,
		COALESCE(SUM(CASE WHEN payment_method IN ('cash', 'both') THEN total_amount ELSE 0 END), 0) AS cash_sales,
		COALESCE(SUM(CASE WHEN payment_method = 'card' THEN total_amount ELSE 0 END), 0) AS card_sales
	FROM orders
	WHERE business_date = ?`

func daySummary(ctx context.Context, q sqlx.ExtContext, date string) (DaySummary, error) {
	var summary DaySummary
	if err := sqlx.GetContext(ctx, q, &summary, q.Rebind(daySummaryQuery), date); err != nil {
		return DaySummary{}, fmt.Errorf("summarize %s: %w", date, err)
	}
	return summary, nil
}

// TodaySummary shows what closing the current day would record.
func (s *Service) TodaySummary(ctx context.Context) (TodaySummary, error) {
	date := s.Today()
	summary, err := daySummary(ctx, s.db, date)
	if err != nil {
		return TodaySummary{}, err
	}
	out := TodaySummary{Date: date, Summary: summary}
	var closedAt string
	err = s.db.GetContext(ctx, &closedAt, s.db.Rebind(`SELECT closed_at FROM daily_closures WHERE closure_date = ?`), date)
	switch {
	case err == nil:
		out.AlreadyClosed = true
		out.ClosedAt = &closedAt
	case !errors.Is(err, sql.ErrNoRows):
		return TodaySummary{}, fmt.Errorf("load closure: %w", err)
	}
	return out, nil
}

type CloseInput struct {
	UserID         int64
	CashierName    string
	OpeningBalance *money.Money
	ClosingBalance *money.Money
	Notes          string
}

// CloseDay snapshots today's committed orders into a closure row. A day can be
// closed once.
func (s *Service) CloseDay(ctx context.Context, in CloseInput) (domain.DailyClosure, error) {
	date := s.Today()
	closure := domain.DailyClosure{
		ClosureDate:    date,
		ClosedByUserID: in.UserID,
		CashierName:    strings.TrimSpace(in.CashierName),
		OpeningBalance: in.OpeningBalance,
		ClosingBalance: in.ClosingBalance,
		ClosedAt:       s.now().UTC().Format(time.RFC3339),
	}
	if closure.CashierName == "" {
		closure.CashierName = "unknown"
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		closure.Notes = &notes
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM daily_closures WHERE closure_date = ?)`), date); err != nil {
			return fmt.Errorf("check closure: %w", err)
		}
		if exists {
			return ErrAlreadyClosed
		}
		summary, err := daySummary(ctx, tx, date)
		if err != nil {
			return err
		}
		closure.TotalOrders = summary.TotalOrders
		closure.TotalSales = summary.TotalSales
		closure.TotalTax = summary.TotalTax
		closure.TotalDiscount = summary.TotalDiscount
		closure.CashSales = summary.CashSales
		closure.CardSales = summary.CardSales

		return tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO daily_closures (
				closure_date, closed_by_user_id, cashier_name, total_orders, total_sales, total_tax, total_discount,
				cash_sales, card_sales, opening_balance, closing_balance, notes, closed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			closure.ClosureDate, closure.ClosedByUserID, closure.CashierName, closure.TotalOrders, closure.TotalSales,
			closure.TotalTax, closure.TotalDiscount, closure.CashSales, closure.CardSales,
			closure.OpeningBalance, closure.ClosingBalance, closure.Notes, closure.ClosedAt).Scan(&closure.ID)
	})
	if err != nil {
		return domain.DailyClosure{}, err
	}
	return closure, nil
}

const closureColumns = `id, closure_date, closed_by_user_id, cashier_name, total_orders, total_sales, total_tax,
	total_discount, cash_sales, card_sales, opening_balance, closing_balance, notes, closed_at`

// ListClosures returns closures in an optional date range, newest first.
func (s *Service) ListClosures(ctx context.Context, from, to string) ([]domain.DailyClosure, error) {
	query := `SELECT ` + closureColumns + ` FROM daily_closures WHERE 1=1`
	var args []any
	if from != "" {
		query += " AND closure_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND closure_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY closure_date DESC LIMIT 365"

	closures := []domain.DailyClosure{}
	if err := s.db.SelectContext(ctx, &closures, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list closures: %w", err)
	}
	return closures, nil
}

// GetClosure loads one closure.
func (s *Service) GetClosure(ctx context.Context, id int64) (domain.DailyClosure, error) {
	var closure domain.DailyClosure
	err := s.db.GetContext(ctx, &closure, s.db.Rebind(`SELECT `+closureColumns+` FROM daily_closures WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyClosure{}, ErrClosureNotFound
	}
	if err != nil {
		return domain.DailyClosure{}, fmt.Errorf("get closure: %w", err)
	}
	return closure, nil
}
