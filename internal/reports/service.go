package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/money"
)

// Service answers reporting queries. It never writes order data.
type Service struct {
	db  *sqlx.DB
	loc *time.Location
	now func() time.Time
}

// NewService wires the reporting service. loc decides where a business day starts.
func NewService(db *sqlx.DB, loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, loc: loc, now: now}
}

// Today returns the current business date.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// Aggregate returns the rollup for date, zero-valued when no order was placed.
func (s *Service) Aggregate(ctx context.Context, date string) (domain.DailyAggregate, error) {
	agg := domain.DailyAggregate{ReportDate: date}
	err := s.db.GetContext(ctx, &agg, s.db.Rebind(`SELECT report_date, total_orders, total_sales, total_tax, total_discount
		FROM daily_reports WHERE report_date = ?`), date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.DailyAggregate{}, fmt.Errorf("load daily aggregate: %w", err)
	}
	return agg, nil
}

type PaymentBreakdown struct {
	PaymentMethod string      `db:"payment_method" json:"payment_method"`
	Count         int64       `db:"count" json:"count"`
	Amount        money.Money `db:"amount" json:"amount"`
}

type DailyReport struct {
	Date             string                `json:"date"`
	Summary          domain.DailyAggregate `json:"summary"`
	PaymentBreakdown []PaymentBreakdown    `json:"payment_breakdown"`
}

// Daily combines the day's aggregate with a payment method breakdown.
func (s *Service) Daily(ctx context.Context, date string) (DailyReport, error) {
	if date == "" {
		date = s.Today()
	}
	agg, err := s.Aggregate(ctx, date)
	if err != nil {
		return DailyReport{}, err
	}
	breakdown := []PaymentBreakdown{}
	err = s.db.SelectContext(ctx, &breakdown, s.db.Rebind(`SELECT payment_method, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM orders
		WHERE business_date = ? AND order_status = 'completed'
		GROUP BY payment_method
		ORDER BY payment_method`), date)
	if err != nil {
		return DailyReport{}, fmt.Errorf("load payment breakdown: %w", err)
	}
	return DailyReport{Date: date, Summary: agg, PaymentBreakdown: breakdown}, nil
}

type PeriodStats struct {
	TotalOrders    int64       `db:"total_orders" json:"total_orders"`
	TotalSales     money.Money `db:"total_sales" json:"total_sales"`
	TotalTax       money.Money `db:"total_tax" json:"total_tax"`
	TotalDiscount  money.Money `db:"total_discount" json:"total_discount"`
	AvgTransaction money.Money `db:"avg_transaction" json:"avg_transaction"`
	MinTransaction money.Money `db:"min_transaction" json:"min_transaction"`
	MaxTransaction money.Money `db:"max_transaction" json:"max_transaction"`
}

type ProductSales struct {
	ProductID int64       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	TotalSold int64       `db:"total_sold" json:"total_sold"`
	Revenue   money.Money `db:"revenue" json:"revenue"`
}

type DaySales struct {
	Date   string      `db:"business_date" json:"date"`
	Orders int64       `db:"orders" json:"orders"`
	Sales  money.Money `db:"sales" json:"sales"`
}

type MonthlyReport struct {
	Year           int            `json:"year"`
	Month          int            `json:"month"`
	Summary        PeriodStats    `json:"summary"`
	TopProducts    []ProductSales `json:"top_products"`
	DailyBreakdown []DaySales     `json:"daily_breakdown"`
}

// Monthly summarizes completed orders of one calendar month.
func (s *Service) Monthly(ctx context.Context, year, month int) (MonthlyReport, error) {
	if month < 1 || month > 12 {
		return MonthlyReport{}, fmt.Errorf("month must be between 1 and 12")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	from, to := start.Format(DateLayout), start.AddDate(0, 1, 0).Format(DateLayout)

	report := MonthlyReport{Year: year, Month: month, TopProducts: []ProductSales{}, DailyBreakdown: []DaySales{}}
	err := s.db.GetContext(ctx, &report.Summary, s.db.Rebind(`SELECT COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount), 0) AS total_sales,
			COALESCE(SUM(tax_amount), 0) AS total_tax,
			COALESCE(SUM(discount_amount), 0) AS total_discount,
			COALESCE(AVG(total_amount), 0) AS avg_transaction,
			COALESCE(MIN(total_amount), 0) AS min_transaction,
			COALESCE(MAX(total_amount), 0) AS max_transaction
		FROM orders
		WHERE business_date >= ? AND business_date < ? AND order_status = 'completed'`), from, to)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("load monthly stats: %w", err)
	}

	err = s.db.SelectContext(ctx, &report.TopProducts, s.db.Rebind(`SELECT p.id, p.name, SUM(ol.quantity) AS total_sold, SUM(ol.subtotal) AS revenue
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		JOIN orders o ON o.id = ol.order_id
		WHERE o.business_date >= ? AND o.business_date < ? AND o.order_status = 'completed'
		GROUP BY p.id, p.name
		ORDER BY total_sold DESC
		LIMIT 10`), from, to)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("load top products: %w", err)
	}

	err = s.db.SelectContext(ctx, &report.DailyBreakdown, s.db.Rebind(`SELECT business_date, COUNT(*) AS orders, SUM(total_amount) AS sales
		FROM orders
		WHERE business_date >= ? AND business_date < ? AND order_status = 'completed'
		GROUP BY business_date
		ORDER BY business_date`), from, to)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("load daily breakdown: %w", err)
	}
	return report, nil
}

type CategorySales struct {
	Category     string      `db:"category" json:"category"`
	ItemsSold    int64       `db:"items_sold" json:"items_sold"`
	TotalRevenue money.Money `db:"total_revenue" json:"total_revenue"`
}

// ByCategory groups line revenue by menu category over an optional date range.
func (s *Service) ByCategory(ctx context.Context, from, to string) ([]CategorySales, error) {
	query := `SELECT c.name AS category, COUNT(ol.id) AS items_sold, SUM(ol.subtotal) AS total_revenue
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN orders o ON o.id = ol.order_id
		WHERE o.order_status = 'completed'`
	var args []any
	if from != "" {
		query += " AND o.business_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND o.business_date <= ?"
		args = append(args, to)
	}
	query += " GROUP BY c.id, c.name ORDER BY total_revenue DESC"

	rows := []CategorySales{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load sales by category: %w", err)
	}
	return rows, nil
}
