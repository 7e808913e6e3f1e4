package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
)

type ListFilter struct {
	Date   string
	Status string
	// TableID filters by table; a pointer to 0 selects takeaway orders.
	TableID *int64
}

// OrderDetail is an order with its lines.
type OrderDetail struct {
	domain.Order
	Items []domain.OrderLine `json:"items"`
}

const orderColumns = `o.id, o.order_number, o.cashier_id, o.subtotal, o.total_amount, o.tax_amount, o.discount_amount,
	o.payment_method, o.table_id, t.name AS table_name, o.order_status, o.business_date, o.created_at`

// List returns up to 100 orders, newest first.
func (c *Coordinator) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o LEFT JOIN dining_tables t ON t.id = o.table_id WHERE 1=1`
	var args []any
	if f.Date != "" {
		query += " AND o.business_date = ?"
		args = append(args, f.Date)
	}
	if f.Status != "" {
		query += " AND o.order_status = ?"
		args = append(args, f.Status)
	}
	if f.TableID != nil {
		if *f.TableID == 0 {
			query += " AND o.table_id IS NULL"
		} else {
			query += " AND o.table_id = ?"
			args = append(args, *f.TableID)
		}
	}
	query += " ORDER BY o.id DESC LIMIT 100"

	list := []domain.Order{}
	if err := c.db.SelectContext(ctx, &list, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// Get loads one order with its lines and the products' current names.
func (c *Coordinator) Get(ctx context.Context, id int64) (OrderDetail, error) {
	var detail OrderDetail
	err := c.db.GetContext(ctx, &detail.Order, c.db.Rebind(`SELECT `+orderColumns+`
		FROM orders o LEFT JOIN dining_tables t ON t.id = o.table_id WHERE o.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderDetail{}, ErrNotFound
	}
	if err != nil {
		return OrderDetail{}, fmt.Errorf("get order: %w", err)
	}
	lines, err := orderLines(ctx, c.db, id)
	if err != nil {
		return OrderDetail{}, err
	}
	detail.Items = lines
	return detail, nil
}

func orderLines(ctx context.Context, q sqlx.ExtContext, orderID int64) ([]domain.OrderLine, error) {
	lines := []domain.OrderLine{}
	err := sqlx.SelectContext(ctx, q, &lines, q.Rebind(`SELECT ol.id, ol.order_id, ol.product_id, p.name AS product_name,
			ol.quantity, ol.unit_price, ol.subtotal
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = ?
		ORDER BY ol.id`), orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	return lines, nil
}
