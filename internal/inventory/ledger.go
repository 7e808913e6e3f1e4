// Package inventory keeps raw-material stock: sufficiency checks, automatic
// deductions with their audit trail, and manual stock administration.
package inventory

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
	"mirmaia/pos/internal/quantity"
	"mirmaia/pos/internal/recipe"
)

// ShortageError is the business rejection raised when stock cannot cover an order.
type ShortageError struct {
	Shortages []domain.Shortage
}

func (e *ShortageError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s: required %s, available %s", s.Name, s.Required, s.Available))
	}
	return "insufficient inventory: " + strings.Join(parts, "; ")
}

// Ledger performs stock checks and deductions on the caller's transaction.
type Ledger struct {
	now func() time.Time
}

// NewLedger builds a ledger; now stamps audit rows and defaults to time.Now.
func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

type stockRow struct {
	Name     string            `db:"name"`
	Quantity quantity.Quantity `db:"quantity"`
}

// CheckSufficiency reads current stock for every required item and reports all
// items that fall short. Items that no longer exist are skipped. On PostgreSQL
// the rows stay locked until the transaction ends.
func (l *Ledger) CheckSufficiency(ctx context.Context, q sqlx.ExtContext, req recipe.Requirements) ([]domain.Shortage, error) {
	query := q.Rebind(`SELECT name, quantity FROM inventory_items WHERE id = ?` + database.ForUpdate(q))

	var shortages []domain.Shortage
	for _, id := range req.ItemIDs() {
		need := req[id]
		var row stockRow
		err := sqlx.GetContext(ctx, q, &row, query, id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read stock for item %d: %w", id, err)
		}
		if row.Quantity.Less(need) {
			shortages = append(shortages, domain.Shortage{
				InventoryItemID: id,
				Name:            row.Name,
				Required:        need,
				Available:       row.Quantity,
			})
		}
	}
	return shortages, nil
}

// DeductionInput identifies one persisted order line.
type DeductionInput struct {
	OrderID     int64
	OrderLineID int64
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   money.Money
}

// DeductAndLog consumes stock for every recipe link of the line's product and
// appends one audit row per link. The update is guarded so stock never goes
// negative even if a concurrent writer slipped in after the sufficiency check.
func (l *Ledger) DeductAndLog(ctx context.Context, q sqlx.ExtContext, in DeductionInput) ([]domain.DeductionLogEntry, error) {
	links, err := recipe.ProductLinks(ctx, q, in.ProductID)
	if err != nil {
		return nil, err
	}

	deduct := q.Rebind(`UPDATE inventory_items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?`)
	insert := q.Rebind(`INSERT INTO inventory_deduction_log
		(order_id, order_line_id, product_id, product_name, inventory_item_id, inventory_item_name, quantity_deducted, unit_selling_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	stamp := l.now().UTC().Format(time.RFC3339)

	entries := make([]domain.DeductionLogEntry, 0, len(links))
	for _, link := range links {
		deducted, err := link.QuantityPerOrder.Times(in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("deduct item %d: %w", link.InventoryItemID, err)
		}
		res, err := q.ExecContext(ctx, deduct, deducted, link.InventoryItemID, deducted)
		if err != nil {
			return nil, fmt.Errorf("deduct item %d: %w", link.InventoryItemID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("deduct item %d: %w", link.InventoryItemID, err)
		}
		if n == 0 {
			return nil, &ShortageError{Shortages: []domain.Shortage{{
				InventoryItemID: link.InventoryItemID,
				Name:            link.InventoryItemName,
				Required:        deducted,
				Available:       link.InventoryQuantity,
			}}}
		}

		entry := domain.DeductionLogEntry{
			OrderID:           in.OrderID,
			OrderLineID:       in.OrderLineID,
			ProductID:         in.ProductID,
			ProductName:       in.ProductName,
			InventoryItemID:   link.InventoryItemID,
			InventoryItemName: link.InventoryItemName,
			QuantityDeducted:  deducted,
			UnitSellingPrice:  in.UnitPrice,
			CreatedAt:         stamp,
		}
		err = q.QueryRowxContext(ctx, insert, entry.OrderID, entry.OrderLineID, entry.ProductID, entry.ProductName,
			entry.InventoryItemID, entry.InventoryItemName, entry.QuantityDeducted, entry.UnitSellingPrice, entry.CreatedAt).Scan(&entry.ID)
		if err != nil {
			return nil, fmt.Errorf("write deduction log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
