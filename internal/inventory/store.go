package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
)

var (
	// ErrNotFound is returned when an inventory item is missing.
	ErrNotFound = errors.New("inventory item not found")
	// ErrInsufficient is returned when a manual adjustment would drive stock negative.
	ErrInsufficient = errors.New("insufficient quantity")
	// ErrInvalid marks input the store refuses to write.
	ErrInvalid = errors.New("invalid inventory item")
)

const itemColumns = `id, name, quantity, unit_cost, min_quantity, created_at, updated_at`

// Store administers raw-material records outside of order processing.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// List returns every item sorted by name.
func (s *Store) List(ctx context.Context) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	if err := s.db.SelectContext(ctx, &items, `SELECT `+itemColumns+` FROM inventory_items ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}

// Get loads one item.
func (s *Store) Get(ctx context.Context, id int64) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := s.db.GetContext(ctx, &item, s.db.Rebind(`SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, ErrNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// Create inserts a new raw material.
func (s *Store) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return domain.InventoryItem{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if item.Quantity < 0 || item.MinQuantity < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: quantities must not be negative", ErrInvalid)
	}
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO inventory_items (name, quantity, unit_cost, min_quantity)
		VALUES (?, ?, ?, ?) RETURNING id`), item.Name, item.Quantity, item.UnitCost, item.MinQuantity).Scan(&id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("create inventory item: %w", err)
	}
	return s.Get(ctx, id)
}

// ItemPatch carries the fields an update changes; nil fields are left alone.
type ItemPatch struct {
	Name        *string
	Quantity    *quantity.Quantity
	UnitCost    *money.Money
	MinQuantity *quantity.Quantity
}

// Update applies a partial change.
func (s *Store) Update(ctx context.Context, id int64, patch ItemPatch) (domain.InventoryItem, error) {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.InventoryItem{}, fmt.Errorf("%w: name is required", ErrInvalid)
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return domain.InventoryItem{}, fmt.Errorf("%w: quantity must not be negative", ErrInvalid)
		}
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.UnitCost != nil {
		sets = append(sets, "unit_cost = ?")
		args = append(args, *patch.UnitCost)
	}
	if patch.MinQuantity != nil {
		sets = append(sets, "min_quantity = ?")
		args = append(args, *patch.MinQuantity)
	}
	if len(sets) == 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE inventory_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("update inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.InventoryItem{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes an item; its recipe links go with it.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM inventory_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Adjust adds delta (negative removes) in one statement and returns the new level.
func (s *Store) Adjust(ctx context.Context, id int64, delta quantity.Quantity) (quantity.Quantity, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: quantity_change must be non-zero", ErrInvalid)
	}
	var level quantity.Quantity
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`UPDATE inventory_items
		SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity + ? >= 0
		RETURNING quantity`), delta, id, delta).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, ErrInsufficient
	}
	if err != nil {
		return 0, fmt.Errorf("adjust inventory item: %w", err)
	}
	return level, nil
}

// LowStock lists items at or below their minimum threshold.
func (s *Store) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	err := s.db.SelectContext(ctx, &items, `SELECT `+itemColumns+` FROM inventory_items
		WHERE min_quantity > 0 AND quantity <= min_quantity ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

// LogFilter narrows the deduction audit trail.
type LogFilter struct {
	OrderID         int64
	InventoryItemID int64
	From            string
	To              string
}

// DeductionLog returns the newest audit rows matching filter, at most 500.
func (s *Store) DeductionLog(ctx context.Context, f LogFilter) ([]domain.DeductionLogEntry, error) {
	query := `SELECT l.id, l.order_id, l.order_line_id, l.product_id, l.product_name, l.inventory_item_id,
			l.inventory_item_name, l.quantity_deducted, l.unit_selling_price, l.created_at, o.order_number
		FROM inventory_deduction_log l
		JOIN orders o ON o.id = l.order_id
		WHERE 1=1`
	var args []any
	if f.OrderID > 0 {
		query += " AND l.order_id = ?"
		args = append(args, f.OrderID)
	}
	if f.InventoryItemID > 0 {
		query += " AND l.inventory_item_id = ?"
		args = append(args, f.InventoryItemID)
	}
	if f.From != "" {
		query += " AND o.business_date >= ?"
		args = append(args, f.From)
	}
	if f.To != "" {
		query += " AND o.business_date <= ?"
		args = append(args, f.To)
	}
	query += " ORDER BY l.id DESC LIMIT 500"

	entries := []domain.DeductionLogEntry{}
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load deduction log: %w", err)
	}
	return entries, nil
}
