// Package orders turns a cashier's basket into a committed order. Pricing,
// stock verification, persistence, inventory deduction and the daily rollup
// run in one database transaction that either fully commits or leaves no trace.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/database"
	"mirmaia/pos/internal/inventory"
	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
	"mirmaia/pos/internal/recipe"
	"mirmaia/pos/internal/reports"
)

// Stage is a step of order creation, logged as the order moves through it.
type Stage string

const (
	StageReceived             Stage = "received"
	StagePriced               Stage = "priced"
	StageInventoryChecked     Stage = "inventory_checked"
	StageRejectedInsufficient Stage = "rejected_insufficient"
	StagePersisted            Stage = "persisted"
	StageDeducted             Stage = "deducted"
	StageAggregated           Stage = "aggregated"
	StageCommitted            Stage = "committed"
	StageRolledBack           Stage = "rolled_back"
)

// DefaultTaxRate is the percent applied when none is configured.
const DefaultTaxRate = 5.0

// Item is one basket line as the cashier sends it.
type Item struct {
	ProductID int64       `json:"product_id"`
	Quantity  int64       `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
}

// CreateRequest is the body of an order submission.
type CreateRequest struct {
	Items          []Item      `json:"items"`
	DiscountAmount money.Money `json:"discount_amount"`
	PaymentMethod  string      `json:"payment_method"`
	TableID        *int64      `json:"table_id"`
}

// Receipt is what the cashier gets back for a committed order.
type Receipt struct {
	OrderID        int64       `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	Subtotal       money.Money `json:"subtotal"`
	TotalAmount    money.Money `json:"total_amount"`
	TaxAmount      money.Money `json:"tax_amount"`
	DiscountAmount money.Money `json:"discount_amount"`
}

// Options tunes a Coordinator. Zero fields fall back to defaults.
type Options struct {
	TaxRate  float64
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// Coordinator runs order creation against one database.
type Coordinator struct {
	db      *sqlx.DB
	ledger  *inventory.Ledger
	tracker *reports.Tracker
	taxRate float64
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewCoordinator constructs a Coordinator. A nil ledger or tracker gets a default one.
func NewCoordinator(db *sqlx.DB, ledger *inventory.Ledger, tracker *reports.Tracker, opts Options) *Coordinator {
	c := &Coordinator{
		db:      db,
		ledger:  ledger,
		tracker: tracker,
		taxRate: opts.TaxRate,
		loc:     opts.Location,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.ledger == nil {
		c.ledger = inventory.NewLedger(c.now)
	}
	if c.tracker == nil {
		c.tracker = reports.NewTracker()
	}
	return c
}

type pricedOrder struct {
	lines    []domain.OrderLine
	payment  domain.PaymentMethod
	subtotal money.Money
	discount money.Money
	// net is the subtotal after discount and before tax. It is what orders
	// and the daily rollup store as the sale amount.
	net   money.Money
	tax   money.Money
	total money.Money
}

// price validates the request and computes every money field.
func (c *Coordinator) price(req CreateRequest) (pricedOrder, error) {
	if len(req.Items) == 0 {
		return pricedOrder{}, invalid("items", "order must contain at least one item")
	}
	payment, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return pricedOrder{}, invalid("payment_method", "%v", err)
	}
	if req.TableID != nil && *req.TableID <= 0 {
		return pricedOrder{}, invalid("table_id", "must be a positive id")
	}

	p := pricedOrder{payment: payment, discount: req.DiscountAmount}
	p.lines = make([]domain.OrderLine, 0, len(req.Items))
	for i, item := range req.Items {
		line, err := domain.NewOrderLine(item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return pricedOrder{}, invalid(fmt.Sprintf("items[%d]", i), "%v", err)
		}
		p.lines = append(p.lines, line)
		if p.subtotal, err = p.subtotal.CheckedAdd(line.Subtotal); err != nil {
			return pricedOrder{}, invalid("items", "order subtotal is out of range")
		}
	}
	if p.net, err = p.subtotal.CheckedSub(p.discount); err != nil {
		return pricedOrder{}, invalid("discount_amount", "discount is out of range")
	}
	if p.tax, err = p.net.CheckedPercent(c.taxRate); err != nil {
		return pricedOrder{}, invalid("items", "order tax is out of range")
	}
	if p.total, err = p.net.CheckedAdd(p.tax); err != nil {
		return pricedOrder{}, invalid("items", "order total is out of range")
	}
	return p, nil
}

func (c *Coordinator) stage(log *zap.Logger, s Stage, fields ...zap.Field) {
	log.Debug("order stage", append([]zap.Field{zap.String("stage", string(s))}, fields...)...)
}

// Create records an order for cashierID. A *ValidationError or *ShortageError
// means nothing was written; any other error is a fault and was rolled back.
func (c *Coordinator) Create(ctx context.Context, cashierID int64, req CreateRequest) (Receipt, error) {
	log := c.logger.With(zap.Int64("cashier_id", cashierID))
	c.stage(log, StageReceived, zap.Int("items", len(req.Items)))

	p, err := c.price(req)
	if err != nil {
		return Receipt{}, err
	}
	c.stage(log, StagePriced, zap.Stringer("subtotal", p.subtotal), zap.Stringer("total", p.total))

	now := c.now()
	receipt := Receipt{
		OrderNumber:    newOrderNumber(now),
		Subtotal:       p.subtotal,
		TotalAmount:    p.total,
		TaxAmount:      p.tax,
		DiscountAmount: p.discount,
	}
	businessDate := now.In(c.loc).Format(reports.DateLayout)
	createdAt := now.UTC().Format(time.RFC3339)
	log = log.With(zap.String("order_number", receipt.OrderNumber))

	err = database.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		names, err := productNames(ctx, tx, p.lines)
		if err != nil {
			return err
		}
		if req.TableID != nil {
			var exists bool
			if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM dining_tables WHERE id = ?)`), *req.TableID); err != nil {
				return fmt.Errorf("check table: %w", err)
			}
			if !exists {
				return invalid("table_id", "table %d does not exist", *req.TableID)
			}
		}

		resolverLines := make([]recipe.Line, len(p.lines))
		for i, line := range p.lines {
			resolverLines[i] = recipe.Line{ProductID: line.ProductID, Quantity: line.Quantity}
		}
		need, err := recipe.Resolve(ctx, tx, resolverLines)
		if errors.Is(err, quantity.ErrOverflow) {
			return invalid("items", "ingredient requirement is out of range")
		}
		if err != nil {
			return err
		}
		shortages, err := c.ledger.CheckSufficiency(ctx, tx, need)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			c.stage(log, StageRejectedInsufficient, zap.Int("shortages", len(shortages)))
			return &ShortageError{Shortages: shortages}
		}
		c.stage(log, StageInventoryChecked, zap.Int("items_required", len(need)))

		err = tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO orders
			(order_number, cashier_id, subtotal, total_amount, tax_amount, discount_amount, payment_method, table_id, order_status, business_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			receipt.OrderNumber, cashierID, p.subtotal, p.net, p.tax, p.discount, string(p.payment),
			req.TableID, domain.OrderStatusCompleted, businessDate, createdAt,
		).Scan(&receipt.OrderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		insertLine := tx.Rebind(`INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		for i := range p.lines {
			line := &p.lines[i]
			line.OrderID = receipt.OrderID
			line.ProductName = names[line.ProductID]
			err := tx.QueryRowxContext(ctx, insertLine, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		c.stage(log, StagePersisted, zap.Int64("order_id", receipt.OrderID))

		deductions := 0
		for _, line := range p.lines {
			entries, err := c.ledger.DeductAndLog(ctx, tx, inventory.DeductionInput{
				OrderID:     line.OrderID,
				OrderLineID: line.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
			if err != nil {
				return err
			}
			deductions += len(entries)
		}
		c.stage(log, StageDeducted, zap.Int("deductions", deductions))

		err = c.tracker.UpsertForDay(ctx, tx, businessDate, reports.Delta{
			Orders:   1,
			Sales:    p.net,
			Tax:      p.tax,
			Discount: p.discount,
		})
		if err != nil {
			return err
		}
		c.stage(log, StageAggregated, zap.String("business_date", businessDate))
		return nil
	})
	if err != nil {
		c.stage(log, StageRolledBack)
		if !IsValidation(err) && !IsShortage(err) {
			log.Error("order creation failed", zap.Error(err))
		}
		return Receipt{}, err
	}

	c.stage(log, StageCommitted)
	log.Info("order committed",
		zap.Int64("order_id", receipt.OrderID),
		zap.Stringer("total", receipt.TotalAmount),
		zap.String("payment_method", string(p.payment)))
	return receipt, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

// productNames loads the current name of every ordered product. An unknown id
// rejects the order before anything is written.
func productNames(ctx context.Context, q sqlx.ExtContext, lines []domain.OrderLine) (map[int64]string, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	query, args, err := sqlx.In(`SELECT id, name FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare product query: %w", err)
	}
	var rows []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	for _, line := range lines {
		if _, ok := names[line.ProductID]; !ok {
			return nil, invalid("product_id", "product %d does not exist", line.ProductID)
		}
	}
	return names, nil
}
