package domain

import (
	"errors"

	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
)

// InventoryItem is a raw material tracked in stock.
type InventoryItem struct {
	ID          int64             `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Quantity    quantity.Quantity `db:"quantity" json:"quantity"`
	UnitCost    *money.Money      `db:"unit_cost" json:"unit_cost"`
	MinQuantity quantity.Quantity `db:"min_quantity" json:"min_quantity"`
	CreatedAt   string            `db:"created_at" json:"created_at"`
	UpdatedAt   string            `db:"updated_at" json:"updated_at"`
}

// RecipeLink declares how much of one inventory item a single unit of a product consumes.
type RecipeLink struct {
	ID                int64             `db:"id" json:"id"`
	ProductID         int64             `db:"product_id" json:"product_id"`
	InventoryItemID   int64             `db:"inventory_item_id" json:"inventory_item_id"`
	QuantityPerOrder  quantity.Quantity `db:"quantity_per_order" json:"quantity_per_order"`
	ProductName       string            `db:"product_name" json:"product_name,omitempty"`
	InventoryItemName string            `db:"inventory_item_name" json:"inventory_item_name,omitempty"`
	InventoryQuantity quantity.Quantity `db:"inventory_item_quantity" json:"inventory_item_quantity"`
}

// NewRecipeLink validates a link before it is written.
func NewRecipeLink(productID, inventoryItemID int64, perOrder quantity.Quantity) (RecipeLink, error) {
	if productID <= 0 || inventoryItemID <= 0 {
		return RecipeLink{}, errors.New("product_id and inventory_item_id required")
	}
	if !perOrder.Positive() {
		return RecipeLink{}, errors.New("quantity_per_order must be positive")
	}
	return RecipeLink{ProductID: productID, InventoryItemID: inventoryItemID, QuantityPerOrder: perOrder}, nil
}

// DeductionLogEntry is the append-only audit row written for every automatic consumption.
type DeductionLogEntry struct {
	ID                int64             `db:"id" json:"id"`
	OrderID           int64             `db:"order_id" json:"order_id"`
	OrderLineID       int64             `db:"order_line_id" json:"order_line_id"`
	ProductID         int64             `db:"product_id" json:"product_id"`
	ProductName       string            `db:"product_name" json:"product_name"`
	InventoryItemID   int64             `db:"inventory_item_id" json:"inventory_item_id"`
	InventoryItemName string            `db:"inventory_item_name" json:"inventory_item_name"`
	QuantityDeducted  quantity.Quantity `db:"quantity_deducted" json:"quantity_deducted"`
	UnitSellingPrice  money.Money       `db:"unit_selling_price" json:"unit_selling_price"`
	CreatedAt         string            `db:"created_at" json:"created_at"`
	OrderNumber       string            `db:"order_number" json:"order_number,omitempty"`
}

// Shortage describes one raw material that cannot cover an order.
type Shortage struct {
	InventoryItemID int64             `json:"inventory_item_id"`
	Name            string            `json:"name"`
	Required        quantity.Quantity `json:"required"`
	Available       quantity.Quantity `json:"available"`
}
