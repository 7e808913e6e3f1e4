package domain

import (
	"fmt"
	"strings"

	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
)

// PaymentMethod is how the customer settled the order.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentBoth PaymentMethod = "both"
)

// ParsePaymentMethod normalizes input; an empty value defaults to cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentCash:
		return PaymentCash, nil
	case PaymentCard:
		return PaymentCard, nil
	case PaymentBoth:
		return PaymentBoth, nil
	}
	return "", fmt.Errorf("payment_method must be cash, card or both")
}

// OrderStatus values. Orders are written once as completed.
const OrderStatusCompleted = "completed"

type Order struct {
	ID             int64         `db:"id" json:"id"`
	OrderNumber    string        `db:"order_number" json:"order_number"`
	CashierID      int64         `db:"cashier_id" json:"cashier_id"`
	Subtotal       money.Money   `db:"subtotal" json:"subtotal"`
	TotalAmount    money.Money   `db:"total_amount" json:"total_amount"`
	TaxAmount      money.Money   `db:"tax_amount" json:"tax_amount"`
	DiscountAmount money.Money   `db:"discount_amount" json:"discount_amount"`
	PaymentMethod  PaymentMethod `db:"payment_method" json:"payment_method"`
	TableID        *int64        `db:"table_id" json:"table_id,omitempty"`
	TableName      *string       `db:"table_name" json:"table_name,omitempty"`
	Status         string        `db:"order_status" json:"order_status"`
	BusinessDate   string        `db:"business_date" json:"business_date"`
	CreatedAt      string        `db:"created_at" json:"created_at"`
}

type OrderLine struct {
	ID          int64       `db:"id" json:"id"`
	OrderID     int64       `db:"order_id" json:"order_id"`
	ProductID   int64       `db:"product_id" json:"product_id"`
	ProductName string      `db:"product_name" json:"name,omitempty"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitPrice   money.Money `db:"unit_price" json:"unit_price"`
	Subtotal    money.Money `db:"subtotal" json:"subtotal"`
}

// MaxLineQuantity is the largest unit count one line may carry. Any larger
// count cannot be scaled into a stock quantity.
const MaxLineQuantity = quantity.MaxWhole

// NewOrderLine builds a line whose subtotal is always unit price times quantity.
func NewOrderLine(productID, qty int64, unitPrice money.Money) (OrderLine, error) {
	if productID <= 0 {
		return OrderLine{}, fmt.Errorf("product_id is required for each item")
	}
	if qty <= 0 {
		return OrderLine{}, fmt.Errorf("quantity must be a positive integer")
	}
	if qty > MaxLineQuantity {
		return OrderLine{}, fmt.Errorf("quantity must not exceed %d", int64(MaxLineQuantity))
	}
	subtotal, err := unitPrice.Mul(qty)
	if err != nil {
		return OrderLine{}, fmt.Errorf("line total for quantity %d is out of range", qty)
	}
	return OrderLine{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  subtotal,
	}, nil
}
