package domain

import "mirmaia/pos/internal/money"

type Category struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	SortOrder   int    `db:"sort_order" json:"sort_order"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// Product is a menu entry sold at the counter.
type Product struct {
	ID           int64       `db:"id" json:"id"`
	CategoryID   *int64      `db:"category_id" json:"category_id,omitempty"`
	CategoryName *string     `db:"category_name" json:"category,omitempty"`
	Name         string      `db:"name" json:"name"`
	Description  string      `db:"description" json:"description"`
	Price        money.Money `db:"price" json:"price"`
	Cost         money.Money `db:"cost" json:"cost"`
	IsAvailable  bool        `db:"is_available" json:"is_available"`
	CreatedAt    string      `db:"created_at" json:"created_at"`
}

// Table is a dine-in seat an order may be attached to.
type Table struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
