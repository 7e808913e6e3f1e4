// Package recipe maps products to the raw materials they consume.
package recipe

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/quantity"
)

// Line is the part of an order line the resolver needs.
type Line struct {
	ProductID int64
	Quantity  int64
}

// Requirements maps inventory item id to the total quantity an order needs.
type Requirements map[int64]quantity.Quantity

// Add accumulates need for one item.
func (r Requirements) Add(itemID int64, need quantity.Quantity) error {
	total, err := r[itemID].CheckedAdd(need)
	if err != nil {
		return fmt.Errorf("requirement for item %d: %w", itemID, err)
	}
	r[itemID] = total
	return nil
}

// ItemIDs returns the item ids in ascending order, the order rows are locked in.
func (r Requirements) ItemIDs() []int64 {
	ids := make([]int64, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolve sums the raw-material requirement of every line across every recipe
// link of its product. Products without links need nothing. It only reads.
// A requirement past the quantity range fails with quantity.ErrOverflow.
func Resolve(ctx context.Context, q sqlx.ExtContext, lines []Line) (Requirements, error) {
	req := make(Requirements)
	if len(lines) == 0 {
		return req, nil
	}

	seen := make(map[int64]bool, len(lines))
	productIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID)
		}
	}

	query, args, err := sqlx.In(`SELECT id, product_id, inventory_item_id, quantity_per_order
		FROM recipe_links WHERE product_id IN (?)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("prepare recipe query: %w", err)
	}
	var links []domain.RecipeLink
	if err := sqlx.SelectContext(ctx, q, &links, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load recipe links: %w", err)
	}

	byProduct := make(map[int64][]domain.RecipeLink)
	for _, link := range links {
		byProduct[link.ProductID] = append(byProduct[link.ProductID], link)
	}
	for _, line := range lines {
		for _, link := range byProduct[line.ProductID] {
			need, err := link.QuantityPerOrder.Times(line.Quantity)
			if err != nil {
				return nil, fmt.Errorf("requirement for product %d: %w", line.ProductID, err)
			}
			if err := req.Add(link.InventoryItemID, need); err != nil {
				return nil, err
			}
		}
	}
	return req, nil
}

// ProductLinks returns the links of one product with the item's current name.
// Links whose item has been deleted are not returned.
func ProductLinks(ctx context.Context, q sqlx.ExtContext, productID int64) ([]domain.RecipeLink, error) {
	var links []domain.RecipeLink
	err := sqlx.SelectContext(ctx, q, &links, q.Rebind(`SELECT rl.id, rl.product_id, rl.inventory_item_id, rl.quantity_per_order,
			ii.name AS inventory_item_name, ii.quantity AS inventory_item_quantity
		FROM recipe_links rl
		JOIN inventory_items ii ON ii.id = rl.inventory_item_id
		WHERE rl.product_id = ?
		ORDER BY ii.name`), productID)
	if err != nil {
		return nil, fmt.Errorf("load links for product %d: %w", productID, err)
	}
	return links, nil
}
