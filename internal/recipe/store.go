package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/domain"
)

// ErrNotFound is returned when a link id does not exist.
var ErrNotFound = errors.New("recipe link not found")

// Store administers product to inventory links.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SetLink inserts a link or overwrites the multiplier of an existing pair.
func (s *Store) SetLink(ctx context.Context, link domain.RecipeLink) (domain.RecipeLink, error) {
	link, err := domain.NewRecipeLink(link.ProductID, link.InventoryItemID, link.QuantityPerOrder)
	if err != nil {
		return domain.RecipeLink{}, err
	}
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO recipe_links (product_id, inventory_item_id, quantity_per_order)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id, inventory_item_id) DO UPDATE SET quantity_per_order = excluded.quantity_per_order
		RETURNING id`), link.ProductID, link.InventoryItemID, link.QuantityPerOrder).Scan(&link.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return domain.RecipeLink{}, fmt.Errorf("%w: product or inventory item does not exist", ErrNotFound)
		}
		return domain.RecipeLink{}, fmt.Errorf("save recipe link: %w", err)
	}
	return link, nil
}

// ListLinks returns every link with product and item names.
func (s *Store) ListLinks(ctx context.Context) ([]domain.RecipeLink, error) {
	links := []domain.RecipeLink{}
	err := s.db.SelectContext(ctx, &links, `SELECT rl.id, rl.product_id, rl.inventory_item_id, rl.quantity_per_order,
			p.name AS product_name, ii.name AS inventory_item_name, ii.quantity AS inventory_item_quantity
		FROM recipe_links rl
		JOIN products p ON p.id = rl.product_id
		JOIN inventory_items ii ON ii.id = rl.inventory_item_id
		ORDER BY p.name, ii.name`)
	if err != nil {
		return nil, fmt.Errorf("list recipe links: %w", err)
	}
	return links, nil
}

// LinksForProduct returns what one product consumes.
func (s *Store) LinksForProduct(ctx context.Context, productID int64) ([]domain.RecipeLink, error) {
	links, err := ProductLinks(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []domain.RecipeLink{}
	}
	return links, nil
}

// DeleteLink removes one link.
func (s *Store) DeleteLink(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM recipe_links WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete recipe link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
