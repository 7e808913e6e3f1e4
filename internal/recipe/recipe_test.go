package recipe_test

import (
	"context"
	"errors"
	"testing"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/database/dbtest"
	"mirmaia/pos/internal/quantity"
	"mirmaia/pos/internal/recipe"
)

func TestResolveSumsAcrossLinesAndProducts(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	latte := dbtest.Insert(t, db, `INSERT INTO products (name, price) VALUES ('Latte', 3000) RETURNING id`)
	mocha := dbtest.Insert(t, db, `INSERT INTO products (name, price) VALUES ('Mocha', 3500) RETURNING id`)
	water := dbtest.Insert(t, db, `INSERT INTO products (name, price) VALUES ('Water', 1000) RETURNING id`)
	milk := dbtest.Insert(t, db, `INSERT INTO inventory_items (name, quantity) VALUES ('Milk', 100000) RETURNING id`)
	cocoa := dbtest.Insert(t, db, `INSERT INTO inventory_items (name, quantity) VALUES ('Cocoa', 100000) RETURNING id`)

	store := recipe.NewStore(db)
	for _, l := range []domain.RecipeLink{
		{ProductID: latte, InventoryItemID: milk, QuantityPerOrder: quantity.FromFloat(0.2)},
		{ProductID: mocha, InventoryItemID: milk, QuantityPerOrder: quantity.FromFloat(0.15)},
		{ProductID: mocha, InventoryItemID: cocoa, QuantityPerOrder: quantity.FromFloat(0.03)},
	} {
		if _, err := store.SetLink(ctx, l); err != nil {
			t.Fatalf("set link: %v", err)
		}
	}

	req, err := recipe.Resolve(ctx, db, []recipe.Line{
		{ProductID: latte, Quantity: 2},
		{ProductID: mocha, Quantity: 1},
		{ProductID: latte, Quantity: 1},
		{ProductID: water, Quantity: 5},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(req) != 2 {
		t.Fatalf("requirements = %v", req)
	}
	if req[milk] != quantity.FromFloat(0.75) {
		t.Fatalf("milk = %s, want 0.75", req[milk])
	}
	if req[cocoa] != quantity.FromFloat(0.03) {
		t.Fatalf("cocoa = %s, want 0.03", req[cocoa])
	}
	if ids := req.ItemIDs(); ids[0] != milk || ids[1] != cocoa {
		t.Fatalf("item ids not ascending: %v", ids)
	}
}

func TestSetLinkUpsertsAndValidates(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	latte := dbtest.Insert(t, db, `INSERT INTO products (name, price) VALUES ('Latte', 3000) RETURNING id`)
	cups := dbtest.Insert(t, db, `INSERT INTO inventory_items (name, quantity) VALUES ('Cups', 30000) RETURNING id`)
	store := recipe.NewStore(db)

	first, err := store.SetLink(ctx, domain.RecipeLink{ProductID: latte, InventoryItemID: cups, QuantityPerOrder: quantity.FromInt(1)})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	second, err := store.SetLink(ctx, domain.RecipeLink{ProductID: latte, InventoryItemID: cups, QuantityPerOrder: quantity.FromInt(2)})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new row: %d vs %d", second.ID, first.ID)
	}
	links, err := store.LinksForProduct(ctx, latte)
	if err != nil || len(links) != 1 || links[0].QuantityPerOrder != quantity.FromInt(2) || links[0].InventoryItemName != "Cups" {
		t.Fatalf("links = %+v, %v", links, err)
	}
	if _, err := store.SetLink(ctx, domain.RecipeLink{ProductID: latte, InventoryItemID: cups}); err == nil {
		t.Fatalf("expected error for zero multiplier")
	}

	if err := store.DeleteLink(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteLink(ctx, first.ID); !errors.Is(err, recipe.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
