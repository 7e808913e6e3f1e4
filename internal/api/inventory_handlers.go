package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/inventory"
	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/quantity"
	"mirmaia/pos/internal/recipe"
)

func (h *Handler) inventoryError(w http.ResponseWriter, r *http.Request, err error, fault string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, recipe.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInvalid), errors.Is(err, inventory.ErrInsufficient):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondFault(w, r, fault, err)
	}
	return true
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if h.inventoryError(w, r, err, "unable to list inventory") {
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid inventory item id")
		return
	}
	item, err := h.inventory.Get(r.Context(), id)
	if h.inventoryError(w, r, err, "unable to load inventory item") {
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type inventoryItemRequest struct {
	Name        *string            `json:"name"`
	Quantity    *quantity.Quantity `json:"quantity"`
	UnitCost    *money.Money       `json:"unit_cost"`
	MinQuantity *quantity.Quantity `json:"min_quantity"`
}

func (h *Handler) createInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item := domain.InventoryItem{UnitCost: req.UnitCost}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	created, err := h.inventory.Create(r.Context(), item)
	if h.inventoryError(w, r, err, "unable to create inventory item") {
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid inventory item id")
		return
	}
	var req inventoryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.inventory.Update(r.Context(), id, inventory.ItemPatch{
		Name:        req.Name,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		MinQuantity: req.MinQuantity,
	})
	if h.inventoryError(w, r, err, "unable to update inventory item") {
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid inventory item id")
		return
	}
	if h.inventoryError(w, r, h.inventory.Delete(r.Context(), id), "unable to delete inventory item") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) adjustInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid inventory item id")
		return
	}
	var req struct {
		QuantityChange quantity.Quantity `json:"quantity_change"`
		Reason         string            `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	level, err := h.inventory.Adjust(r.Context(), id, req.QuantityChange)
	if h.inventoryError(w, r, err, "unable to adjust inventory") {
		return
	}
	h.logger.Info("inventory adjusted",
		zap.Int64("inventory_item_id", id),
		zap.Stringer("change", req.QuantityChange),
		zap.Stringer("quantity", level),
		zap.String("reason", req.Reason),
		zap.Int64("user_id", currentUserID(r)))
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "quantity": level})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.LowStock(r.Context())
	if h.inventoryError(w, r, err, "unable to list low stock") {
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) deductionLog(w http.ResponseWriter, r *http.Request) {
	orderID, ok1 := queryInt64(r, "order_id")
	itemID, ok2 := queryInt64(r, "inventory_item_id")
	if !ok1 || !ok2 {
		respondError(w, http.StatusBadRequest, "invalid filter id")
		return
	}
	q := r.URL.Query()
	entries, err := h.inventory.DeductionLog(r.Context(), inventory.LogFilter{
		OrderID:         orderID,
		InventoryItemID: itemID,
		From:            q.Get("start_date"),
		To:              q.Get("end_date"),
	})
	if h.inventoryError(w, r, err, "unable to load deduction log") {
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) listRecipeLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.recipes.ListLinks(r.Context())
	if h.inventoryError(w, r, err, "unable to list recipe links") {
		return
	}
	respondJSON(w, http.StatusOK, links)
}

func (h *Handler) productRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	links, err := h.recipes.LinksForProduct(r.Context(), id)
	if h.inventoryError(w, r, err, "unable to load recipe") {
		return
	}
	respondJSON(w, http.StatusOK, links)
}

func (h *Handler) setRecipeLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID        int64             `json:"product_id"`
		InventoryItemID  int64             `json:"inventory_item_id"`
		QuantityPerOrder quantity.Quantity `json:"quantity_per_order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	link, err := domain.NewRecipeLink(req.ProductID, req.InventoryItemID, req.QuantityPerOrder)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.recipes.SetLink(r.Context(), link)
	if h.inventoryError(w, r, err, "unable to save recipe link") {
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (h *Handler) deleteRecipeLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid link id")
		return
	}
	if h.inventoryError(w, r, h.recipes.DeleteLink(r.Context(), id), "unable to delete recipe link") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
