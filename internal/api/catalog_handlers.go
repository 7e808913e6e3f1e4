package api

import (
	"errors"
	"net/http"
	"strings"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/catalog"
	"mirmaia/pos/internal/money"
)

// catalogError maps store errors to responses and reports whether one was written.
func (h *Handler) catalogError(w http.ResponseWriter, r *http.Request, err error, fault string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondFault(w, r, fault, err)
	}
	return true
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if h.catalogError(w, r, err, "unable to list categories") {
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), domain.Category{Name: req.Name, Description: req.Description, SortOrder: req.SortOrder})
	if h.catalogError(w, r, err, "unable to create category") {
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.catalog.UpdateCategory(r.Context(), domain.Category{ID: id, Name: req.Name, Description: req.Description, SortOrder: req.SortOrder})
	if h.catalogError(w, r, err, "unable to update category") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if h.catalogError(w, r, h.catalog.DeleteCategory(r.Context(), id), "unable to delete category") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type productRequest struct {
	CategoryID  *int64      `json:"category_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       money.Money `json:"price"`
	Cost        money.Money `json:"cost"`
	IsAvailable *bool       `json:"is_available"`
}

func (p productRequest) product(id int64) domain.Product {
	available := true
	if p.IsAvailable != nil {
		available = *p.IsAvailable
	}
	return domain.Product{
		ID:          id,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		IsAvailable: available,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, ok := queryInt64(r, "category_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), catalog.ProductFilter{
		CategoryID:    categoryID,
		AvailableOnly: strings.EqualFold(q.Get("available"), "true"),
		Search:        q.Get("q"),
	})
	if h.catalogError(w, r, err, "unable to list products") {
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	products, err := h.catalog.ListProducts(r.Context(), catalog.ProductFilter{CategoryID: id, AvailableOnly: true})
	if h.catalogError(w, r, err, "unable to list products") {
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if h.catalogError(w, r, err, "unable to load product") {
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), req.product(0))
	if h.catalogError(w, r, err, "unable to create product") {
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), req.product(id))
	if h.catalogError(w, r, err, "unable to update product") {
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if h.catalogError(w, r, h.catalog.DeleteProduct(r.Context(), id), "unable to delete product") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tableRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.catalog.ListTables(r.Context())
	if h.catalogError(w, r, err, "unable to list tables") {
		return
	}
	respondJSON(w, http.StatusOK, tables)
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.catalog.CreateTable(r.Context(), domain.Table{Name: req.Name, SortOrder: req.SortOrder})
	if h.catalogError(w, r, err, "unable to create table") {
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *Handler) updateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid table id")
		return
	}
	var req tableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.catalog.UpdateTable(r.Context(), domain.Table{ID: id, Name: req.Name, SortOrder: req.SortOrder})
	if h.catalogError(w, r, err, "unable to update table") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid table id")
		return
	}
	if h.catalogError(w, r, h.catalog.DeleteTable(r.Context(), id), "unable to delete table") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
