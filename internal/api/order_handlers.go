package api

import (
	"errors"
	"net/http"
	"strconv"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/orders"
)

type createOrderResponse struct {
	orders.Receipt
	Message string `json:"message"`
}

type shortageResponse struct {
	Error     string            `json:"error"`
	Detail    string            `json:"detail"`
	Shortages []domain.Shortage `json:"shortages"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.orders.Create(r.Context(), currentUserID(r), req)
	var shortage *orders.ShortageError
	switch {
	case err == nil:
	case errors.As(err, &shortage):
		respondJSON(w, http.StatusBadRequest, shortageResponse{
			Error:     "insufficient inventory",
			Detail:    shortage.Error(),
			Shortages: shortage.Shortages,
		})
		return
	case orders.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.respondFault(w, r, "unable to create order", err)
		return
	}

	respondJSON(w, http.StatusCreated, createOrderResponse{Receipt: receipt, Message: "order created"})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := orders.ListFilter{Date: q.Get("date"), Status: q.Get("status")}
	if raw := q.Get("table_id"); raw != "" {
		var tableID int64
		if raw != "takeaway" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v < 0 {
				respondError(w, http.StatusBadRequest, "invalid table_id")
				return
			}
			tableID = v
		}
		filter.TableID = &tableID
	}
	list, err := h.orders.List(r.Context(), filter)
	if err != nil {
		h.respondFault(w, r, "unable to list orders", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	detail, err := h.orders.Get(r.Context(), id)
	if errors.Is(err, orders.ErrNotFound) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to load order", err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}
