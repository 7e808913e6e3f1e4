package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/money"
	"mirmaia/pos/internal/reports"
)

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(reports.DateLayout, s)
	return err == nil
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	report, err := h.reports.Daily(r.Context(), date)
	if err != nil {
		h.respondFault(w, r, "unable to build daily report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, month := time.Now().Year(), int(time.Now().Month())
	if raw := q.Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = v
	}
	if raw := q.Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			respondError(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		month = v
	}
	report, err := h.reports.Monthly(r.Context(), year, month)
	if err != nil {
		h.respondFault(w, r, "unable to build monthly report", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) categoryReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("start_date"), q.Get("end_date")
	if !validDate(from) || !validDate(to) {
		respondError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}
	rows, err := h.reports.ByCategory(r.Context(), from, to)
	if err != nil {
		h.respondFault(w, r, "unable to build category report", err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) todaySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.TodaySummary(r.Context())
	if err != nil {
		h.respondFault(w, r, "unable to summarize today", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) closeDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpeningBalance *money.Money `json:"opening_balance"`
		ClosingBalance *money.Money `json:"closing_balance"`
		Notes          string       `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.Get(r.Context(), currentUserID(r))
	if err != nil {
		h.respondFault(w, r, "unable to load user", err)
		return
	}

	closure, err := h.reports.CloseDay(r.Context(), reports.CloseInput{
		UserID:         user.ID,
		CashierName:    user.Name,
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
		Notes:          req.Notes,
	})
	if errors.Is(err, reports.ErrAlreadyClosed) {
		respondError(w, http.StatusConflict, "today has already been closed")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to close day", err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		domain.DailyClosure
		Message string `json:"message"`
	}{closure, "day closed"})
}

func (h *Handler) listClosures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("start_date"), q.Get("end_date")
	if !validDate(from) || !validDate(to) {
		respondError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}
	closures, err := h.reports.ListClosures(r.Context(), from, to)
	if err != nil {
		h.respondFault(w, r, "unable to list closures", err)
		return
	}
	respondJSON(w, http.StatusOK, closures)
}

func (h *Handler) getClosure(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid closure id")
		return
	}
	closure, err := h.reports.GetClosure(r.Context(), id)
	if errors.Is(err, reports.ErrClosureNotFound) {
		respondError(w, http.StatusNotFound, "closure not found")
		return
	}
	if err != nil {
		h.respondFault(w, r, "unable to load closure", err)
		return
	}
	respondJSON(w, http.StatusOK, closure)
}
