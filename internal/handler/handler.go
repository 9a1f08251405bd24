package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/NiellCast/meta-prediction/internal/middleware"
	"github.com/NiellCast/meta-prediction/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type balanceRequest struct {
	Date           string  `json:"date"`
	CurrentBalance float64 `json:"current_balance"`
}

type transactionRequest struct {
	Date              string  `json:"date"`
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	AdjustCalculation *bool   `json:"adjust_calculation"`
}

type goalRequest struct {
	Target float64 `json:"target"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidType),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrNoTarget):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.log.Errorf("Request failed: %v", err)
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// ListBalances returns the reconciled daily balance series.
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	balances, err := h.svc.Balances(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, balances)
}

// AddBalance records a balance reading for a date.
func (h *Handler) AddBalance(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	bal, err := h.svc.AddBalance(owner, req.Date, req.CurrentBalance)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, bal)
}

// UpdateBalance replaces a balance record's date and value.
func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.svc.UpdateBalance(owner, id, req.Date, req.CurrentBalance); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteBalance removes a balance record.
func (h *Handler) DeleteBalance(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteBalance(owner, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListTransactions returns the owner's transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	txs, err := h.svc.Transactions(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txs)
}

// AddTransaction records a deposit or withdrawal.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	adjust := true
	if req.AdjustCalculation != nil {
		adjust = *req.AdjustCalculation
	}
	t, err := h.svc.AddTransaction(owner, req.Date, req.Type, req.Amount, adjust)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, t)
}

// UpdateTransaction replaces a transaction wholesale.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	adjust := true
	if req.AdjustCalculation != nil {
		adjust = *req.AdjustCalculation
	}
	if err := h.svc.UpdateTransaction(owner, id, req.Date, req.Type, req.Amount, adjust); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteTransaction removes a transaction.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := h.svc.DeleteTransaction(owner, id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetGoal upserts the owner's target balance.
func (h *Handler) SetGoal(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.svc.SetGoal(owner, req.Target); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetSummary returns the whole-series totals.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	sum, err := h.svc.Summary(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sum)
}

// GetChart returns the reconciled series unpacked for charting.
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	cs, err := h.svc.ChartSeries(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cs)
}

// GetHeatmap returns the weekday/week profit heatmap.
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	hm, err := h.svc.Heatmap(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, hm)
}

// GetRecommendation returns the weekly withdrawal recommendation.
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	rec, err := h.svc.WeeklyRecommendation(owner)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]float64{"weekly_recommendation": rec})
}

// GetForecast projects the goal-completion date. Optional query parameters
// target and horizon override the stored goal and the configured horizon.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	var target float64
	if raw := r.URL.Query().Get("target"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid target"})
			return
		}
		target = v
	}
	var horizon int
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid horizon"})
			return
		}
		horizon = v
	}
	result, err := h.svc.Forecast(owner, target, horizon)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Reset deletes every balance, transaction and goal for the owner.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	if err := h.svc.Reset(owner); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
