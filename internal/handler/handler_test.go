package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiellCast/meta-prediction/internal/middleware"
	"github.com/NiellCast/meta-prediction/internal/models"
	"github.com/NiellCast/meta-prediction/internal/repository"
	"github.com/NiellCast/meta-prediction/internal/service"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewService(repository.NewMemStore(), logger, 365)
	h := NewHandler(svc, logger)

	r := mux.NewRouter()
	r.Use(middleware.RequireOwner())
	r.HandleFunc("/balances", h.ListBalances).Methods("GET")
	r.HandleFunc("/balances", h.AddBalance).Methods("POST")
	r.HandleFunc("/balances/{id}", h.UpdateBalance).Methods("PUT")
	r.HandleFunc("/balances/{id}", h.DeleteBalance).Methods("DELETE")
	r.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/transactions", h.AddTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	r.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
	r.HandleFunc("/goal", h.SetGoal).Methods("PUT")
	r.HandleFunc("/summary", h.GetSummary).Methods("GET")
	r.HandleFunc("/chart", h.GetChart).Methods("GET")
	r.HandleFunc("/heatmap", h.GetHeatmap).Methods("GET")
	r.HandleFunc("/recommendation", h.GetRecommendation).Methods("GET")
	r.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Owner-ID", "alice")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestRequireOwnerHeader(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/balances", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddAndListBalances(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/balances", map[string]any{
		"date":            "2024-01-01",
		"current_balance": 1000.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.DailyBalance](t, rec)
	assert.Equal(t, "2024-01-01", created.Date)
	assert.Equal(t, 1000.0, created.CurrentBalance)

	rec = doJSON(t, r, http.MethodGet, "/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := decode[[]models.DailyBalance](t, rec)
	require.Len(t, balances, 1)
	assert.Equal(t, created.ID, balances[0].ID)
}

func TestAddBalanceInvalidDate(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/balances", map[string]any{
		"date":            "01/01/2024",
		"current_balance": 1000.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBalanceNotFound(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodDelete, "/balances/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBalanceBadID(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPut, "/balances/notanumber", map[string]any{
		"date":            "2024-01-01",
		"current_balance": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/transactions", map[string]any{
		"date":   "2024-01-02",
		"type":   models.TypeDeposit,
		"amount": 250.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	tx := decode[models.Transaction](t, rec)
	assert.True(t, tx.AdjustCalculation)

	rec = doJSON(t, r, http.MethodPut, "/transactions/1", map[string]any{
		"date":               "2024-01-03",
		"type":               models.TypeWithdrawal,
		"amount":             100.0,
		"adjust_calculation": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decode[[]models.Transaction](t, rec)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TypeWithdrawal, txs[0].Type)
	assert.False(t, txs[0].AdjustCalculation)

	rec = doJSON(t, r, http.MethodDelete, "/transactions/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddTransactionRejectsBadType(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/transactions", map[string]any{
		"date":   "2024-01-02",
		"type":   "transfer",
		"amount": 250.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryReflectsGoal(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/goal", map[string]any{"target": 2000.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/balances", map[string]any{
		"date":            "2024-01-01",
		"current_balance": 500.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[models.Summary](t, rec)
	assert.Equal(t, 500.0, sum.CurrentBalance)
	assert.Equal(t, 2000.0, sum.GoalTarget)
	assert.Equal(t, 25.0, sum.GoalPercent)
}

func TestForecastQueryValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/forecast?target=-5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/forecast?horizon=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No stored goal and no target parameter.
	rec = doJSON(t, r, http.MethodGet, "/forecast", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastPredicted(t *testing.T) {
	r := newTestRouter(t)
	for i, v := range []float64{1000, 1100, 1200} {
		rec := doJSON(t, r, http.MethodPost, "/balances", map[string]any{
			"date":            fmt.Sprintf("2024-01-%02d", i+1),
			"current_balance": v,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/forecast?target=1500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.ForecastResult](t, rec)
	assert.Equal(t, models.ForecastPredicted, res.Outcome)
	assert.Equal(t, "2024-01-06", res.PredictedDate)
}

func TestResetClearsOwnerData(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/balances", map[string]any{
		"date":            "2024-01-01",
		"current_balance": 500.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balances := decode[[]models.DailyBalance](t, rec)
	assert.Empty(t, balances)
}

func TestOwnersAreIsolated(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/balances", map[string]any{
		"date":            "2024-01-01",
		"current_balance": 500.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/balances", nil)
	req.Header.Set("X-Owner-ID", "bob")
	other := httptest.NewRecorder()
	r.ServeHTTP(other, req)
	require.Equal(t, http.StatusOK, other.Code)
	balances := decode[[]models.DailyBalance](t, other)
	assert.Empty(t, balances)
}
