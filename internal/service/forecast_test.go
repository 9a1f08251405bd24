package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiellCast/meta-prediction/internal/models"
)

func seedSeries(t *testing.T, svc *Service, owner, start string, values []float64) {
	t.Helper()
	for i, v := range values {
		_, err := svc.AddBalance(owner, addDays(start, i), v)
		require.NoError(t, err)
	}
}

func TestForecastLinearTrend(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1100, 1200})

	result, err := svc.Forecast("alice", 2000, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastPredicted, result.Outcome)
	// Slope 100/day from 1000 at day zero: crossing at day 10.
	assert.Equal(t, "2024-01-11", result.PredictedDate)
	assert.Equal(t, "8 days", result.TimeRemaining)
}

func TestForecastNoGrowthTrend(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1000, 1000})

	result, err := svc.Forecast("alice", 2000, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastNoGrowthTrend, result.Outcome)
	assert.Empty(t, result.PredictedDate)
}

func TestForecastDecliningTrend(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1200, 1100, 1000})

	result, err := svc.Forecast("alice", 2000, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastNoGrowthTrend, result.Outcome)
}

func TestForecastInsufficientData(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000})

	result, err := svc.Forecast("alice", 2000, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastInsufficientData, result.Outcome)
}

func TestForecastGoalAlreadyReached(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 2500})

	result, err := svc.Forecast("alice", 2000, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastGoalReached, result.Outcome)
	assert.Equal(t, time.Now().Format(DateFormat), result.PredictedDate)
}

func TestForecastUnreachableWithinHorizon(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1001, 1002})

	result, err := svc.Forecast("alice", 1000000, 30)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastUnreachable, result.Outcome)
}

func TestForecastUsesStoredGoal(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.SetGoal("alice", 2000))
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1100, 1200})

	result, err := svc.Forecast("alice", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastPredicted, result.Outcome)
	assert.Equal(t, "2024-01-11", result.PredictedDate)
}

func TestForecastNoTarget(t *testing.T) {
	svc, _ := newTestService(t)
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1100})

	_, err := svc.Forecast("alice", 0, 0)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestForecastFirstCrossingWithLinearModelOnly(t *testing.T) {
	svc, _ := newTestService(t)
	svc.SetRegressors([]Regressor{LinearRegressor{}})
	seedSeries(t, svc, "alice", "2024-01-01", []float64{100, 150, 200, 250})

	// Slope 50/day from 100 at day zero: 1600 is crossed at day 30.
	result, err := svc.Forecast("alice", 1600, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastPredicted, result.Outcome)
	assert.Equal(t, "2024-01-31", result.PredictedDate)
	assert.Equal(t, "27 days", result.TimeRemaining)
}

func TestForecastBoundForReachedSeries(t *testing.T) {
	// Over a non-decreasing series whose raw data already meets the
	// target, the forecast never lands after the observed crossing.
	svc, _ := newTestService(t)
	svc.SetRegressors([]Regressor{LinearRegressor{}})
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1200, 1400, 1600})

	result, err := svc.Forecast("alice", 1600, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastGoalReached, result.Outcome)
	crossing, err := time.Parse(DateFormat, result.PredictedDate)
	require.NoError(t, err)
	assert.False(t, crossing.After(time.Now()))
}

func TestFitEnsembleSkipsDegenerateSecondary(t *testing.T) {
	svc, _ := newTestService(t)
	// Two points: the quadratic cannot fit, the linear still can.
	seedSeries(t, svc, "alice", "2024-01-01", []float64{1000, 1100})

	result, err := svc.Forecast("alice", 1500, 365)
	require.NoError(t, err)
	assert.Equal(t, models.ForecastPredicted, result.Outcome)
	// Slope 100/day from 1000 at day zero: crossing at day 5.
	assert.Equal(t, "2024-01-06", result.PredictedDate)
}
