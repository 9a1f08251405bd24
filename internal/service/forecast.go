package service

import (
	"errors"
	"time"

	"github.com/NiellCast/meta-prediction/internal/models"
)

// Forecast projects the balance curve forward and reports the first date the
// ensemble prediction meets the target. A zero target falls back to the
// owner's stored goal, and a non-positive horizon to the configured default.
// Business outcomes (insufficient data, no growth trend, unreachable within
// the horizon) come back as tagged results, not errors.
func (s *Service) Forecast(owner string, target float64, horizonDays int) (*models.ForecastResult, error) {
	if target <= 0 {
		stored, err := s.store.Goal(owner)
		if err != nil {
			return nil, err
		}
		if stored <= 0 {
			return nil, ErrNoTarget
		}
		target = stored
	}
	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}

	balances, err := s.store.BalancesByOwner(owner)
	if err != nil {
		return nil, err
	}
	return s.predictDate(balances, target, horizonDays)
}

// predictDate runs the decision procedure over a consistent read of the
// series. The engine keeps no state between calls; every invocation refits
// from scratch.
func (s *Service) predictDate(balances []models.DailyBalance, target float64, horizonDays int) (*models.ForecastResult, error) {
	if len(balances) < 2 {
		return &models.ForecastResult{Outcome: models.ForecastInsufficientData}, nil
	}

	first, err := parseDate(balances[0].Date)
	if err != nil {
		return nil, err
	}
	last, err := parseDate(balances[len(balances)-1].Date)
	if err != nil {
		return nil, err
	}

	if balances[len(balances)-1].CurrentBalance >= target {
		today := time.Now()
		return &models.ForecastResult{
			Outcome:       models.ForecastGoalReached,
			PredictedDate: today.Format(DateFormat),
			TimeRemaining: "goal already reached",
		}, nil
	}

	// Day ordinals relative to the first observation keep the normal
	// equations well conditioned.
	points := make([]Point, 0, len(balances))
	for _, b := range balances {
		t, err := parseDate(b.Date)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{
			X: t.Sub(first).Hours() / 24,
			Y: b.CurrentBalance,
		})
	}

	ensemble, slope, err := s.fitEnsemble(points)
	if err != nil {
		if errors.Is(err, ErrDegenerateFit) {
			return &models.ForecastResult{Outcome: models.ForecastInsufficientData}, nil
		}
		return nil, err
	}
	if slope <= 0 {
		return &models.ForecastResult{Outcome: models.ForecastNoGrowthTrend}, nil
	}

	lastOrd := points[len(points)-1].X
	for day := 0; day <= horizonDays; day++ {
		x := lastOrd + float64(day)
		var sum float64
		for _, m := range ensemble {
			sum += m.Predict(x)
		}
		if round2(sum/float64(len(ensemble))) >= target {
			predicted := first.AddDate(0, 0, int(x))
			return &models.ForecastResult{
				Outcome:       models.ForecastPredicted,
				PredictedDate: predicted.Format(DateFormat),
				TimeRemaining: formatTimeDifference(predicted, last),
			}, nil
		}
	}
	return &models.ForecastResult{Outcome: models.ForecastUnreachable}, nil
}

// fitEnsemble fits every configured regressor. The linear fit is mandatory
// and supplies the trend slope; secondary regressors that cannot fit the
// series (a quadratic over two points, say) are skipped.
func (s *Service) fitEnsemble(points []Point) ([]Model, float64, error) {
	fitted := make([]Model, 0, len(s.regressors))
	var slope float64
	for i, r := range s.regressors {
		m, err := r.Fit(points)
		if err != nil {
			if i == 0 {
				return nil, 0, err
			}
			s.log.Debugf("Forecast: skipping regressor %d: %v", i, err)
			continue
		}
		if i == 0 {
			lin, ok := m.(LinearModel)
			if !ok {
				return nil, 0, errors.New("first regressor must produce a LinearModel")
			}
			slope = lin.Slope
		}
		fitted = append(fitted, m)
	}
	return fitted, slope, nil
}
