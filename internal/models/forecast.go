package models

// ForecastOutcome tags the result of a goal forecast. Outcomes other than
// ForecastPredicted and ForecastGoalReached are expected business results,
// not errors.
type ForecastOutcome string

const (
	ForecastPredicted        ForecastOutcome = "predicted"
	ForecastGoalReached      ForecastOutcome = "goal_reached"
	ForecastInsufficientData ForecastOutcome = "insufficient_data"
	ForecastNoGrowthTrend    ForecastOutcome = "no_growth_trend"
	ForecastUnreachable      ForecastOutcome = "unreachable_within_horizon"
)

// ForecastResult is the ephemeral output of a goal forecast. PredictedDate
// and TimeRemaining are set only for the predicted and goal_reached outcomes.
type ForecastResult struct {
	Outcome       ForecastOutcome `json:"outcome"`
	PredictedDate string          `json:"predicted_date,omitempty"`
	TimeRemaining string          `json:"time_remaining,omitempty"`
}
