package models

// Summary represents the whole-series totals for an owner. Profit here is a
// global recomputation from the totals and the current balance; it is not the
// sum of the per-day reconciled profits, which is exposed separately as
// ReconciledProfit so the two figures can disagree visibly when transactions
// are excluded from the daily calculation.
type Summary struct {
	CurrentBalance   float64 `json:"current_balance"`
	TotalDeposits    float64 `json:"total_deposits"`
	TotalWithdrawals float64 `json:"total_withdrawals"`
	Profit           float64 `json:"profit"`
	WinPercentage    float64 `json:"win_percentage"`
	ReconciledProfit float64 `json:"reconciled_profit"`
	GoalTarget       float64 `json:"goal_target"`
	GoalPercent      float64 `json:"goal_percent"`
}

// ChartSeries holds the reconciled series unpacked into parallel arrays for
// charting, plus a 7-day moving average of the balance.
type ChartSeries struct {
	Dates       []string  `json:"dates"`
	Balances    []float64 `json:"balances"`
	Deposits    []float64 `json:"deposits"`
	Withdrawals []float64 `json:"withdrawals"`
	Profits     []float64 `json:"profits"`
	MovingAvg   []float64 `json:"moving_avg"`
}

// Heatmap buckets per-day profit by (weekday, positional week). The week
// index counts from the first record in the series, not from a calendar week
// number. Empty cells stay nil rather than zero. Max is the largest absolute
// profit, floored at 1 so shading can divide by it.
type Heatmap struct {
	Cells [7][]*float64 `json:"cells"`
	Max   float64       `json:"max"`
}
