package models

// DailyBalance is a manually recorded balance reading for one date.
// CurrentBalance is user-authoritative; the remaining figures are a cache
// recomputed by reconciliation and never edited by hand. Exactly one row is
// authoritative per (owner, date).
type DailyBalance struct {
	ID             int64   `json:"id"`
	OwnerID        string  `json:"owner_id"`
	Date           string  `json:"date"` // YYYY-MM-DD
	CurrentBalance float64 `json:"current_balance"`
	Deposits       float64 `json:"deposits"`
	Withdrawals    float64 `json:"withdrawals"`
	Profit         float64 `json:"profit"`
	WinPercentage  float64 `json:"win_percentage"`
}
