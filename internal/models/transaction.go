package models

// Transaction types.
const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
)

// Transaction represents a dated cash-flow event (deposit or withdrawal).
// Edits replace the record wholesale; there is no partial mutation.
type Transaction struct {
	ID      int64   `json:"id"`
	OwnerID string  `json:"owner_id"`
	Date    string  `json:"date"` // YYYY-MM-DD
	Type    string  `json:"type"`
	Amount  float64 `json:"amount"`
	// AdjustCalculation marks the transaction as counting toward the
	// per-day reconciled figures. Non-adjusting transactions still
	// contribute to the overall summary totals.
	AdjustCalculation bool `json:"adjust_calculation"`
}
