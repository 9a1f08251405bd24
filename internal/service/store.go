package service

import "github.com/NiellCast/meta-prediction/internal/models"

// Store is the persistence boundary the engine depends on. Implementations
// are plain key-based CRUD; single-record lookups return (nil, nil) when the
// record does not exist. List methods return records sorted by date
// ascending, and BalancesByOwner returns at most one row per date.
type Store interface {
	TransactionsByOwner(owner string) ([]models.Transaction, error)
	TransactionByID(owner string, id int64) (*models.Transaction, error)
	InsertTransaction(t *models.Transaction) error
	UpdateTransaction(t *models.Transaction) error
	DeleteTransaction(owner string, id int64) error
	// AdjustingSums returns the deposit and withdrawal totals for the date,
	// counting only transactions flagged adjust_calculation.
	AdjustingSums(owner, date string) (deposits, withdrawals float64, err error)

	BalancesByOwner(owner string) ([]models.DailyBalance, error)
	BalanceOnDate(owner, date string) (*models.DailyBalance, error)
	BalanceByID(owner string, id int64) (*models.DailyBalance, error)
	// LatestBalanceBefore returns the most recent balance strictly before
	// date, by date rather than insertion order.
	LatestBalanceBefore(owner, date string) (*models.DailyBalance, error)
	// UpsertBalance inserts or replaces the row keyed by (owner, date),
	// keeping exactly one authoritative snapshot per date.
	UpsertBalance(b *models.DailyBalance) error
	UpdateBalance(b *models.DailyBalance) error
	DeleteBalance(owner string, id int64) error

	Goal(owner string) (float64, error)
	UpsertGoal(owner string, target float64) error

	Owners() ([]string, error)
	// Reset removes every balance, transaction and goal for the owner.
	Reset(owner string) error
}
