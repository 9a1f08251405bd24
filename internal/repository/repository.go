package repository

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NiellCast/meta-prediction/internal/models"
)

// Repository provides database operations for the bankroll tracker.
type Repository struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewRepository initializes a new repository.
func NewRepository(db *sql.DB, log *logrus.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// TransactionsByOwner retrieves the owner's transactions sorted by date.
func (r *Repository) TransactionsByOwner(owner string) ([]models.Transaction, error) {
	query := `
		SELECT id, owner_id, date, type, amount, adjust_calculation
		FROM bankroll.transactions
		WHERE owner_id = $1
		ORDER BY date ASC, id ASC`
	rows, err := r.db.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Date, &t.Type, &t.Amount, &t.AdjustCalculation); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// TransactionByID retrieves one transaction, or nil when absent.
func (r *Repository) TransactionByID(owner string, id int64) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `
		SELECT id, owner_id, date, type, amount, adjust_calculation
		FROM bankroll.transactions
		WHERE owner_id = $1 AND id = $2`
	err := r.db.QueryRow(query, owner, id).
		Scan(&t.ID, &t.OwnerID, &t.Date, &t.Type, &t.Amount, &t.AdjustCalculation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// InsertTransaction creates a new transaction.
func (r *Repository) InsertTransaction(t *models.Transaction) error {
	query := `
		INSERT INTO bankroll.transactions (owner_id, date, type, amount, adjust_calculation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRow(query, t.OwnerID, t.Date, t.Type, t.Amount, t.AdjustCalculation).
		Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces an existing transaction's fields.
func (r *Repository) UpdateTransaction(t *models.Transaction) error {
	query := `
		UPDATE bankroll.transactions
		SET date = $1, type = $2, amount = $3, adjust_calculation = $4
		WHERE owner_id = $5 AND id = $6`
	if _, err := r.db.Exec(query, t.Date, t.Type, t.Amount, t.AdjustCalculation, t.OwnerID, t.ID); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (r *Repository) DeleteTransaction(owner string, id int64) error {
	query := `DELETE FROM bankroll.transactions WHERE owner_id = $1 AND id = $2`
	if _, err := r.db.Exec(query, owner, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// AdjustingSums totals the deposits and withdrawals on a date that count
// toward the reconciled figures.
func (r *Repository) AdjustingSums(owner, date string) (float64, float64, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0)
		FROM bankroll.transactions
		WHERE owner_id = $1 AND date = $2 AND adjust_calculation`
	var deposits, withdrawals float64
	if err := r.db.QueryRow(query, owner, date).Scan(&deposits, &withdrawals); err != nil {
		return 0, 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return deposits, withdrawals, nil
}

// BalancesByOwner retrieves the owner's daily balances sorted by date, one
// per date.
func (r *Repository) BalancesByOwner(owner string) ([]models.DailyBalance, error) {
	query := `
		SELECT id, owner_id, date, current_balance, deposits, withdrawals, profit, win_percentage
		FROM bankroll.daily_balances
		WHERE owner_id = $1
		ORDER BY date ASC, id ASC`
	rows, err := r.db.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []models.DailyBalance
	for rows.Next() {
		var b models.DailyBalance
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Date, &b.CurrentBalance, &b.Deposits, &b.Withdrawals, &b.Profit, &b.WinPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// BalanceOnDate retrieves the authoritative balance for the date, or nil
// when none exists. Should the unique constraint ever be bypassed, the most
// recently inserted row wins and the duplicates are flagged for cleanup.
func (r *Repository) BalanceOnDate(owner, date string) (*models.DailyBalance, error) {
	query := `
		SELECT id, owner_id, date, current_balance, deposits, withdrawals, profit, win_percentage
		FROM bankroll.daily_balances
		WHERE owner_id = $1 AND date = $2
		ORDER BY id DESC`
	rows, err := r.db.Query(query, owner, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	defer rows.Close()

	var found *models.DailyBalance
	matches := 0
	for rows.Next() {
		var b models.DailyBalance
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Date, &b.CurrentBalance, &b.Deposits, &b.Withdrawals, &b.Profit, &b.WinPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		matches++
		if found == nil {
			found = &b
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	if matches > 1 {
		r.log.Warnf("Duplicate balance rows for owner %s on %s: %d rows, keeping id %d", owner, date, matches, found.ID)
	}
	return found, nil
}

// BalanceByID retrieves one balance record, or nil when absent.
func (r *Repository) BalanceByID(owner string, id int64) (*models.DailyBalance, error) {
	b := &models.DailyBalance{}
	query := `
		SELECT id, owner_id, date, current_balance, deposits, withdrawals, profit, win_percentage
		FROM bankroll.daily_balances
		WHERE owner_id = $1 AND id = $2`
	err := r.db.QueryRow(query, owner, id).
		Scan(&b.ID, &b.OwnerID, &b.Date, &b.CurrentBalance, &b.Deposits, &b.Withdrawals, &b.Profit, &b.WinPercentage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return b, nil
}

// LatestBalanceBefore retrieves the most recent balance strictly before the
// date, or nil when none exists.
func (r *Repository) LatestBalanceBefore(owner, date string) (*models.DailyBalance, error) {
	b := &models.DailyBalance{}
	query := `
		SELECT id, owner_id, date, current_balance, deposits, withdrawals, profit, win_percentage
		FROM bankroll.daily_balances
		WHERE owner_id = $1 AND date < $2
		ORDER BY date DESC, id DESC
		LIMIT 1`
	err := r.db.QueryRow(query, owner, date).
		Scan(&b.ID, &b.OwnerID, &b.Date, &b.CurrentBalance, &b.Deposits, &b.Withdrawals, &b.Profit, &b.WinPercentage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find previous balance: %w", err)
	}
	return b, nil
}

// UpsertBalance inserts the balance or, when the (owner, date) row already
// exists, replaces its recorded reading. Derived fields reset alongside and
// are refilled by the following recompute.
func (r *Repository) UpsertBalance(b *models.DailyBalance) error {
	query := `
		INSERT INTO bankroll.daily_balances
			(owner_id, date, current_balance, deposits, withdrawals, profit, win_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, date) DO UPDATE SET
			current_balance = EXCLUDED.current_balance,
			deposits = EXCLUDED.deposits,
			withdrawals = EXCLUDED.withdrawals,
			profit = EXCLUDED.profit,
			win_percentage = EXCLUDED.win_percentage
		RETURNING id`
	err := r.db.QueryRow(query, b.OwnerID, b.Date, b.CurrentBalance, b.Deposits, b.Withdrawals, b.Profit, b.WinPercentage).
		Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}

// UpdateBalance replaces an existing balance row by id.
func (r *Repository) UpdateBalance(b *models.DailyBalance) error {
	query := `
		UPDATE bankroll.daily_balances
		SET date = $1, current_balance = $2, deposits = $3, withdrawals = $4, profit = $5, win_percentage = $6
		WHERE owner_id = $7 AND id = $8`
	if _, err := r.db.Exec(query, b.Date, b.CurrentBalance, b.Deposits, b.Withdrawals, b.Profit, b.WinPercentage, b.OwnerID, b.ID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// DeleteBalance removes a balance record.
func (r *Repository) DeleteBalance(owner string, id int64) error {
	query := `DELETE FROM bankroll.daily_balances WHERE owner_id = $1 AND id = $2`
	if _, err := r.db.Exec(query, owner, id); err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return nil
}

// Goal retrieves the owner's target balance, 0 when unset.
func (r *Repository) Goal(owner string) (float64, error) {
	var target float64
	query := `SELECT target FROM bankroll.goals WHERE owner_id = $1`
	err := r.db.QueryRow(query, owner).Scan(&target)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find goal: %w", err)
	}
	return target, nil
}

// UpsertGoal inserts or replaces the owner's target balance.
func (r *Repository) UpsertGoal(owner string, target float64) error {
	query := `
		INSERT INTO bankroll.goals (owner_id, target)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET target = EXCLUDED.target`
	if _, err := r.db.Exec(query, owner, target); err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

// Owners lists every owner with data in any table.
func (r *Repository) Owners() ([]string, error) {
	query := `
		SELECT owner_id FROM bankroll.daily_balances
		UNION
		SELECT owner_id FROM bankroll.transactions`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// Reset removes every balance, transaction and goal for the owner in one
// transaction.
func (r *Repository) Reset(owner string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	for _, query := range []string{
		`DELETE FROM bankroll.daily_balances WHERE owner_id = $1`,
		`DELETE FROM bankroll.transactions WHERE owner_id = $1`,
		`DELETE FROM bankroll.goals WHERE owner_id = $1`,
	} {
		if _, err := tx.Exec(query, owner); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reset owner data: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}
