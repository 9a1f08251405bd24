package repository

import "fmt"

// EnsureSchema creates the schema and tables if they do not exist. Dates are
// stored as YYYY-MM-DD text so lexicographic and chronological order agree.
func (r *Repository) EnsureSchema() error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS bankroll`,
		`CREATE TABLE IF NOT EXISTS bankroll.transactions (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			adjust_calculation BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS bankroll.daily_balances (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL,
			date TEXT NOT NULL,
			current_balance DOUBLE PRECISION NOT NULL,
			deposits DOUBLE PRECISION NOT NULL DEFAULT 0,
			withdrawals DOUBLE PRECISION NOT NULL DEFAULT 0,
			profit DOUBLE PRECISION NOT NULL DEFAULT 0,
			win_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (owner_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS bankroll.goals (
			owner_id TEXT PRIMARY KEY,
			target DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_owner_date
			ON bankroll.transactions (owner_id, date)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
