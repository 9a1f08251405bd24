package service

import (
	"github.com/NiellCast/meta-prediction/internal/models"
)

// Recompute refreshes the derived fields (deposits, withdrawals, profit, win
// percentage) of the owner's snapshot on the given date. A date with no
// snapshot is a no-op. The call is idempotent and never cascades to other
// dates.
func (s *Service) Recompute(owner, date string) error {
	if _, err := parseDate(date); err != nil {
		return err
	}
	unlock := s.lockOwner(owner)
	defer unlock()
	return s.recomputeLocked(owner, date)
}

// recomputeLocked runs the read-compute-write sequence. Callers hold the
// owner lock.
func (s *Service) recomputeLocked(owner, date string) error {
	bal, err := s.store.BalanceOnDate(owner, date)
	if err != nil {
		return err
	}
	if bal == nil {
		return nil
	}

	deposits, withdrawals, err := s.store.AdjustingSums(owner, date)
	if err != nil {
		return err
	}
	prev, err := s.store.LatestBalanceBefore(owner, date)
	if err != nil {
		return err
	}
	prevBalance := 0.0
	if prev != nil {
		prevBalance = prev.CurrentBalance
	}

	bal.Deposits = deposits
	bal.Withdrawals = withdrawals
	bal.Profit = round2((bal.CurrentBalance + withdrawals) - (prevBalance + deposits))
	if deposits > 0 {
		bal.WinPercentage = round2(bal.Profit / deposits * 100)
	} else {
		bal.WinPercentage = 0
	}
	return s.store.UpdateBalance(bal)
}

// synthesizeLocked creates a snapshot for a date that has transactions but no
// balance record, seeding it with prev + deposits - withdrawals so the
// derived profit lands at zero until the owner records a real reading.
func (s *Service) synthesizeLocked(owner, date string) error {
	bal, err := s.store.BalanceOnDate(owner, date)
	if err != nil || bal != nil {
		return err
	}
	deposits, withdrawals, err := s.store.AdjustingSums(owner, date)
	if err != nil {
		return err
	}
	prev, err := s.store.LatestBalanceBefore(owner, date)
	if err != nil {
		return err
	}
	prevBalance := 0.0
	if prev != nil {
		prevBalance = prev.CurrentBalance
	}
	return s.store.UpsertBalance(&models.DailyBalance{
		OwnerID:        owner,
		Date:           date,
		CurrentBalance: round2(prevBalance + deposits - withdrawals),
	})
}

// Resync brings the whole series back into a consistent state: every
// transaction date gains a synthesized snapshot if it lacks one, then every
// snapshot date is recomputed in chronological order. Mutations only
// recompute the dates they touch, so deleting a snapshot leaves later days
// stale until the next resync.
func (s *Service) Resync(owner string) error {
	unlock := s.lockOwner(owner)
	defer unlock()
	return s.resyncLocked(owner)
}

func (s *Service) resyncLocked(owner string) error {
	txs, err := s.store.TransactionsByOwner(owner)
	if err != nil {
		return err
	}
	for _, t := range txs {
		if err := s.synthesizeLocked(owner, t.Date); err != nil {
			return err
		}
	}
	balances, err := s.store.BalancesByOwner(owner)
	if err != nil {
		return err
	}
	for _, b := range balances {
		if err := s.recomputeLocked(owner, b.Date); err != nil {
			return err
		}
	}
	return nil
}

// Balances returns the owner's reconciled series after a resync. The lock is
// held across the resync and the fetch so the caller sees one consistent
// state of the series.
func (s *Service) Balances(owner string) ([]models.DailyBalance, error) {
	unlock := s.lockOwner(owner)
	defer unlock()
	if err := s.resyncLocked(owner); err != nil {
		return nil, err
	}
	return s.store.BalancesByOwner(owner)
}

// Transactions returns the owner's transactions sorted by date.
func (s *Service) Transactions(owner string) ([]models.Transaction, error) {
	return s.store.TransactionsByOwner(owner)
}

// AddBalance records a balance reading for the date, replacing any existing
// snapshot on that date, and reconciles it.
func (s *Service) AddBalance(owner, date string, amount float64) (*models.DailyBalance, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	unlock := s.lockOwner(owner)
	defer unlock()

	bal := &models.DailyBalance{OwnerID: owner, Date: date, CurrentBalance: amount}
	if err := s.store.UpsertBalance(bal); err != nil {
		return nil, err
	}
	if err := s.recomputeLocked(owner, date); err != nil {
		return nil, err
	}
	s.log.Infof("Balance recorded for owner %s on %s: %.2f", owner, date, amount)
	return s.store.BalanceOnDate(owner, date)
}

// UpdateBalance replaces the date and value of an existing snapshot and
// reconciles both the old and the new date. The edit runs as a delete
// followed by an upsert keyed on (owner, date), so moving a snapshot onto an
// occupied date replaces that date's reading instead of adding a second row.
func (s *Service) UpdateBalance(owner string, id int64, date string, amount float64) error {
	if _, err := parseDate(date); err != nil {
		return err
	}
	unlock := s.lockOwner(owner)
	defer unlock()

	bal, err := s.store.BalanceByID(owner, id)
	if err != nil {
		return err
	}
	if bal == nil {
		return ErrNotFound
	}
	oldDate := bal.Date
	if err := s.store.DeleteBalance(owner, id); err != nil {
		return err
	}
	if err := s.store.UpsertBalance(&models.DailyBalance{
		OwnerID:        owner,
		Date:           date,
		CurrentBalance: amount,
	}); err != nil {
		return err
	}
	if oldDate != date {
		if err := s.recomputeLocked(owner, oldDate); err != nil {
			return err
		}
	}
	return s.recomputeLocked(owner, date)
}

// DeleteBalance removes a snapshot and reconciles its date.
func (s *Service) DeleteBalance(owner string, id int64) error {
	unlock := s.lockOwner(owner)
	defer unlock()

	bal, err := s.store.BalanceByID(owner, id)
	if err != nil {
		return err
	}
	if bal == nil {
		return ErrNotFound
	}
	if err := s.store.DeleteBalance(owner, id); err != nil {
		return err
	}
	return s.recomputeLocked(owner, bal.Date)
}

// AddTransaction records a cash-flow event. When the date carries no
// snapshot yet, one is synthesized first so the reconciled series stays
// gap-free.
func (s *Service) AddTransaction(owner, date, txType string, amount float64, adjust bool) (*models.Transaction, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	if txType != models.TypeDeposit && txType != models.TypeWithdrawal {
		return nil, ErrInvalidType
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := s.lockOwner(owner)
	defer unlock()

	t := &models.Transaction{
		OwnerID:           owner,
		Date:              date,
		Type:              txType,
		Amount:            amount,
		AdjustCalculation: adjust,
	}
	if err := s.store.InsertTransaction(t); err != nil {
		return nil, err
	}
	if err := s.synthesizeLocked(owner, date); err != nil {
		return nil, err
	}
	if err := s.recomputeLocked(owner, date); err != nil {
		return nil, err
	}
	s.log.Infof("Transaction recorded for owner %s on %s: %s %.2f", owner, date, txType, amount)
	return t, nil
}

// UpdateTransaction replaces an existing transaction and reconciles both its
// old and new date.
func (s *Service) UpdateTransaction(owner string, id int64, date, txType string, amount float64, adjust bool) error {
	if _, err := parseDate(date); err != nil {
		return err
	}
	if txType != models.TypeDeposit && txType != models.TypeWithdrawal {
		return ErrInvalidType
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	unlock := s.lockOwner(owner)
	defer unlock()

	t, err := s.store.TransactionByID(owner, id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	oldDate := t.Date
	t.Date = date
	t.Type = txType
	t.Amount = amount
	t.AdjustCalculation = adjust
	if err := s.store.UpdateTransaction(t); err != nil {
		return err
	}
	if oldDate != date {
		if err := s.recomputeLocked(owner, oldDate); err != nil {
			return err
		}
	}
	if err := s.synthesizeLocked(owner, date); err != nil {
		return err
	}
	return s.recomputeLocked(owner, date)
}

// DeleteTransaction removes a transaction and reconciles its date, returning
// that date's derived fields to their pre-insertion values.
func (s *Service) DeleteTransaction(owner string, id int64) error {
	unlock := s.lockOwner(owner)
	defer unlock()

	t, err := s.store.TransactionByID(owner, id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	if err := s.store.DeleteTransaction(owner, id); err != nil {
		return err
	}
	return s.recomputeLocked(owner, t.Date)
}
