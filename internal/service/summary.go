package service

import (
	"math"
	"time"

	"github.com/NiellCast/meta-prediction/internal/models"
)

// CurrentBalance derives the owner's balance right now: the latest snapshot
// reading plus the signed sum of all transactions dated strictly after it.
// With no snapshots at all the balance is zero.
func (s *Service) CurrentBalance(owner string) (float64, error) {
	unlock := s.lockOwner(owner)
	defer unlock()
	balances, err := s.store.BalancesByOwner(owner)
	if err != nil {
		return 0, err
	}
	txs, err := s.store.TransactionsByOwner(owner)
	if err != nil {
		return 0, err
	}
	return currentBalanceFrom(balances, txs), nil
}

func currentBalanceFrom(balances []models.DailyBalance, txs []models.Transaction) float64 {
	if len(balances) == 0 {
		return 0
	}
	last := balances[len(balances)-1]
	balance := last.CurrentBalance
	for _, t := range txs {
		if t.Date <= last.Date {
			continue
		}
		switch t.Type {
		case models.TypeDeposit:
			balance += t.Amount
		case models.TypeWithdrawal:
			balance -= t.Amount
		}
	}
	return round2(balance)
}

// Summary recomputes the whole-series totals. Unlike the per-day reconciled
// figures, the totals count every transaction regardless of its
// adjust_calculation flag; both profit figures are returned so the
// divergence stays visible. The owner lock is held across the resync and
// every read, so all figures derive from the same state of the series.
func (s *Service) Summary(owner string) (*models.Summary, error) {
	unlock := s.lockOwner(owner)
	defer unlock()
	if err := s.resyncLocked(owner); err != nil {
		return nil, err
	}
	txs, err := s.store.TransactionsByOwner(owner)
	if err != nil {
		return nil, err
	}
	balances, err := s.store.BalancesByOwner(owner)
	if err != nil {
		return nil, err
	}
	var totalDeposits, totalWithdrawals float64
	for _, t := range txs {
		switch t.Type {
		case models.TypeDeposit:
			totalDeposits += t.Amount
		case models.TypeWithdrawal:
			totalWithdrawals += t.Amount
		}
	}
	current := currentBalanceFrom(balances, txs)
	var reconciled float64
	for _, b := range balances {
		reconciled += b.Profit
	}
	target, err := s.store.Goal(owner)
	if err != nil {
		return nil, err
	}

	sum := &models.Summary{
		CurrentBalance:   current,
		TotalDeposits:    round2(totalDeposits),
		TotalWithdrawals: round2(totalWithdrawals),
		Profit:           round2((current + totalWithdrawals) - totalDeposits),
		ReconciledProfit: round2(reconciled),
		GoalTarget:       target,
	}
	if totalDeposits > 0 {
		sum.WinPercentage = round2(sum.Profit / totalDeposits * 100)
	}
	if target > 0 {
		sum.GoalPercent = round2(current / target * 100)
	}
	return sum, nil
}

// ChartSeries unpacks the reconciled series into parallel arrays plus a
// 7-day moving average of the balance.
func (s *Service) ChartSeries(owner string) (*models.ChartSeries, error) {
	balances, err := s.Balances(owner)
	if err != nil {
		return nil, err
	}
	cs := &models.ChartSeries{
		Dates:       make([]string, 0, len(balances)),
		Balances:    make([]float64, 0, len(balances)),
		Deposits:    make([]float64, 0, len(balances)),
		Withdrawals: make([]float64, 0, len(balances)),
		Profits:     make([]float64, 0, len(balances)),
	}
	for _, b := range balances {
		cs.Dates = append(cs.Dates, b.Date)
		cs.Balances = append(cs.Balances, b.CurrentBalance)
		cs.Deposits = append(cs.Deposits, b.Deposits)
		cs.Withdrawals = append(cs.Withdrawals, b.Withdrawals)
		cs.Profits = append(cs.Profits, b.Profit)
	}
	cs.MovingAvg = movingAverage(cs.Balances, 7)
	return cs, nil
}

// movingAverage returns, for each index, the mean of the trailing window
// ending there (shorter at the start of the series).
func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, v := range values[start : i+1] {
			sum += v
		}
		out[i] = round2(sum / float64(i+1-start))
	}
	return out
}

// Heatmap buckets the reconciled per-day profits by weekday and positional
// week counted from the first record.
func (s *Service) Heatmap(owner string) (*models.Heatmap, error) {
	balances, err := s.Balances(owner)
	if err != nil {
		return nil, err
	}
	return buildHeatmap(balances), nil
}

func buildHeatmap(balances []models.DailyBalance) *models.Heatmap {
	weeks := (len(balances) + 6) / 7
	hm := &models.Heatmap{}
	for row := range hm.Cells {
		hm.Cells[row] = make([]*float64, weeks)
	}
	for idx, b := range balances {
		t, err := time.Parse(DateFormat, b.Date)
		if err != nil {
			continue
		}
		// time.Weekday starts on Sunday; rows run Monday..Sunday.
		row := (int(t.Weekday()) + 6) % 7
		profit := b.Profit
		hm.Cells[row][idx/7] = &profit
		if a := math.Abs(profit); a > hm.Max {
			hm.Max = a
		}
	}
	// Shading divides by Max, so it never stays at zero.
	if hm.Max == 0 {
		hm.Max = 1
	}
	return hm
}

// WeeklyRecommendation sums the positive profits of the last seven
// reconciled days and proposes that as the withdrawal amount. Fewer than
// seven days of history yields zero.
func (s *Service) WeeklyRecommendation(owner string) (float64, error) {
	balances, err := s.Balances(owner)
	if err != nil {
		return 0, err
	}
	return weeklyWithdrawalRecommendation(balances), nil
}

func weeklyWithdrawalRecommendation(balances []models.DailyBalance) float64 {
	if len(balances) < 7 {
		return 0
	}
	var sum float64
	for _, b := range balances[len(balances)-7:] {
		if b.Profit > 0 {
			sum += b.Profit
		}
	}
	return round2(sum)
}
