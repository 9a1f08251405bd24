package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DateFormat is the canonical date layout for the whole system.
const DateFormat = "2006-01-02"

// Notifier receives goal-attainment events from the daily sweep.
type Notifier interface {
	GoalReached(owner string, balance, target float64) error
}

// Service handles business logic: ledger and snapshot mutations, the
// reconciliation that keeps derived per-day fields consistent, summary
// aggregation and goal forecasting.
type Service struct {
	store       Store
	log         *logrus.Logger
	horizonDays int
	regressors  []Regressor
	notifier    Notifier

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	notified map[string]bool
}

// NewService initializes a new service with the default regressor ensemble.
func NewService(store Store, log *logrus.Logger, horizonDays int) *Service {
	if horizonDays <= 0 {
		horizonDays = 365
	}
	return &Service{
		store:       store,
		log:         log,
		horizonDays: horizonDays,
		regressors:  []Regressor{LinearRegressor{}, QuadraticRegressor{}},
		locks:       make(map[string]*sync.Mutex),
		notified:    make(map[string]bool),
	}
}

// SetNotifier installs the goal-attainment notifier used by Sweep.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetRegressors replaces the forecast ensemble. The first regressor must be
// linear; its slope drives the growth-trend check.
func (s *Service) SetRegressors(regs []Regressor) {
	if len(regs) > 0 {
		s.regressors = regs
	}
}

// lockOwner serializes all mutations for one owner. Writers to different
// owners proceed in parallel.
func (s *Service) lockOwner(owner string) func() {
	s.mu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		s.locks[owner] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// round2 rounds a monetary value half-up to two decimal places.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// SetGoal upserts the owner's target balance.
func (s *Service) SetGoal(owner string, target float64) error {
	if target < 0 {
		return ErrInvalidAmount
	}
	if err := s.store.UpsertGoal(owner, target); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.notified, owner)
	s.mu.Unlock()
	s.log.Infof("Goal updated for owner %s: %.2f", owner, target)
	return nil
}

// Goal returns the owner's target balance, 0 when unset.
func (s *Service) Goal(owner string) (float64, error) {
	return s.store.Goal(owner)
}

// Reset deletes every balance, transaction and goal for the owner.
func (s *Service) Reset(owner string) error {
	unlock := s.lockOwner(owner)
	defer unlock()
	if err := s.store.Reset(owner); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.notified, owner)
	s.mu.Unlock()
	s.log.Infof("Bankroll reset for owner %s", owner)
	return nil
}

// Sweep resyncs every owner's series and fires a goal-attainment
// notification the first time a current balance meets the stored target.
// It is wired to the daily cron schedule.
func (s *Service) Sweep() {
	owners, err := s.store.Owners()
	if err != nil {
		s.log.Errorf("Sweep: failed to list owners: %v", err)
		return
	}
	for _, owner := range owners {
		if err := s.Resync(owner); err != nil {
			s.log.Errorf("Sweep: resync failed for owner %s: %v", owner, err)
			continue
		}
		target, err := s.store.Goal(owner)
		if err != nil || target <= 0 {
			continue
		}
		balance, err := s.CurrentBalance(owner)
		if err != nil || balance < target {
			continue
		}
		s.mu.Lock()
		seen := s.notified[owner]
		s.notified[owner] = true
		s.mu.Unlock()
		if seen || s.notifier == nil {
			continue
		}
		if err := s.notifier.GoalReached(owner, balance, target); err != nil {
			s.log.Errorf("Sweep: goal notification failed for owner %s: %v", owner, err)
		}
	}
}
