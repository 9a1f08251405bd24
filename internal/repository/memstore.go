package repository

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/NiellCast/meta-prediction/internal/models"
)

// MemStore is an in-memory store with the same contract as Repository. It
// backs the test suites and local development without a database.
type MemStore struct {
	mu       sync.Mutex
	log      *logrus.Logger
	nextID   int64
	txs      []models.Transaction
	balances []models.DailyBalance
	goals    map[string]float64
}

// NewMemStore initializes an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{log: logrus.StandardLogger(), goals: make(map[string]float64)}
}

// SetLogger redirects the store's warnings.
func (m *MemStore) SetLogger(log *logrus.Logger) {
	m.log = log
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) TransactionsByOwner(owner string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.txs {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) TransactionByID(owner string, id int64) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txs {
		if t.OwnerID == owner && t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemStore) InsertTransaction(t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.txs = append(m.txs, *t)
	return nil
}

func (m *MemStore) UpdateTransaction(t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.txs {
		if m.txs[i].OwnerID == t.OwnerID && m.txs[i].ID == t.ID {
			m.txs[i] = *t
			return nil
		}
	}
	return nil
}

func (m *MemStore) DeleteTransaction(owner string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.txs {
		if m.txs[i].OwnerID == owner && m.txs[i].ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemStore) AdjustingSums(owner, date string) (float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deposits, withdrawals float64
	for _, t := range m.txs {
		if t.OwnerID != owner || t.Date != date || !t.AdjustCalculation {
			continue
		}
		switch t.Type {
		case models.TypeDeposit:
			deposits += t.Amount
		case models.TypeWithdrawal:
			withdrawals += t.Amount
		}
	}
	return deposits, withdrawals, nil
}

func (m *MemStore) BalancesByOwner(owner string) ([]models.DailyBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DailyBalance
	for _, b := range m.balances {
		if b.OwnerID == owner {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) BalanceOnDate(owner, date string) (*models.DailyBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Latest-wins when duplicates are present.
	var found *models.DailyBalance
	matches := 0
	for i := range m.balances {
		b := &m.balances[i]
		if b.OwnerID == owner && b.Date == date {
			matches++
			if found == nil || b.ID > found.ID {
				found = b
			}
		}
	}
	if matches > 1 {
		m.log.Warnf("Duplicate balance rows for owner %s on %s: %d rows, keeping id %d", owner, date, matches, found.ID)
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (m *MemStore) BalanceByID(owner string, id int64) (*models.DailyBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.balances {
		if b.OwnerID == owner && b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemStore) LatestBalanceBefore(owner, date string) (*models.DailyBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *models.DailyBalance
	for i := range m.balances {
		b := &m.balances[i]
		if b.OwnerID != owner || b.Date >= date {
			continue
		}
		if found == nil || b.Date > found.Date || (b.Date == found.Date && b.ID > found.ID) {
			found = b
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (m *MemStore) UpsertBalance(b *models.DailyBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.balances {
		if m.balances[i].OwnerID == b.OwnerID && m.balances[i].Date == b.Date {
			b.ID = m.balances[i].ID
			m.balances[i] = *b
			return nil
		}
	}
	b.ID = m.id()
	m.balances = append(m.balances, *b)
	return nil
}

func (m *MemStore) UpdateBalance(b *models.DailyBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.balances {
		if m.balances[i].OwnerID == b.OwnerID && m.balances[i].ID == b.ID {
			m.balances[i] = *b
			return nil
		}
	}
	return nil
}

func (m *MemStore) DeleteBalance(owner string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.balances {
		if m.balances[i].OwnerID == owner && m.balances[i].ID == id {
			m.balances = append(m.balances[:i], m.balances[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemStore) Goal(owner string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goals[owner], nil
}

func (m *MemStore) UpsertGoal(owner string, target float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[owner] = target
	return nil
}

func (m *MemStore) Owners() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for _, t := range m.txs {
		seen[t.OwnerID] = true
	}
	for _, b := range m.balances {
		seen[b.OwnerID] = true
	}
	owners := make([]string, 0, len(seen))
	for o := range seen {
		owners = append(owners, o)
	}
	sort.Strings(owners)
	return owners, nil
}

func (m *MemStore) Reset(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := m.txs[:0]
	for _, t := range m.txs {
		if t.OwnerID != owner {
			txs = append(txs, t)
		}
	}
	m.txs = txs
	balances := m.balances[:0]
	for _, b := range m.balances {
		if b.OwnerID != owner {
			balances = append(balances, b)
		}
	}
	m.balances = balances
	delete(m.goals, owner)
	return nil
}
