// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/balancedesk/recon-engine/recon"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (local fallback / testing)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	charts  map[string]*recon.ChartOfAccounts
	ledgers map[ledgerKey]*recon.MonthlyReconciliation
}

type ledgerKey struct {
	UserID string
	Year   int
	Month  int
}

func NewMemory() *Memory {
	return &Memory{
		charts:  make(map[string]*recon.ChartOfAccounts),
		ledgers: make(map[ledgerKey]*recon.MonthlyReconciliation),
	}
}

func (m *Memory) LoadDirectory(_ context.Context, userID string) (*recon.ChartOfAccounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chart, ok := m.charts[userID]
	if !ok {
		return nil, nil
	}
	return cloneChart(chart), nil
}

func (m *Memory) SaveDirectory(_ context.Context, chart *recon.ChartOfAccounts) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charts[chart.UserID] = cloneChart(chart)
	return nil
}

func (m *Memory) LoadLedger(_ context.Context, userID string, year, month int) (*recon.MonthlyReconciliation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ledger, ok := m.ledgers[ledgerKey{UserID: userID, Year: year, Month: month}]
	if !ok {
		return nil, nil
	}
	return ledger.Clone(), nil
}

func (m *Memory) SaveLedger(_ context.Context, ledger *recon.MonthlyReconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ledgerKey{UserID: ledger.UserID, Year: ledger.Year, Month: ledger.Month}
	m.ledgers[k] = ledger.Clone()
	return nil
}

func (m *Memory) ListLedgers(_ context.Context, userID string) ([]*recon.MonthlyReconciliation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*recon.MonthlyReconciliation
	for k, ledger := range m.ledgers {
		if k.UserID == userID {
			result = append(result, ledger.Clone())
		}
	}
	// Newest period first.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

// Deep copy so callers can't mutate stored state behind the lock.
func cloneChart(chart *recon.ChartOfAccounts) *recon.ChartOfAccounts {
	out := *chart
	out.Accounts = make([]recon.Account, len(chart.Accounts))
	copy(out.Accounts, chart.Accounts)
	return &out
}

// =============================================================================
// UNCONFIGURED STORE - Degraded mode when no backend is selected
// =============================================================================

// Unconfigured is the Store used when no persistence backend is
// configured. Every call fails with recon.ErrNotConfigured; the service
// layer catches it and serves in-memory defaults instead of failing
// the user interaction.
type Unconfigured struct{}

func NewUnconfigured() *Unconfigured { return &Unconfigured{} }

func (*Unconfigured) LoadDirectory(context.Context, string) (*recon.ChartOfAccounts, error) {
	return nil, recon.ErrNotConfigured
}

func (*Unconfigured) SaveDirectory(context.Context, *recon.ChartOfAccounts) error {
	return recon.ErrNotConfigured
}

func (*Unconfigured) LoadLedger(context.Context, string, int, int) (*recon.MonthlyReconciliation, error) {
	return nil, recon.ErrNotConfigured
}

func (*Unconfigured) SaveLedger(context.Context, *recon.MonthlyReconciliation) error {
	return recon.ErrNotConfigured
}

func (*Unconfigured) ListLedgers(context.Context, string) ([]*recon.MonthlyReconciliation, error) {
	return nil, recon.ErrNotConfigured
}
