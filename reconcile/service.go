/*
Package reconcile orchestrates the reconciliation engine over a Store.

PURPOSE:
  Ties the pure recon engine to the persistence adapter: materialize a
  period's ledger (seeding from the prior month), apply balance edits,
  finalize periods, and produce summary views. This is the layer the
  HTTP handlers call.

FLOW (balance edit):
  load ledger -> ApplyBalanceUpdate -> RecalculateVariances against the
  prior period -> RefreshTotals with the directory -> save

DEGRADED MODE:
  When the Store reports recon.ErrNotConfigured, read paths fall back
  to the in-memory default chart instead of failing the interaction.
  The degradation is logged once per call; it is a documented design
  choice, not error suppression. Write paths do NOT pretend to succeed.

SEE ALSO:
  - recon/engine.go: The calculation rules
  - api/handlers.go: The HTTP surface over this service
*/
package reconcile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balancedesk/recon-engine/recon"
)

// Service coordinates the engine and the persistence adapter.
type Service struct {
	store     recon.Store
	threshold decimal.Decimal

	// now is swappable for deterministic tests.
	now func() time.Time
}

// New creates a Service over the given store.
func New(store recon.Store) *Service {
	return &Service{store: store, threshold: recon.DefaultVarianceThreshold, now: time.Now}
}

// WithClock overrides the time source. Test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithVarianceThreshold overrides the significance threshold (percent).
func (s *Service) WithVarianceThreshold(threshold decimal.Decimal) *Service {
	s.threshold = threshold
	return s
}

// =============================================================================
// CHART OF ACCOUNTS
// =============================================================================

// EnsureDefaultChart seeds the default chart for users with no saved
// directory. Existing charts are never touched.
func (s *Service) EnsureDefaultChart(ctx context.Context, userID string) error {
	chart, err := s.store.LoadDirectory(ctx, userID)
	if errors.Is(err, recon.ErrNotConfigured) {
		log.Printf("persistence not configured; using default chart for %s", userID)
		return nil
	}
	if err != nil {
		return err
	}
	if chart != nil {
		return nil
	}
	return s.store.SaveDirectory(ctx, recon.DefaultChart(userID, s.now()))
}

// Chart returns the user's chart of accounts, seeding defaults on first
// access. When the backend is unconfigured the default chart is served
// from memory (documented degraded mode).
func (s *Service) Chart(ctx context.Context, userID string) (*recon.ChartOfAccounts, error) {
	chart, err := s.store.LoadDirectory(ctx, userID)
	if errors.Is(err, recon.ErrNotConfigured) {
		log.Printf("persistence not configured; serving default chart for %s", userID)
		return recon.DefaultChart(userID, s.now()), nil
	}
	if err != nil {
		return nil, err
	}
	if chart == nil {
		chart = recon.DefaultChart(userID, s.now())
		if err := s.store.SaveDirectory(ctx, chart); err != nil {
			return nil, err
		}
	}
	return chart, nil
}

// AddAccount creates an account in the user's chart and persists it.
func (s *Service) AddAccount(ctx context.Context, userID string, input recon.AccountInput) (*recon.Account, error) {
	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, account, err := recon.AddAccount(chart, input, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveDirectory(ctx, updated); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount applies field changes to an existing account.
func (s *Service) UpdateAccount(ctx context.Context, userID string, id recon.AccountID, update recon.AccountUpdate) error {
	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return err
	}
	updated, err := recon.UpdateAccount(chart, id, update, s.now())
	if err != nil {
		return err
	}
	return s.store.SaveDirectory(ctx, updated)
}

// DeactivateAccount soft-deletes an account. Balance records referencing
// it survive; they just stop resolving in category totals.
func (s *Service) DeactivateAccount(ctx context.Context, userID string, id recon.AccountID) error {
	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return err
	}
	updated, err := recon.DeactivateAccount(chart, id, s.now())
	if err != nil {
		return err
	}
	return s.store.SaveDirectory(ctx, updated)
}

// =============================================================================
// PERIOD LEDGERS
// =============================================================================

// Materialize returns the period's ledger, seeding a new draft from the
// active accounts and the prior month's balances when none exists yet.
func (s *Service) Materialize(ctx context.Context, userID string, year, month int) (*recon.MonthlyReconciliation, error) {
	if !(recon.Period{Year: year, Month: month}).Valid() {
		return nil, &recon.ValidationError{Field: "month", Message: "month must be 1-12"}
	}

	ledger, err := s.store.LoadLedger(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if ledger != nil {
		return ledger, nil
	}

	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev := (recon.Period{Year: year, Month: month}).Previous()
	previous, err := s.store.LoadLedger(ctx, userID, prev.Year, prev.Month)
	if err != nil {
		return nil, err
	}

	ledger = recon.SeedPeriod(userID, year, month, recon.ActiveAccountIDs(chart), previous, s.now())
	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// UpdateBalance applies a single balance edit and persists the
// recomputed ledger. The period must already be materialized and open.
func (s *Service) UpdateBalance(ctx context.Context, userID string, year, month int, accountID recon.AccountID, balance decimal.Decimal, notes string) (*recon.MonthlyReconciliation, error) {
	ledger, err := s.store.LoadLedger(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, &recon.NotFoundError{Kind: "reconciliation", ID: recon.ReconciliationID(userID, year, month)}
	}

	ledger, err = recon.ApplyBalanceUpdate(ledger, accountID, balance, notes, s.now())
	if err != nil {
		return nil, err
	}

	prev := (recon.Period{Year: year, Month: month}).Previous()
	previous, err := s.store.LoadLedger(ctx, userID, prev.Year, prev.Month)
	if err != nil {
		return nil, err
	}
	ledger = recon.RecalculateVariances(ledger, previous)

	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledger = recon.RefreshTotals(ledger, chart)

	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// Finalize locks the period. Idempotent: a finalized period finalizes
// to itself without error.
func (s *Service) Finalize(ctx context.Context, userID string, year, month int) (*recon.MonthlyReconciliation, error) {
	ledger, err := s.store.LoadLedger(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, &recon.NotFoundError{Kind: "reconciliation", ID: recon.ReconciliationID(userID, year, month)}
	}

	finalized := recon.Finalize(ledger, s.now())
	if err := s.store.SaveLedger(ctx, finalized); err != nil {
		return nil, err
	}
	return finalized, nil
}

// =============================================================================
// SUMMARY AND HISTORY
// =============================================================================

// Summary is the display-side aggregate view of one period.
type Summary struct {
	Totals    recon.CategoryTotals
	Rollups   recon.Rollups
	Variances []recon.AccountBalance // significant, ranked
}

// Summarize computes the category totals, rollups, and ranked
// significant variances for a period.
func (s *Service) Summarize(ctx context.Context, userID string, year, month int) (*Summary, error) {
	ledger, err := s.store.LoadLedger(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, &recon.NotFoundError{Kind: "reconciliation", ID: recon.ReconciliationID(userID, year, month)}
	}

	chart, err := s.Chart(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := recon.ComputeCategoryTotals(ledger, chart)
	return &Summary{
		Totals:    totals,
		Rollups:   recon.ComputeRollups(totals),
		Variances: recon.RankSignificantVariances(ledger, s.threshold),
	}, nil
}

// History returns the user's most recent reconciliations, newest first.
// A limit of 0 applies the default of 12 periods.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*recon.MonthlyReconciliation, error) {
	if limit <= 0 {
		limit = 12
	}
	ledgers, err := s.store.ListLedgers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ledgers) > limit {
		ledgers = ledgers[:limit]
	}
	return ledgers, nil
}
