/*
engine.go - Pure reconciliation calculation rules

PURPOSE:
  Derives variances, category subtotals, and rollups from a period
  ledger and its chart of accounts. Every function here is pure: plain
  records in, plain records out, no I/O. Persistence and presentation
  are external collaborators.

CALCULATION RULES:
  variance        = current - (previous or 0)
  variancePercent = 0 when previous is nil or zero,
                    else variance / |previous| * 100
  totalAssets      = currentAssets + fixedAssets + otherAssets
  totalLiabilities = currentLiabilities + longTermLiabilities
  netWorth         = totalAssets - totalLiabilities

  Note that equity is reported separately and is NOT part of netWorth:
  the balance identity Assets = Liabilities + Equity is never checked.
  That is preserved behavior, not an accident of this port - the tests
  pin it down explicitly.

  No rounding is applied anywhere in this package. Display formatting
  (currency, one-decimal percent) is a presentation concern.

SEE ALSO:
  - lifecycle.go: Status gating for mutations
  - types.go:     Record definitions
*/
package recon

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVarianceThreshold is the percent magnitude above which a
// variance is considered significant.
var DefaultVarianceThreshold = decimal.NewFromInt(10)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// VARIANCE
// =============================================================================

// ComputeVariance derives the variance pair for a single balance.
// A nil or zero previous balance yields a zero percent - there is no
// meaningful base to compare against.
func ComputeVariance(current decimal.Decimal, previous *decimal.Decimal) (variance, variancePercent decimal.Decimal) {
	if previous == nil {
		return current, decimal.Zero
	}
	variance = current.Sub(*previous)
	if previous.IsZero() {
		return variance, decimal.Zero
	}
	return variance, variance.Div(previous.Abs()).Mul(oneHundred)
}

// =============================================================================
// BALANCE UPDATES
// =============================================================================

// ApplyBalanceUpdate replaces the balance for accountID, recomputes the
// record's variance, and returns an updated ledger. The input ledger is
// not modified.
//
// A finalized period (or a locked record) rejects the update with
// ErrLockedPeriod. An account with no scaffold record in the ledger
// fails with ErrNotFound: balances come into existence via SeedPeriod,
// not ad hoc - an account created after the period was seeded shows up
// in the next period.
func ApplyBalanceUpdate(ledger *MonthlyReconciliation, accountID AccountID, newBalance decimal.Decimal, notes string, now time.Time) (*MonthlyReconciliation, error) {
	if ledger.IsFinalized || !ledger.Status.CanMutate() {
		return nil, &LockedPeriodError{UserID: ledger.UserID, Year: ledger.Year, Month: ledger.Month}
	}

	out := ledger.Clone()
	rec := out.FindBalance(accountID)
	if rec == nil {
		return nil, &NotFoundError{Kind: "balance", ID: string(accountID)}
	}
	if rec.IsLocked {
		return nil, &LockedPeriodError{UserID: ledger.UserID, Year: ledger.Year, Month: ledger.Month}
	}

	rec.Balance = newBalance
	rec.Notes = notes
	rec.Variance, rec.VariancePercent = ComputeVariance(rec.Balance, rec.PreviousBalance)
	rec.UpdatedAt = now
	out.UpdatedAt = now
	return out, nil
}

// RecalculateVariances re-derives PreviousBalance, Variance, and
// VariancePercent for every record against the prior period's ledger.
// Records with no prior counterpart (or no prior period at all) get a
// zero previous balance and a zero percent.
func RecalculateVariances(ledger, previous *MonthlyReconciliation) *MonthlyReconciliation {
	out := ledger.Clone()
	for i := range out.Balances {
		rec := &out.Balances[i]

		var prev *AccountBalance
		if previous != nil {
			prev = previous.FindBalance(rec.AccountID)
		}

		if prev == nil {
			zero := decimal.Zero
			rec.PreviousBalance = &zero
			rec.Variance = rec.Balance
			rec.VariancePercent = decimal.Zero
			continue
		}

		prevBalance := prev.Balance
		rec.PreviousBalance = &prevBalance
		rec.Variance, rec.VariancePercent = ComputeVariance(rec.Balance, rec.PreviousBalance)
	}
	return out
}

// =============================================================================
// CATEGORY TOTALS AND ROLLUPS
// =============================================================================

// CategoryTotals holds the six balance-sheet section subtotals.
type CategoryTotals struct {
	CurrentAssets       decimal.Decimal
	FixedAssets         decimal.Decimal
	OtherAssets         decimal.Decimal
	CurrentLiabilities  decimal.Decimal
	LongTermLiabilities decimal.Decimal
	Equity              decimal.Decimal
}

// Rollups holds the aggregate figures derived from CategoryTotals.
type Rollups struct {
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetWorth         decimal.Decimal
}

// ComputeCategoryTotals sums every balance into its account's category.
// Balances whose account no longer resolves in the directory (stale or
// deleted account) are skipped.
func ComputeCategoryTotals(ledger *MonthlyReconciliation, directory *ChartOfAccounts) CategoryTotals {
	var totals CategoryTotals
	for i := range ledger.Balances {
		bal := &ledger.Balances[i]
		account := directory.Find(bal.AccountID)
		if account == nil {
			continue
		}
		switch account.Category {
		case CategoryCurrentAssets:
			totals.CurrentAssets = totals.CurrentAssets.Add(bal.Balance)
		case CategoryFixedAssets:
			totals.FixedAssets = totals.FixedAssets.Add(bal.Balance)
		case CategoryOtherAssets:
			totals.OtherAssets = totals.OtherAssets.Add(bal.Balance)
		case CategoryCurrentLiabilities:
			totals.CurrentLiabilities = totals.CurrentLiabilities.Add(bal.Balance)
		case CategoryLongTermLiabilities:
			totals.LongTermLiabilities = totals.LongTermLiabilities.Add(bal.Balance)
		case CategoryEquity:
			totals.Equity = totals.Equity.Add(bal.Balance)
		}
	}
	return totals
}

// ComputeRollups derives the aggregate figures. Equity is intentionally
// absent from NetWorth - see the package notes above.
func ComputeRollups(totals CategoryTotals) Rollups {
	assets := totals.CurrentAssets.Add(totals.FixedAssets).Add(totals.OtherAssets)
	liabilities := totals.CurrentLiabilities.Add(totals.LongTermLiabilities)
	return Rollups{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		NetWorth:         assets.Sub(liabilities),
	}
}

// RefreshTotals recomputes the ledger's stored TotalAssets,
// TotalLiabilities, and TotalEquity from the directory and returns an
// updated ledger. Called after every mutation so the persisted document
// always carries current totals.
func RefreshTotals(ledger *MonthlyReconciliation, directory *ChartOfAccounts) *MonthlyReconciliation {
	out := ledger.Clone()
	totals := ComputeCategoryTotals(out, directory)
	rollups := ComputeRollups(totals)
	out.TotalAssets = rollups.TotalAssets
	out.TotalLiabilities = rollups.TotalLiabilities
	out.TotalEquity = totals.Equity
	return out
}

// =============================================================================
// SIGNIFICANT VARIANCES
// =============================================================================

// RankSignificantVariances returns the balances whose variance percent
// magnitude strictly exceeds the threshold, sorted descending by
// magnitude and truncated to the top five. Ties keep the original
// ledger order.
func RankSignificantVariances(ledger *MonthlyReconciliation, threshold decimal.Decimal) []AccountBalance {
	var significant []AccountBalance
	for _, bal := range ledger.Balances {
		if bal.VariancePercent.Abs().GreaterThan(threshold) {
			significant = append(significant, bal)
		}
	}
	sort.SliceStable(significant, func(i, j int) bool {
		return significant[i].VariancePercent.Abs().GreaterThan(significant[j].VariancePercent.Abs())
	})
	if len(significant) > 5 {
		significant = significant[:5]
	}
	return significant
}

// =============================================================================
// PERIOD SEEDING AND FINALIZATION
// =============================================================================

// SeedPeriod materializes a fresh draft ledger for (userID, year, month)
// with exactly one zero balance per account ID, in input order. Each
// record's PreviousBalance is taken from the matching record in the
// prior period's ledger, or zero when there is none.
func SeedPeriod(userID string, year, month int, accountIDs []AccountID, previous *MonthlyReconciliation, now time.Time) *MonthlyReconciliation {
	balances := make([]AccountBalance, 0, len(accountIDs))
	for _, id := range accountIDs {
		prevBalance := decimal.Zero
		if previous != nil {
			if prev := previous.FindBalance(id); prev != nil {
				prevBalance = prev.Balance
			}
		}
		pb := prevBalance
		balances = append(balances, AccountBalance{
			ID:              fmt.Sprintf("balance_%s_%d_%d", id, year, month),
			AccountID:       id,
			UserID:          userID,
			Year:            year,
			Month:           month,
			Balance:         decimal.Zero,
			PreviousBalance: &pb,
			Variance:        decimal.Zero,
			VariancePercent: decimal.Zero,
			IsLocked:        false,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return &MonthlyReconciliation{
		ID:               ReconciliationID(userID, year, month),
		UserID:           userID,
		Year:             year,
		Month:            month,
		Status:           StatusDraft,
		Balances:         balances,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		IsFinalized:      false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Finalize locks every balance record and marks the period finalized.
// Idempotent: finalizing an already-finalized ledger returns it
// unchanged, preserving the original FinalizedAt.
func Finalize(ledger *MonthlyReconciliation, now time.Time) *MonthlyReconciliation {
	if ledger.IsFinalized {
		return ledger.Clone()
	}

	out := ledger.Clone()
	status, err := Transition(out.Status, StatusFinalized)
	if err != nil {
		// Open states always transition cleanly; an invalid stored
		// status still finalizes rather than wedging the period.
		status = StatusFinalized
	}
	out.Status = status
	out.IsFinalized = true
	finalizedAt := now
	out.FinalizedAt = &finalizedAt
	for i := range out.Balances {
		out.Balances[i].IsLocked = true
	}
	out.UpdatedAt = now
	return out
}
