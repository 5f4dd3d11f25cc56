/*
Package recon provides the core balance-sheet reconciliation engine.

PURPOSE:
  This package contains the domain types and pure calculation rules for
  monthly balance-sheet reconciliation: a chart of accounts, per-period
  balance ledgers, variance math, category rollups, and the one-way
  period lifecycle (draft -> finalized).

KEY CONCEPTS IN THIS FILE (types.go):
  - Account:               One line of the chart of accounts
  - ChartOfAccounts:       The full ordered directory for a user
  - AccountBalance:        One account's balance for one (year, month)
  - MonthlyReconciliation: The ledger for one period, with derived totals

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money - no float drift
  2. Purity: Engine functions take and return plain records, no I/O
  3. Soft delete: Accounts are deactivated, never removed
  4. Advisory locking: IsLocked gates mutation calls, nothing else

USAGE:
  ledger := recon.SeedPeriod("user-1", 2026, 3, accountIDs, prevLedger)
  ledger, err := recon.ApplyBalanceUpdate(ledger, "account_1", dec("1200"), "")

SEE ALSO:
  - engine.go:    Variance and rollup calculation
  - lifecycle.go: Period status transitions
  - directory.go: Chart-of-accounts operations
  - store.go:     Persistence interface
*/
package recon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string

// ReconciliationID builds the canonical document key for a period.
func ReconciliationID(userID string, year, month int) string {
	return fmt.Sprintf("%s_%d_%d", userID, year, month)
}

// =============================================================================
// ACCOUNT TYPE / CATEGORY ENUMS
// =============================================================================

// AccountType is the fine-grained kind of an account. A type implies a
// category in practice, but the relation is NOT enforced: any pairing
// the user enters is accepted.
type AccountType string

const (
	TypeBank                  AccountType = "Bank"
	TypeAccountsReceivable    AccountType = "Accounts Receivable"
	TypeOtherCurrentAsset     AccountType = "Other Current Asset"
	TypeFixedAssets           AccountType = "Fixed Assets"
	TypeOtherAssets           AccountType = "Other Assets"
	TypeAccountsPayable       AccountType = "Accounts Payable"
	TypeCreditCard            AccountType = "Credit Card"
	TypeOtherCurrentLiability AccountType = "Other Current Liability"
	TypeLongTermLiabilities   AccountType = "Long Term Liabilities"
	TypeEquity                AccountType = "Equity"
	TypeRetainedEarnings      AccountType = "Retained Earnings"
	TypeNetIncome             AccountType = "Net Income"
)

// AccountTypes lists every account type in display order.
func AccountTypes() []AccountType {
	return []AccountType{
		TypeBank, TypeAccountsReceivable, TypeOtherCurrentAsset,
		TypeFixedAssets, TypeOtherAssets,
		TypeAccountsPayable, TypeCreditCard, TypeOtherCurrentLiability,
		TypeLongTermLiabilities,
		TypeEquity, TypeRetainedEarnings, TypeNetIncome,
	}
}

// AccountCategory is the balance-sheet section an account rolls up into.
type AccountCategory string

const (
	CategoryCurrentAssets       AccountCategory = "Current Assets"
	CategoryFixedAssets         AccountCategory = "Fixed Assets"
	CategoryOtherAssets         AccountCategory = "Other Assets"
	CategoryCurrentLiabilities  AccountCategory = "Current Liabilities"
	CategoryLongTermLiabilities AccountCategory = "Long Term Liabilities"
	CategoryEquity              AccountCategory = "Equity"
)

// AccountCategories lists every category in balance-sheet order.
func AccountCategories() []AccountCategory {
	return []AccountCategory{
		CategoryCurrentAssets, CategoryFixedAssets, CategoryOtherAssets,
		CategoryCurrentLiabilities, CategoryLongTermLiabilities,
		CategoryEquity,
	}
}

// Valid reports whether c is one of the six known categories.
func (c AccountCategory) Valid() bool {
	for _, known := range AccountCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// =============================================================================
// ACCOUNT - One line of the chart of accounts
// =============================================================================

type Account struct {
	ID            AccountID
	AccountNumber string // display string, not validated for uniqueness
	Name          string
	Type          AccountType
	Category      AccountCategory
	ParentID      AccountID // weak reference; may be empty or dangling
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChartOfAccounts is the full ordered directory for one user.
type ChartOfAccounts struct {
	UserID      string
	Accounts    []Account
	LastUpdated time.Time
}

// Find returns the account with the given ID, or nil.
func (c *ChartOfAccounts) Find(id AccountID) *Account {
	for i := range c.Accounts {
		if c.Accounts[i].ID == id {
			return &c.Accounts[i]
		}
	}
	return nil
}

// =============================================================================
// ACCOUNT BALANCE - One account's balance for one period
// =============================================================================

type AccountBalance struct {
	ID        string
	AccountID AccountID
	UserID    string
	Year      int
	Month     int

	Balance decimal.Decimal

	// PreviousBalance is nil until the record is linked to a prior
	// period (seeded records always carry a value, possibly zero).
	PreviousBalance *decimal.Decimal

	// Derived: Variance = Balance - PreviousBalance,
	// VariancePercent = Variance / |PreviousBalance| * 100
	// (zero when PreviousBalance is nil or zero).
	Variance        decimal.Decimal
	VariancePercent decimal.Decimal

	Notes     string
	IsLocked  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// MONTHLY RECONCILIATION - The ledger for one period
// =============================================================================

type MonthlyReconciliation struct {
	ID     string // ReconciliationID(userID, year, month)
	UserID string
	Year   int
	Month  int

	Status   Status
	Balances []AccountBalance

	// Derived totals, refreshed on every mutation via RefreshTotals.
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal

	IsFinalized bool
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FindBalance returns the balance record for an account, or nil.
func (r *MonthlyReconciliation) FindBalance(id AccountID) *AccountBalance {
	for i := range r.Balances {
		if r.Balances[i].AccountID == id {
			return &r.Balances[i]
		}
	}
	return nil
}

// Clone returns a deep copy. The engine returns updated ledgers rather
// than mutating the caller's value in place.
func (r *MonthlyReconciliation) Clone() *MonthlyReconciliation {
	if r == nil {
		return nil
	}
	out := *r
	out.Balances = make([]AccountBalance, len(r.Balances))
	copy(out.Balances, r.Balances)
	for i := range out.Balances {
		if p := out.Balances[i].PreviousBalance; p != nil {
			v := *p
			out.Balances[i].PreviousBalance = &v
		}
	}
	if r.FinalizedAt != nil {
		t := *r.FinalizedAt
		out.FinalizedAt = &t
	}
	return &out
}
