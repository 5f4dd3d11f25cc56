package recon

import (
	"fmt"
	"time"
)

// DefaultChart returns the starter chart of accounts seeded for a user
// with no saved directory. It covers every balance-sheet category so
// the summary view is meaningful from the first period. Users extend
// or deactivate entries from here; the defaults are never re-applied
// over an existing chart.
func DefaultChart(userID string, now time.Time) *ChartOfAccounts {
	specs := []struct {
		number   string
		name     string
		typ      AccountType
		category AccountCategory
	}{
		{"1010", "Checking Account", TypeBank, CategoryCurrentAssets},
		{"1020", "Savings Account", TypeBank, CategoryCurrentAssets},
		{"1100", "Accounts Receivable", TypeAccountsReceivable, CategoryCurrentAssets},
		{"1200", "Prepaid Expenses", TypeOtherCurrentAsset, CategoryCurrentAssets},
		{"1500", "Equipment", TypeFixedAssets, CategoryFixedAssets},
		{"1600", "Real Estate", TypeFixedAssets, CategoryFixedAssets},
		{"1800", "Security Deposits", TypeOtherAssets, CategoryOtherAssets},
		{"2010", "Credit Card", TypeCreditCard, CategoryCurrentLiabilities},
		{"2100", "Accounts Payable", TypeAccountsPayable, CategoryCurrentLiabilities},
		{"2200", "Accrued Expenses", TypeOtherCurrentLiability, CategoryCurrentLiabilities},
		{"2500", "Mortgage Payable", TypeLongTermLiabilities, CategoryLongTermLiabilities},
		{"2600", "Vehicle Loan", TypeLongTermLiabilities, CategoryLongTermLiabilities},
		{"3010", "Owner's Equity", TypeEquity, CategoryEquity},
		{"3100", "Retained Earnings", TypeRetainedEarnings, CategoryEquity},
	}

	// Stable positional IDs so a re-seeded default chart lines up
	// with balance records from prior periods.
	accounts := make([]Account, 0, len(specs))
	for i, s := range specs {
		accounts = append(accounts, Account{
			ID:            AccountID(fmt.Sprintf("account_%d", i+1)),
			AccountNumber: s.number,
			Name:          s.name,
			Type:          s.typ,
			Category:      s.category,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return &ChartOfAccounts{
		UserID:      userID,
		Accounts:    accounts,
		LastUpdated: now,
	}
}
