/*
directory.go - Chart-of-accounts operations

PURPOSE:
  Pure operations over the ChartOfAccounts: add, update, soft-delete,
  and read-side filters. Like the engine, these take and return plain
  records; persistence happens elsewhere.

INVARIANTS:
  - Accounts are never hard-deleted; deactivation flips IsActive
  - Account numbers and names are required but NOT unique
  - ParentID is a weak reference: deactivating a parent does not
    cascade to children
*/
package recon

import (
	"fmt"
	"time"
)

// AccountInput carries the caller-supplied fields for a new account.
type AccountInput struct {
	AccountNumber string
	Name          string
	Type          AccountType
	Category      AccountCategory
	ParentID      AccountID
	IsActive      bool
}

// AddAccount appends a new account to the chart, assigning an ID and
// timestamps, and returns the updated chart plus the created account.
// Account number and name are required; uniqueness of either is NOT
// validated.
func AddAccount(chart *ChartOfAccounts, input AccountInput, now time.Time) (*ChartOfAccounts, *Account, error) {
	if input.AccountNumber == "" {
		return nil, nil, &ValidationError{Field: "accountNumber", Message: "account number is required"}
	}
	if input.Name == "" {
		return nil, nil, &ValidationError{Field: "name", Message: "account name is required"}
	}

	account := Account{
		ID:            AccountID(fmt.Sprintf("account_%d", now.UnixMilli())),
		AccountNumber: input.AccountNumber,
		Name:          input.Name,
		Type:          input.Type,
		Category:      input.Category,
		ParentID:      input.ParentID,
		IsActive:      input.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	out := cloneChart(chart)
	out.Accounts = append(out.Accounts, account)
	out.LastUpdated = now
	return out, &account, nil
}

// AccountUpdate carries optional field changes; nil pointers leave the
// existing value untouched.
type AccountUpdate struct {
	AccountNumber *string
	Name          *string
	Type          *AccountType
	Category      *AccountCategory
	ParentID      *AccountID
	IsActive      *bool
}

// UpdateAccount applies the non-nil fields of update to the account and
// returns the updated chart. Fails with ErrNotFound when the account is
// not in the chart.
func UpdateAccount(chart *ChartOfAccounts, id AccountID, update AccountUpdate, now time.Time) (*ChartOfAccounts, error) {
	out := cloneChart(chart)
	account := out.Find(id)
	if account == nil {
		return nil, &NotFoundError{Kind: "account", ID: string(id)}
	}

	if update.AccountNumber != nil {
		account.AccountNumber = *update.AccountNumber
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Type != nil {
		account.Type = *update.Type
	}
	if update.Category != nil {
		account.Category = *update.Category
	}
	if update.ParentID != nil {
		account.ParentID = *update.ParentID
	}
	if update.IsActive != nil {
		account.IsActive = *update.IsActive
	}
	account.UpdatedAt = now
	out.LastUpdated = now
	return out, nil
}

// DeactivateAccount soft-deletes an account. Children referencing it as
// parent are left untouched.
func DeactivateAccount(chart *ChartOfAccounts, id AccountID, now time.Time) (*ChartOfAccounts, error) {
	inactive := false
	return UpdateAccount(chart, id, AccountUpdate{IsActive: &inactive}, now)
}

// =============================================================================
// READ-SIDE PROJECTIONS
// =============================================================================

// FilterActive returns the active accounts in chart order.
func FilterActive(chart *ChartOfAccounts) []Account {
	var out []Account
	for _, a := range chart.Accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

// FilterByCategory returns the active accounts in the given category,
// in chart order.
func FilterByCategory(chart *ChartOfAccounts, category AccountCategory) []Account {
	var out []Account
	for _, a := range chart.Accounts {
		if a.IsActive && a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ActiveAccountIDs returns the IDs of active accounts in chart order.
// This is the seeding order for new periods.
func ActiveAccountIDs(chart *ChartOfAccounts) []AccountID {
	var out []AccountID
	for _, a := range chart.Accounts {
		if a.IsActive {
			out = append(out, a.ID)
		}
	}
	return out
}

func cloneChart(chart *ChartOfAccounts) *ChartOfAccounts {
	out := *chart
	out.Accounts = make([]Account, len(chart.Accounts))
	copy(out.Accounts, chart.Accounts)
	return &out
}
