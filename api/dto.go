/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external contract:
  decimals travel as strings (no float drift on the wire), timestamps
  as RFC3339.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/balancedesk/recon-engine/recon"
	"github.com/balancedesk/recon-engine/reconcile"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	ParentID      string `json:"parent_id,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// CreateAccountRequest is the request to add an account to the chart.
type CreateAccountRequest struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	ParentID      string `json:"parent_id,omitempty"`
}

// UpdateAccountRequest carries optional field changes.
type UpdateAccountRequest struct {
	AccountNumber *string `json:"account_number,omitempty"`
	Name          *string `json:"name,omitempty"`
	Type          *string `json:"type,omitempty"`
	Category      *string `json:"category,omitempty"`
	ParentID      *string `json:"parent_id,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// BalanceDTO represents one account's balance for the period.
type BalanceDTO struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	Balance         string `json:"balance"`
	PreviousBalance string `json:"previous_balance,omitempty"`
	Variance        string `json:"variance"`
	VariancePercent string `json:"variance_percent"`
	Notes           string `json:"notes,omitempty"`
	IsLocked        bool   `json:"is_locked"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// ReconciliationDTO represents a period ledger.
type ReconciliationDTO struct {
	ID               string       `json:"id"`
	UserID           string       `json:"user_id"`
	Year             int          `json:"year"`
	Month            int          `json:"month"`
	Status           string       `json:"status"`
	Balances         []BalanceDTO `json:"balances"`
	TotalAssets      string       `json:"total_assets"`
	TotalLiabilities string       `json:"total_liabilities"`
	TotalEquity      string       `json:"total_equity"`
	IsFinalized      bool         `json:"is_finalized"`
	FinalizedAt      string       `json:"finalized_at,omitempty"`
}

// UpdateBalanceRequest is the request to set an account's balance.
type UpdateBalanceRequest struct {
	Balance string `json:"balance"`
	Notes   string `json:"notes,omitempty"`
}

// SummaryDTO is the dashboard aggregate view for one period.
type SummaryDTO struct {
	CurrentAssets       string       `json:"current_assets"`
	FixedAssets         string       `json:"fixed_assets"`
	OtherAssets         string       `json:"other_assets"`
	CurrentLiabilities  string       `json:"current_liabilities"`
	LongTermLiabilities string       `json:"long_term_liabilities"`
	Equity              string       `json:"equity"`
	TotalAssets         string       `json:"total_assets"`
	TotalLiabilities    string       `json:"total_liabilities"`
	NetWorth            string       `json:"net_worth"`
	SignificantVariances []BalanceDTO `json:"significant_variances"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAccountDTO(a recon.Account) AccountDTO {
	return AccountDTO{
		ID:            string(a.ID),
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
		Type:          string(a.Type),
		Category:      string(a.Category),
		ParentID:      string(a.ParentID),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}

func toAccountDTOs(accounts []recon.Account) []AccountDTO {
	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	return dtos
}

func toBalanceDTO(b recon.AccountBalance) BalanceDTO {
	dto := BalanceDTO{
		ID:              b.ID,
		AccountID:       string(b.AccountID),
		Year:            b.Year,
		Month:           b.Month,
		Balance:         b.Balance.String(),
		Variance:        b.Variance.String(),
		VariancePercent: b.VariancePercent.String(),
		Notes:           b.Notes,
		IsLocked:        b.IsLocked,
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
	if b.PreviousBalance != nil {
		dto.PreviousBalance = b.PreviousBalance.String()
	}
	return dto
}

func toBalanceDTOs(balances []recon.AccountBalance) []BalanceDTO {
	dtos := make([]BalanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = toBalanceDTO(b)
	}
	return dtos
}

func toReconciliationDTO(r *recon.MonthlyReconciliation) ReconciliationDTO {
	dto := ReconciliationDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		Year:             r.Year,
		Month:            r.Month,
		Status:           string(r.Status),
		Balances:         toBalanceDTOs(r.Balances),
		TotalAssets:      r.TotalAssets.String(),
		TotalLiabilities: r.TotalLiabilities.String(),
		TotalEquity:      r.TotalEquity.String(),
		IsFinalized:      r.IsFinalized,
	}
	if r.FinalizedAt != nil {
		dto.FinalizedAt = r.FinalizedAt.Format(time.RFC3339)
	}
	return dto
}

func toSummaryDTO(s *reconcile.Summary) SummaryDTO {
	return SummaryDTO{
		CurrentAssets:        s.Totals.CurrentAssets.String(),
		FixedAssets:          s.Totals.FixedAssets.String(),
		OtherAssets:          s.Totals.OtherAssets.String(),
		CurrentLiabilities:   s.Totals.CurrentLiabilities.String(),
		LongTermLiabilities:  s.Totals.LongTermLiabilities.String(),
		Equity:               s.Totals.Equity.String(),
		TotalAssets:          s.Rollups.TotalAssets.String(),
		TotalLiabilities:     s.Rollups.TotalLiabilities.String(),
		NetWorth:             s.Rollups.NetWorth.String(),
		SignificantVariances: toBalanceDTOs(s.Variances),
	}
}
