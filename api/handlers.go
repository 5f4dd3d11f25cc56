/*
handlers.go - HTTP API handlers for the reconciliation dashboard

PURPOSE:
  Exposes the reconciliation service via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the service
  and engine - no calculation rules live here.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                         List chart of accounts
    POST   /api/accounts                         Add account
    PUT    /api/accounts/{id}                    Update account
    DELETE /api/accounts/{id}                    Deactivate (soft delete)

  Reconciliations:
    GET    /api/reconciliations                  Period history
    GET    /api/reconciliations/{year}/{month}   Get (materializes on demand)
    PUT    /api/reconciliations/{year}/{month}/balances/{accountId}
    POST   /api/reconciliations/{year}/{month}/finalize
    GET    /api/reconciliations/{year}/{month}/summary

IDENTITY:
  The acting user is the X-User-ID header, defaulting to "demo-user".
  Authentication itself is out of scope; identity is an opaque key.

ERROR HANDLING:
  Errors are returned as JSON with status mapped from the typed domain
  errors:
  - 400: validation errors, invalid input
  - 404: account or reconciliation not found
  - 409: mutation on a finalized period
  - 503: persistence backend not configured (writes only)
  - 500: everything else

SEE ALSO:
  - dto.go:               Request/response structures
  - server.go:            Router setup and middleware
  - reconcile/service.go: The orchestration layer
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/balancedesk/recon-engine/recon"
	"github.com/balancedesk/recon-engine/reconcile"
)

// DefaultUserID is used when no X-User-ID header is supplied.
const DefaultUserID = "demo-user"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *reconcile.Service
}

// NewHandler creates a new handler over the given service.
func NewHandler(service *reconcile.Service) *Handler {
	return &Handler{Service: service}
}

func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return DefaultUserID
}

func periodParams(r *http.Request) (year, month int, err error) {
	year, err = strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, err
	}
	month, err = strconv.Atoi(chi.URLParam(r, "month"))
	return year, month, err
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns the chart of accounts, optionally filtered.
// GET /api/accounts?category=...&include_inactive=true
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	chart, err := h.Service.Chart(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, "Failed to load chart of accounts", err)
		return
	}

	var accounts []recon.Account
	if category := r.URL.Query().Get("category"); category != "" {
		accounts = recon.FilterByCategory(chart, recon.AccountCategory(category))
	} else if r.URL.Query().Get("include_inactive") == "true" {
		accounts = chart.Accounts
	} else {
		accounts = recon.FilterActive(chart)
	}

	writeJSON(w, http.StatusOK, toAccountDTOs(accounts))
}

// CreateAccount adds an account to the chart.
// POST /api/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	account, err := h.Service.AddAccount(r.Context(), userID(r), recon.AccountInput{
		AccountNumber: req.AccountNumber,
		Name:          req.Name,
		Type:          recon.AccountType(req.Type),
		Category:      recon.AccountCategory(req.Category),
		ParentID:      recon.AccountID(req.ParentID),
		IsActive:      true,
	})
	if err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountDTO(*account))
}

// UpdateAccount applies field changes to an account.
// PUT /api/accounts/{id}
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := recon.AccountID(chi.URLParam(r, "id"))

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := recon.AccountUpdate{
		AccountNumber: req.AccountNumber,
		Name:          req.Name,
		IsActive:      req.IsActive,
	}
	if req.Type != nil {
		t := recon.AccountType(*req.Type)
		update.Type = &t
	}
	if req.Category != nil {
		c := recon.AccountCategory(*req.Category)
		update.Category = &c
	}
	if req.ParentID != nil {
		p := recon.AccountID(*req.ParentID)
		update.ParentID = &p
	}

	if err := h.Service.UpdateAccount(r.Context(), userID(r), id, update); err != nil {
		writeDomainError(w, "Failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

// DeactivateAccount soft-deletes an account.
// DELETE /api/accounts/{id}
func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	id := recon.AccountID(chi.URLParam(r, "id"))

	if err := h.Service.DeactivateAccount(r.Context(), userID(r), id); err != nil {
		writeDomainError(w, "Failed to deactivate account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deactivated"})
}

// =============================================================================
// RECONCILIATION HANDLERS
// =============================================================================

// GetReconciliation returns the period ledger, seeding it on first access.
// GET /api/reconciliations/{year}/{month}
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year or month", err)
		return
	}

	ledger, err := h.Service.Materialize(r.Context(), userID(r), year, month)
	if err != nil {
		writeDomainError(w, "Failed to load reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, toReconciliationDTO(ledger))
}

// UpdateBalance sets one account's balance for the period.
// PUT /api/reconciliations/{year}/{month}/balances/{accountId}
func (h *Handler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year or month", err)
		return
	}
	accountID := recon.AccountID(chi.URLParam(r, "accountId"))

	var req UpdateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balance amount", err)
		return
	}

	ledger, err := h.Service.UpdateBalance(r.Context(), userID(r), year, month, accountID, balance, req.Notes)
	if err != nil {
		writeDomainError(w, "Failed to update balance", err)
		return
	}

	writeJSON(w, http.StatusOK, toReconciliationDTO(ledger))
}

// FinalizeReconciliation locks the period. Idempotent.
// POST /api/reconciliations/{year}/{month}/finalize
func (h *Handler) FinalizeReconciliation(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year or month", err)
		return
	}

	ledger, err := h.Service.Finalize(r.Context(), userID(r), year, month)
	if err != nil {
		writeDomainError(w, "Failed to finalize reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, toReconciliationDTO(ledger))
}

// GetSummary returns category totals, rollups, and ranked variances.
// GET /api/reconciliations/{year}/{month}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year or month", err)
		return
	}

	summary, err := h.Service.Summarize(r.Context(), userID(r), year, month)
	if err != nil {
		writeDomainError(w, "Failed to summarize reconciliation", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// ListReconciliations returns period history, newest first.
// GET /api/reconciliations?limit=12
func (h *Handler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	ledgers, err := h.Service.History(r.Context(), userID(r), limit)
	if err != nil {
		writeDomainError(w, "Failed to list reconciliations", err)
		return
	}

	dtos := make([]ReconciliationDTO, len(ledgers))
	for i, l := range ledgers {
		dtos[i] = toReconciliationDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps typed domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, recon.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case recon.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, recon.ErrLockedPeriod):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, recon.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
