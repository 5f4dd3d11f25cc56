/*
store.go - Persistence interface for charts and period ledgers

PURPOSE:
  Defines the interface between the reconciliation logic and durable
  storage. Entities are read and written WHOLE - a chart or a period
  ledger is one document. There are no partial reads, no streaming, and
  no retries; a failed save leaves in-memory state updated but
  unpersisted, which the caller must surface.

KEYS:
  Directories:     {userID}
  Reconciliations: {userID, year, month}

IMPLEMENTATIONS:
  - store/sqlite:        JSON documents in SQLite (production)
  - recon/store.Memory:  In-memory maps (tests, local fallback)
  - recon/store.Unconfigured: Everything fails with ErrNotConfigured
                              (degraded mode - callers fall back to
                              the default chart)

SEE ALSO:
  - reconcile/service.go: The orchestration layer driving this interface
*/
package recon

import "context"

// Store persists charts of accounts and monthly reconciliations.
// Load methods return (nil, nil) when the document does not exist;
// a non-nil error is reserved for backend failures and malformed
// documents.
type Store interface {
	// LoadDirectory returns the user's chart of accounts, or nil.
	LoadDirectory(ctx context.Context, userID string) (*ChartOfAccounts, error)

	// SaveDirectory writes the full chart document.
	SaveDirectory(ctx context.Context, chart *ChartOfAccounts) error

	// LoadLedger returns the reconciliation for (userID, year, month), or nil.
	LoadLedger(ctx context.Context, userID string, year, month int) (*MonthlyReconciliation, error)

	// SaveLedger writes the full reconciliation document.
	SaveLedger(ctx context.Context, ledger *MonthlyReconciliation) error

	// ListLedgers returns all reconciliations for a user, newest
	// period first.
	ListLedgers(ctx context.Context, userID string) ([]*MonthlyReconciliation, error)
}
