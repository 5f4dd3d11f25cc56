/*
Package sqlite provides a SQLite-backed implementation of recon.Store.

PURPOSE:
  Persists charts of accounts and monthly reconciliations as whole JSON
  documents, mirroring the document-store model the engine is designed
  around: one read or write moves one complete entity.

KEY TABLES:
  charts:           One document per user (chart of accounts)
  reconciliations:  One document per (user, year, month)

DOCUMENT SCHEMA:
  Stored documents are decoded through explicit tagged structs
  (chartDoc, reconciliationDoc) and validated on load. A malformed
  document is rejected with an error rather than trusted - stored shape
  is an external input like any other.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  The design assumes at most one active editor per period; the mutex
  only protects the process, not the data model.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/recon.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - recon/store.go:        Interface definition
  - recon/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/balancedesk/recon-engine/recon"
)

// Store implements recon.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Chart-of-accounts documents, one per user
	CREATE TABLE IF NOT EXISTS charts (
		user_id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Reconciliation documents, one per (user, year, month)
	CREATE TABLE IF NOT EXISTS reconciliations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_reconciliations_period
		ON reconciliations(user_id, year, month);

	-- For history queries, newest first (hot path for the dashboard)
	CREATE INDEX IF NOT EXISTS idx_reconciliations_user_period
		ON reconciliations(user_id, year DESC, month DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DOCUMENT SCHEMAS - Explicit shapes at the serialization boundary
// =============================================================================

type chartDoc struct {
	UserID      string       `json:"userId"`
	Accounts    []accountDoc `json:"accounts"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

type accountDoc struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	ParentID      string    `json:"parentId,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type reconciliationDoc struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	Status           string          `json:"status"`
	Balances         []balanceDoc    `json:"balances"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsFinalized      bool            `json:"isFinalized"`
	FinalizedAt      *time.Time      `json:"finalizedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type balanceDoc struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"accountId"`
	UserID          string           `json:"userId"`
	Year            int              `json:"year"`
	Month           int              `json:"month"`
	Balance         decimal.Decimal  `json:"balance"`
	PreviousBalance *decimal.Decimal `json:"previousBalance,omitempty"`
	Variance        decimal.Decimal  `json:"variance"`
	VariancePercent decimal.Decimal  `json:"variancePercent"`
	Notes           string           `json:"notes,omitempty"`
	IsLocked        bool             `json:"isLocked"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (d *chartDoc) validate() error {
	if d.UserID == "" {
		return fmt.Errorf("chart document missing userId")
	}
	for i, a := range d.Accounts {
		if a.ID == "" {
			return fmt.Errorf("chart document account %d missing id", i)
		}
	}
	return nil
}

func (d *reconciliationDoc) validate() error {
	if d.UserID == "" {
		return fmt.Errorf("reconciliation document missing userId")
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("reconciliation document has invalid month %d", d.Month)
	}
	if !recon.Status(d.Status).Valid() {
		return fmt.Errorf("reconciliation document has unknown status %q", d.Status)
	}
	for i, b := range d.Balances {
		if b.ID == "" || b.AccountID == "" {
			return fmt.Errorf("reconciliation document balance %d missing identifiers", i)
		}
	}
	return nil
}

// =============================================================================
// DIRECTORY OPERATIONS
// =============================================================================

func (s *Store) LoadDirectory(ctx context.Context, userID string) (*recon.ChartOfAccounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM charts WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	var doc chartDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("malformed chart document for %s: %w", userID, err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("malformed chart document for %s: %w", userID, err)
	}
	return chartFromDoc(&doc), nil
}

func (s *Store) SaveDirectory(ctx context.Context, chart *recon.ChartOfAccounts) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(chartToDoc(chart))
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO charts (user_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		chart.UserID, string(raw), chart.LastUpdated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

func (s *Store) LoadLedger(ctx context.Context, userID string, year, month int) (*recon.MonthlyReconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM reconciliations WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, month).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reconciliation: %w", err)
	}

	return decodeLedger(raw)
}

func (s *Store) SaveLedger(ctx context.Context, ledger *recon.MonthlyReconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(ledgerToDoc(ledger))
	if err != nil {
		return fmt.Errorf("failed to encode reconciliation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (id, user_id, year, month, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		ledger.ID, ledger.UserID, ledger.Year, ledger.Month,
		string(raw), ledger.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save reconciliation: %w", err)
	}
	return nil
}

func (s *Store) ListLedgers(ctx context.Context, userID string) ([]*recon.MonthlyReconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT document FROM reconciliations
		WHERE user_id = ?
		ORDER BY year DESC, month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	defer rows.Close()

	var result []*recon.MonthlyReconciliation
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", err)
		}
		ledger, err := decodeLedger(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, ledger)
	}
	return result, rows.Err()
}

func decodeLedger(raw string) (*recon.MonthlyReconciliation, error) {
	var doc reconciliationDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("malformed reconciliation document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("malformed reconciliation document: %w", err)
	}
	return ledgerFromDoc(&doc), nil
}

// =============================================================================
// DOCUMENT CONVERSIONS
// =============================================================================

func chartToDoc(chart *recon.ChartOfAccounts) *chartDoc {
	doc := &chartDoc{
		UserID:      chart.UserID,
		Accounts:    make([]accountDoc, len(chart.Accounts)),
		LastUpdated: chart.LastUpdated.UTC(),
	}
	for i, a := range chart.Accounts {
		doc.Accounts[i] = accountDoc{
			ID:            string(a.ID),
			AccountNumber: a.AccountNumber,
			Name:          a.Name,
			Type:          string(a.Type),
			Category:      string(a.Category),
			ParentID:      string(a.ParentID),
			IsActive:      a.IsActive,
			CreatedAt:     a.CreatedAt.UTC(),
			UpdatedAt:     a.UpdatedAt.UTC(),
		}
	}
	return doc
}

func chartFromDoc(doc *chartDoc) *recon.ChartOfAccounts {
	chart := &recon.ChartOfAccounts{
		UserID:      doc.UserID,
		Accounts:    make([]recon.Account, len(doc.Accounts)),
		LastUpdated: doc.LastUpdated,
	}
	for i, a := range doc.Accounts {
		chart.Accounts[i] = recon.Account{
			ID:            recon.AccountID(a.ID),
			AccountNumber: a.AccountNumber,
			Name:          a.Name,
			Type:          recon.AccountType(a.Type),
			Category:      recon.AccountCategory(a.Category),
			ParentID:      recon.AccountID(a.ParentID),
			IsActive:      a.IsActive,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		}
	}
	return chart
}

func ledgerToDoc(ledger *recon.MonthlyReconciliation) *reconciliationDoc {
	doc := &reconciliationDoc{
		ID:               ledger.ID,
		UserID:           ledger.UserID,
		Year:             ledger.Year,
		Month:            ledger.Month,
		Status:           string(ledger.Status),
		Balances:         make([]balanceDoc, len(ledger.Balances)),
		TotalAssets:      ledger.TotalAssets,
		TotalLiabilities: ledger.TotalLiabilities,
		TotalEquity:      ledger.TotalEquity,
		IsFinalized:      ledger.IsFinalized,
		FinalizedAt:      ledger.FinalizedAt,
		CreatedAt:        ledger.CreatedAt.UTC(),
		UpdatedAt:        ledger.UpdatedAt.UTC(),
	}
	for i, b := range ledger.Balances {
		doc.Balances[i] = balanceDoc{
			ID:              b.ID,
			AccountID:       string(b.AccountID),
			UserID:          b.UserID,
			Year:            b.Year,
			Month:           b.Month,
			Balance:         b.Balance,
			PreviousBalance: b.PreviousBalance,
			Variance:        b.Variance,
			VariancePercent: b.VariancePercent,
			Notes:           b.Notes,
			IsLocked:        b.IsLocked,
			CreatedAt:       b.CreatedAt.UTC(),
			UpdatedAt:       b.UpdatedAt.UTC(),
		}
	}
	return doc
}

func ledgerFromDoc(doc *reconciliationDoc) *recon.MonthlyReconciliation {
	ledger := &recon.MonthlyReconciliation{
		ID:               doc.ID,
		UserID:           doc.UserID,
		Year:             doc.Year,
		Month:            doc.Month,
		Status:           recon.Status(doc.Status),
		Balances:         make([]recon.AccountBalance, len(doc.Balances)),
		TotalAssets:      doc.TotalAssets,
		TotalLiabilities: doc.TotalLiabilities,
		TotalEquity:      doc.TotalEquity,
		IsFinalized:      doc.IsFinalized,
		FinalizedAt:      doc.FinalizedAt,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	for i, b := range doc.Balances {
		ledger.Balances[i] = recon.AccountBalance{
			ID:              b.ID,
			AccountID:       recon.AccountID(b.AccountID),
			UserID:          b.UserID,
			Year:            b.Year,
			Month:           b.Month,
			Balance:         b.Balance,
			PreviousBalance: b.PreviousBalance,
			Variance:        b.Variance,
			VariancePercent: b.VariancePercent,
			Notes:           b.Notes,
			IsLocked:        b.IsLocked,
			CreatedAt:       b.CreatedAt,
			UpdatedAt:       b.UpdatedAt,
		}
	}
	return ledger
}
