package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balancedesk/recon-engine/recon"
)

var dbNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "recon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadDirectory_AbsentIsNilNil(t *testing.T) {
	s := newTestStore(t)

	chart, err := s.LoadDirectory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, chart)
}

func TestDirectoryRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := recon.DefaultChart("alice", dbNow)
	require.NoError(t, s.SaveDirectory(ctx, in))

	out, err := s.LoadDirectory(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.UserID, out.UserID)
	require.Len(t, out.Accounts, len(in.Accounts))
	for i := range in.Accounts {
		assert.Equal(t, in.Accounts[i].ID, out.Accounts[i].ID)
		assert.Equal(t, in.Accounts[i].AccountNumber, out.Accounts[i].AccountNumber)
		assert.Equal(t, in.Accounts[i].Category, out.Accounts[i].Category)
		assert.True(t, in.Accounts[i].CreatedAt.Equal(out.Accounts[i].CreatedAt))
	}
}

func TestSaveDirectory_UpsertsPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chart := recon.DefaultChart("alice", dbNow)
	require.NoError(t, s.SaveDirectory(ctx, chart))

	chart.Accounts[0].Name = "Renamed Checking"
	require.NoError(t, s.SaveDirectory(ctx, chart))

	out, err := s.LoadDirectory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Checking", out.Accounts[0].Name)
}

func TestLedgerRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prev := recon.SeedPeriod("alice", 2026, 2, []recon.AccountID{"account_1"}, nil, dbNow)
	prev.Balances[0].Balance = decimal.NewFromInt(1000)
	ledger := recon.SeedPeriod("alice", 2026, 3, []recon.AccountID{"account_1"}, prev, dbNow)
	ledger.Balances[0].Notes = "carried forward"
	require.NoError(t, s.SaveLedger(ctx, ledger))

	out, err := s.LoadLedger(ctx, "alice", 2026, 3)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, ledger.ID, out.ID)
	assert.Equal(t, recon.StatusDraft, out.Status)
	require.Len(t, out.Balances, 1)
	b := out.Balances[0]
	require.NotNil(t, b.PreviousBalance)
	assert.True(t, b.PreviousBalance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "carried forward", b.Notes)
}

func TestLoadLedger_AbsentIsNilNil(t *testing.T) {
	s := newTestStore(t)

	ledger, err := s.LoadLedger(context.Background(), "alice", 2026, 3)
	require.NoError(t, err)
	assert.Nil(t, ledger)
}

func TestSaveLedger_UpsertsSamePeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ledger := recon.SeedPeriod("alice", 2026, 3, []recon.AccountID{"account_1"}, nil, dbNow)
	require.NoError(t, s.SaveLedger(ctx, ledger))

	ledger.Balances[0].Balance = decimal.NewFromInt(777)
	require.NoError(t, s.SaveLedger(ctx, ledger))

	out, err := s.LoadLedger(ctx, "alice", 2026, 3)
	require.NoError(t, err)
	assert.True(t, out.Balances[0].Balance.Equal(decimal.NewFromInt(777)))
}

func TestListLedgers_NewestFirstPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, p := range []struct{ year, month int }{
		{2025, 11}, {2026, 1}, {2025, 12},
	} {
		require.NoError(t, s.SaveLedger(ctx, recon.SeedPeriod("alice", p.year, p.month, nil, nil, dbNow)))
	}
	require.NoError(t, s.SaveLedger(ctx, recon.SeedPeriod("bob", 2026, 2, nil, nil, dbNow)))

	ledgers, err := s.ListLedgers(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ledgers, 3)
	assert.Equal(t, 2026, ledgers[0].Year)
	assert.Equal(t, 12, ledgers[1].Month)
	assert.Equal(t, 11, ledgers[2].Month)
}

func TestLoadLedger_RejectsMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (id, user_id, year, month, document, updated_at)
		VALUES ('bad', 'alice', 2026, 3, '{"userId":"alice","year":2026,"month":99,"status":"draft"}', '2026-03-01T12:00:00Z')`)
	require.NoError(t, err)

	_, err = s.LoadLedger(ctx, "alice", 2026, 3)
	assert.ErrorContains(t, err, "malformed reconciliation document")
}

func TestLoadDirectory_RejectsMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO charts (user_id, document, updated_at)
		VALUES ('alice', '{"accounts":[]}', '2026-03-01T12:00:00Z')`)
	require.NoError(t, err)

	_, err = s.LoadDirectory(ctx, "alice")
	assert.ErrorContains(t, err, "malformed chart document")
}
