package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "pocketbook.db"))
	require.NoError(t, err)
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	w, err := ledger.NewWallet("Groceries", 2_000, 0)
	require.NoError(t, err)
	_, err = w.Apply(ledger.TxInput{Type: ledger.TypeWithdrawal, Amount: 500})
	require.NoError(t, err)

	require.NoError(t, s.SaveWallets(ctx, "device-1", []ledger.Wallet{w}))

	loaded, err := s.LoadWallets(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, w.ID, loaded[0].ID)
	require.EqualValues(t, 1_500, loaded[0].Amount)
	require.Len(t, loaded[0].Transactions, 1)

	// A loaded wallet is already consistent: recompute changes nothing.
	before := loaded[0].Clone()
	loaded[0].Recompute()
	require.Equal(t, before, loaded[0])
}

func TestSQLiteSaveReplacesSet(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	a, err := ledger.NewWallet("A", 0, 0)
	require.NoError(t, err)
	b, err := ledger.NewWallet("B", 0, 0)
	require.NoError(t, err)

	require.NoError(t, s.SaveWallets(ctx, "device-1", []ledger.Wallet{a, b}))
	require.NoError(t, s.SaveWallets(ctx, "device-1", []ledger.Wallet{b}))

	loaded, err := s.LoadWallets(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, b.ID, loaded[0].ID)
}

func TestSQLiteUnknownPrincipalIsEmpty(t *testing.T) {
	s := setupSQLite(t)

	loaded, err := s.LoadWallets(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, loaded)
}
