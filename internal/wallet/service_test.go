package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketbook/pocketbook/internal/ledger"
	"github.com/pocketbook/pocketbook/internal/logging"
	"github.com/pocketbook/pocketbook/internal/notification"
	"github.com/pocketbook/pocketbook/internal/store"
)

const principal = "alice"

func newTestService() (*Service, *store.Memory) {
	mem := store.NewMemory()
	logger := logging.Discard()
	return NewService(mem, notification.NewLoggerNotifier(logger), logger), mem
}

func TestServiceCreateAndList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	w, err := svc.Create(ctx, principal, CreateInput{Name: "Rent", InitialAmount: 5_000, Goal: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.Amount != 5_000 {
		t.Fatalf("expected amount 5000, got %d", w.Amount)
	}

	wallets, err := svc.List(ctx, principal)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(wallets) != 1 || wallets[0].ID != w.ID {
		t.Fatalf("unexpected wallet set: %+v", wallets)
	}

	// Other principals see nothing.
	other, err := svc.List(ctx, "bob")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty set for other principal, got %d", len(other))
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var verr *ledger.ValidationError
	if _, err := svc.Create(ctx, principal, CreateInput{Name: "", InitialAmount: 10}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := svc.Create(ctx, principal, CreateInput{Name: "A", InitialAmount: -1}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for negative initial amount, got %v", err)
	}

	wallets, _ := svc.List(ctx, principal)
	if len(wallets) != 0 {
		t.Fatal("rejected creates must not be persisted")
	}
}

func TestServiceApplyPersists(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "Trip", InitialAmount: 0})
	updated, tx, err := svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeDeposit, Amount: 1_200, Note: "start"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Amount != 1_200 || tx.Balance != 1_200 {
		t.Fatalf("unexpected result: amount=%d tx.balance=%d", updated.Amount, tx.Balance)
	}

	// The write is durable, not just in the returned value.
	stored, err := mem.LoadWallets(ctx, principal)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored[0].Amount != 1_200 || len(stored[0].Transactions) != 1 {
		t.Fatalf("unexpected stored wallet: %+v", stored[0])
	}
}

func TestServiceApplyOverdraftFlow(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "A", InitialAmount: 100})

	_, _, err := svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeWithdrawal, Amount: 150})
	var oerr *ledger.OverdraftError
	if !errors.As(err, &oerr) {
		t.Fatalf("expected overdraft error, got %v", err)
	}

	// Nothing was persisted by the refused withdrawal.
	stored, _ := mem.LoadWallets(ctx, principal)
	if stored[0].Amount != 100 || len(stored[0].Transactions) != 0 {
		t.Fatalf("refused overdraft leaked into storage: %+v", stored[0])
	}

	updated, _, err := svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeWithdrawal, Amount: 150, AllowOverdraft: true})
	if err != nil {
		t.Fatalf("confirmed overdraft: %v", err)
	}
	if updated.Amount != -50 {
		t.Fatalf("expected amount -50, got %d", updated.Amount)
	}
}

func TestServiceEditAndDeleteTransaction(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	d1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "A"})
	_, dep, err := svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeDeposit, Amount: 100, Date: d1})
	if err != nil {
		t.Fatalf("apply deposit: %v", err)
	}
	_, wd, err := svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeWithdrawal, Amount: 30, Date: d2})
	if err != nil {
		t.Fatalf("apply withdrawal: %v", err)
	}

	updated, err := svc.EditTransaction(ctx, principal, w.ID, dep.ID, ledger.TxEdit{Type: ledger.TypeDeposit, Amount: 200, Date: d1})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Amount != 170 || updated.Transactions[0].Balance != 200 {
		t.Fatalf("unexpected state after edit: %+v", updated)
	}

	updated, err = svc.DeleteTransaction(ctx, principal, w.ID, wd.ID)
	if err != nil {
		t.Fatalf("delete tx: %v", err)
	}
	if updated.Amount != 200 || len(updated.Transactions) != 1 {
		t.Fatalf("unexpected state after delete: %+v", updated)
	}

	var nerr *ledger.NotFoundError
	if _, err := svc.DeleteTransaction(ctx, principal, w.ID, wd.ID); !errors.As(err, &nerr) {
		t.Fatalf("expected not found for already deleted tx, got %v", err)
	}
}

func TestServiceHistoryFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "A"})
	svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeDeposit, Amount: 100})
	svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeWithdrawal, Amount: 40})
	svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeDeposit, Amount: 10})

	all, err := svc.History(ctx, principal, w.ID, ledger.OrderDesc)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 3 || all[0].Amount != 10 {
		t.Fatalf("unexpected history: %+v", all)
	}

	deposits, err := svc.History(ctx, principal, w.ID, ledger.OrderAsc, ledger.TypeDeposit)
	if err != nil {
		t.Fatalf("filtered history: %v", err)
	}
	if len(deposits) != 2 || deposits[0].Amount != 100 {
		t.Fatalf("unexpected deposit history: %+v", deposits)
	}
}

func TestServiceDeleteWallet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "Doomed", InitialAmount: 10})
	if err := svc.Delete(ctx, principal, w.ID); err != nil {
		t.Fatalf("delete wallet: %v", err)
	}

	var nerr *ledger.NotFoundError
	if _, err := svc.Get(ctx, principal, w.ID); !errors.As(err, &nerr) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, principal, w.ID); !errors.As(err, &nerr) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestServiceBackupRestore(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	w, _ := svc.Create(ctx, principal, CreateInput{Name: "Keep", InitialAmount: 500})
	svc.Apply(ctx, principal, w.ID, ledger.TxInput{Type: ledger.TypeDeposit, Amount: 250})

	snap, err := svc.Backup(ctx, principal)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if len(snap.Wallets) != 1 || snap.Version == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Restore into a fresh principal; balances are recomputed on the way in.
	snap.Wallets[0].Transactions[0].Balance = 999_999
	if err := svc.Restore(ctx, "bob", snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	restored, err := svc.List(ctx, "bob")
	if err != nil {
		t.Fatalf("list restored: %v", err)
	}
	if restored[0].Amount != 750 || restored[0].Transactions[0].Balance != 750 {
		t.Fatalf("restore did not recompute: %+v", restored[0])
	}
}

func TestServiceRestoreRejectsBadSnapshot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var verr *ledger.ValidationError
	if err := svc.Restore(ctx, principal, Snapshot{}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for empty snapshot, got %v", err)
	}
	if err := svc.Restore(ctx, principal, Snapshot{Wallets: []ledger.Wallet{{ID: "x"}}}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unnamed wallet, got %v", err)
	}
}

func TestServiceMigratesMissingTransactionIDs(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	// Simulate a document written by an old app version.
	legacy := ledger.Wallet{
		ID:        "legacy",
		Name:      "Old",
		Amount:    70,
		CreatedAt: time.Now().UTC(),
		Transactions: []ledger.Transaction{
			{Type: ledger.TypeDeposit, Amount: 100, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Balance: 100},
			{Type: ledger.TypeWithdrawal, Amount: 30, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Balance: 70},
		},
	}
	if err := mem.SaveWallets(ctx, principal, []ledger.Wallet{legacy}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	wallets, err := svc.List(ctx, principal)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, tx := range wallets[0].Transactions {
		if tx.ID == "" {
			t.Fatalf("transaction %d still has no id", i)
		}
	}
}

type failingStore struct{ store.Store }

func (f failingStore) SaveWallets(context.Context, string, []ledger.Wallet) error {
	return errors.New("disk full")
}

func TestServiceSurfacesSaveFailure(t *testing.T) {
	mem := store.NewMemory()
	logger := logging.Discard()
	svc := NewService(failingStore{mem}, notification.NewLoggerNotifier(logger), logger)
	ctx := context.Background()

	_, err := svc.Create(ctx, principal, CreateInput{Name: "A"})
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
}
