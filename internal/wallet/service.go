package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pocketbook/pocketbook/internal/ledger"
	"github.com/pocketbook/pocketbook/internal/notification"
	"github.com/pocketbook/pocketbook/internal/store"
)

// ErrSaveFailed marks a mutation whose result did not durably commit. The
// in-memory result handed back to the caller is still valid; only the write
// failed, and the UI should warn that the state is not durable.
var ErrSaveFailed = errors.New("wallet save did not commit")

// Service hosts the ledger engine over a persistence adapter. Every
// mutation loads the principal's wallet set, applies the engine operation
// in memory and persists the full set back; the engine itself stays pure.
type Service struct {
	store    store.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(st store.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: st, notifier: notifier, logger: logger}
}

// List returns the principal's wallets.
func (s *Service) List(ctx context.Context, principal string) ([]ledger.Wallet, error) {
	return s.load(ctx, principal)
}

// Get returns one wallet by id.
func (s *Service) Get(ctx context.Context, principal, walletID string) (ledger.Wallet, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, err
	}
	w, err := ledger.FindWallet(wallets, walletID)
	if err != nil {
		return ledger.Wallet{}, err
	}
	return w.Clone(), nil
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	Name          string
	InitialAmount int64
	Goal          int64
}

// Create validates the input, provisions the wallet and persists it.
func (s *Service) Create(ctx context.Context, principal string, in CreateInput) (ledger.Wallet, error) {
	w, err := ledger.NewWallet(in.Name, in.InitialAmount, in.Goal)
	if err != nil {
		return ledger.Wallet{}, err
	}

	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, err
	}
	wallets = append(wallets, w)

	if err := s.save(ctx, principal, wallets); err != nil {
		return ledger.Wallet{}, err
	}
	return w, nil
}

// UpdateInput captures the editable wallet fields.
type UpdateInput struct {
	Name string
	Goal int64
}

// Update renames a wallet and adjusts its goal.
func (s *Service) Update(ctx context.Context, principal, walletID string, in UpdateInput) (ledger.Wallet, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, err
	}
	w, err := ledger.FindWallet(wallets, walletID)
	if err != nil {
		return ledger.Wallet{}, err
	}

	if err := w.Rename(in.Name); err != nil {
		return ledger.Wallet{}, err
	}
	if err := w.SetGoal(in.Goal); err != nil {
		return ledger.Wallet{}, err
	}

	if err := s.save(ctx, principal, wallets); err != nil {
		return w.Clone(), err
	}
	return w.Clone(), nil
}

// Delete removes a wallet and all its transactions. The confirmation
// dialogue is the caller's responsibility; this is irreversible.
func (s *Service) Delete(ctx context.Context, principal, walletID string) error {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return err
	}
	wallets, err = ledger.DeleteWallet(wallets, walletID)
	if err != nil {
		return err
	}
	return s.save(ctx, principal, wallets)
}

// Apply records a deposit or withdrawal. Overdrafts surface as
// *ledger.OverdraftError until the caller confirms via
// TxInput.AllowOverdraft; nothing is persisted in that case.
func (s *Service) Apply(ctx context.Context, principal, walletID string, in ledger.TxInput) (ledger.Wallet, ledger.Transaction, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, ledger.Transaction{}, err
	}
	w, err := ledger.FindWallet(wallets, walletID)
	if err != nil {
		return ledger.Wallet{}, ledger.Transaction{}, err
	}

	goalBefore := w.Goal > 0 && w.Amount < w.Goal

	tx, err := w.Apply(in)
	if err != nil {
		return ledger.Wallet{}, ledger.Transaction{}, err
	}

	// On a failed save the applied result is still returned: the session's
	// view of the wallet stays usable, the error tells the caller the write
	// did not durably commit.
	if err := s.save(ctx, principal, wallets); err != nil {
		return w.Clone(), tx, err
	}

	s.announce(ctx, principal, *w, tx, goalBefore)
	return w.Clone(), tx, nil
}

// EditTransaction rewrites a transaction's fields and recomputes balances.
func (s *Service) EditTransaction(ctx context.Context, principal, walletID, txID string, in ledger.TxEdit) (ledger.Wallet, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, err
	}
	w, err := ledger.FindWallet(wallets, walletID)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if err := w.EditTransaction(txID, in); err != nil {
		return ledger.Wallet{}, err
	}
	if err := s.save(ctx, principal, wallets); err != nil {
		return w.Clone(), err
	}
	return w.Clone(), nil
}

// DeleteTransaction removes a transaction and recomputes balances.
func (s *Service) DeleteTransaction(ctx context.Context, principal, walletID, txID string) (ledger.Wallet, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return ledger.Wallet{}, err
	}
	w, err := ledger.FindWallet(wallets, walletID)
	if err != nil {
		return ledger.Wallet{}, err
	}
	if err := w.DeleteTransaction(txID); err != nil {
		return ledger.Wallet{}, err
	}
	if err := s.save(ctx, principal, wallets); err != nil {
		return w.Clone(), err
	}
	return w.Clone(), nil
}

// History returns a wallet's transactions in the requested order,
// optionally filtered by type.
func (s *Service) History(ctx context.Context, principal, walletID string, order ledger.Order, types ...ledger.TxType) ([]ledger.Transaction, error) {
	w, err := s.Get(ctx, principal, walletID)
	if err != nil {
		return nil, err
	}
	return w.History(order, types...), nil
}

// Summary aggregates deposit and withdrawal totals for one wallet.
func (s *Service) Summary(ctx context.Context, principal, walletID string) (ledger.Summary, error) {
	w, err := s.Get(ctx, principal, walletID)
	if err != nil {
		return ledger.Summary{}, err
	}
	return w.Summarize(), nil
}

func (s *Service) load(ctx context.Context, principal string) ([]ledger.Wallet, error) {
	wallets, err := s.store.LoadWallets(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	// Data written by old app versions may carry transactions without ids;
	// assign them on the way in so edits and deletes can address them.
	for i := range wallets {
		for j := range wallets[i].Transactions {
			if wallets[i].Transactions[j].ID == "" {
				wallets[i].Transactions[j].ID = uuid.NewString()
			}
		}
	}
	return wallets, nil
}

func (s *Service) save(ctx context.Context, principal string, wallets []ledger.Wallet) error {
	if err := s.store.SaveWallets(ctx, principal, wallets); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (s *Service) announce(ctx context.Context, principal string, w ledger.Wallet, tx ledger.Transaction, goalWasOpen bool) {
	if s.notifier == nil {
		return
	}

	var msg notification.Message
	switch {
	case tx.Type == ledger.TypeDeposit && goalWasOpen && w.Goal > 0 && w.Amount >= w.Goal:
		msg = notification.Message{
			Kind:      notification.KindGoalReached,
			Principal: principal,
			Wallet:    w.ID,
			Body:      fmt.Sprintf("wallet %q reached its goal of %d", w.Name, w.Goal),
		}
	case tx.Type == ledger.TypeWithdrawal && w.Amount < 0:
		msg = notification.Message{
			Kind:      notification.KindOverdraft,
			Principal: principal,
			Wallet:    w.ID,
			Body:      fmt.Sprintf("wallet %q is overdrawn by %d", w.Name, -w.Amount),
		}
	default:
		return
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("send notification", "kind", msg.Kind, "error", err)
	}
}

// Snapshot is the backup representation of a principal's full wallet set.
type Snapshot struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Wallets    []ledger.Wallet `json:"wallets"`
}

const snapshotVersion = "1.0"

// Backup returns a snapshot of every wallet for offline safekeeping.
func (s *Service) Backup(ctx context.Context, principal string) (Snapshot, error) {
	wallets, err := s.load(ctx, principal)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
		Wallets:    wallets,
	}, nil
}

// Restore replaces the principal's wallet set with the snapshot's. Each
// wallet is sanitized (ids assigned where missing) and recomputed so the
// restored state satisfies the balance invariant regardless of the
// snapshot's origin.
func (s *Service) Restore(ctx context.Context, principal string, snap Snapshot) error {
	if snap.Wallets == nil {
		return &ledger.ValidationError{Field: "wallets", Reason: "snapshot has no wallet list"}
	}

	wallets := ledger.CloneWallets(snap.Wallets)
	for i := range wallets {
		if wallets[i].Name == "" {
			return &ledger.ValidationError{Field: "name", Reason: ledger.ReasonEmptyName}
		}
		if wallets[i].ID == "" {
			wallets[i].ID = uuid.NewString()
		}
		if wallets[i].CreatedAt.IsZero() {
			wallets[i].CreatedAt = time.Now().UTC()
		}
		for j := range wallets[i].Transactions {
			if wallets[i].Transactions[j].ID == "" {
				wallets[i].Transactions[j].ID = uuid.NewString()
			}
		}
		wallets[i].Recompute()
	}

	return s.save(ctx, principal, wallets)
}
