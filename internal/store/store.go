// Package store provides durable storage for wallet sets keyed by
// principal: a local device identity or a remote account. The ledger engine
// never touches storage itself; the host loads a wallet set, mutates it in
// memory and asks the store to persist the whole set back.
package store

import (
	"context"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

// Store is the persistence contract shared by every backend. SaveWallets
// replaces the principal's full wallet set and must be atomic from the
// caller's perspective: on error the previous durable state remains intact.
type Store interface {
	LoadWallets(ctx context.Context, principal string) ([]ledger.Wallet, error)
	SaveWallets(ctx context.Context, principal string, wallets []ledger.Wallet) error
}

// Watcher is the optional push capability of remote backends. Subscribe
// delivers the full current wallet set after every committed change,
// including writes made by this same client: callers observe their own
// writes through the subscription, not through SaveWallets returning.
// The returned cancel function releases the subscription.
type Watcher interface {
	Subscribe(ctx context.Context, principal string) (<-chan []ledger.Wallet, func(), error)
}
