package store

import (
	"context"
	"sync"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

// Memory is an in-process Store and Watcher. It backs unit tests and the
// ephemeral dev mode; data does not survive a restart.
type Memory struct {
	mu          sync.RWMutex
	wallets     map[string][]ledger.Wallet
	subscribers map[string][]chan []ledger.Wallet
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		wallets:     make(map[string][]ledger.Wallet),
		subscribers: make(map[string][]chan []ledger.Wallet),
	}
}

// LoadWallets returns a deep copy of the principal's wallet set. A
// principal with no saved data gets an empty set, not an error.
func (m *Memory) LoadWallets(_ context.Context, principal string) ([]ledger.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.CloneWallets(m.wallets[principal]), nil
}

// SaveWallets replaces the principal's wallet set and fans the new set out
// to subscribers, mirroring a remote document store observing its own write.
func (m *Memory) SaveWallets(_ context.Context, principal string, wallets []ledger.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[principal] = ledger.CloneWallets(wallets)

	// Sends stay under the lock: cancel closes a channel only while holding
	// it, so a send can never race a close. The sends are non-blocking.
	for _, ch := range m.subscribers[principal] {
		select {
		case ch <- ledger.CloneWallets(wallets):
		default:
			// Slow subscriber; it will catch up on the next save.
		}
	}
	return nil
}

// Subscribe registers a change feed for the principal. Each committed save
// delivers the full wallet set.
func (m *Memory) Subscribe(ctx context.Context, principal string) (<-chan []ledger.Wallet, func(), error) {
	ch := make(chan []ledger.Wallet, 1)

	m.mu.Lock()
	m.subscribers[principal] = append(m.subscribers[principal], ch)
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subscribers[principal]
		for i, c := range subs {
			if c == ch {
				m.subscribers[principal] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}
