package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

// Postgres stores each wallet as a JSONB document keyed by principal and
// wallet id. SaveWallets replaces the principal's document set in a single
// transaction and then announces the change through the broadcaster, so
// subscribers (including the writer itself) observe the write via the
// notification channel.
type Postgres struct {
	db        *pgxpool.Pool
	broadcast *Broadcaster
	logger    *slog.Logger
}

// NewPostgres builds the remote store. The broadcaster may be nil, in which
// case saves still commit but Subscribe is unavailable.
func NewPostgres(db *pgxpool.Pool, broadcast *Broadcaster, logger *slog.Logger) *Postgres {
	return &Postgres{db: db, broadcast: broadcast, logger: logger}
}

// EnsureSchema creates the document table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS wallet_documents (
        principal  TEXT        NOT NULL,
        wallet_id  TEXT        NOT NULL,
        doc        JSONB       NOT NULL,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (principal, wallet_id)
    )`)
	return err
}

// LoadWallets fetches the principal's wallet documents, oldest wallet first.
func (p *Postgres) LoadWallets(ctx context.Context, principal string) ([]ledger.Wallet, error) {
	rows, err := p.db.Query(ctx, `SELECT doc FROM wallet_documents
        WHERE principal = $1 ORDER BY created_at`, principal)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	defer rows.Close()

	var wallets []ledger.Wallet
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan wallet document: %w", err)
		}
		var w ledger.Wallet
		if err := json.Unmarshal(doc, &w); err != nil {
			return nil, fmt.Errorf("decode wallet document: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// SaveWallets atomically replaces the principal's wallet set. The previous
// durable state survives any mid-write failure because nothing is visible
// until the transaction commits.
func (p *Postgres) SaveWallets(ctx context.Context, principal string, wallets []ledger.Wallet) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save wallets: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM wallet_documents WHERE principal = $1`, principal); err != nil {
		return fmt.Errorf("clear wallet documents: %w", err)
	}

	now := time.Now().UTC()
	for _, w := range wallets {
		doc, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encode wallet %s: %w", w.ID, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO wallet_documents (principal, wallet_id, doc, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5)`, principal, w.ID, doc, w.CreatedAt.UTC(), now); err != nil {
			return fmt.Errorf("insert wallet %s: %w", w.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit wallet documents: %w", err)
	}

	if p.broadcast != nil {
		// The write is durable at this point; a lost notification only
		// delays subscribers until the next change.
		if err := p.broadcast.Publish(ctx, principal); err != nil {
			p.logger.Warn("publish wallet change", "principal", principal, "error", err)
		}
	}
	return nil
}

// Subscribe delivers the full wallet set after every announced change. Each
// notification triggers a fresh load, so out-of-order or coalesced
// announcements still converge on the latest durable state.
func (p *Postgres) Subscribe(ctx context.Context, principal string) (<-chan []ledger.Wallet, func(), error) {
	if p.broadcast == nil {
		return nil, nil, fmt.Errorf("subscription requires a broadcaster")
	}

	pings, stop, err := p.broadcast.Watch(ctx, principal)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []ledger.Wallet, 1)
	go func() {
		defer close(out)
		for range pings {
			wallets, err := p.LoadWallets(ctx, principal)
			if err != nil {
				p.logger.Warn("reload after change", "principal", principal, "error", err)
				continue
			}
			select {
			case out <- wallets:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, stop, nil
}
