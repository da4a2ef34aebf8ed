package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pocketbook/pocketbook/internal/ledger"
)

type walletDocument struct {
	Principal string `gorm:"primaryKey"`
	WalletID  string `gorm:"primaryKey"`
	Doc       []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (walletDocument) TableName() string { return "wallet_documents" }

// SQLite is the fully local Store: one database file on disk, no network.
// It is the "local mode" counterpart to the Postgres-backed remote store
// and offers no change subscription; the caller re-renders from its own
// in-memory state after each save.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) the database file and migrates the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&walletDocument{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// LoadWallets returns the principal's wallet set, oldest wallet first.
func (s *SQLite) LoadWallets(ctx context.Context, principal string) ([]ledger.Wallet, error) {
	var docs []walletDocument
	err := s.db.WithContext(ctx).
		Where("principal = ?", principal).
		Order("created_at").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	var wallets []ledger.Wallet
	for _, d := range docs {
		var w ledger.Wallet
		if err := json.Unmarshal(d.Doc, &w); err != nil {
			return nil, fmt.Errorf("decode wallet document %s: %w", d.WalletID, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// SaveWallets replaces the principal's wallet set in one transaction.
func (s *SQLite) SaveWallets(ctx context.Context, principal string, wallets []ledger.Wallet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("principal = ?", principal).Delete(&walletDocument{}).Error; err != nil {
			return fmt.Errorf("clear wallet documents: %w", err)
		}
		for _, w := range wallets {
			doc, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("encode wallet %s: %w", w.ID, err)
			}
			record := walletDocument{
				Principal: principal,
				WalletID:  w.ID,
				Doc:       doc,
				CreatedAt: w.CreatedAt.UTC(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("insert wallet %s: %w", w.ID, err)
			}
		}
		return nil
	})
}
