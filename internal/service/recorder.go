package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// HashingRecorder implements ports.TransactionRecorder. Every ledger
// mutation is stamped with a SHA256 integrity hash over its canonical
// fields so stored records can be verified after the fact.
type HashingRecorder struct {
	txnRepo ports.TransactionRepository
	logger  zerolog.Logger
}

// NewHashingRecorder creates a new transaction recorder.
func NewHashingRecorder(txnRepo ports.TransactionRepository, logger zerolog.Logger) *HashingRecorder {
	return &HashingRecorder{
		txnRepo: txnRepo,
		logger:  logger.With().Str("component", "recorder").Logger(),
	}
}

// Record builds a stamped transaction record and persists it inside the
// caller's database transaction, so the record commits or rolls back
// together with the balance change it describes.
func (r *HashingRecorder) Record(ctx context.Context, tx pgx.Tx, entry ports.RecordEntry) (*domain.Transaction, error) {
	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:         uuid.New(),
		WalletID:   entry.WalletID,
		Kind:       entry.Kind,
		FiatAmount: entry.FiatAmount,
		Crypto:     entry.Crypto,
		CreatedAt:  now,
	}
	txn.TxnHash = computeTxnHash(txn)

	if err := r.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("persisting transaction record: %w", err)
	}

	r.logger.Debug().
		Str("transaction_id", txn.ID.String()).
		Str("wallet_id", txn.WalletID.String()).
		Str("kind", string(txn.Kind)).
		Msg("transaction recorded")

	return txn, nil
}

// computeTxnHash computes the record's integrity hash.
// Formula: SHA256(kind|wallet_id|fiat_amount|symbol|quantity|created_at_ns)
// Returns hex-encoded hash (64 characters).
func computeTxnHash(txn *domain.Transaction) string {
	symbol := ""
	quantity := 0.0
	if txn.Crypto != nil {
		symbol = txn.Crypto.Symbol
		quantity = txn.Crypto.Quantity
	}

	data := fmt.Sprintf("%s|%s|%g|%s|%g|%d",
		string(txn.Kind),
		txn.WalletID.String(),
		txn.FiatAmount,
		symbol,
		quantity,
		txn.CreatedAt.UnixNano(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
