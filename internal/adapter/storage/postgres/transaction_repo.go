package postgres

import (
	"context"
	"fmt"

	"crypto-exchange-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. Records are
// append-only; there is no update path.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction record within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, kind, fiat_amount, crypto_symbol, crypto_quantity, txn_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var symbol *string
	var quantity *float64
	if t.Crypto != nil {
		symbol = &t.Crypto.Symbol
		quantity = &t.Crypto.Quantity
	}

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Kind, t.FiatAmount,
		symbol, quantity, t.TxnHash, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByWallet fetches a wallet's transaction records, newest first.
// Timestamp ties break on the bigserial seq column so the listing always
// follows insertion order.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT id, wallet_id, kind, fiat_amount, crypto_symbol, crypto_quantity, txn_hash, created_at
		FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		var symbol *string
		var quantity *float64
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Kind, &t.FiatAmount,
			&symbol, &quantity, &t.TxnHash, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		if symbol != nil && quantity != nil {
			t.Crypto = &domain.CryptoLeg{Symbol: *symbol, Quantity: *quantity}
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
