package postgres

import (
	"context"
	"errors"
	"fmt"

	"crypto-exchange-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository. Holdings are stored as a
// JSONB column keyed by asset symbol.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, name, password_digest, recovery_secret_enc, fiat_balance, holdings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Name, w.PasswordDigest, w.RecoverySecretEnc,
		w.FiatBalance, w.Holdings, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, name, password_digest, recovery_secret_enc, fiat_balance, holdings, created_at, updated_at
		FROM wallets WHERE id = $1`

	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByName fetches a wallet by its unique name.
func (r *WalletRepo) GetByName(ctx context.Context, name string) (*domain.Wallet, error) {
	query := `SELECT id, name, password_digest, recovery_secret_enc, fiat_balance, holdings, created_at, updated_at
		FROM wallets WHERE name = $1`

	return scanWallet(r.pool.QueryRow(ctx, query, name))
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, name, password_digest, recovery_secret_enc, fiat_balance, holdings, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE`

	return scanWallet(tx.QueryRow(ctx, query, id))
}

// UpdateBalances updates a wallet's fiat balance and holdings within a transaction.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, fiatBalance float64, holdings map[string]float64) error {
	query := `UPDATE wallets SET fiat_balance = $1, holdings = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, fiatBalance, holdings, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// scanWallet scans a single row into a Wallet.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.Name, &w.PasswordDigest, &w.RecoverySecretEnc,
		&w.FiatBalance, &w.Holdings, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	if w.Holdings == nil {
		w.Holdings = make(map[string]float64)
	}
	return w, nil
}
