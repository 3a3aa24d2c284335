package service

import (
	"context"
	"fmt"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tradeFeeRate is the quoted trade fee (0.5% of the fiat leg). The fee is
// reported on trade results but never deducted from the wallet.
const tradeFeeRate = 0.005

// LedgerService implements ports.LedgerEngine. Every balance mutation runs
// inside a single database transaction under a pessimistic row lock, so
// concurrent operations on the same wallet serialize instead of racing.
type LedgerService struct {
	walletRepo ports.WalletRepository
	txnRepo    ports.TransactionRepository
	recorder   ports.TransactionRecorder
	oracle     ports.PriceOracle
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txnRepo ports.TransactionRepository,
	recorder ports.TransactionRecorder,
	oracle ports.PriceOracle,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		recorder:   recorder,
		oracle:     oracle,
		transactor: transactor,
		log:        log,
	}
}

// Deposit credits fiat to a wallet and appends a deposit record.
func (s *LedgerService) Deposit(ctx context.Context, walletID uuid.UUID, amount float64) (*domain.Wallet, *domain.Transaction, error) {
	if amount <= 0 {
		return nil, nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, nil, apperror.ErrWalletNotFound()
	}

	wallet.FiatBalance += amount

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.FiatBalance, wallet.Holdings); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn, err := s.recorder.Record(ctx, dbTx, ports.RecordEntry{
		WalletID:   wallet.ID,
		Kind:       domain.TransactionDeposit,
		FiatAmount: amount,
	})
	if err != nil {
		return nil, nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Float64("amount", amount).
		Float64("balance", wallet.FiatBalance).
		Msg("deposit processed")

	return wallet, txn, nil
}

// Withdraw debits fiat from a wallet. Rejected before any persistence when
// the balance would go negative.
func (s *LedgerService) Withdraw(ctx context.Context, walletID uuid.UUID, amount float64) (*domain.Wallet, *domain.Transaction, error) {
	if amount <= 0 {
		return nil, nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, walletID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, nil, apperror.ErrWalletNotFound()
	}

	if wallet.FiatBalance < amount {
		return nil, nil, apperror.ErrInsufficientFunds()
	}

	wallet.FiatBalance -= amount

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.FiatBalance, wallet.Holdings); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn, err := s.recorder.Record(ctx, dbTx, ports.RecordEntry{
		WalletID:   wallet.ID,
		Kind:       domain.TransactionWithdrawal,
		FiatAmount: amount,
	})
	if err != nil {
		return nil, nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Float64("amount", amount).
		Float64("balance", wallet.FiatBalance).
		Msg("withdrawal processed")

	return wallet, txn, nil
}

// Trade executes a buy or sell against the live oracle price. The price is
// fetched once before the wallet lock is taken, so a slow oracle never
// extends the lock window.
func (s *LedgerService) Trade(ctx context.Context, req ports.TradeRequest) (*ports.TradeResult, error) {
	if req.FiatAmount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Direction.Valid() {
		return nil, apperror.Validation("direction must be buy or sell")
	}

	asset, ok := domain.AssetBySymbol(req.Symbol)
	if !ok {
		return nil, apperror.ErrUnsupportedAsset(req.Symbol)
	}

	quote, err := s.oracle.Quote(ctx, asset)
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, apperror.ErrPriceUnavailable(fmt.Errorf("non-positive price %g for %s", quote.Price, asset.Symbol))
	}

	quantity := req.FiatAmount / quote.Price

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	switch req.Direction {
	case domain.TradeBuy:
		if wallet.FiatBalance < req.FiatAmount {
			return nil, apperror.ErrInsufficientFunds()
		}
		wallet.FiatBalance -= req.FiatAmount
		if wallet.Holdings == nil {
			wallet.Holdings = make(map[string]float64)
		}
		wallet.Holdings[asset.Symbol] += quantity

	case domain.TradeSell:
		held := wallet.Holding(asset.Symbol)
		if held < quantity {
			return nil, apperror.ErrInsufficientHolding(asset.Symbol)
		}
		wallet.FiatBalance += req.FiatAmount
		remaining := held - quantity
		if remaining <= 0 {
			delete(wallet.Holdings, asset.Symbol)
		} else {
			wallet.Holdings[asset.Symbol] = remaining
		}
	}

	if err := s.walletRepo.UpdateBalances(ctx, dbTx, wallet.ID, wallet.FiatBalance, wallet.Holdings); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balances: %w", err))
	}

	txn, err := s.recorder.Record(ctx, dbTx, ports.RecordEntry{
		WalletID:   wallet.ID,
		Kind:       domain.TransactionTrade,
		FiatAmount: req.FiatAmount,
		Crypto:     &domain.CryptoLeg{Symbol: asset.Symbol, Quantity: quantity},
	})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("direction", string(req.Direction)).
		Str("symbol", asset.Symbol).
		Float64("fiat_amount", req.FiatAmount).
		Float64("quantity", quantity).
		Float64("price", quote.Price).
		Msg("trade executed")

	return &ports.TradeResult{
		Wallet:      wallet,
		Transaction: txn,
		Direction:   req.Direction,
		Symbol:      asset.Symbol,
		Quantity:    quantity,
		Price:       quote.Price,
		FiatAmount:  req.FiatAmount,
		Fee:         req.FiatAmount * tradeFeeRate,
	}, nil
}

// GetWallet loads a wallet by ID.
func (s *LedgerService) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	return wallet, nil
}

// ListTransactions returns a wallet's transaction history, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	txns, err := s.txnRepo.ListByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}
