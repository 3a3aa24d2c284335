package service

import (
	"context"
	"errors"
	"testing"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/internal/core/ports/mocks"
	"crypto-exchange-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerService
	walletRepo *mocks.MockWalletRepository
	txnRepo    *mocks.MockTransactionRepository
	recorder   *mocks.MockTransactionRecorder
	oracle     *mocks.MockPriceOracle
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txnRepo:    mocks.NewMockTransactionRepository(ctrl),
		recorder:   mocks.NewMockTransactionRecorder(ctrl),
		oracle:     mocks.NewMockPriceOracle(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(
		d.walletRepo, d.txnRepo, d.recorder, d.oracle, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// ==================== Deposit Tests ====================

func TestLedgerService_Deposit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		Name:        "alice",
		FiatBalance: 250,
		Holdings:    map[string]float64{},
	}, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, 1250.0, gomock.Any()).Return(nil)
	d.recorder.EXPECT().
		Record(ctx, tx, ports.RecordEntry{
			WalletID:   walletID,
			Kind:       domain.TransactionDeposit,
			FiatAmount: 1000,
		}).
		Return(&domain.Transaction{ID: uuid.New(), WalletID: walletID, Kind: domain.TransactionDeposit, FiatAmount: 1000}, nil)

	wallet, txn, err := d.svc.Deposit(ctx, walletID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, wallet.FiatBalance)
	assert.Equal(t, domain.TransactionDeposit, txn.Kind)
}

func TestLedgerService_Deposit_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, amount := range []float64{0, -50} {
		_, _, err := d.svc.Deposit(context.Background(), uuid.New(), amount)
		assertAppErrorCode(t, err, "LED_001")
	}
}

func TestLedgerService_Deposit_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	_, _, err := d.svc.Deposit(ctx, walletID, 100)
	assertAppErrorCode(t, err, "WAL_001")
}

// ==================== Withdraw Tests ====================

func TestLedgerService_Withdraw_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 1000,
		Holdings:    map[string]float64{},
	}, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, 600.0, gomock.Any()).Return(nil)
	d.recorder.EXPECT().
		Record(ctx, tx, ports.RecordEntry{
			WalletID:   walletID,
			Kind:       domain.TransactionWithdrawal,
			FiatAmount: 400,
		}).
		Return(&domain.Transaction{ID: uuid.New(), WalletID: walletID, Kind: domain.TransactionWithdrawal, FiatAmount: 400}, nil)

	wallet, txn, err := d.svc.Withdraw(ctx, walletID, 400)
	require.NoError(t, err)
	assert.Equal(t, 600.0, wallet.FiatBalance)
	assert.Equal(t, domain.TransactionWithdrawal, txn.Kind)
}

func TestLedgerService_Withdraw_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 1000,
	}, nil)

	_, _, err := d.svc.Withdraw(ctx, walletID, 1500)
	assertAppErrorCode(t, err, "LED_002")
}

func TestLedgerService_Withdraw_ExactBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 1000,
	}, nil)
	d.walletRepo.EXPECT().UpdateBalances(ctx, tx, walletID, 0.0, gomock.Any()).Return(nil)
	d.recorder.EXPECT().Record(ctx, tx, gomock.Any()).
		Return(&domain.Transaction{ID: uuid.New()}, nil)

	wallet, _, err := d.svc.Withdraw(ctx, walletID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wallet.FiatBalance)
}

// ==================== Trade Tests ====================

func TestLedgerService_Trade_Buy(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}
	btc, _ := domain.AssetBySymbol("BTC")

	d.oracle.EXPECT().Quote(ctx, btc).Return(&domain.Quote{Price: 50000}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 1000,
		Holdings:    map[string]float64{},
	}, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, walletID, 500.0, map[string]float64{"BTC": 0.01}).
		Return(nil)
	d.recorder.EXPECT().
		Record(ctx, tx, ports.RecordEntry{
			WalletID:   walletID,
			Kind:       domain.TransactionTrade,
			FiatAmount: 500,
			Crypto:     &domain.CryptoLeg{Symbol: "BTC", Quantity: 0.01},
		}).
		Return(&domain.Transaction{ID: uuid.New(), Kind: domain.TransactionTrade}, nil)

	result, err := d.svc.Trade(ctx, ports.TradeRequest{
		WalletID:   walletID,
		Direction:  domain.TradeBuy,
		Symbol:     "BTC",
		FiatAmount: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, result.Wallet.FiatBalance)
	assert.Equal(t, 0.01, result.Wallet.Holdings["BTC"])
	assert.Equal(t, 0.01, result.Quantity)
	assert.Equal(t, 50000.0, result.Price)
	assert.Equal(t, 2.5, result.Fee)
}

func TestLedgerService_Trade_SellAll_RemovesHolding(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}
	btc, _ := domain.AssetBySymbol("BTC")

	d.oracle.EXPECT().Quote(ctx, btc).Return(&domain.Quote{Price: 50000}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 500,
		Holdings:    map[string]float64{"BTC": 0.01},
	}, nil)
	d.walletRepo.EXPECT().
		UpdateBalances(ctx, tx, walletID, 1000.0, map[string]float64{}).
		Return(nil)
	d.recorder.EXPECT().Record(ctx, tx, gomock.Any()).
		Return(&domain.Transaction{ID: uuid.New(), Kind: domain.TransactionTrade}, nil)

	result, err := d.svc.Trade(ctx, ports.TradeRequest{
		WalletID:   walletID,
		Direction:  domain.TradeSell,
		Symbol:     "BTC",
		FiatAmount: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.Wallet.FiatBalance)
	assert.NotContains(t, result.Wallet.Holdings, "BTC")
}

func TestLedgerService_Trade_Sell_InsufficientHolding(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}
	eth, _ := domain.AssetBySymbol("ETH")

	d.oracle.EXPECT().Quote(ctx, eth).Return(&domain.Quote{Price: 2000}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 0,
		Holdings:    map[string]float64{"ETH": 0.1},
	}, nil)

	// Selling 400 fiat worth = 0.2 ETH, but only 0.1 held
	_, err := d.svc.Trade(ctx, ports.TradeRequest{
		WalletID:   walletID,
		Direction:  domain.TradeSell,
		Symbol:     "ETH",
		FiatAmount: 400,
	})
	assertAppErrorCode(t, err, "LED_003")
}

func TestLedgerService_Trade_Buy_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}
	btc, _ := domain.AssetBySymbol("BTC")

	d.oracle.EXPECT().Quote(ctx, btc).Return(&domain.Quote{Price: 50000}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(&domain.Wallet{
		ID:          walletID,
		FiatBalance: 100,
	}, nil)

	_, err := d.svc.Trade(ctx, ports.TradeRequest{
		WalletID:   walletID,
		Direction:  domain.TradeBuy,
		Symbol:     "BTC",
		FiatAmount: 500,
	})
	assertAppErrorCode(t, err, "LED_002")
}

func TestLedgerService_Trade_UnsupportedAsset(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Trade(context.Background(), ports.TradeRequest{
		WalletID:   uuid.New(),
		Direction:  domain.TradeBuy,
		Symbol:     "NOPE",
		FiatAmount: 100,
	})
	assertAppErrorCode(t, err, "MKT_001")
}

func TestLedgerService_Trade_InvalidDirection(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Trade(context.Background(), ports.TradeRequest{
		WalletID:   uuid.New(),
		Direction:  domain.TradeDirection("short"),
		Symbol:     "BTC",
		FiatAmount: 100,
	})
	assertAppErrorCode(t, err, "VAL_001")
}

func TestLedgerService_Trade_OracleFailure(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	btc, _ := domain.AssetBySymbol("BTC")

	d.oracle.EXPECT().Quote(ctx, btc).Return(nil, apperror.ErrPriceUnavailable(errors.New("upstream timeout")))

	_, err := d.svc.Trade(ctx, ports.TradeRequest{
		WalletID:   uuid.New(),
		Direction:  domain.TradeBuy,
		Symbol:     "BTC",
		FiatAmount: 100,
	})
	assertAppErrorCode(t, err, "MKT_002")
}

// ==================== Query Tests ====================

func TestLedgerService_GetWallet_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(nil, nil)

	_, err := d.svc.GetWallet(ctx, walletID)
	assertAppErrorCode(t, err, "WAL_001")
}

func TestLedgerService_ListTransactions(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(&domain.Wallet{ID: walletID}, nil)
	d.txnRepo.EXPECT().ListByWallet(ctx, walletID).Return([]domain.Transaction{
		{ID: uuid.New(), Kind: domain.TransactionTrade},
		{ID: uuid.New(), Kind: domain.TransactionDeposit},
	}, nil)

	txns, err := d.svc.ListTransactions(ctx, walletID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestLedgerService_ListTransactions_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()

	d.walletRepo.EXPECT().GetByID(ctx, walletID).Return(nil, nil)

	_, err := d.svc.ListTransactions(ctx, walletID)
	assertAppErrorCode(t, err, "WAL_001")
}
