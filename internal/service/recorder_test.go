package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/internal/core/ports/mocks"
	"crypto-exchange-wallet/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHashingRecorder_Record_Deposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txnRepo := mocks.NewMockTransactionRepository(ctrl)
	recorder := NewHashingRecorder(txnRepo, logger.New("disabled", false))

	walletID := uuid.New()
	var captured *domain.Transaction
	txnRepo.EXPECT().
		Create(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			captured = txn
			return nil
		})

	txn, err := recorder.Record(context.Background(), nil, ports.RecordEntry{
		WalletID:   walletID,
		Kind:       domain.TransactionDeposit,
		FiatAmount: 1000,
	})
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, captured, txn)
	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.Equal(t, walletID, txn.WalletID)
	assert.Equal(t, domain.TransactionDeposit, txn.Kind)
	assert.Equal(t, 1000.0, txn.FiatAmount)
	assert.Nil(t, txn.Crypto)
	assert.Len(t, txn.TxnHash, 64)
	assert.WithinDuration(t, time.Now().UTC(), txn.CreatedAt, 5*time.Second)
}

func TestHashingRecorder_Record_TradeIncludesCryptoLeg(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txnRepo := mocks.NewMockTransactionRepository(ctrl)
	recorder := NewHashingRecorder(txnRepo, logger.New("disabled", false))

	txnRepo.EXPECT().Create(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil)

	txn, err := recorder.Record(context.Background(), nil, ports.RecordEntry{
		WalletID:   uuid.New(),
		Kind:       domain.TransactionTrade,
		FiatAmount: 500,
		Crypto:     &domain.CryptoLeg{Symbol: "BTC", Quantity: 0.01},
	})
	require.NoError(t, err)

	require.NotNil(t, txn.Crypto)
	assert.Equal(t, "BTC", txn.Crypto.Symbol)
	assert.Equal(t, 0.01, txn.Crypto.Quantity)
	assert.Len(t, txn.TxnHash, 64)
}

func TestHashingRecorder_Record_HashCoversCanonicalFields(t *testing.T) {
	now := time.Now().UTC()
	base := &domain.Transaction{
		ID:         uuid.New(),
		WalletID:   uuid.New(),
		Kind:       domain.TransactionTrade,
		FiatAmount: 250,
		Crypto:     &domain.CryptoLeg{Symbol: "ETH", Quantity: 0.1},
		CreatedAt:  now,
	}

	h1 := computeTxnHash(base)
	assert.Equal(t, h1, computeTxnHash(base), "hash must be deterministic")

	changed := *base
	changed.FiatAmount = 251
	assert.NotEqual(t, h1, computeTxnHash(&changed), "amount change must change hash")

	changed = *base
	leg := *base.Crypto
	leg.Quantity = 0.2
	changed.Crypto = &leg
	assert.NotEqual(t, h1, computeTxnHash(&changed), "quantity change must change hash")

	changed = *base
	changed.CreatedAt = now.Add(time.Nanosecond)
	assert.NotEqual(t, h1, computeTxnHash(&changed), "timestamp change must change hash")
}

func TestHashingRecorder_Record_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txnRepo := mocks.NewMockTransactionRepository(ctrl)
	recorder := NewHashingRecorder(txnRepo, logger.New("disabled", false))

	txnRepo.EXPECT().Create(gomock.Any(), gomock.Nil(), gomock.Any()).Return(errors.New("insert failed"))

	_, err := recorder.Record(context.Background(), nil, ports.RecordEntry{
		WalletID:   uuid.New(),
		Kind:       domain.TransactionWithdrawal,
		FiatAmount: 10,
	})
	assert.Error(t, err)
}
