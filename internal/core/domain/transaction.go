package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of balance movement.
type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionTrade      TransactionKind = "trade"
)

// TradeDirection selects which side of a trade is executed.
type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

// Valid reports whether the direction is one of the two known values.
func (d TradeDirection) Valid() bool {
	return d == TradeBuy || d == TradeSell
}

// CryptoLeg is the asset side of a trade transaction.
type CryptoLeg struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// Transaction is an immutable audit record of one balance-affecting
// operation. Records are append-only and never mutated after commit.
type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	WalletID   uuid.UUID       `json:"wallet_id"`
	Kind       TransactionKind `json:"kind"`
	FiatAmount float64         `json:"fiat_amount"` // magnitude; sign implied by Kind
	Crypto     *CryptoLeg      `json:"crypto,omitempty"`
	TxnHash    string          `json:"txn_hash"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsTrade reports whether the record carries an asset leg.
func (t *Transaction) IsTrade() bool {
	return t.Kind == TransactionTrade
}
