package ports

import (
	"context"
	"time"

	"crypto-exchange-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdentityVault handles credential material: password digests and the
// encrypted recovery phrase. The raw password never leaves this boundary.
type IdentityVault interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password string, digest string) (bool, error)
	GenerateRecoveryPhrase() (string, error)
	EncryptRecoveryPhrase(phrase string, password string) (string, error)
	DecryptRecoveryPhrase(ciphertext string, password string) (string, error)
}

// TokenService handles session token operations.
type TokenService interface {
	Generate(walletID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (uuid.UUID, error)
}

// PriceOracle supplies current fiat prices for supported assets.
type PriceOracle interface {
	// Quote returns the current price snapshot for one asset.
	Quote(ctx context.Context, asset domain.SupportedAsset) (*domain.Quote, error)
	// Quotes returns snapshots for the whole catalog, keyed by symbol.
	Quotes(ctx context.Context) (map[string]domain.Quote, error)
}

// QuoteCache stores last-known-good quotes keyed by oracle ID.
type QuoteCache interface {
	// Get returns the cached quote, or nil, nil on a miss.
	Get(ctx context.Context, oracleID string) (*domain.Quote, error)
	Set(ctx context.Context, oracleID string, quote *domain.Quote, ttl time.Duration) error
}

// RecordEntry is the input to the transaction recorder.
type RecordEntry struct {
	WalletID   uuid.UUID
	Kind       domain.TransactionKind
	FiatAmount float64
	Crypto     *domain.CryptoLeg
}

// TransactionRecorder builds the immutable audit record for one balance
// mutation and appends it within the caller's database transaction.
type TransactionRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, entry RecordEntry) (*domain.Transaction, error)
}

// --- Service Ports (Business Logic) ---

// TradeRequest holds validated input for trade execution.
type TradeRequest struct {
	WalletID   uuid.UUID
	Direction  domain.TradeDirection
	Symbol     string
	FiatAmount float64
}

// TradeResult holds the executed trade plus its pricing summary.
type TradeResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
	Direction   domain.TradeDirection
	Symbol      string
	Quantity    float64
	Price       float64
	FiatAmount  float64
	Fee         float64 // 0.5% of FiatAmount; display-only, never deducted
}

// LedgerEngine is the sole authority for mutating wallet balances and
// holdings. Every committed mutation carries exactly one transaction record.
type LedgerEngine interface {
	Deposit(ctx context.Context, walletID uuid.UUID, amount float64) (*domain.Wallet, *domain.Transaction, error)
	Withdraw(ctx context.Context, walletID uuid.UUID, amount float64) (*domain.Wallet, *domain.Transaction, error)
	Trade(ctx context.Context, req TradeRequest) (*TradeResult, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

// CreateWalletResult holds the outcome of wallet creation. RecoveryPhrase
// is returned exactly once and never again.
type CreateWalletResult struct {
	Wallet         *domain.Wallet
	RecoveryPhrase string
}

// LoginResult holds the outcome of a successful login.
type LoginResult struct {
	Wallet *domain.Wallet
	Token  string
	Expiry time.Time
}

// WalletSessionService defines identity creation and verification.
type WalletSessionService interface {
	Create(ctx context.Context, name string, password string) (*CreateWalletResult, error)
	Login(ctx context.Context, name string, password string) (*LoginResult, error)
}

// Position is one valued holding inside a portfolio projection.
type Position struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Value     float64 `json:"value"`
	Change24h float64 `json:"change_24h"`
}

// Portfolio is the valued projection of a wallet at current prices.
type Portfolio struct {
	Wallet        *domain.Wallet `json:"wallet"`
	Positions     []Position     `json:"positions"`
	HoldingsValue float64        `json:"holdings_value"`
	TotalValue    float64        `json:"total_value"` // fiat balance + holdings value
}

// PortfolioService values a wallet's holdings at current market prices.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, walletID uuid.UUID) (*Portfolio, error)
}
