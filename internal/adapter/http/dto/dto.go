package dto

import (
	"time"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
)

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for wallet login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateWalletResponse is the response body for successful wallet creation.
// RecoveryPhrase is returned exactly once and never again.
type CreateWalletResponse struct {
	Wallet         WalletResponse `json:"wallet"`
	RecoveryPhrase string         `json:"recovery_phrase"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string         `json:"token"`
	Expiry int64          `json:"expiry"` // Unix timestamp
	Wallet WalletResponse `json:"wallet"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// TradeRequest is the request body for buy/sell orders.
type TradeRequest struct {
	Direction string  `json:"direction" binding:"required,oneof=buy sell"`
	Symbol    string  `json:"symbol" binding:"required,max=10"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	FiatBalance float64            `json:"fiat_balance"`
	Holdings    map[string]float64 `json:"holdings"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

// TransactionResponse is the public view of a transaction record.
type TransactionResponse struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	FiatAmount float64  `json:"fiat_amount"`
	Symbol     *string  `json:"symbol,omitempty"`
	Quantity   *float64 `json:"quantity,omitempty"`
	TxnHash    string   `json:"txn_hash"`
	CreatedAt  string   `json:"created_at"`
}

// TransactionListResponse wraps a wallet's transaction history.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Total int                   `json:"total"`
}

// LedgerMutationResponse is returned by deposit and withdraw.
type LedgerMutationResponse struct {
	Wallet      WalletResponse      `json:"wallet"`
	Transaction TransactionResponse `json:"transaction"`
}

// TradeResponse is returned by trade execution.
type TradeResponse struct {
	Direction   string              `json:"direction"`
	Symbol      string              `json:"symbol"`
	Quantity    float64             `json:"quantity"`
	Price       float64             `json:"price"`
	FiatAmount  float64             `json:"fiat_amount"`
	Fee         float64             `json:"fee"`
	Wallet      WalletResponse      `json:"wallet"`
	Transaction TransactionResponse `json:"transaction"`
}

// MarketPriceResponse is one asset's entry in the market prices listing.
type MarketPriceResponse struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	FetchedAt string  `json:"fetched_at"`
}

// PositionResponse is one valued holding in a portfolio.
type PositionResponse struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Value     float64 `json:"value"`
	Change24h float64 `json:"change_24h"`
}

// PortfolioResponse is the valued view of a wallet.
type PortfolioResponse struct {
	Wallet        WalletResponse     `json:"wallet"`
	Positions     []PositionResponse `json:"positions"`
	HoldingsValue float64            `json:"holdings_value"`
	TotalValue    float64            `json:"total_value"`
}

// FromWallet converts a domain wallet to its public view.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:          w.ID.String(),
		Name:        w.Name,
		FiatBalance: w.FiatBalance,
		Holdings:    w.CopyHoldings(),
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   w.UpdatedAt.Format(time.RFC3339),
	}
}

// FromTransaction converts a domain transaction to its public view.
func FromTransaction(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:         t.ID.String(),
		Kind:       string(t.Kind),
		FiatAmount: t.FiatAmount,
		TxnHash:    t.TxnHash,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
	if t.Crypto != nil {
		resp.Symbol = &t.Crypto.Symbol
		resp.Quantity = &t.Crypto.Quantity
	}
	return resp
}

// FromTransactions converts a transaction history slice.
func FromTransactions(txns []domain.Transaction) TransactionListResponse {
	items := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, FromTransaction(&txns[i]))
	}
	return TransactionListResponse{Items: items, Total: len(items)}
}

// FromTradeResult converts a trade outcome.
func FromTradeResult(r *ports.TradeResult) TradeResponse {
	return TradeResponse{
		Direction:   string(r.Direction),
		Symbol:      r.Symbol,
		Quantity:    r.Quantity,
		Price:       r.Price,
		FiatAmount:  r.FiatAmount,
		Fee:         r.Fee,
		Wallet:      FromWallet(r.Wallet),
		Transaction: FromTransaction(r.Transaction),
	}
}

// FromPortfolio converts a valued portfolio.
func FromPortfolio(p *ports.Portfolio) PortfolioResponse {
	positions := make([]PositionResponse, 0, len(p.Positions))
	for _, pos := range p.Positions {
		positions = append(positions, PositionResponse{
			Symbol:    pos.Symbol,
			Name:      pos.Name,
			Quantity:  pos.Quantity,
			Price:     pos.Price,
			Value:     pos.Value,
			Change24h: pos.Change24h,
		})
	}
	return PortfolioResponse{
		Wallet:        FromWallet(p.Wallet),
		Positions:     positions,
		HoldingsValue: p.HoldingsValue,
		TotalValue:    p.TotalValue,
	}
}

// FromQuotes converts catalog quotes keyed by symbol into a stable listing.
func FromQuotes(quotes map[string]domain.Quote) []MarketPriceResponse {
	prices := make([]MarketPriceResponse, 0, len(quotes))
	for _, asset := range domain.SupportedAssets {
		quote, ok := quotes[asset.Symbol]
		if !ok {
			continue
		}
		prices = append(prices, MarketPriceResponse{
			Symbol:    asset.Symbol,
			Name:      asset.Name,
			Price:     quote.Price,
			Change24h: quote.Change24h,
			FetchedAt: quote.FetchedAt.Format(time.RFC3339),
		})
	}
	return prices
}
