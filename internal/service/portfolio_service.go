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

// PortfolioValuer implements ports.PortfolioService: it values a wallet's
// holdings at current oracle prices.
type PortfolioValuer struct {
	walletRepo ports.WalletRepository
	oracle     ports.PriceOracle
	log        zerolog.Logger
}

// NewPortfolioValuer creates a new PortfolioValuer.
func NewPortfolioValuer(walletRepo ports.WalletRepository, oracle ports.PriceOracle, log zerolog.Logger) *PortfolioValuer {
	return &PortfolioValuer{
		walletRepo: walletRepo,
		oracle:     oracle,
		log:        log,
	}
}

// GetPortfolio returns the wallet with each holding priced at the current
// quote. Positions follow the supported asset catalog order.
func (s *PortfolioValuer) GetPortfolio(ctx context.Context, walletID uuid.UUID) (*ports.Portfolio, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	portfolio := &ports.Portfolio{
		Wallet:    wallet,
		Positions: []ports.Position{},
	}

	if len(wallet.Holdings) == 0 {
		portfolio.TotalValue = wallet.FiatBalance
		return portfolio, nil
	}

	quotes, err := s.oracle.Quotes(ctx)
	if err != nil {
		return nil, err
	}

	for _, asset := range domain.SupportedAssets {
		quantity, held := wallet.Holdings[asset.Symbol]
		if !held {
			continue
		}

		quote, ok := quotes[asset.Symbol]
		if !ok {
			return nil, apperror.ErrPriceUnavailable(fmt.Errorf("no quote for held asset %s", asset.Symbol))
		}

		value := quantity * quote.Price
		portfolio.Positions = append(portfolio.Positions, ports.Position{
			Symbol:    asset.Symbol,
			Name:      asset.Name,
			Quantity:  quantity,
			Price:     quote.Price,
			Value:     value,
			Change24h: quote.Change24h,
		})
		portfolio.HoldingsValue += value
	}

	portfolio.TotalValue = wallet.FiatBalance + portfolio.HoldingsValue
	return portfolio, nil
}
