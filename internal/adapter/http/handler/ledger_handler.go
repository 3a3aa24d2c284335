package handler

import (
	"crypto-exchange-wallet/internal/adapter/http/dto"
	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/apperror"
	"crypto-exchange-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles wallet balance, trading, and history endpoints.
type LedgerHandler struct {
	ledger       ports.LedgerEngine
	portfolioSvc ports.PortfolioService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger ports.LedgerEngine, portfolioSvc ports.PortfolioService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, portfolioSvc: portfolioSvc}
}

// walletID extracts the validated :id path parameter. WalletScope has
// already checked it against the session, so parse failures cannot happen
// here in practice.
func walletID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return uuid.Nil, false
	}
	return id, true
}

// Get handles GET /api/v1/wallets/:id.
func (h *LedgerHandler) Get(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	wallet, err := h.ledger.GetWallet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallet(wallet))
}

// Deposit handles POST /api/v1/wallets/:id/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, txn, err := h.ledger.Deposit(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerMutationResponse{
		Wallet:      dto.FromWallet(wallet),
		Transaction: dto.FromTransaction(txn),
	})
}

// Withdraw handles POST /api/v1/wallets/:id/withdraw.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, txn, err := h.ledger.Withdraw(c.Request.Context(), id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LedgerMutationResponse{
		Wallet:      dto.FromWallet(wallet),
		Transaction: dto.FromTransaction(txn),
	})
}

// Trade handles POST /api/v1/wallets/:id/trade.
func (h *LedgerHandler) Trade(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.ledger.Trade(c.Request.Context(), ports.TradeRequest{
		WalletID:   id,
		Direction:  domain.TradeDirection(req.Direction),
		Symbol:     req.Symbol,
		FiatAmount: req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTradeResult(result))
}

// ListTransactions handles GET /api/v1/wallets/:id/transactions.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	txns, err := h.ledger.ListTransactions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(txns))
}

// GetPortfolio handles GET /api/v1/wallets/:id/portfolio.
func (h *LedgerHandler) GetPortfolio(c *gin.Context) {
	id, ok := walletID(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolioSvc.GetPortfolio(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPortfolio(portfolio))
}
