package handler

import (
	"crypto-exchange-wallet/internal/adapter/http/dto"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles public market data endpoints.
type MarketHandler struct {
	oracle ports.PriceOracle
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(oracle ports.PriceOracle) *MarketHandler {
	return &MarketHandler{oracle: oracle}
}

// Prices handles GET /api/v1/market/prices.
func (h *MarketHandler) Prices(c *gin.Context) {
	quotes, err := h.oracle.Quotes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromQuotes(quotes))
}
