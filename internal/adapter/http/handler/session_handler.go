package handler

import (
	"net/http"

	"crypto-exchange-wallet/internal/adapter/http/dto"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/apperror"
	"crypto-exchange-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles wallet creation and login.
type SessionHandler struct {
	walletSvc ports.WalletSessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(walletSvc ports.WalletSessionService) *SessionHandler {
	return &SessionHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.walletSvc.Create(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateWalletResponse{
		Wallet:         dto.FromWallet(result.Wallet),
		RecoveryPhrase: result.RecoveryPhrase,
	})
}

// Login handles POST /api/v1/wallets/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.walletSvc.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  result.Token,
		Expiry: result.Expiry.Unix(),
		Wallet: dto.FromWallet(result.Wallet),
	})
}

// HealthCheck handles GET /health, verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
