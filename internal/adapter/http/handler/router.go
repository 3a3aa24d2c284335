package handler

import (
	"crypto-exchange-wallet/internal/adapter/http/middleware"
	redisStore "crypto-exchange-wallet/internal/adapter/storage/redis"
	"crypto-exchange-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletSessionService
	Ledger         ports.LedgerEngine
	PortfolioSvc   ports.PortfolioService
	Oracle         ports.PriceOracle
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	sessionHandler := NewSessionHandler(deps.WalletSvc)
	v1.POST("/wallets", rl("wallet_create"), sessionHandler.Create)
	v1.POST("/wallets/login", rl("wallet_login"), sessionHandler.Login)

	marketHandler := NewMarketHandler(deps.Oracle)
	v1.GET("/market/prices", rl("market"), marketHandler.Prices)

	// --- Session-authenticated wallet routes ---
	// A token only grants access to its own wallet: WalletScope checks the
	// :id parameter against the token subject.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.PortfolioSvc)

	wallets := v1.Group("/wallets/:id", jwtAuth, middleware.WalletScope())
	{
		wallets.GET("", rl("queries"), ledgerHandler.Get)
		wallets.POST("/deposit", rl("ledger"), ledgerHandler.Deposit)
		wallets.POST("/withdraw", rl("ledger"), ledgerHandler.Withdraw)
		wallets.POST("/trade", rl("ledger"), ledgerHandler.Trade)
		wallets.GET("/transactions", rl("queries"), ledgerHandler.ListTransactions)
		wallets.GET("/portfolio", rl("queries"), ledgerHandler.GetPortfolio)
	}

	return r
}
