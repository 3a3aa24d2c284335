package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/internal/core/ports/mocks"
	"crypto-exchange-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerTestDeps struct {
	walletSvc    *mocks.MockWalletSessionService
	ledger       *mocks.MockLedgerEngine
	portfolioSvc *mocks.MockPortfolioService
	oracle       *mocks.MockPriceOracle
	tokenSvc     *mocks.MockTokenService
	router       *gin.Engine
	ctrl         *gomock.Controller
}

func setupRouter(t *testing.T) *routerTestDeps {
	ctrl := gomock.NewController(t)
	d := &routerTestDeps{
		walletSvc:    mocks.NewMockWalletSessionService(ctrl),
		ledger:       mocks.NewMockLedgerEngine(ctrl),
		portfolioSvc: mocks.NewMockPortfolioService(ctrl),
		oracle:       mocks.NewMockPriceOracle(ctrl),
		tokenSvc:     mocks.NewMockTokenService(ctrl),
		ctrl:         ctrl,
	}
	d.router = SetupRouter(RouterDeps{
		WalletSvc:    d.walletSvc,
		Ledger:       d.ledger,
		PortfolioSvc: d.portfolioSvc,
		Oracle:       d.oracle,
		TokenSvc:     d.tokenSvc,
		Logger:       zerolog.Nop(),
	})
	return d
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer session-token"}
}

func testWallet(id uuid.UUID) *domain.Wallet {
	return &domain.Wallet{
		ID:          id,
		Name:        "alice",
		FiatBalance: 1000,
		Holdings:    map[string]float64{},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

// ==================== Session Tests ====================

func TestCreateWallet(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.walletSvc.EXPECT().
		Create(gomock.Any(), "alice", "strong-password").
		Return(&ports.CreateWalletResult{
			Wallet:         testWallet(walletID),
			RecoveryPhrase: "abandon ability able about",
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets",
		gin.H{"name": "alice", "password": "strong-password"}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), walletID.String())
	assert.Contains(t, w.Body.String(), "abandon ability able about")
}

func TestCreateWallet_ValidationFailures(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"password": "strong-password"}},
		{"short password", gin.H{"name": "alice", "password": "short"}},
		{"unsafe name", gin.H{"name": "alice; drop", "password": "strong-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(d.router, http.MethodPost, "/api/v1/wallets", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VAL_001")
		})
	}
}

func TestCreateWallet_NameTaken(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().
		Create(gomock.Any(), "alice", "strong-password").
		Return(nil, apperror.ErrNameTaken())

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets",
		gin.H{"name": "alice", "password": "strong-password"}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "WAL_002")
}

func TestLogin(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.walletSvc.EXPECT().
		Login(gomock.Any(), "alice", "strong-password").
		Return(&ports.LoginResult{
			Wallet: testWallet(walletID),
			Token:  "session-token",
			Expiry: time.Now().Add(24 * time.Hour),
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/login",
		gin.H{"name": "alice", "password": "strong-password"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session-token")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().
		Login(gomock.Any(), "alice", "wrong").
		Return(nil, apperror.ErrInvalidCredentials())

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/login",
		gin.H{"name": "alice", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

// ==================== Ledger Tests ====================

func TestDeposit(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)

	wallet := testWallet(walletID)
	wallet.FiatBalance = 1000
	d.ledger.EXPECT().
		Deposit(gomock.Any(), walletID, 1000.0).
		Return(wallet, &domain.Transaction{
			ID:         uuid.New(),
			WalletID:   walletID,
			Kind:       domain.TransactionDeposit,
			FiatAmount: 1000,
			TxnHash:    "hash1",
			CreatedAt:  time.Now().UTC(),
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+walletID.String()+"/deposit",
		gin.H{"amount": 1000}, authHeaders())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"deposit"`)
}

func TestDeposit_RequiresAuth(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+uuid.NewString()+"/deposit",
		gin.H{"amount": 1000}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeposit_ForeignWalletForbidden(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.tokenSvc.EXPECT().Validate("session-token").Return(uuid.New(), nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+uuid.NewString()+"/deposit",
		gin.H{"amount": 1000}, authHeaders())

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)
	d.ledger.EXPECT().
		Withdraw(gomock.Any(), walletID, 1500.0).
		Return(nil, nil, apperror.ErrInsufficientFunds())

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+walletID.String()+"/withdraw",
		gin.H{"amount": 1500}, authHeaders())

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "LED_002")
}

func TestWithdraw_NegativeAmountRejectedByBinding(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+walletID.String()+"/withdraw",
		gin.H{"amount": -5}, authHeaders())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrade_Buy(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)

	wallet := testWallet(walletID)
	wallet.FiatBalance = 500
	wallet.Holdings = map[string]float64{"BTC": 0.01}
	d.ledger.EXPECT().
		Trade(gomock.Any(), ports.TradeRequest{
			WalletID:   walletID,
			Direction:  domain.TradeBuy,
			Symbol:     "BTC",
			FiatAmount: 500,
		}).
		Return(&ports.TradeResult{
			Wallet: wallet,
			Transaction: &domain.Transaction{
				ID:         uuid.New(),
				WalletID:   walletID,
				Kind:       domain.TransactionTrade,
				FiatAmount: 500,
				Crypto:     &domain.CryptoLeg{Symbol: "BTC", Quantity: 0.01},
				TxnHash:    "hash2",
				CreatedAt:  time.Now().UTC(),
			},
			Direction:  domain.TradeBuy,
			Symbol:     "BTC",
			Quantity:   0.01,
			Price:      50000,
			FiatAmount: 500,
			Fee:        2.5,
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+walletID.String()+"/trade",
		gin.H{"direction": "buy", "symbol": "BTC", "amount": 500}, authHeaders())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":0.01`)
	assert.Contains(t, w.Body.String(), `"fee":2.5`)
}

func TestTrade_InvalidDirectionRejectedByBinding(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/wallets/"+walletID.String()+"/trade",
		gin.H{"direction": "short", "symbol": "BTC", "amount": 500}, authHeaders())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactions(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)
	d.ledger.EXPECT().
		ListTransactions(gomock.Any(), walletID).
		Return([]domain.Transaction{
			{ID: uuid.New(), WalletID: walletID, Kind: domain.TransactionTrade, FiatAmount: 500, CreatedAt: time.Now().UTC()},
			{ID: uuid.New(), WalletID: walletID, Kind: domain.TransactionDeposit, FiatAmount: 1000, CreatedAt: time.Now().UTC()},
		}, nil)

	w := doJSON(d.router, http.MethodGet, "/api/v1/wallets/"+walletID.String()+"/transactions", nil, authHeaders())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
}

func TestGetWallet(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)
	d.ledger.EXPECT().GetWallet(gomock.Any(), walletID).Return(testWallet(walletID), nil)

	w := doJSON(d.router, http.MethodGet, "/api/v1/wallets/"+walletID.String(), nil, authHeaders())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"alice"`)
}

func TestGetPortfolio(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	walletID := uuid.New()
	d.tokenSvc.EXPECT().Validate("session-token").Return(walletID, nil)

	wallet := testWallet(walletID)
	wallet.Holdings = map[string]float64{"BTC": 0.01}
	d.portfolioSvc.EXPECT().
		GetPortfolio(gomock.Any(), walletID).
		Return(&ports.Portfolio{
			Wallet: wallet,
			Positions: []ports.Position{
				{Symbol: "BTC", Name: "Bitcoin", Quantity: 0.01, Price: 50000, Value: 500, Change24h: 1.2},
			},
			HoldingsValue: 500,
			TotalValue:    1500,
		}, nil)

	w := doJSON(d.router, http.MethodGet, "/api/v1/wallets/"+walletID.String()+"/portfolio", nil, authHeaders())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_value":1500`)
}

// ==================== Market Tests ====================

func TestMarketPrices(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	now := time.Now().UTC()
	quotes := make(map[string]domain.Quote)
	for _, asset := range domain.SupportedAssets {
		quotes[asset.Symbol] = domain.Quote{Price: 100, Change24h: 1, FetchedAt: now}
	}
	d.oracle.EXPECT().Quotes(gomock.Any()).Return(quotes, nil)

	w := doJSON(d.router, http.MethodGet, "/api/v1/market/prices", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, len(domain.SupportedAssets))
}

func TestMarketPrices_Unavailable(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.oracle.EXPECT().Quotes(gomock.Any()).
		Return(nil, apperror.ErrUpstreamUnavailable(context.DeadlineExceeded))

	w := doJSON(d.router, http.MethodGet, "/api/v1/market/prices", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "MKT_003")
}

// ==================== Health Tests ====================

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis", err: context.DeadlineExceeded},
	))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
