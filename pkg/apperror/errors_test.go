package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorFormatting(t *testing.T) {
	e := New("WAL_001", "Wallet not found", http.StatusNotFound)
	assert.Equal(t, "[WAL_001] Wallet not found", e.Error())

	inner := errors.New("row missing")
	wrapped := Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, inner)
	assert.Equal(t, "[SYS_001] Internal server error: row missing", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	e := InternalError(inner)

	assert.ErrorIs(t, e, inner)
	assert.Equal(t, inner, e.Unwrap())
}

func TestAppError_ErrorsAs(t *testing.T) {
	var target *AppError
	err := fmt.Errorf("handler: %w", ErrInsufficientFunds())

	require.ErrorAs(t, err, &target)
	assert.Equal(t, "LED_002", target.Code)
	assert.Equal(t, http.StatusPaymentRequired, target.HTTPStatus)
}

func TestErrInsufficientHolding_NamesSymbol(t *testing.T) {
	e := ErrInsufficientHolding("BTC")
	assert.Equal(t, "LED_003", e.Code)
	assert.Contains(t, e.Message, "BTC")
}

func TestErrUnsupportedAsset_NamesSymbol(t *testing.T) {
	e := ErrUnsupportedAsset("XYZ")
	assert.Equal(t, "MKT_001", e.Code)
	assert.Contains(t, e.Message, "XYZ")
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)
}

func TestErrorCatalog_StatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrWalletNotFound(), "WAL_001", http.StatusNotFound},
		{ErrNameTaken(), "WAL_002", http.StatusConflict},
		{ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{ErrInvalidToken(), "AUTH_002", http.StatusUnauthorized},
		{ErrWalletMismatch(), "AUTH_003", http.StatusForbidden},
		{ErrInvalidAmount(), "LED_001", http.StatusBadRequest},
		{ErrConflictRetryExhausted(nil), "LED_004", http.StatusConflict},
		{ErrPriceUnavailable(nil), "MKT_002", http.StatusServiceUnavailable},
		{ErrUpstreamUnavailable(nil), "MKT_003", http.StatusServiceUnavailable},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.HTTPStatus)
	}
}
