package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet (WAL) ----

func ErrWalletNotFound() *AppError {
	return New("WAL_001", "Wallet not found", http.StatusNotFound)
}

func ErrNameTaken() *AppError {
	return New("WAL_002", "Wallet name already exists", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid wallet name or password", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired session token", http.StatusUnauthorized)
}

func ErrWalletMismatch() *AppError {
	return New("AUTH_003", "Session token does not grant access to this wallet", http.StatusForbidden)
}

// ---- Ledger (LED) ----

func ErrInvalidAmount() *AppError {
	return New("LED_001", "Amount must be a positive number", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("LED_002", "Insufficient fiat balance", http.StatusPaymentRequired)
}

func ErrInsufficientHolding(symbol string) *AppError {
	return New("LED_003", fmt.Sprintf("Insufficient %s balance", symbol), http.StatusPaymentRequired)
}

func ErrConflictRetryExhausted(err error) *AppError {
	return Wrap("LED_004", "Wallet update conflict, retries exhausted", http.StatusConflict, err)
}

// ---- Market Data (MKT) ----

func ErrUnsupportedAsset(symbol string) *AppError {
	return New("MKT_001", fmt.Sprintf("Unsupported cryptocurrency: %s", symbol), http.StatusBadRequest)
}

func ErrPriceUnavailable(err error) *AppError {
	return Wrap("MKT_002", "Unable to fetch current price", http.StatusServiceUnavailable, err)
}

func ErrUpstreamUnavailable(err error) *AppError {
	return Wrap("MKT_003", "Market data provider unavailable", http.StatusServiceUnavailable, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
