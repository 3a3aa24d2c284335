package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet represents one user's custodial account: a fiat balance plus
// crypto holdings keyed by asset symbol.
type Wallet struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	PasswordDigest    string             `json:"-"` // Argon2id digest, never expose
	RecoverySecretEnc string             `json:"-"` // AES-256-GCM encrypted recovery phrase
	FiatBalance       float64            `json:"fiat_balance"`
	Holdings          map[string]float64 `json:"holdings"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Holding returns the quantity held for a symbol, zero if absent.
func (w *Wallet) Holding(symbol string) float64 {
	return w.Holdings[symbol]
}

// CopyHoldings returns a mutable copy of the holdings map. Ledger operations
// work on the copy so a failed operation never leaves the wallet half-updated.
func (w *Wallet) CopyHoldings() map[string]float64 {
	out := make(map[string]float64, len(w.Holdings))
	for sym, qty := range w.Holdings {
		out[sym] = qty
	}
	return out
}
