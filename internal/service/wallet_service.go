package service

import (
	"context"
	"fmt"
	"time"

	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletService implements ports.WalletSessionService: wallet creation with
// a one-time recovery phrase, and login issuing session tokens.
type WalletService struct {
	walletRepo ports.WalletRepository
	vault      ports.IdentityVault
	tokens     ports.TokenService
	log        zerolog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	walletRepo ports.WalletRepository,
	vault ports.IdentityVault,
	tokens ports.TokenService,
	log zerolog.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		vault:      vault,
		tokens:     tokens,
		log:        log,
	}
}

// Create registers a new wallet. The returned recovery phrase is shown to
// the caller exactly once; only its encrypted form is stored.
func (s *WalletService) Create(ctx context.Context, name, password string) (*ports.CreateWalletResult, error) {
	existing, err := s.walletRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check wallet name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameTaken()
	}

	digest, err := s.vault.HashPassword(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	phrase, err := s.vault.GenerateRecoveryPhrase()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate recovery phrase: %w", err))
	}

	phraseEnc, err := s.vault.EncryptRecoveryPhrase(phrase, password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encrypt recovery phrase: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:                uuid.New(),
		Name:              name,
		PasswordDigest:    digest,
		RecoverySecretEnc: phraseEnc,
		FiatBalance:       0,
		Holdings:          make(map[string]float64),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("name", wallet.Name).
		Msg("wallet created")

	return &ports.CreateWalletResult{
		Wallet:         wallet,
		RecoveryPhrase: phrase,
	}, nil
}

// Login verifies the wallet password and issues a session token. The stored
// recovery secret is decrypted as a second proof of password possession; a
// digest match with a failed decrypt means vault corruption, not a login.
func (s *WalletService) Login(ctx context.Context, name, password string) (*ports.LoginResult, error) {
	wallet, err := s.walletRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.vault.VerifyPassword(password, wallet.PasswordDigest)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	if _, err := s.vault.DecryptRecoveryPhrase(wallet.RecoverySecretEnc, password); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decrypt recovery secret: %w", err))
	}

	token, expiry, err := s.tokens.Generate(wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Msg("wallet login")

	return &ports.LoginResult{
		Wallet: wallet,
		Token:  token,
		Expiry: expiry,
	}, nil
}
