// Package users implements wallet registration and referral lookups.
package users

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/internal/app/validation"
	"github.com/star-labs/star-platform/pkg/logger"
)

const (
	codePrefix   = "STAR"
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Config tunes registration behaviour.
type Config struct {
	// CodeAttempts bounds referral-code generation retries on collision.
	CodeAttempts int
	// RejectSelfReferral refuses a referral code resolving back to the
	// connecting wallet. Off by default.
	RejectSelfReferral bool
	// GenerateCode overrides code generation; used by tests to force
	// collisions.
	GenerateCode func() string
}

// Service registers users and answers referral queries.
type Service struct {
	store        storage.UserStore
	attempts     int
	rejectSelf   bool
	generateCode func() string
	log          *logger.Logger
}

// New creates the service. A zero Config gets the default retry budget.
func New(store storage.UserStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = 10
	}
	gen := cfg.GenerateCode
	if gen == nil {
		gen = randomCode
	}
	return &Service{
		store:        store,
		attempts:     cfg.CodeAttempts,
		rejectSelf:   cfg.RejectSelfReferral,
		generateCode: gen,
		log:          log,
	}
}

func randomCode() string {
	var b strings.Builder
	b.WriteString(codePrefix)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// Connect returns the user registered for the wallet, creating one on first
// contact. An unknown referral code is silently ignored.
func (s *Service) Connect(ctx context.Context, walletAddress, referralCode string) (user.User, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return user.User{}, validation.Errorf("walletAddress", "must not be empty")
	}

	existing, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return user.User{}, fmt.Errorf("lookup user by wallet: %w", err)
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return user.User{}, err
	}

	var referredBy *string
	if referralCode != "" {
		referrer, err := s.store.GetUserByReferralCode(ctx, referralCode)
		switch {
		case err == nil:
			if s.rejectSelf && referrer.WalletAddress == walletAddress {
				return user.User{}, validation.Errorf("referralCode", "cannot refer yourself")
			}
			referredBy = &referralCode
		case errors.Is(err, storage.ErrNotFound):
			// Unknown codes are ignored, not rejected.
		default:
			return user.User{}, fmt.Errorf("resolve referral code: %w", err)
		}
	}

	created, err := s.store.CreateUser(ctx, user.User{
		WalletAddress: walletAddress,
		StarPoints:    0,
		ReferralCode:  code,
		ReferredBy:    referredBy,
	})
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("wallet", walletAddress).Info("user registered")
	return created, nil
}

// uniqueReferralCode retries generation against the store until an unused
// code appears or the retry budget is exhausted.
func (s *Service) uniqueReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.attempts; attempt++ {
		code := s.generateCode()
		_, err := s.store.GetUserByReferralCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after %d attempts", s.attempts)
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetByWallet returns a user by wallet address.
func (s *Service) GetByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	return s.store.GetUserByWallet(ctx, walletAddress)
}

// Referrals lists the users registered with the given user's referral code.
func (s *Service) Referrals(ctx context.Context, id string) ([]user.User, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListReferralsByUser(ctx, id)
}
