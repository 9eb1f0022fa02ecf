// Package points implements the XLM-to-STAR mint ledger.
package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/events"
	"github.com/star-labs/star-platform/internal/app/metrics"
	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/internal/app/validation"
	"github.com/star-labs/star-platform/internal/config"
	"github.com/star-labs/star-platform/pkg/logger"
)

// TxVerifier checks a submitted Stellar transaction hash before points are
// credited. A nil verifier skips the check (simulated minting).
type TxVerifier interface {
	VerifyPayment(ctx context.Context, txHash string) error
}

// Transaction summarises a completed mint.
type Transaction struct {
	XLMAmount        float64 `json:"xlmAmount"`
	StarPointsMinted float64 `json:"starPointsMinted"`
	ReferrerReward   float64 `json:"referrerReward"`
	ReferrerWallet   *string `json:"referrerWallet"`
}

// MintResult is the mint response payload.
type MintResult struct {
	User        user.User   `json:"user"`
	Transaction Transaction `json:"transaction"`
}

// Service mints STAR points from XLM at a fixed exchange rate.
type Service struct {
	store    storage.UserStore
	eco      config.Economics
	verifier TxVerifier
	events   events.Publisher
	log      *logger.Logger
}

// New creates the service. Zero economics fall back to the defaults.
func New(store storage.UserStore, eco config.Economics, log *logger.Logger) *Service {
	if eco == (config.Economics{}) {
		eco = config.DefaultEconomics()
	}
	if log == nil {
		log = logger.NewDefault("points")
	}
	return &Service{store: store, eco: eco, log: log}
}

// AttachVerifier enables on-chain verification of mint transactions.
func (s *Service) AttachVerifier(v TxVerifier) { s.verifier = v }

// AttachPublisher enables event publishing.
func (s *Service) AttachPublisher(p events.Publisher) { s.events = p }

// Mint credits xlmAmount*rate points to the wallet's balance. A registered
// referrer earns a bonus proportional to the minted amount, not the caller's
// new total.
func (s *Service) Mint(ctx context.Context, walletAddress string, xlmAmount float64, txHash string) (MintResult, error) {
	verr := &validation.Error{}
	if xlmAmount <= 0 {
		verr.Add("xlmAmount", "must be positive")
	} else if xlmAmount > s.eco.MaxMintXLM {
		verr.Add("xlmAmount", "cannot exceed %.0f", s.eco.MaxMintXLM)
	}
	if err := verr.Err(); err != nil {
		return MintResult{}, err
	}

	u, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		return MintResult{}, err
	}

	if s.verifier != nil && txHash != "" {
		if err := s.verifier.VerifyPayment(ctx, txHash); err != nil {
			return MintResult{}, validation.Errorf("txHash", "transaction not confirmed: %v", err)
		}
	}

	minted := xlmAmount * s.eco.ExchangeRate
	updated, err := s.store.AdjustUserPoints(ctx, u.ID, minted)
	if err != nil {
		return MintResult{}, fmt.Errorf("credit minted points: %w", err)
	}

	tx := Transaction{XLMAmount: xlmAmount, StarPointsMinted: minted}

	if u.ReferredBy != nil {
		referrer, err := s.store.GetUserByReferralCode(ctx, *u.ReferredBy)
		switch {
		case err == nil:
			reward := minted * s.eco.ReferralBonus
			if _, err := s.store.AdjustUserPoints(ctx, referrer.ID, reward); err != nil {
				return MintResult{}, fmt.Errorf("credit referrer reward: %w", err)
			}
			wallet := referrer.WalletAddress
			tx.ReferrerReward = reward
			tx.ReferrerWallet = &wallet
			metrics.RecordReferralReward(reward)
		case errors.Is(err, storage.ErrNotFound):
			// Referrer gone; mint proceeds without a reward.
		default:
			return MintResult{}, fmt.Errorf("resolve referrer: %w", err)
		}
	}

	metrics.RecordMint(minted)
	if s.events != nil {
		s.events.MintRecorded(ctx, events.MintEvent{
			UserID:         updated.ID,
			WalletAddress:  updated.WalletAddress,
			XLMAmount:      xlmAmount,
			StarPoints:     minted,
			ReferrerReward: tx.ReferrerReward,
			TxHash:         txHash,
		})
	}

	s.log.WithField("wallet", walletAddress).Infof("minted %.2f points", minted)
	return MintResult{User: updated, Transaction: tx}, nil
}
