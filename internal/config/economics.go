package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Economics holds the tunable ledger parameters. The defaults reproduce the
// launch economics: 10 STAR per XLM, a 10,000 XLM mint cap, a 10% referrer
// bonus and a 50/50 participation split.
type Economics struct {
	// ExchangeRate is the number of STAR points minted per XLM.
	ExchangeRate float64 `yaml:"exchange_rate"`
	// MaxMintXLM caps a single mint request.
	MaxMintXLM float64 `yaml:"max_mint_xlm"`
	// ReferralBonus is the fraction of newly minted points credited to the
	// referrer, relative to the minted amount (not the new total).
	ReferralBonus float64 `yaml:"referral_bonus"`
	// BurnFraction is the share of spent participation points removed from
	// circulation; the remainder goes to the project creator.
	BurnFraction float64 `yaml:"burn_fraction"`
	// ReferralCodeAttempts bounds unique-code generation retries.
	ReferralCodeAttempts int `yaml:"referral_code_attempts"`
}

// DefaultEconomics returns the launch parameters.
func DefaultEconomics() Economics {
	return Economics{
		ExchangeRate:         10,
		MaxMintXLM:           10000,
		ReferralBonus:        0.1,
		BurnFraction:         0.5,
		ReferralCodeAttempts: 10,
	}
}

// LoadEconomicsFromPath reads and validates economics overrides from a YAML
// file. Omitted fields keep their defaults.
func LoadEconomicsFromPath(path string) (Economics, error) {
	eco := DefaultEconomics()

	data, err := os.ReadFile(path)
	if err != nil {
		return eco, fmt.Errorf("read economics config: %w", err)
	}
	if err := yaml.Unmarshal(data, &eco); err != nil {
		return eco, fmt.Errorf("parse economics config: %w", err)
	}

	if eco.ExchangeRate <= 0 {
		return eco, fmt.Errorf("exchange_rate must be positive")
	}
	if eco.MaxMintXLM <= 0 {
		return eco, fmt.Errorf("max_mint_xlm must be positive")
	}
	if eco.ReferralBonus < 0 || eco.ReferralBonus > 1 {
		return eco, fmt.Errorf("referral_bonus must be within [0,1]")
	}
	if eco.BurnFraction < 0 || eco.BurnFraction > 1 {
		return eco, fmt.Errorf("burn_fraction must be within [0,1]")
	}
	if eco.ReferralCodeAttempts <= 0 {
		return eco, fmt.Errorf("referral_code_attempts must be positive")
	}

	return eco, nil
}

// LoadEconomicsOrDefault loads overrides when a path is configured and falls
// back to the defaults otherwise.
func LoadEconomicsOrDefault(path string) Economics {
	if path == "" {
		return DefaultEconomics()
	}
	eco, err := LoadEconomicsFromPath(path)
	if err != nil {
		return DefaultEconomics()
	}
	return eco
}
