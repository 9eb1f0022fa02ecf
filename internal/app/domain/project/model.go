package project

import "time"

// Status values recognised by the platform. The column is free-text; only
// "active" carries meaning for participation eligibility.
const StatusActive = "active"

// Project is a creator-submitted token launch.
type Project struct {
	ID                      string    `json:"id"`
	CreatorID               string    `json:"creatorId"`
	Name                    string    `json:"name"`
	Symbol                  string    `json:"symbol"`
	Description             string    `json:"description"`
	LogoURL                 *string   `json:"logoUrl"`
	TotalSupply             string    `json:"totalSupply"`
	Decimals                int       `json:"decimals"`
	AirdropPercent          int       `json:"airdropPercent"`
	CreatorPercent          int       `json:"creatorPercent"`
	LiquidityPercent        int       `json:"liquidityPercent"`
	MinimumLiquidity        string    `json:"minimumLiquidity"`
	HasVesting              bool      `json:"hasVesting"`
	VestingPeriodDays       *int      `json:"vestingPeriodDays"`
	ParticipationPeriodDays int       `json:"participationPeriodDays"`
	TwitterURL              *string   `json:"twitterUrl"`
	TelegramURL             *string   `json:"telegramUrl"`
	WebsiteURL              *string   `json:"websiteUrl"`
	ContractAddress         string    `json:"contractAddress"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"createdAt"`
	EndsAt                  time.Time `json:"endsAt"`
}

// Active reports whether the project accepts participations at the given
// instant. EndsAt is derived once at creation and never recomputed.
func (p Project) Active(now time.Time) bool {
	return p.Status == StatusActive && p.EndsAt.After(now)
}
