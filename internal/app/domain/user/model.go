package user

import "time"

// User is a wallet-keyed platform account holding a STAR point balance.
type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	StarPoints    float64   `json:"starPoints"`
	ReferralCode  string    `json:"referralCode"`
	ReferredBy    *string   `json:"referredBy"`
	CreatedAt     time.Time `json:"createdAt"`
}
