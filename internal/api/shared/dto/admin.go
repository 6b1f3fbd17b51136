package dto

import (
	"time"
)

// CreditAccountRequest funds an account. This is the owner-only stand-in for
// the deposit rail; it is how value enters the ledger.
type CreditAccountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// AccountResponse represents an account balance
type AccountResponse struct {
	Address   string    `json:"address"`
	Balance   string    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// UpdateIncrementRequest updates the minimum bid raise in basis points
type UpdateIncrementRequest struct {
	Bps uint32 `json:"bps" binding:"required,lte=10000"`
}

// MilestoneRequest defines or redefines a milestone
type MilestoneRequest struct {
	Index     uint32 `json:"index"`
	Threshold string `json:"threshold" binding:"required"`
	RewardURI string `json:"reward_uri" binding:"required"`
}
