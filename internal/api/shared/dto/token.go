package dto

import (
	"time"

	"github.com/donat3/ledger-core/internal/store/schema"
)

// MintTokenRequest mints a reward token
type MintTokenRequest struct {
	To       string `json:"to" binding:"required"`
	TokenURI string `json:"token_uri" binding:"required"`
}

// TokenResponse represents a reward token
type TokenResponse struct {
	ID        uint64    `json:"id"`
	Owner     string    `json:"owner"`
	TokenURI  string    `json:"token_uri"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenListResponse represents a paginated list of tokens
type TokenListResponse struct {
	Tokens []TokenResponse `json:"items"`
	Offset *uint64         `json:"offset,omitempty"`
	Total  uint64          `json:"total"`
}

// MapTokenToDTO maps a schema.RewardToken to TokenResponse
func MapTokenToDTO(token *schema.RewardToken) *TokenResponse {
	return &TokenResponse{
		ID:        token.ID,
		Owner:     token.OwnerAddress,
		TokenURI:  token.TokenURI,
		CreatedAt: token.CreatedAt,
		UpdatedAt: token.UpdatedAt,
	}
}
