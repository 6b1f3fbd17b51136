package schema

import (
	"time"
)

// RewardToken represents the reward_tokens table - uniquely identified,
// exclusively owned assets used both as auctioned items and milestone badges.
// Ids are assigned by the sequence starting at 1 and are never reused; tokens
// are never destroyed.
type RewardToken struct {
	// ID is the token id
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// OwnerAddress is the current owner. While the token sits in auction
	// escrow this is the engine's custody identity, not a payout address.
	OwnerAddress string `gorm:"column:owner_address;not null;type:text;index"`
	// TokenURI is the opaque metadata pointer supplied at mint time
	TokenURI string `gorm:"column:token_uri;not null;type:text"`
	// CreatedAt is the mint timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last ownership change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the RewardToken model
func (RewardToken) TableName() string {
	return "reward_tokens"
}
