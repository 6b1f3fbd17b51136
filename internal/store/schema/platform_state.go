package schema

import (
	"time"
)

// PlatformState represents the platform_state table - a single row holding the
// global switches and aggregates. Every transaction that reads Paused or the
// increment setting locks this row first, which also serializes the writers.
type PlatformState struct {
	// ID is always 1
	ID uint64 `gorm:"column:id;primaryKey"`
	// Paused gates mint, auction creation and bidding
	Paused bool `gorm:"column:paused;not null;default:false"`
	// MinAuctionIncrementBps is the minimum bid raise in basis points
	MinAuctionIncrementBps uint32 `gorm:"column:min_auction_increment_bps;not null"`
	// TotalDonations is the platform-wide donation sum
	TotalDonations string `gorm:"column:total_donations;not null;default:0;type:numeric(78,0)"`
	// TotalDonorCount counts distinct donors platform-wide
	TotalDonorCount uint64 `gorm:"column:total_donor_count;not null;default:0"`
	// UpdatedAt is the timestamp of the last change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PlatformState model
func (PlatformState) TableName() string {
	return "platform_state"
}
