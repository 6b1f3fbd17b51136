package schema

import (
	"time"
)

// Bid represents the bids table - the cumulative escrow ledger entry for one
// bidder on one listing. Repeat bids increase Amount; withdrawal or settlement
// payout zeroes it. Entries never go negative.
type Bid struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ListingID references the listing being bid on
	ListingID uint64 `gorm:"column:listing_id;not null;uniqueIndex:idx_bids_listing_bidder,priority:1"`
	// Bidder is the bidder's address
	Bidder string `gorm:"column:bidder;not null;type:text;uniqueIndex:idx_bids_listing_bidder,priority:2"`
	// Amount is the bidder's cumulative escrowed funds for this listing
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// CreatedAt is the timestamp of the first bid
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last top-up or payout
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Bid model
func (Bid) TableName() string {
	return "bids"
}
