package schema

import (
	"time"
)

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	// ListingStatusOpen means the listing accepts bids until its end time
	ListingStatusOpen ListingStatus = "open"
	// ListingStatusDone is the terminal state; completeAuction sets it exactly once
	ListingStatusDone ListingStatus = "done"
)

// Listing represents the listings table - one English auction per row. While
// a listing is open the traded token is owned by the auction escrow identity.
type Listing struct {
	// ID is the listing id
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Seller is the address that created the listing and owned the token
	Seller string `gorm:"column:seller;not null;type:text;index"`
	// TokenID references the escrowed reward token
	TokenID uint64 `gorm:"column:token_id;not null;index"`
	// Price is the current minimum next bid; raised by the increment after
	// every accepted bid
	Price string `gorm:"column:price;not null;type:numeric(78,0)"`
	// NetPrice is the original floor price, kept for seller-accounting display
	NetPrice string `gorm:"column:net_price;not null;type:numeric(78,0)"`
	// HighestBidder is the address whose cumulative escrow last met the price
	// (nil until the first bid)
	HighestBidder *string `gorm:"column:highest_bidder;type:text"`
	// StartTime is when the listing opened
	StartTime time.Time `gorm:"column:start_time;not null;type:timestamptz"`
	// EndTime is when bidding closes; settlement and withdrawal require the
	// clock to have passed it
	EndTime time.Time `gorm:"column:end_time;not null;type:timestamptz"`
	// Status is open or done; done is terminal
	Status ListingStatus `gorm:"column:status;not null;type:text;index"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last state change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Token RewardToken `gorm:"foreignKey:TokenID"`
	Bids  []Bid       `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}
