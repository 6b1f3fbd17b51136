package domain

import (
	"time"
)

// EventType identifies a ledger event published for external consumers
// (indexers, overlays, notification services)
type EventType string

const (
	EventTypeMinted                EventType = "minted"
	EventTypeAuctionCreated        EventType = "auction_created"
	EventTypeBidCreated            EventType = "bid_created"
	EventTypeAuctionCompleted      EventType = "auction_completed"
	EventTypeWithdrawBid           EventType = "withdraw_bid"
	EventTypeCampaignCreated       EventType = "campaign_created"
	EventTypeCampaignStatusUpdated EventType = "campaign_status_updated"
	EventTypeDonationReceived      EventType = "donation_received"
	EventTypeMilestoneClaimed      EventType = "milestone_claimed"
	EventTypeAccountCredited       EventType = "account_credited"
)

// LedgerEvent is the envelope journaled with every successful operation and
// re-published to NATS after commit. The payload is one of the *Event structs
// below, JSON-encoded.
type LedgerEvent struct {
	ID        string      `json:"id"` // ULID, assigned at journaling time
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MintedEvent is emitted when a reward token is minted
type MintedEvent struct {
	To       string `json:"to"`
	TokenID  uint64 `json:"token_id"`
	TokenURI string `json:"token_uri"`
}

// AuctionCreatedEvent is emitted when a listing opens
type AuctionCreatedEvent struct {
	ListingID uint64    `json:"listing_id"`
	Seller    string    `json:"seller"`
	Price     string    `json:"price"`
	TokenID   uint64    `json:"token_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BidCreatedEvent is emitted on every accepted bid; Amount is the bidder's
// cumulative escrow after the bid
type BidCreatedEvent struct {
	ListingID uint64 `json:"listing_id"`
	Bidder    string `json:"bidder"`
	Amount    string `json:"amount"`
}

// AuctionCompletedEvent is emitted at settlement. With no bids the winner is
// the seller and the amount is zero.
type AuctionCompletedEvent struct {
	ListingID uint64 `json:"listing_id"`
	Seller    string `json:"seller"`
	Winner    string `json:"winner"`
	Amount    string `json:"amount"`
}

// WithdrawBidEvent is emitted when a non-winning bidder reclaims its escrow
type WithdrawBidEvent struct {
	ListingID uint64 `json:"listing_id"`
	Bidder    string `json:"bidder"`
	Amount    string `json:"amount"`
}

// CampaignCreatedEvent is emitted when a campaign is created
type CampaignCreatedEvent struct {
	CampaignID  uint64 `json:"campaign_id"`
	Title       string `json:"title"`
	Beneficiary string `json:"beneficiary"`
}

// CampaignStatusUpdatedEvent is emitted when a campaign is (de)activated
type CampaignStatusUpdatedEvent struct {
	CampaignID uint64 `json:"campaign_id"`
	Active     bool   `json:"active"`
}

// DonationReceivedEvent is emitted for every donation; the message is opaque
// and forwarded as-is
type DonationReceivedEvent struct {
	CampaignID uint64 `json:"campaign_id"`
	Donor      string `json:"donor"`
	Amount     string `json:"amount"`
	Message    string `json:"message"`
}

// MilestoneClaimedEvent is emitted when a milestone reward token is claimed.
// Scope is "campaign" or "global"; CampaignID is zero for the global track.
type MilestoneClaimedEvent struct {
	Scope          MilestoneScope `json:"scope"`
	CampaignID     uint64         `json:"campaign_id,omitempty"`
	Donor          string         `json:"donor"`
	MilestoneIndex uint32         `json:"milestone_index"`
	TokenID        uint64         `json:"token_id"`
}

// AccountCreditedEvent is emitted when the platform owner funds an account
type AccountCreditedEvent struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}
