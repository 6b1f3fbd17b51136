package dto

import (
	"time"

	"github.com/donat3/ledger-core/internal/store/schema"
)

// CreateListingRequest opens an auction. Duration is in seconds.
type CreateListingRequest struct {
	TokenID         uint64 `json:"token_id" binding:"required"`
	Price           string `json:"price" binding:"required"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required,gt=0"`
}

// PlaceBidRequest tops up the caller's cumulative escrow for a listing
type PlaceBidRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ListingResponse represents an auction listing. Price is the minimum next
// bid, raised after every accepted bid; NetPrice is the original floor.
type ListingResponse struct {
	ID            uint64               `json:"id"`
	Seller        string               `json:"seller"`
	TokenID       uint64               `json:"token_id"`
	Price         string               `json:"price"`
	NetPrice      string               `json:"net_price"`
	HighestBidder *string              `json:"highest_bidder,omitempty"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Status        schema.ListingStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ListingListResponse represents a paginated list of listings
type ListingListResponse struct {
	Listings []ListingResponse `json:"items"`
	Offset   *uint64           `json:"offset,omitempty"`
	Total    uint64            `json:"total"`
}

// BidResponse represents one bidder's cumulative escrow entry for a listing
type BidResponse struct {
	ListingID uint64    `json:"listing_id"`
	Bidder    string    `json:"bidder"`
	Amount    string    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListingBidsResponse represents all escrow entries for a listing
type ListingBidsResponse struct {
	ListingID     uint64        `json:"listing_id"`
	HighestBidder *string       `json:"highest_bidder,omitempty"`
	Bids          []BidResponse `json:"bids"`
}

// SettlementResponse reports the outcome of completing an auction
type SettlementResponse struct {
	Listing ListingResponse `json:"listing"`
	Winner  string          `json:"winner"`
	Amount  string          `json:"amount"`
}

// WithdrawalResponse reports a refunded escrow amount
type WithdrawalResponse struct {
	ListingID uint64 `json:"listing_id"`
	Bidder    string `json:"bidder"`
	Amount    string `json:"amount"`
}

// MapListingToDTO maps a schema.Listing to ListingResponse
func MapListingToDTO(listing *schema.Listing) *ListingResponse {
	return &ListingResponse{
		ID:            listing.ID,
		Seller:        listing.Seller,
		TokenID:       listing.TokenID,
		Price:         listing.Price,
		NetPrice:      listing.NetPrice,
		HighestBidder: listing.HighestBidder,
		StartTime:     listing.StartTime,
		EndTime:       listing.EndTime,
		Status:        listing.Status,
		CreatedAt:     listing.CreatedAt,
		UpdatedAt:     listing.UpdatedAt,
	}
}

// MapBidToDTO maps a schema.Bid to BidResponse
func MapBidToDTO(bid *schema.Bid) *BidResponse {
	return &BidResponse{
		ListingID: bid.ListingID,
		Bidder:    bid.Bidder,
		Amount:    bid.Amount,
		UpdatedAt: bid.UpdatedAt,
	}
}
