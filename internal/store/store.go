package store

import (
	"context"
	"time"

	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/store/schema"
)

// Store defines the interface for database operations. Every mutating method
// is a single transaction: all precondition checks, state changes and the
// ledger-event journal entry commit or roll back together. The journaled
// event is returned for post-commit publishing.
type Store interface {
	// MintToken mints a reward token to a recipient
	MintToken(ctx context.Context, input MintTokenInput) (*MintTokenResult, error)
	// GetTokenByID retrieves a reward token by id
	GetTokenByID(ctx context.Context, tokenID uint64) (*schema.RewardToken, error)
	// GetTokensByOwner retrieves the tokens owned by an address
	GetTokensByOwner(ctx context.Context, owner string, limit int, offset uint64) ([]schema.RewardToken, uint64, error)

	// CreditAccount credits an account balance, creating the account on first use
	CreditAccount(ctx context.Context, input CreditAccountInput) (*CreditAccountResult, error)
	// GetAccount retrieves an account by address
	GetAccount(ctx context.Context, address string) (*schema.Account, error)

	// GetPlatformState retrieves the singleton platform state row
	GetPlatformState(ctx context.Context) (*schema.PlatformState, error)
	// InitPlatformState inserts the singleton state row when missing
	InitPlatformState(ctx context.Context, minAuctionIncrementBps uint32) error
	// SetPaused toggles the pause switch
	SetPaused(ctx context.Context, paused bool) error
	// UpdateMinAuctionIncrement updates the minimum bid raise in basis points
	UpdateMinAuctionIncrement(ctx context.Context, bps uint32) error

	// CreateMilestone appends a milestone definition
	CreateMilestone(ctx context.Context, input MilestoneInput) (*schema.Milestone, error)
	// UpdateMilestone replaces an existing milestone definition
	UpdateMilestone(ctx context.Context, index uint32, input MilestoneInput) error
	// GetMilestones retrieves all milestone definitions ordered by index
	GetMilestones(ctx context.Context) ([]schema.Milestone, error)
	// SeedMilestones inserts the initial definitions when the table is empty
	SeedMilestones(ctx context.Context, inputs []MilestoneInput) error

	// CreateListing opens an auction and moves the token into escrow
	CreateListing(ctx context.Context, input CreateListingInput) (*CreateListingResult, error)
	// PlaceBid tops up the caller's cumulative escrow for a listing
	PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error)
	// CompleteAuction settles an ended listing
	CompleteAuction(ctx context.Context, input CompleteAuctionInput) (*CompleteAuctionResult, error)
	// WithdrawBid refunds a losing bidder's escrow after the listing ends
	WithdrawBid(ctx context.Context, input WithdrawBidInput) (*WithdrawBidResult, error)
	// GetListingByID retrieves a listing by id
	GetListingByID(ctx context.Context, listingID uint64) (*schema.Listing, error)
	// GetListingsByFilter retrieves listings filtered by status and seller
	GetListingsByFilter(ctx context.Context, filter ListingFilter) ([]schema.Listing, uint64, error)
	// GetBid retrieves one bidder's cumulative ledger entry for a listing
	GetBid(ctx context.Context, listingID uint64, bidder string) (*schema.Bid, error)
	// GetListingBids retrieves all bid ledger entries for a listing
	GetListingBids(ctx context.Context, listingID uint64) ([]schema.Bid, error)

	// CreateCampaign creates a donation campaign
	CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CreateCampaignResult, error)
	// UpdateCampaignStatus toggles a campaign's active flag
	UpdateCampaignStatus(ctx context.Context, input UpdateCampaignStatusInput) (*UpdateCampaignStatusResult, error)
	// Donate records a donation and moves funds donor -> beneficiary
	Donate(ctx context.Context, input DonateInput) (*DonateResult, error)
	// ClaimMilestone mints a reward token for a met milestone threshold
	ClaimMilestone(ctx context.Context, input ClaimMilestoneInput) (*ClaimMilestoneResult, error)
	// GetCampaignByID retrieves a campaign by id
	GetCampaignByID(ctx context.Context, campaignID uint64) (*schema.Campaign, error)
	// GetCampaignsByFilter retrieves campaigns, optionally only active ones
	GetCampaignsByFilter(ctx context.Context, filter CampaignFilter) ([]schema.Campaign, uint64, error)
	// GetCampaignDonations retrieves the donation rows for a campaign
	GetCampaignDonations(ctx context.Context, campaignID uint64, limit int, offset uint64) ([]schema.Donation, uint64, error)
	// GetCampaignDonorTotal retrieves one donor's cumulative total for a campaign
	GetCampaignDonorTotal(ctx context.Context, campaignID uint64, donor string) (*schema.CampaignDonorTotal, error)
	// GetDonorSummary retrieves a donor's global total and claim records
	GetDonorSummary(ctx context.Context, donor string) (*DonorSummary, error)
	// GetCampaignMilestoneClaims retrieves a donor's claims within a campaign
	GetCampaignMilestoneClaims(ctx context.Context, campaignID uint64, donor string) ([]schema.CampaignMilestoneClaim, error)
	// GetPlatformStats retrieves the platform-wide aggregates
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

// MintTokenInput carries a mint request. Caller must be the platform owner;
// the executor enforces that before reaching the store.
type MintTokenInput struct {
	To       string
	TokenURI string
}

// MintTokenResult carries the minted token and the journaled event
type MintTokenResult struct {
	Token *schema.RewardToken
	Event *domain.LedgerEvent
}

// CreditAccountInput funds an account
type CreditAccountInput struct {
	Address string
	Amount  domain.Amount
}

// CreditAccountResult carries the updated account and the journaled event
type CreditAccountResult struct {
	Account *schema.Account
	Event   *domain.LedgerEvent
}

// MilestoneInput defines or redefines a milestone
type MilestoneInput struct {
	Index     uint32
	Threshold domain.Amount
	RewardURI string
}

// CreateListingInput opens an auction
type CreateListingInput struct {
	Seller   string
	TokenID  uint64
	Price    domain.Amount
	Duration time.Duration
}

// CreateListingResult carries the created listing and the journaled event
type CreateListingResult struct {
	Listing *schema.Listing
	Event   *domain.LedgerEvent
}

// PlaceBidInput tops up a bidder's escrow
type PlaceBidInput struct {
	ListingID uint64
	Bidder    string
	Amount    domain.Amount
}

// PlaceBidResult carries the updated listing, the bidder's cumulative entry
// and the journaled event
type PlaceBidResult struct {
	Listing *schema.Listing
	Bid     *schema.Bid
	Event   *domain.LedgerEvent
}

// CompleteAuctionInput settles a listing; Caller must be the seller or the
// highest bidder
type CompleteAuctionInput struct {
	ListingID uint64
	Caller    string
}

// CompleteAuctionResult carries the settled listing and the journaled event
type CompleteAuctionResult struct {
	Listing *schema.Listing
	Event   *domain.LedgerEvent
}

// WithdrawBidInput refunds a losing bidder
type WithdrawBidInput struct {
	ListingID uint64
	Bidder    string
}

// WithdrawBidResult carries the refunded amount and the journaled event
type WithdrawBidResult struct {
	Amount domain.Amount
	Event  *domain.LedgerEvent
}

// ListingFilter filters listing queries
type ListingFilter struct {
	Status schema.ListingStatus
	Seller string
	Limit  int
	Offset uint64
}

// CreateCampaignInput creates a campaign
type CreateCampaignInput struct {
	Title       string
	Description string
	Beneficiary string
}

// CreateCampaignResult carries the created campaign and the journaled event
type CreateCampaignResult struct {
	Campaign *schema.Campaign
	Event    *domain.LedgerEvent
}

// UpdateCampaignStatusInput toggles a campaign's active flag; Caller must be
// the beneficiary or the platform owner (the executor passes IsOwner)
type UpdateCampaignStatusInput struct {
	CampaignID uint64
	Caller     string
	IsOwner    bool
	Active     bool
}

// UpdateCampaignStatusResult carries the updated campaign and the journaled event
type UpdateCampaignStatusResult struct {
	Campaign *schema.Campaign
	Event    *domain.LedgerEvent
}

// DonateInput records a donation
type DonateInput struct {
	CampaignID uint64
	Donor      string
	Amount     domain.Amount
	Message    string
}

// DonateResult carries the updated campaign, the donor's new cumulative
// totals and the journaled event
type DonateResult struct {
	Campaign      *schema.Campaign
	CampaignTotal domain.Amount
	GlobalTotal   domain.Amount
	Event         *domain.LedgerEvent
}

// ClaimMilestoneInput claims a milestone reward. CampaignID is ignored for
// the global scope.
type ClaimMilestoneInput struct {
	Scope          domain.MilestoneScope
	CampaignID     uint64
	Donor          string
	MilestoneIndex uint32
}

// ClaimMilestoneResult carries the minted reward token and the journaled event
type ClaimMilestoneResult struct {
	Token *schema.RewardToken
	Event *domain.LedgerEvent
}

// CampaignFilter filters campaign queries
type CampaignFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     uint64
}

// DonorSummary aggregates a donor's global standing
type DonorSummary struct {
	Donor        string
	GlobalTotal  domain.Amount
	GlobalClaims []schema.GlobalMilestoneClaim
}

// PlatformStats carries the platform-wide aggregates
type PlatformStats struct {
	TotalDonations  domain.Amount
	TotalDonorCount uint64
	CampaignCount   uint64
	MilestoneCount  uint64
	Paused          bool
}
