package domain

import "errors"

// Authorization errors
var (
	// ErrUnauthorized is returned when the caller lacks the required role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotOwner is returned when the caller does not own the token it is acting on
	ErrNotOwner = errors.New("you must own the token to auction it")

	// ErrNotAuthorized is returned when the caller is neither the beneficiary nor the platform owner
	ErrNotAuthorized = errors.New("not authorized to update campaign")
)

// State-mismatch errors
var (
	// ErrAuctionNotOpen is returned when bidding on a listing that is not open or has ended
	ErrAuctionNotOpen = errors.New("auction has ended")

	// ErrAlreadyCompleted is returned when completing a listing that is already done
	ErrAlreadyCompleted = errors.New("auction already completed")

	// ErrAuctionStillOpen is returned when settling or withdrawing before the listing's end time
	ErrAuctionStillOpen = errors.New("auction is still open")

	// ErrCampaignNotActive is returned when donating to a deactivated campaign
	ErrCampaignNotActive = errors.New("campaign is not active")
)

// Value-constraint errors
var (
	// ErrBidTooLow is returned when the caller's cumulative escrow plus the new
	// amount does not reach the listing's current price
	ErrBidTooLow = errors.New("cannot bid below the latest bidding price")

	// ErrSellerCannotBid is returned when a seller bids on its own listing
	ErrSellerCannotBid = errors.New("cannot bid on what you own")

	// ErrHighestBidderCannotWithdraw is returned when the current highest bidder
	// attempts to withdraw its escrowed bid
	ErrHighestBidderCannotWithdraw = errors.New("highest bidder cannot withdraw bid")

	// ErrNoBidsToWithdraw is returned when the caller's bid ledger entry is zero
	ErrNoBidsToWithdraw = errors.New("no bids to withdraw")

	// ErrThresholdNotMet is returned when a milestone claim does not meet the threshold
	ErrThresholdNotMet = errors.New("donation threshold not met")

	// ErrAlreadyClaimed is returned when a milestone was already claimed in that scope
	ErrAlreadyClaimed = errors.New("milestone already claimed")

	// ErrInsufficientFunds is returned when a debit would take an account below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for unparseable or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAddress is returned for malformed addresses
	ErrInvalidAddress = errors.New("invalid address")
)

// Not-found errors
var (
	// ErrTokenNotFound is returned for unminted token ids
	ErrTokenNotFound = errors.New("token not found")

	// ErrListingNotFound is returned for unknown listing ids
	ErrListingNotFound = errors.New("listing not found")

	// ErrCampaignNotFound is returned for unknown campaign ids
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrMilestoneNotFound is returned for out-of-range milestone indices
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrAccountNotFound is returned for unknown account addresses
	ErrAccountNotFound = errors.New("account not found")
)

// Administrative errors
var (
	// ErrPaused is returned when a paused-gated operation is called while the
	// platform is halted. Settlement and withdrawal are never gated so funds
	// cannot be frozen.
	ErrPaused = errors.New("contract is paused")
)
