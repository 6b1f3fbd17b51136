package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donat3/ledger-core/internal/api/shared/constants"
	"github.com/donat3/ledger-core/internal/api/shared/dto"
	apierrors "github.com/donat3/ledger-core/internal/api/shared/errors"
	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/events"
	"github.com/donat3/ledger-core/internal/store"
	"github.com/donat3/ledger-core/internal/store/schema"
)

// Executor is the interface for the API executor. It carries the business
// rules that sit above the store: address and amount validation, owner
// checks, error mapping, and post-commit event dispatch. The caller argument
// on mutating methods is the authenticated address; an empty caller means an
// API-key credential, which belongs to the platform's own services and acts
// with owner authority but no ledger address of its own.
type Executor interface {
	// MintToken mints a reward token (owner or service credential only)
	MintToken(ctx context.Context, caller string, req dto.MintTokenRequest) (*dto.TokenResponse, error)
	// GetToken retrieves a token by id
	GetToken(ctx context.Context, tokenID uint64) (*dto.TokenResponse, error)
	// ListTokens retrieves tokens owned by an address
	ListTokens(ctx context.Context, owner string, limit *int, offset *uint64) (*dto.TokenListResponse, error)

	// CreditAccount funds an account (owner or service credential only)
	CreditAccount(ctx context.Context, caller, address string, req dto.CreditAccountRequest) (*dto.AccountResponse, error)
	// GetAccount retrieves an account balance
	GetAccount(ctx context.Context, address string) (*dto.AccountResponse, error)

	// CreateListing opens an auction on a token the caller owns
	CreateListing(ctx context.Context, caller string, req dto.CreateListingRequest) (*dto.ListingResponse, error)
	// PlaceBid tops up the caller's cumulative escrow for a listing
	PlaceBid(ctx context.Context, caller string, listingID uint64, req dto.PlaceBidRequest) (*dto.ListingResponse, error)
	// CompleteAuction settles an ended listing
	CompleteAuction(ctx context.Context, caller string, listingID uint64) (*dto.SettlementResponse, error)
	// WithdrawBid refunds the caller's escrow after the listing ends
	WithdrawBid(ctx context.Context, caller string, listingID uint64) (*dto.WithdrawalResponse, error)
	// GetListing retrieves a listing by id
	GetListing(ctx context.Context, listingID uint64) (*dto.ListingResponse, error)
	// ListListings retrieves listings filtered by status and seller
	ListListings(ctx context.Context, status, seller string, limit *int, offset *uint64) (*dto.ListingListResponse, error)
	// GetListingBids retrieves all escrow entries for a listing
	GetListingBids(ctx context.Context, listingID uint64) (*dto.ListingBidsResponse, error)
	// GetBid retrieves one bidder's escrow entry for a listing
	GetBid(ctx context.Context, listingID uint64, bidder string) (*dto.BidResponse, error)

	// CreateCampaign creates a donation campaign
	CreateCampaign(ctx context.Context, caller string, req dto.CreateCampaignRequest) (*dto.CampaignResponse, error)
	// UpdateCampaignStatus toggles a campaign's active flag
	UpdateCampaignStatus(ctx context.Context, caller string, campaignID uint64, active bool) (*dto.CampaignResponse, error)
	// Donate records a donation by the caller
	Donate(ctx context.Context, caller string, campaignID uint64, req dto.DonateRequest) (*dto.DonateResultResponse, error)
	// ClaimCampaignMilestone claims a milestone on the campaign-scoped track
	ClaimCampaignMilestone(ctx context.Context, caller string, campaignID uint64, milestoneIndex uint32) (*dto.MilestoneClaimResponse, error)
	// ClaimGlobalMilestone claims a milestone on the global track
	ClaimGlobalMilestone(ctx context.Context, caller string, milestoneIndex uint32) (*dto.MilestoneClaimResponse, error)
	// GetCampaign retrieves a campaign by id
	GetCampaign(ctx context.Context, campaignID uint64) (*dto.CampaignResponse, error)
	// ListCampaigns retrieves campaigns, optionally only active ones
	ListCampaigns(ctx context.Context, activeOnly bool, limit *int, offset *uint64) (*dto.CampaignListResponse, error)
	// ListCampaignDonations retrieves the donation rows for a campaign
	ListCampaignDonations(ctx context.Context, campaignID uint64, limit *int, offset *uint64) (*dto.DonationListResponse, error)
	// GetCampaignDonor retrieves one donor's standing within a campaign
	GetCampaignDonor(ctx context.Context, campaignID uint64, donor string) (*dto.CampaignDonorResponse, error)
	// GetDonor retrieves a donor's global standing
	GetDonor(ctx context.Context, donor string) (*dto.DonorResponse, error)

	// ListMilestones retrieves the milestone definition list
	ListMilestones(ctx context.Context) ([]dto.MilestoneResponse, error)
	// CreateMilestone appends a milestone definition (owner only)
	CreateMilestone(ctx context.Context, caller string, req dto.MilestoneRequest) (*dto.MilestoneResponse, error)
	// UpdateMilestone replaces a milestone definition (owner only)
	UpdateMilestone(ctx context.Context, caller string, index uint32, req dto.MilestoneRequest) error
	// SetPaused toggles the pause switch (owner only)
	SetPaused(ctx context.Context, caller string, paused bool) error
	// UpdateMinAuctionIncrement updates the bid raise setting (owner only)
	UpdateMinAuctionIncrement(ctx context.Context, caller string, bps uint32) error
	// GetStats retrieves the platform-wide aggregates
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

type executor struct {
	store      store.Store
	dispatcher events.Dispatcher
	owner      string
}

// NewExecutor creates a new executor. The owner address is the platform
// owner from configuration, already normalized.
func NewExecutor(st store.Store, dispatcher events.Dispatcher, ownerAddress string) Executor {
	return &executor{
		store:      st,
		dispatcher: dispatcher,
		owner:      domain.NormalizeAddress(ownerAddress),
	}
}

// mapStoreError translates domain sentinel errors into API errors. Anything
// outside the taxonomy is an infrastructure failure.
func mapStoreError(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrCampaignNotFound),
		errors.Is(err, domain.ErrMilestoneNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		return apierrors.NewNotFoundError(err.Error())

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrPaused):
		return apierrors.NewForbiddenError(err.Error())

	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrAlreadyClaimed):
		return apierrors.NewConflictError(err.Error())

	case errors.Is(err, domain.ErrAuctionNotOpen),
		errors.Is(err, domain.ErrAuctionStillOpen),
		errors.Is(err, domain.ErrCampaignNotActive),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrSellerCannotBid),
		errors.Is(err, domain.ErrHighestBidderCannotWithdraw),
		errors.Is(err, domain.ErrNoBidsToWithdraw),
		errors.Is(err, domain.ErrThresholdNotMet),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAddress):
		return apierrors.NewBadRequestError(err.Error())

	default:
		return apierrors.NewDatabaseError(fmt.Sprintf("operation failed: %v", err))
	}
}

// requireOwner rejects callers that are neither the platform owner nor a
// service credential
func (e *executor) requireOwner(caller string) error {
	if caller == "" || caller == e.owner {
		return nil
	}
	return apierrors.NewForbiddenError("caller is not the platform owner")
}

// requireCaller rejects requests without a ledger address behind them
func requireCaller(caller string) error {
	if caller == "" {
		return apierrors.NewForbiddenError("operation requires an address-bound credential")
	}
	return nil
}

func parseAmount(s string) (domain.Amount, error) {
	amount, err := domain.ParseAmount(s)
	if err != nil {
		return domain.Amount{}, apierrors.NewValidationError(fmt.Sprintf("invalid amount %q", s))
	}
	return amount, nil
}

func normalizeAddress(address string) (string, error) {
	if !domain.IsValidAddress(address) {
		return "", apierrors.NewValidationError(fmt.Sprintf("invalid address %q", address))
	}
	return domain.NormalizeAddress(address), nil
}

func pageParams(limit *int, offset *uint64) (int, uint64) {
	l := constants.DEFAULT_LIMIT
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if l > constants.MAX_LIMIT {
		l = constants.MAX_LIMIT
	}
	o := constants.DEFAULT_OFFSET
	if offset != nil {
		o = *offset
	}
	return l, o
}

func nextOffset(offset uint64, count int, total uint64) *uint64 {
	if offset+uint64(count) >= total { //nolint:gosec,G115
		return nil
	}
	next := offset + uint64(count) //nolint:gosec,G115
	return &next
}

func (e *executor) MintToken(ctx context.Context, caller string, req dto.MintTokenRequest) (*dto.TokenResponse, error) {
	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	to, err := normalizeAddress(req.To)
	if err != nil {
		return nil, err
	}

	result, err := e.store.MintToken(ctx, store.MintTokenInput{
		To:       to,
		TokenURI: req.TokenURI,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return dto.MapTokenToDTO(result.Token), nil
}

func (e *executor) GetToken(ctx context.Context, tokenID uint64) (*dto.TokenResponse, error) {
	token, err := e.store.GetTokenByID(ctx, tokenID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return dto.MapTokenToDTO(token), nil
}

func (e *executor) ListTokens(ctx context.Context, owner string, limit *int, offset *uint64) (*dto.TokenListResponse, error) {
	ownerAddr, err := normalizeAddress(owner)
	if err != nil {
		return nil, err
	}
	l, o := pageParams(limit, offset)

	tokens, total, err := e.store.GetTokensByOwner(ctx, ownerAddr, l, o)
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.TokenResponse, len(tokens))
	for i := range tokens {
		items[i] = *dto.MapTokenToDTO(&tokens[i])
	}
	return &dto.TokenListResponse{
		Tokens: items,
		Offset: nextOffset(o, len(tokens), total),
		Total:  total,
	}, nil
}

func (e *executor) CreditAccount(ctx context.Context, caller, address string, req dto.CreditAccountRequest) (*dto.AccountResponse, error) {
	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	addr, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, apierrors.NewValidationError("amount must be positive")
	}

	result, err := e.store.CreditAccount(ctx, store.CreditAccountInput{
		Address: addr,
		Amount:  amount,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return &dto.AccountResponse{
		Address: result.Account.Address,
		Balance: result.Account.Balance,
	}, nil
}

func (e *executor) GetAccount(ctx context.Context, address string) (*dto.AccountResponse, error) {
	addr, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	account, err := e.store.GetAccount(ctx, addr)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &dto.AccountResponse{
		Address:   account.Address,
		Balance:   account.Balance,
		UpdatedAt: account.UpdatedAt,
	}, nil
}

func (e *executor) CreateListing(ctx context.Context, caller string, req dto.CreateListingRequest) (*dto.ListingResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		return nil, err
	}

	result, err := e.store.CreateListing(ctx, store.CreateListingInput{
		Seller:   caller,
		TokenID:  req.TokenID,
		Price:    price,
		Duration: time.Duration(req.DurationSeconds) * time.Second,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return dto.MapListingToDTO(result.Listing), nil
}

func (e *executor) PlaceBid(ctx context.Context, caller string, listingID uint64, req dto.PlaceBidRequest) (*dto.ListingResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := e.store.PlaceBid(ctx, store.PlaceBidInput{
		ListingID: listingID,
		Bidder:    caller,
		Amount:    amount,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return dto.MapListingToDTO(result.Listing), nil
}

func (e *executor) CompleteAuction(ctx context.Context, caller string, listingID uint64) (*dto.SettlementResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	result, err := e.store.CompleteAuction(ctx, store.CompleteAuctionInput{
		ListingID: listingID,
		Caller:    caller,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	payload := result.Event.Payload.(domain.AuctionCompletedEvent)
	return &dto.SettlementResponse{
		Listing: *dto.MapListingToDTO(result.Listing),
		Winner:  payload.Winner,
		Amount:  payload.Amount,
	}, nil
}

func (e *executor) WithdrawBid(ctx context.Context, caller string, listingID uint64) (*dto.WithdrawalResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	result, err := e.store.WithdrawBid(ctx, store.WithdrawBidInput{
		ListingID: listingID,
		Bidder:    caller,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return &dto.WithdrawalResponse{
		ListingID: listingID,
		Bidder:    caller,
		Amount:    result.Amount.String(),
	}, nil
}

func (e *executor) GetListing(ctx context.Context, listingID uint64) (*dto.ListingResponse, error) {
	listing, err := e.store.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return dto.MapListingToDTO(listing), nil
}

func (e *executor) ListListings(ctx context.Context, status, seller string, limit *int, offset *uint64) (*dto.ListingListResponse, error) {
	var listingStatus schema.ListingStatus
	switch status {
	case "":
	case string(schema.ListingStatusOpen), string(schema.ListingStatusDone):
		listingStatus = schema.ListingStatus(status)
	default:
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	var sellerAddr string
	if seller != "" {
		var err error
		if sellerAddr, err = normalizeAddress(seller); err != nil {
			return nil, err
		}
	}
	l, o := pageParams(limit, offset)

	listings, total, err := e.store.GetListingsByFilter(ctx, store.ListingFilter{
		Status: listingStatus,
		Seller: sellerAddr,
		Limit:  l,
		Offset: o,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		items[i] = *dto.MapListingToDTO(&listings[i])
	}
	return &dto.ListingListResponse{
		Listings: items,
		Offset:   nextOffset(o, len(listings), total),
		Total:    total,
	}, nil
}

func (e *executor) GetListingBids(ctx context.Context, listingID uint64) (*dto.ListingBidsResponse, error) {
	listing, err := e.store.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	bids, err := e.store.GetListingBids(ctx, listingID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.BidResponse, len(bids))
	for i := range bids {
		items[i] = *dto.MapBidToDTO(&bids[i])
	}
	return &dto.ListingBidsResponse{
		ListingID:     listingID,
		HighestBidder: listing.HighestBidder,
		Bids:          items,
	}, nil
}

func (e *executor) GetBid(ctx context.Context, listingID uint64, bidder string) (*dto.BidResponse, error) {
	bidderAddr, err := normalizeAddress(bidder)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetListingByID(ctx, listingID); err != nil {
		return nil, mapStoreError(err)
	}

	bid, err := e.store.GetBid(ctx, listingID, bidderAddr)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if bid == nil {
		// No entry is a zero cumulative bid, not an error
		return &dto.BidResponse{
			ListingID: listingID,
			Bidder:    bidderAddr,
			Amount:    "0",
		}, nil
	}
	return dto.MapBidToDTO(bid), nil
}

func (e *executor) CreateCampaign(ctx context.Context, caller string, req dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	beneficiary, err := normalizeAddress(req.Beneficiary)
	if err != nil {
		return nil, err
	}

	result, err := e.store.CreateCampaign(ctx, store.CreateCampaignInput{
		Title:       req.Title,
		Description: req.Description,
		Beneficiary: beneficiary,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return dto.MapCampaignToDTO(result.Campaign), nil
}

func (e *executor) UpdateCampaignStatus(ctx context.Context, caller string, campaignID uint64, active bool) (*dto.CampaignResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	result, err := e.store.UpdateCampaignStatus(ctx, store.UpdateCampaignStatusInput{
		CampaignID: campaignID,
		Caller:     caller,
		IsOwner:    caller == e.owner,
		Active:     active,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return dto.MapCampaignToDTO(result.Campaign), nil
}

func (e *executor) Donate(ctx context.Context, caller string, campaignID uint64, req dto.DonateRequest) (*dto.DonateResultResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := e.store.Donate(ctx, store.DonateInput{
		CampaignID: campaignID,
		Donor:      caller,
		Amount:     amount,
		Message:    req.Message,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return &dto.DonateResultResponse{
		Campaign:      *dto.MapCampaignToDTO(result.Campaign),
		CampaignTotal: result.CampaignTotal.String(),
		GlobalTotal:   result.GlobalTotal.String(),
	}, nil
}

func (e *executor) claimMilestone(ctx context.Context, caller string, input store.ClaimMilestoneInput) (*dto.MilestoneClaimResponse, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	input.Donor = caller

	result, err := e.store.ClaimMilestone(ctx, input)
	if err != nil {
		return nil, mapStoreError(err)
	}
	e.dispatcher.Dispatch(result.Event)

	return &dto.MilestoneClaimResponse{
		Scope:          string(input.Scope),
		CampaignID:     input.CampaignID,
		Donor:          caller,
		MilestoneIndex: input.MilestoneIndex,
		TokenID:        result.Token.ID,
		ClaimedAt:      result.Token.CreatedAt,
	}, nil
}

func (e *executor) ClaimCampaignMilestone(ctx context.Context, caller string, campaignID uint64, milestoneIndex uint32) (*dto.MilestoneClaimResponse, error) {
	return e.claimMilestone(ctx, caller, store.ClaimMilestoneInput{
		Scope:          domain.ScopeCampaign,
		CampaignID:     campaignID,
		MilestoneIndex: milestoneIndex,
	})
}

func (e *executor) ClaimGlobalMilestone(ctx context.Context, caller string, milestoneIndex uint32) (*dto.MilestoneClaimResponse, error) {
	return e.claimMilestone(ctx, caller, store.ClaimMilestoneInput{
		Scope:          domain.ScopeGlobal,
		MilestoneIndex: milestoneIndex,
	})
}

func (e *executor) GetCampaign(ctx context.Context, campaignID uint64) (*dto.CampaignResponse, error) {
	campaign, err := e.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return dto.MapCampaignToDTO(campaign), nil
}

func (e *executor) ListCampaigns(ctx context.Context, activeOnly bool, limit *int, offset *uint64) (*dto.CampaignListResponse, error) {
	l, o := pageParams(limit, offset)

	campaigns, total, err := e.store.GetCampaignsByFilter(ctx, store.CampaignFilter{
		ActiveOnly: activeOnly,
		Limit:      l,
		Offset:     o,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.CampaignResponse, len(campaigns))
	for i := range campaigns {
		items[i] = *dto.MapCampaignToDTO(&campaigns[i])
	}
	return &dto.CampaignListResponse{
		Campaigns: items,
		Offset:    nextOffset(o, len(campaigns), total),
		Total:     total,
	}, nil
}

func (e *executor) ListCampaignDonations(ctx context.Context, campaignID uint64, limit *int, offset *uint64) (*dto.DonationListResponse, error) {
	if _, err := e.store.GetCampaignByID(ctx, campaignID); err != nil {
		return nil, mapStoreError(err)
	}
	l, o := pageParams(limit, offset)

	donations, total, err := e.store.GetCampaignDonations(ctx, campaignID, l, o)
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.DonationResponse, len(donations))
	for i := range donations {
		items[i] = *dto.MapDonationToDTO(&donations[i])
	}
	return &dto.DonationListResponse{
		Donations: items,
		Offset:    nextOffset(o, len(donations), total),
		Total:     total,
	}, nil
}

func (e *executor) GetCampaignDonor(ctx context.Context, campaignID uint64, donor string) (*dto.CampaignDonorResponse, error) {
	donorAddr, err := normalizeAddress(donor)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetCampaignByID(ctx, campaignID); err != nil {
		return nil, mapStoreError(err)
	}

	total, err := e.store.GetCampaignDonorTotal(ctx, campaignID, donorAddr)
	if err != nil {
		return nil, mapStoreError(err)
	}
	claims, err := e.store.GetCampaignMilestoneClaims(ctx, campaignID, donorAddr)
	if err != nil {
		return nil, mapStoreError(err)
	}

	resp := &dto.CampaignDonorResponse{
		CampaignID: campaignID,
		Donor:      donorAddr,
		Total:      "0",
		Claims:     make([]dto.MilestoneClaimResponse, len(claims)),
	}
	if total != nil {
		resp.Total = total.Total
		resp.HasDonated = true
	}
	for i, claim := range claims {
		resp.Claims[i] = dto.MilestoneClaimResponse{
			Scope:          string(domain.ScopeCampaign),
			CampaignID:     campaignID,
			Donor:          donorAddr,
			MilestoneIndex: claim.MilestoneIndex,
			TokenID:        claim.TokenID,
			ClaimedAt:      claim.CreatedAt,
		}
	}
	return resp, nil
}

func (e *executor) GetDonor(ctx context.Context, donor string) (*dto.DonorResponse, error) {
	donorAddr, err := normalizeAddress(donor)
	if err != nil {
		return nil, err
	}

	summary, err := e.store.GetDonorSummary(ctx, donorAddr)
	if err != nil {
		return nil, mapStoreError(err)
	}

	resp := &dto.DonorResponse{
		Donor:  donorAddr,
		Total:  summary.GlobalTotal.String(),
		Claims: make([]dto.MilestoneClaimResponse, len(summary.GlobalClaims)),
	}
	for i, claim := range summary.GlobalClaims {
		resp.Claims[i] = dto.MilestoneClaimResponse{
			Scope:          string(domain.ScopeGlobal),
			Donor:          donorAddr,
			MilestoneIndex: claim.MilestoneIndex,
			TokenID:        claim.TokenID,
			ClaimedAt:      claim.CreatedAt,
		}
	}
	return resp, nil
}

func (e *executor) ListMilestones(ctx context.Context) ([]dto.MilestoneResponse, error) {
	milestones, err := e.store.GetMilestones(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}

	items := make([]dto.MilestoneResponse, len(milestones))
	for i := range milestones {
		items[i] = *dto.MapMilestoneToDTO(&milestones[i])
	}
	return items, nil
}

func (e *executor) CreateMilestone(ctx context.Context, caller string, req dto.MilestoneRequest) (*dto.MilestoneResponse, error) {
	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	threshold, err := parseAmount(req.Threshold)
	if err != nil {
		return nil, err
	}

	milestone, err := e.store.CreateMilestone(ctx, store.MilestoneInput{
		Index:     req.Index,
		Threshold: threshold,
		RewardURI: req.RewardURI,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return dto.MapMilestoneToDTO(milestone), nil
}

func (e *executor) UpdateMilestone(ctx context.Context, caller string, index uint32, req dto.MilestoneRequest) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	threshold, err := parseAmount(req.Threshold)
	if err != nil {
		return err
	}

	if err := e.store.UpdateMilestone(ctx, index, store.MilestoneInput{
		Index:     index,
		Threshold: threshold,
		RewardURI: req.RewardURI,
	}); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (e *executor) SetPaused(ctx context.Context, caller string, paused bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.store.SetPaused(ctx, paused); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (e *executor) UpdateMinAuctionIncrement(ctx context.Context, caller string, bps uint32) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.store.UpdateMinAuctionIncrement(ctx, bps); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (e *executor) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	stats, err := e.store.GetPlatformStats(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &dto.StatsResponse{
		TotalDonations:  stats.TotalDonations.String(),
		TotalDonorCount: stats.TotalDonorCount,
		CampaignCount:   stats.CampaignCount,
		MilestoneCount:  stats.MilestoneCount,
		Paused:          stats.Paused,
	}, nil
}
