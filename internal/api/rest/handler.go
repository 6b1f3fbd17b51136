package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/donat3/ledger-core/internal/api/middleware"
	"github.com/donat3/ledger-core/internal/api/shared/dto"
	"github.com/donat3/ledger-core/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// MintToken mints a reward token (owner or service credential)
	// POST /api/v1/tokens
	MintToken(c *gin.Context)

	// GetToken retrieves a token by id
	// GET /api/v1/tokens/:id
	GetToken(c *gin.Context)

	// ListTokens retrieves tokens by owner
	// GET /api/v1/tokens?owner=<address>&limit=<limit>&offset=<offset>
	ListTokens(c *gin.Context)

	// CreateListing opens an auction on a token the caller owns
	// POST /api/v1/auctions
	CreateListing(c *gin.Context)

	// PlaceBid tops up the caller's cumulative escrow for a listing
	// POST /api/v1/auctions/:id/bids
	PlaceBid(c *gin.Context)

	// CompleteAuction settles an ended listing
	// POST /api/v1/auctions/:id/complete
	CompleteAuction(c *gin.Context)

	// WithdrawBid refunds the caller's escrow after the listing ends
	// POST /api/v1/auctions/:id/withdrawals
	WithdrawBid(c *gin.Context)

	// GetListing retrieves a listing by id
	// GET /api/v1/auctions/:id
	GetListing(c *gin.Context)

	// ListListings retrieves listings with optional filters
	// GET /api/v1/auctions?status=<open|done>&seller=<address>&limit=<limit>&offset=<offset>
	ListListings(c *gin.Context)

	// GetListingBids retrieves all escrow entries for a listing
	// GET /api/v1/auctions/:id/bids
	GetListingBids(c *gin.Context)

	// GetBid retrieves one bidder's escrow entry for a listing
	// GET /api/v1/auctions/:id/bids/:address
	GetBid(c *gin.Context)

	// CreateCampaign creates a donation campaign
	// POST /api/v1/campaigns
	CreateCampaign(c *gin.Context)

	// UpdateCampaignStatus toggles a campaign's active flag
	// PATCH /api/v1/campaigns/:id/status
	UpdateCampaignStatus(c *gin.Context)

	// Donate records a donation by the caller
	// POST /api/v1/campaigns/:id/donations
	Donate(c *gin.Context)

	// ClaimCampaignMilestone claims a milestone on the campaign-scoped track
	// POST /api/v1/campaigns/:id/milestones/:index/claims
	ClaimCampaignMilestone(c *gin.Context)

	// ClaimGlobalMilestone claims a milestone on the global track
	// POST /api/v1/milestones/:index/claims
	ClaimGlobalMilestone(c *gin.Context)

	// GetCampaign retrieves a campaign by id
	// GET /api/v1/campaigns/:id
	GetCampaign(c *gin.Context)

	// ListCampaigns retrieves campaigns
	// GET /api/v1/campaigns?active=true&limit=<limit>&offset=<offset>
	ListCampaigns(c *gin.Context)

	// ListCampaignDonations retrieves the donation rows for a campaign
	// GET /api/v1/campaigns/:id/donations
	ListCampaignDonations(c *gin.Context)

	// GetCampaignDonor retrieves one donor's standing within a campaign
	// GET /api/v1/campaigns/:id/donors/:address
	GetCampaignDonor(c *gin.Context)

	// GetDonor retrieves a donor's global standing
	// GET /api/v1/donors/:address
	GetDonor(c *gin.Context)

	// ListMilestones retrieves the milestone definition list
	// GET /api/v1/milestones
	ListMilestones(c *gin.Context)

	// GetStats retrieves the platform-wide aggregates
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// GetAccount retrieves an account balance
	// GET /api/v1/accounts/:address
	GetAccount(c *gin.Context)

	// CreditAccount funds an account (owner only)
	// POST /api/v1/admin/accounts/:address/credits
	CreditAccount(c *gin.Context)

	// Pause halts mint, auction creation and bidding (owner only)
	// POST /api/v1/admin/pause
	Pause(c *gin.Context)

	// Unpause lifts the halt (owner only)
	// POST /api/v1/admin/unpause
	Unpause(c *gin.Context)

	// UpdateIncrement updates the minimum bid raise (owner only)
	// PUT /api/v1/admin/auction-increment
	UpdateIncrement(c *gin.Context)

	// CreateMilestone appends a milestone definition (owner only)
	// POST /api/v1/admin/milestones
	CreateMilestone(c *gin.Context)

	// UpdateMilestone replaces a milestone definition (owner only)
	// PUT /api/v1/admin/milestones/:index
	UpdateMilestone(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		respondValidationError(c, "invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// parseIndexParam parses a milestone index path parameter
func parseIndexParam(c *gin.Context) (uint32, bool) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		respondValidationError(c, "invalid index parameter")
		return 0, false
	}
	return uint32(index), true
}

// parsePagination parses optional limit/offset query parameters
func parsePagination(c *gin.Context) (*int, *uint64, bool) {
	var limit *int
	var offset *uint64

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondValidationError(c, "invalid limit parameter")
			return nil, nil, false
		}
		limit = &v
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondValidationError(c, "invalid offset parameter")
			return nil, nil, false
		}
		offset = &v
	}
	return limit, offset, true
}

func (h *handler) MintToken(c *gin.Context) {
	var req dto.MintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	token, err := h.executor.MintToken(c.Request.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

func (h *handler) GetToken(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	token, err := h.executor.GetToken(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *handler) ListTokens(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		respondValidationError(c, "owner parameter is required")
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	tokens, err := h.executor.ListTokens(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *handler) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	listing, err := h.executor.CreateListing(c.Request.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *handler) PlaceBid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	listing, err := h.executor.PlaceBid(c.Request.Context(), middleware.CallerAddress(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *handler) CompleteAuction(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	settlement, err := h.executor.CompleteAuction(c.Request.Context(), middleware.CallerAddress(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

func (h *handler) WithdrawBid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	withdrawal, err := h.executor.WithdrawBid(c.Request.Context(), middleware.CallerAddress(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}

func (h *handler) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.executor.GetListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *handler) ListListings(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	listings, err := h.executor.ListListings(c.Request.Context(), c.Query("status"), c.Query("seller"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *handler) GetListingBids(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bids, err := h.executor.GetListingBids(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

func (h *handler) GetBid(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bid, err := h.executor.GetBid(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

func (h *handler) CreateCampaign(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	campaign, err := h.executor.CreateCampaign(c.Request.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *handler) UpdateCampaignStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	campaign, err := h.executor.UpdateCampaignStatus(c.Request.Context(), middleware.CallerAddress(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *handler) Donate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.executor.Donate(c.Request.Context(), middleware.CallerAddress(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) ClaimCampaignMilestone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	index, ok := parseIndexParam(c)
	if !ok {
		return
	}

	claim, err := h.executor.ClaimCampaignMilestone(c.Request.Context(), middleware.CallerAddress(c), id, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func (h *handler) ClaimGlobalMilestone(c *gin.Context) {
	index, ok := parseIndexParam(c)
	if !ok {
		return
	}

	claim, err := h.executor.ClaimGlobalMilestone(c.Request.Context(), middleware.CallerAddress(c), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

func (h *handler) GetCampaign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	campaign, err := h.executor.GetCampaign(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *handler) ListCampaigns(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"

	campaigns, err := h.executor.ListCampaigns(c.Request.Context(), activeOnly, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *handler) ListCampaignDonations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	donations, err := h.executor.ListCampaignDonations(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donations)
}

func (h *handler) GetCampaignDonor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	donor, err := h.executor.GetCampaignDonor(c.Request.Context(), id, c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donor)
}

func (h *handler) GetDonor(c *gin.Context) {
	donor, err := h.executor.GetDonor(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, donor)
}

func (h *handler) ListMilestones(c *gin.Context) {
	milestones, err := h.executor.ListMilestones(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": milestones})
}

func (h *handler) GetStats(c *gin.Context) {
	stats, err := h.executor.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) GetAccount(c *gin.Context) {
	account, err := h.executor.GetAccount(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *handler) CreditAccount(c *gin.Context) {
	var req dto.CreditAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	account, err := h.executor.CreditAccount(c.Request.Context(), middleware.CallerAddress(c), c.Param("address"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *handler) Pause(c *gin.Context) {
	if err := h.executor.SetPaused(c.Request.Context(), middleware.CallerAddress(c), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *handler) Unpause(c *gin.Context) {
	if err := h.executor.SetPaused(c.Request.Context(), middleware.CallerAddress(c), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (h *handler) UpdateIncrement(c *gin.Context) {
	var req dto.UpdateIncrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.UpdateMinAuctionIncrement(c.Request.Context(), middleware.CallerAddress(c), req.Bps); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"min_auction_increment_bps": req.Bps})
}

func (h *handler) CreateMilestone(c *gin.Context) {
	var req dto.MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	milestone, err := h.executor.CreateMilestone(c.Request.Context(), middleware.CallerAddress(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

func (h *handler) UpdateMilestone(c *gin.Context) {
	index, ok := parseIndexParam(c)
	if !ok {
		return
	}
	var req dto.MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.UpdateMilestone(c.Request.Context(), middleware.CallerAddress(c), index, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index})
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
