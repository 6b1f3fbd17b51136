package dto

import (
	"time"

	"github.com/donat3/ledger-core/internal/store/schema"
)

// CreateCampaignRequest creates a donation campaign
type CreateCampaignRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Beneficiary string `json:"beneficiary" binding:"required"`
}

// UpdateCampaignStatusRequest toggles a campaign's active flag
type UpdateCampaignStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// DonateRequest records a donation. The message is opaque and forwarded on
// the emitted event.
type DonateRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Message string `json:"message"`
}

// CampaignResponse represents a donation campaign
type CampaignResponse struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Beneficiary string    `json:"beneficiary"`
	TotalRaised string    `json:"total_raised"`
	DonorCount  uint32    `json:"donor_count"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CampaignListResponse represents a paginated list of campaigns
type CampaignListResponse struct {
	Campaigns []CampaignResponse `json:"items"`
	Offset    *uint64            `json:"offset,omitempty"`
	Total     uint64             `json:"total"`
}

// DonationResponse represents a single donation
type DonationResponse struct {
	ID         uint64    `json:"id"`
	CampaignID uint64    `json:"campaign_id"`
	Donor      string    `json:"donor"`
	Amount     string    `json:"amount"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DonationListResponse represents a paginated list of donations
type DonationListResponse struct {
	Donations []DonationResponse `json:"items"`
	Offset    *uint64            `json:"offset,omitempty"`
	Total     uint64             `json:"total"`
}

// DonateResultResponse reports the donor's cumulative totals after a donation
type DonateResultResponse struct {
	Campaign      CampaignResponse `json:"campaign"`
	CampaignTotal string           `json:"campaign_total"`
	GlobalTotal   string           `json:"global_total"`
}

// MilestoneResponse represents a milestone definition
type MilestoneResponse struct {
	Index     uint32 `json:"index"`
	Threshold string `json:"threshold"`
	RewardURI string `json:"reward_uri"`
}

// MilestoneClaimResponse represents a claimed milestone reward
type MilestoneClaimResponse struct {
	Scope          string    `json:"scope"`
	CampaignID     uint64    `json:"campaign_id,omitempty"`
	Donor          string    `json:"donor"`
	MilestoneIndex uint32    `json:"milestone_index"`
	TokenID        uint64    `json:"token_id"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

// CampaignDonorResponse represents one donor's standing within a campaign
type CampaignDonorResponse struct {
	CampaignID uint64                   `json:"campaign_id"`
	Donor      string                   `json:"donor"`
	Total      string                   `json:"total"`
	HasDonated bool                     `json:"has_donated"`
	Claims     []MilestoneClaimResponse `json:"claims"`
}

// DonorResponse represents a donor's global standing
type DonorResponse struct {
	Donor  string                   `json:"donor"`
	Total  string                   `json:"total"`
	Claims []MilestoneClaimResponse `json:"claims"`
}

// StatsResponse carries the platform-wide aggregates
type StatsResponse struct {
	TotalDonations  string `json:"total_donations"`
	TotalDonorCount uint64 `json:"total_donor_count"`
	CampaignCount   uint64 `json:"campaign_count"`
	MilestoneCount  uint64 `json:"milestone_count"`
	Paused          bool   `json:"paused"`
}

// MapCampaignToDTO maps a schema.Campaign to CampaignResponse
func MapCampaignToDTO(campaign *schema.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:          campaign.ID,
		Title:       campaign.Title,
		Description: campaign.Description,
		Beneficiary: campaign.Beneficiary,
		TotalRaised: campaign.TotalRaised,
		DonorCount:  campaign.DonorCount,
		Active:      campaign.Active,
		CreatedAt:   campaign.CreatedAt,
		UpdatedAt:   campaign.UpdatedAt,
	}
}

// MapDonationToDTO maps a schema.Donation to DonationResponse
func MapDonationToDTO(donation *schema.Donation) *DonationResponse {
	return &DonationResponse{
		ID:         donation.ID,
		CampaignID: donation.CampaignID,
		Donor:      donation.Donor,
		Amount:     donation.Amount,
		Message:    donation.Message,
		CreatedAt:  donation.CreatedAt,
	}
}

// MapMilestoneToDTO maps a schema.Milestone to MilestoneResponse
func MapMilestoneToDTO(milestone *schema.Milestone) *MilestoneResponse {
	return &MilestoneResponse{
		Index:     milestone.Index,
		Threshold: milestone.Threshold,
		RewardURI: milestone.RewardURI,
	}
}
