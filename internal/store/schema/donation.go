package schema

import (
	"time"
)

// Donation represents the donations table - one row per donation event. The
// message is opaque; the overlay and notification consumers read it from the
// emitted event.
type Donation struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CampaignID references the campaign donated to
	CampaignID uint64 `gorm:"column:campaign_id;not null;index:idx_donations_campaign_donor,priority:1"`
	// Donor is the donor's address
	Donor string `gorm:"column:donor;not null;type:text;index:idx_donations_campaign_donor,priority:2;index"`
	// Amount is the donated amount
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// Message is the donor's message, stored unvalidated
	Message string `gorm:"column:message;not null;default:'';type:text"`
	// CreatedAt is the donation timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Donation model
func (Donation) TableName() string {
	return "donations"
}

// CampaignDonorTotal represents the campaign_donor_totals table - the
// cumulative per-campaign donation record used for campaign-scoped milestone
// eligibility. Summed across donors it equals the campaign's TotalRaised.
type CampaignDonorTotal struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CampaignID references the campaign
	CampaignID uint64 `gorm:"column:campaign_id;not null;uniqueIndex:idx_campaign_donor_totals,priority:1"`
	// Donor is the donor's address
	Donor string `gorm:"column:donor;not null;type:text;uniqueIndex:idx_campaign_donor_totals,priority:2"`
	// Total is the donor's cumulative donation to this campaign
	Total string `gorm:"column:total;not null;type:numeric(78,0)"`
	// UpdatedAt is the timestamp of the last donation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CampaignDonorTotal model
func (CampaignDonorTotal) TableName() string {
	return "campaign_donor_totals"
}

// DonorTotal represents the donor_totals table - the cumulative global
// donation record across all campaigns, used for global milestone eligibility.
type DonorTotal struct {
	// Donor is the donor's address
	Donor string `gorm:"column:donor;primaryKey;type:text"`
	// Total is the donor's cumulative donation across all campaigns
	Total string `gorm:"column:total;not null;type:numeric(78,0)"`
	// UpdatedAt is the timestamp of the last donation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the DonorTotal model
func (DonorTotal) TableName() string {
	return "donor_totals"
}
