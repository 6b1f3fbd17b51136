package schema

import (
	"time"
)

// Campaign represents the campaigns table. Campaigns are never deleted; the
// beneficiary or the platform owner may toggle Active.
type Campaign struct {
	// ID is the campaign id
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Title is the campaign title
	Title string `gorm:"column:title;not null;type:text"`
	// Description is the campaign description
	Description string `gorm:"column:description;not null;type:text"`
	// Beneficiary is the payout address; donations pass through to it directly
	Beneficiary string `gorm:"column:beneficiary;not null;type:text;index"`
	// TotalRaised is the sum of all donations to this campaign
	TotalRaised string `gorm:"column:total_raised;not null;default:0;type:numeric(78,0)"`
	// DonorCount counts distinct donor addresses, not donation events
	DonorCount uint32 `gorm:"column:donor_count;not null;default:0"`
	// Active gates donations
	Active bool `gorm:"column:active;not null;default:true"`
	// CreatedAt is the timestamp when this campaign was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Donations []Donation `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}
