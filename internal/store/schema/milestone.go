package schema

import (
	"time"
)

// Milestone represents the milestones table - the shared definition list both
// the campaign-scoped and the global claim tracks evaluate against. Index is
// assigned by the platform owner and is stable across restarts.
type Milestone struct {
	// Index is the milestone's position in the definition list
	Index uint32 `gorm:"column:index;primaryKey;autoIncrement:false"`
	// Threshold is the cumulative donation total required to claim
	Threshold string `gorm:"column:threshold;not null;type:numeric(78,0)"`
	// RewardURI is the metadata URI minted into the reward token
	RewardURI string `gorm:"column:reward_uri;not null;type:text"`
	// CreatedAt is the definition timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Milestone model
func (Milestone) TableName() string {
	return "milestones"
}

// CampaignMilestoneClaim represents the campaign_milestone_claims table - one
// row per (campaign, donor, milestone) claim. The unique index is what makes
// double claims fail.
type CampaignMilestoneClaim struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CampaignID references the campaign the claim is scoped to
	CampaignID uint64 `gorm:"column:campaign_id;not null;uniqueIndex:idx_campaign_milestone_claims,priority:1"`
	// Donor is the claiming donor's address
	Donor string `gorm:"column:donor;not null;type:text;uniqueIndex:idx_campaign_milestone_claims,priority:2;index"`
	// MilestoneIndex references the claimed milestone definition
	MilestoneIndex uint32 `gorm:"column:milestone_index;not null;uniqueIndex:idx_campaign_milestone_claims,priority:3"`
	// TokenID is the reward token minted for this claim
	TokenID uint64 `gorm:"column:token_id;not null"`
	// CreatedAt is the claim timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CampaignMilestoneClaim model
func (CampaignMilestoneClaim) TableName() string {
	return "campaign_milestone_claims"
}

// GlobalMilestoneClaim represents the global_milestone_claims table - one row
// per (donor, milestone) claim against the donor's all-campaign total.
type GlobalMilestoneClaim struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Donor is the claiming donor's address
	Donor string `gorm:"column:donor;not null;type:text;uniqueIndex:idx_global_milestone_claims,priority:1"`
	// MilestoneIndex references the claimed milestone definition
	MilestoneIndex uint32 `gorm:"column:milestone_index;not null;uniqueIndex:idx_global_milestone_claims,priority:2"`
	// TokenID is the reward token minted for this claim
	TokenID uint64 `gorm:"column:token_id;not null"`
	// CreatedAt is the claim timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the GlobalMilestoneClaim model
func (GlobalMilestoneClaim) TableName() string {
	return "global_milestone_claims"
}
