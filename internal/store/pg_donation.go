package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/store/schema"
)

// lockCampaign loads a campaign with a row lock
func lockCampaign(tx *gorm.DB, campaignID uint64) (*schema.Campaign, error) {
	var campaign schema.Campaign
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", campaignID).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to lock campaign: %w", err)
	}
	return &campaign, nil
}

// CreateCampaign creates a donation campaign. Any authenticated caller may
// create one; the beneficiary is who later controls its status.
func (s *pgStore) CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CreateCampaignResult, error) {
	var result CreateCampaignResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign := schema.Campaign{
			Title:       input.Title,
			Description: input.Description,
			Beneficiary: input.Beneficiary,
			TotalRaised: "0",
			Active:      true,
		}
		if err := tx.Create(&campaign).Error; err != nil {
			return fmt.Errorf("failed to create campaign: %w", err)
		}

		event, err := s.journalEvent(tx, domain.EventTypeCampaignCreated, domain.CampaignCreatedEvent{
			CampaignID:  campaign.ID,
			Title:       campaign.Title,
			Beneficiary: campaign.Beneficiary,
		})
		if err != nil {
			return err
		}

		result.Campaign = &campaign
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateCampaignStatus toggles a campaign's active flag. Only the beneficiary
// or the platform owner may do it; campaigns are never deleted.
func (s *pgStore) UpdateCampaignStatus(ctx context.Context, input UpdateCampaignStatusInput) (*UpdateCampaignStatusResult, error) {
	var result UpdateCampaignStatusResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := lockCampaign(tx, input.CampaignID)
		if err != nil {
			return err
		}
		if input.Caller != campaign.Beneficiary && !input.IsOwner {
			return domain.ErrNotAuthorized
		}

		if err := tx.Model(campaign).
			Updates(map[string]interface{}{
				"active":     input.Active,
				"updated_at": gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to update campaign status: %w", err)
		}
		campaign.Active = input.Active

		event, err := s.journalEvent(tx, domain.EventTypeCampaignStatusUpdated, domain.CampaignStatusUpdatedEvent{
			CampaignID: campaign.ID,
			Active:     campaign.Active,
		})
		if err != nil {
			return err
		}

		result.Campaign = campaign
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Donate records a donation against an active campaign. Funds pass through
// donor -> beneficiary in the same transaction with no platform cut, and the
// donor's cumulative totals on both milestone tracks advance. Donations are
// not pause-gated.
func (s *pgStore) Donate(ctx context.Context, input DonateInput) (*DonateResult, error) {
	if input.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	var result DonateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Platform state is locked first in every transaction that touches it,
		// keeping the lock order consistent with the auction paths
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}

		campaign, err := lockCampaign(tx, input.CampaignID)
		if err != nil {
			return err
		}
		if !campaign.Active {
			return domain.ErrCampaignNotActive
		}

		if err := s.debitAccountTx(tx, input.Donor, input.Amount); err != nil {
			return err
		}
		if _, err := s.creditAccountTx(tx, campaign.Beneficiary, input.Amount); err != nil {
			return err
		}

		donation := schema.Donation{
			CampaignID: input.CampaignID,
			Donor:      input.Donor,
			Amount:     input.Amount.String(),
			Message:    input.Message,
		}
		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}

		campaignTotal, newCampaignDonor, err := s.bumpCampaignDonorTotal(tx, input.CampaignID, input.Donor, input.Amount)
		if err != nil {
			return err
		}
		globalTotal, newGlobalDonor, err := s.bumpDonorTotal(tx, input.Donor, input.Amount)
		if err != nil {
			return err
		}

		raised, err := parseStoredAmount(campaign.TotalRaised)
		if err != nil {
			return err
		}
		campaignUpdates := map[string]interface{}{
			"total_raised": raised.Add(input.Amount).String(),
			"updated_at":   gorm.Expr("now()"),
		}
		if newCampaignDonor {
			campaignUpdates["donor_count"] = gorm.Expr("donor_count + 1")
		}
		if err := tx.Model(campaign).Updates(campaignUpdates).Error; err != nil {
			return fmt.Errorf("failed to update campaign totals: %w", err)
		}
		campaign.TotalRaised = raised.Add(input.Amount).String()
		if newCampaignDonor {
			campaign.DonorCount++
		}

		totalDonations, err := parseStoredAmount(state.TotalDonations)
		if err != nil {
			return err
		}
		stateUpdates := map[string]interface{}{
			"total_donations": totalDonations.Add(input.Amount).String(),
			"updated_at":      gorm.Expr("now()"),
		}
		if newGlobalDonor {
			stateUpdates["total_donor_count"] = gorm.Expr("total_donor_count + 1")
		}
		if err := tx.Model(state).Updates(stateUpdates).Error; err != nil {
			return fmt.Errorf("failed to update platform totals: %w", err)
		}

		event, err := s.journalEvent(tx, domain.EventTypeDonationReceived, domain.DonationReceivedEvent{
			CampaignID: input.CampaignID,
			Donor:      input.Donor,
			Amount:     input.Amount.String(),
			Message:    input.Message,
		})
		if err != nil {
			return err
		}

		result.Campaign = campaign
		result.CampaignTotal = campaignTotal
		result.GlobalTotal = globalTotal
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// bumpCampaignDonorTotal adds to the donor's cumulative total for one
// campaign. The second result reports whether this was the donor's first
// donation to the campaign.
func (s *pgStore) bumpCampaignDonorTotal(tx *gorm.DB, campaignID uint64, donor string, amount domain.Amount) (domain.Amount, bool, error) {
	var row schema.CampaignDonorTotal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("campaign_id = ? AND donor = ?", campaignID, donor).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = schema.CampaignDonorTotal{
				CampaignID: campaignID,
				Donor:      donor,
				Total:      amount.String(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return domain.Amount{}, false, fmt.Errorf("failed to create campaign donor total: %w", err)
			}
			return amount, true, nil
		}
		return domain.Amount{}, false, fmt.Errorf("failed to lock campaign donor total: %w", err)
	}

	total, err := parseStoredAmount(row.Total)
	if err != nil {
		return domain.Amount{}, false, err
	}
	newTotal := total.Add(amount)
	if err := tx.Model(&row).
		Updates(map[string]interface{}{
			"total":      newTotal.String(),
			"updated_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return domain.Amount{}, false, fmt.Errorf("failed to update campaign donor total: %w", err)
	}
	return newTotal, false, nil
}

// bumpDonorTotal adds to the donor's cumulative total across all campaigns.
// The second result reports whether the donor is new platform-wide.
func (s *pgStore) bumpDonorTotal(tx *gorm.DB, donor string, amount domain.Amount) (domain.Amount, bool, error) {
	var row schema.DonorTotal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("donor = ?", donor).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = schema.DonorTotal{
				Donor: donor,
				Total: amount.String(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return domain.Amount{}, false, fmt.Errorf("failed to create donor total: %w", err)
			}
			return amount, true, nil
		}
		return domain.Amount{}, false, fmt.Errorf("failed to lock donor total: %w", err)
	}

	total, err := parseStoredAmount(row.Total)
	if err != nil {
		return domain.Amount{}, false, err
	}
	newTotal := total.Add(amount)
	if err := tx.Model(&row).
		Updates(map[string]interface{}{
			"total":      newTotal.String(),
			"updated_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return domain.Amount{}, false, fmt.Errorf("failed to update donor total: %w", err)
	}
	return newTotal, false, nil
}

// ClaimMilestone mints a reward token for a met milestone threshold. The two
// scopes are independent tracks over the same definition list: a donor whose
// campaign total and global total both pass a threshold can claim the same
// milestone once on each track. Claims are permanent; a repeat claim reports
// AlreadyClaimed even when the definition's threshold has changed since.
func (s *pgStore) ClaimMilestone(ctx context.Context, input ClaimMilestoneInput) (*ClaimMilestoneResult, error) {
	var result ClaimMilestoneResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var milestone schema.Milestone
		err := tx.Where("index = ?", input.MilestoneIndex).First(&milestone).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMilestoneNotFound
			}
			return fmt.Errorf("failed to get milestone: %w", err)
		}
		threshold, err := parseStoredAmount(milestone.Threshold)
		if err != nil {
			return err
		}

		var total domain.Amount
		switch input.Scope {
		case domain.ScopeCampaign:
			if _, err := lockCampaign(tx, input.CampaignID); err != nil {
				return err
			}
			var row schema.CampaignDonorTotal
			err := tx.Where("campaign_id = ? AND donor = ?", input.CampaignID, input.Donor).
				First(&row).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to get campaign donor total: %w", err)
			}
			total = domain.ZeroAmount()
			if err == nil {
				if total, err = parseStoredAmount(row.Total); err != nil {
					return err
				}
			}

			var existing int64
			if err := tx.Model(&schema.CampaignMilestoneClaim{}).
				Where("campaign_id = ? AND donor = ? AND milestone_index = ?", input.CampaignID, input.Donor, input.MilestoneIndex).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("failed to check existing claim: %w", err)
			}
			if existing > 0 {
				return domain.ErrAlreadyClaimed
			}

			if total.Cmp(threshold) < 0 {
				return domain.ErrThresholdNotMet
			}

			token, err := s.mintTokenTx(tx, input.Donor, milestone.RewardURI)
			if err != nil {
				return err
			}
			claim := schema.CampaignMilestoneClaim{
				CampaignID:     input.CampaignID,
				Donor:          input.Donor,
				MilestoneIndex: input.MilestoneIndex,
				TokenID:        token.ID,
			}
			if err := tx.Create(&claim).Error; err != nil {
				return fmt.Errorf("failed to create claim: %w", err)
			}
			result.Token = token

		case domain.ScopeGlobal:
			var row schema.DonorTotal
			err := tx.Where("donor = ?", input.Donor).First(&row).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to get donor total: %w", err)
			}
			total = domain.ZeroAmount()
			if err == nil {
				if total, err = parseStoredAmount(row.Total); err != nil {
					return err
				}
			}

			var existing int64
			if err := tx.Model(&schema.GlobalMilestoneClaim{}).
				Where("donor = ? AND milestone_index = ?", input.Donor, input.MilestoneIndex).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("failed to check existing claim: %w", err)
			}
			if existing > 0 {
				return domain.ErrAlreadyClaimed
			}

			if total.Cmp(threshold) < 0 {
				return domain.ErrThresholdNotMet
			}

			token, err := s.mintTokenTx(tx, input.Donor, milestone.RewardURI)
			if err != nil {
				return err
			}
			claim := schema.GlobalMilestoneClaim{
				Donor:          input.Donor,
				MilestoneIndex: input.MilestoneIndex,
				TokenID:        token.ID,
			}
			if err := tx.Create(&claim).Error; err != nil {
				return fmt.Errorf("failed to create claim: %w", err)
			}
			result.Token = token

		default:
			return fmt.Errorf("unknown milestone scope %q", input.Scope)
		}

		campaignID := input.CampaignID
		if input.Scope == domain.ScopeGlobal {
			campaignID = 0
		}
		event, err := s.journalEvent(tx, domain.EventTypeMilestoneClaimed, domain.MilestoneClaimedEvent{
			Scope:          input.Scope,
			CampaignID:     campaignID,
			Donor:          input.Donor,
			MilestoneIndex: input.MilestoneIndex,
			TokenID:        result.Token.ID,
		})
		if err != nil {
			return err
		}

		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCampaignByID retrieves a campaign by id
func (s *pgStore) GetCampaignByID(ctx context.Context, campaignID uint64) (*schema.Campaign, error) {
	var campaign schema.Campaign
	err := s.db.WithContext(ctx).Where("id = ?", campaignID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// GetCampaignsByFilter retrieves campaigns, optionally only active ones
func (s *pgStore) GetCampaignsByFilter(ctx context.Context, filter CampaignFilter) ([]schema.Campaign, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Campaign{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	var campaigns []schema.Campaign
	query = query.Order("id DESC").Limit(filter.Limit).Offset(int(filter.Offset)) //nolint:gosec,G115
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get campaigns: %w", err)
	}

	return campaigns, uint64(total), nil //nolint:gosec,G115
}

// GetCampaignDonations retrieves the donation rows for a campaign
func (s *pgStore) GetCampaignDonations(ctx context.Context, campaignID uint64, limit int, offset uint64) ([]schema.Donation, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Donation{}).Where("campaign_id = ?", campaignID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count donations: %w", err)
	}

	var donations []schema.Donation
	query = query.Order("id DESC").Limit(limit).Offset(int(offset)) //nolint:gosec,G115
	if err := query.Find(&donations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get donations: %w", err)
	}

	return donations, uint64(total), nil //nolint:gosec,G115
}

// GetCampaignDonorTotal retrieves one donor's cumulative total for a campaign.
// Returns nil when the donor never donated to it.
func (s *pgStore) GetCampaignDonorTotal(ctx context.Context, campaignID uint64, donor string) (*schema.CampaignDonorTotal, error) {
	var row schema.CampaignDonorTotal
	err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND donor = ?", campaignID, donor).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get campaign donor total: %w", err)
	}
	return &row, nil
}

// GetDonorSummary retrieves a donor's global total and claim records
func (s *pgStore) GetDonorSummary(ctx context.Context, donor string) (*DonorSummary, error) {
	summary := &DonorSummary{
		Donor:       donor,
		GlobalTotal: domain.ZeroAmount(),
	}

	var row schema.DonorTotal
	err := s.db.WithContext(ctx).Where("donor = ?", donor).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get donor total: %w", err)
	}
	if err == nil {
		total, err := parseStoredAmount(row.Total)
		if err != nil {
			return nil, err
		}
		summary.GlobalTotal = total
	}

	var claims []schema.GlobalMilestoneClaim
	if err := s.db.WithContext(ctx).
		Where("donor = ?", donor).
		Order("milestone_index ASC").
		Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("failed to get global claims: %w", err)
	}
	summary.GlobalClaims = claims

	return summary, nil
}

// GetCampaignMilestoneClaims retrieves a donor's claims within a campaign
func (s *pgStore) GetCampaignMilestoneClaims(ctx context.Context, campaignID uint64, donor string) ([]schema.CampaignMilestoneClaim, error) {
	var claims []schema.CampaignMilestoneClaim
	err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND donor = ?", campaignID, donor).
		Order("milestone_index ASC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign claims: %w", err)
	}
	return claims, nil
}

// GetPlatformStats retrieves the platform-wide aggregates
func (s *pgStore) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	state, err := s.GetPlatformState(ctx)
	if err != nil {
		return nil, err
	}
	totalDonations, err := parseStoredAmount(state.TotalDonations)
	if err != nil {
		return nil, err
	}

	var campaignCount int64
	if err := s.db.WithContext(ctx).Model(&schema.Campaign{}).Count(&campaignCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count campaigns: %w", err)
	}
	var milestoneCount int64
	if err := s.db.WithContext(ctx).Model(&schema.Milestone{}).Count(&milestoneCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count milestones: %w", err)
	}

	return &PlatformStats{
		TotalDonations:  totalDonations,
		TotalDonorCount: state.TotalDonorCount,
		CampaignCount:   uint64(campaignCount),  //nolint:gosec,G115
		MilestoneCount:  uint64(milestoneCount), //nolint:gosec,G115
		Paused:          state.Paused,
	}, nil
}
