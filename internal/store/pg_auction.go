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

// lockListing loads a listing with a row lock
func lockListing(tx *gorm.DB, listingID uint64) (*schema.Listing, error) {
	var listing schema.Listing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", listingID).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}
	return &listing, nil
}

// CreateListing opens an auction and moves the token into escrow. The seller
// must own the token; the price is the floor for the first bid.
func (s *pgStore) CreateListing(ctx context.Context, input CreateListingInput) (*CreateListingResult, error) {
	if input.Price.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	var result CreateListingResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}
		if state.Paused {
			return domain.ErrPaused
		}

		var token schema.RewardToken
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.TokenID).
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTokenNotFound
			}
			return fmt.Errorf("failed to lock token: %w", err)
		}
		if token.OwnerAddress != input.Seller {
			return domain.ErrNotOwner
		}

		now := s.clock.Now().UTC()
		listing := schema.Listing{
			Seller:    input.Seller,
			TokenID:   input.TokenID,
			Price:     input.Price.String(),
			NetPrice:  input.Price.String(),
			StartTime: now,
			EndTime:   now.Add(input.Duration),
			Status:    schema.ListingStatusOpen,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		// Token moves into engine custody until settlement
		if err := tx.Model(&token).
			Updates(map[string]interface{}{
				"owner_address": domain.AuctionEscrow,
				"updated_at":    gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to escrow token: %w", err)
		}

		event, err := s.journalEvent(tx, domain.EventTypeAuctionCreated, domain.AuctionCreatedEvent{
			ListingID: listing.ID,
			Seller:    listing.Seller,
			Price:     listing.Price,
			TokenID:   listing.TokenID,
			StartTime: listing.StartTime,
			EndTime:   listing.EndTime,
		})
		if err != nil {
			return err
		}

		result.Listing = &listing
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PlaceBid tops up the bidder's cumulative escrow for a listing. The check is
// against the cumulative entry plus the new amount, so a prior bidder reaches
// the raised price with a top-up instead of a full re-bid. Each accepted bid
// raises the price by the configured increment over the pre-bid price, floor
// rounded, so after n bids the price is the floor compounded n times
// regardless of how far above it anyone escrowed.
func (s *pgStore) PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error) {
	if input.Amount.IsZero() {
		return nil, domain.ErrInvalidAmount
	}

	var result PlaceBidResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}
		if state.Paused {
			return domain.ErrPaused
		}

		listing, err := lockListing(tx, input.ListingID)
		if err != nil {
			return err
		}
		if listing.Status != schema.ListingStatusOpen {
			return domain.ErrAuctionNotOpen
		}
		// The end time itself is still biddable; the window closes after it
		if s.clock.Now().After(listing.EndTime) {
			return domain.ErrAuctionNotOpen
		}
		if listing.Seller == input.Bidder {
			return domain.ErrSellerCannotBid
		}

		price, err := parseStoredAmount(listing.Price)
		if err != nil {
			return err
		}

		var bid schema.Bid
		cumulative := input.Amount
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("listing_id = ? AND bidder = ?", input.ListingID, input.Bidder).
			First(&bid).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lock bid: %w", err)
		}
		if err == nil {
			prior, err := parseStoredAmount(bid.Amount)
			if err != nil {
				return err
			}
			cumulative = prior.Add(input.Amount)
		}

		if cumulative.Cmp(price) < 0 {
			return domain.ErrBidTooLow
		}

		// Funds leave the bidder's account into bid escrow
		if err := s.debitAccountTx(tx, input.Bidder, input.Amount); err != nil {
			return err
		}

		if bid.ID == 0 {
			bid = schema.Bid{
				ListingID: input.ListingID,
				Bidder:    input.Bidder,
				Amount:    cumulative.String(),
			}
			if err := tx.Create(&bid).Error; err != nil {
				return fmt.Errorf("failed to create bid: %w", err)
			}
		} else {
			if err := tx.Model(&bid).
				Updates(map[string]interface{}{
					"amount":     cumulative.String(),
					"updated_at": gorm.Expr("now()"),
				}).Error; err != nil {
				return fmt.Errorf("failed to update bid: %w", err)
			}
			bid.Amount = cumulative.String()
		}

		newPrice := price.AddBps(state.MinAuctionIncrementBps)
		if err := tx.Model(listing).
			Updates(map[string]interface{}{
				"price":          newPrice.String(),
				"highest_bidder": input.Bidder,
				"updated_at":     gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}
		listing.Price = newPrice.String()
		listing.HighestBidder = &bid.Bidder

		event, err := s.journalEvent(tx, domain.EventTypeBidCreated, domain.BidCreatedEvent{
			ListingID: listing.ID,
			Bidder:    input.Bidder,
			Amount:    cumulative.String(),
		})
		if err != nil {
			return err
		}

		result.Listing = listing
		result.Bid = &bid
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteAuction settles an ended listing. With bids, the highest bidder's
// escrow pays the seller and the token leaves custody to the winner; with
// none, the token returns to the seller. Done is terminal. Settlement is not
// pause-gated so funds can always be released.
func (s *pgStore) CompleteAuction(ctx context.Context, input CompleteAuctionInput) (*CompleteAuctionResult, error) {
	var result CompleteAuctionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, input.ListingID)
		if err != nil {
			return err
		}
		if listing.Status == schema.ListingStatusDone {
			return domain.ErrAlreadyCompleted
		}
		if !s.clock.Now().After(listing.EndTime) {
			return domain.ErrAuctionStillOpen
		}

		isSeller := input.Caller == listing.Seller
		isHighest := listing.HighestBidder != nil && input.Caller == *listing.HighestBidder
		if !isSeller && !isHighest {
			return domain.ErrUnauthorized
		}

		winner := listing.Seller
		amount := domain.ZeroAmount()
		if listing.HighestBidder != nil {
			winner = *listing.HighestBidder

			var bid schema.Bid
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("listing_id = ? AND bidder = ?", listing.ID, winner).
				First(&bid).Error
			if err != nil {
				return fmt.Errorf("failed to lock winning bid: %w", err)
			}
			amount, err = parseStoredAmount(bid.Amount)
			if err != nil {
				return err
			}

			// Winner's escrow pays out to the seller and the entry zeroes,
			// which is also what blocks a later withdrawal
			if err := tx.Model(&bid).
				Updates(map[string]interface{}{
					"amount":     "0",
					"updated_at": gorm.Expr("now()"),
				}).Error; err != nil {
				return fmt.Errorf("failed to zero winning bid: %w", err)
			}
			if _, err := s.creditAccountTx(tx, listing.Seller, amount); err != nil {
				return err
			}
		}

		if err := tx.Model(&schema.RewardToken{}).
			Where("id = ?", listing.TokenID).
			Updates(map[string]interface{}{
				"owner_address": winner,
				"updated_at":    gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to release token: %w", err)
		}

		if err := tx.Model(listing).
			Updates(map[string]interface{}{
				"status":     schema.ListingStatusDone,
				"updated_at": gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to close listing: %w", err)
		}
		listing.Status = schema.ListingStatusDone

		event, err := s.journalEvent(tx, domain.EventTypeAuctionCompleted, domain.AuctionCompletedEvent{
			ListingID: listing.ID,
			Seller:    listing.Seller,
			Winner:    winner,
			Amount:    amount.String(),
		})
		if err != nil {
			return err
		}

		result.Listing = listing
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// WithdrawBid refunds a losing bidder's full escrow after the listing's end
// time and zeroes the entry, so a second withdrawal fails. The highest bidder
// cannot withdraw; its escrow settles through CompleteAuction. Withdrawal is
// not pause-gated.
func (s *pgStore) WithdrawBid(ctx context.Context, input WithdrawBidInput) (*WithdrawBidResult, error) {
	var result WithdrawBidResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, input.ListingID)
		if err != nil {
			return err
		}
		if !s.clock.Now().After(listing.EndTime) {
			return domain.ErrAuctionStillOpen
		}
		if listing.HighestBidder != nil && input.Bidder == *listing.HighestBidder {
			return domain.ErrHighestBidderCannotWithdraw
		}

		var bid schema.Bid
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("listing_id = ? AND bidder = ?", input.ListingID, input.Bidder).
			First(&bid).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoBidsToWithdraw
			}
			return fmt.Errorf("failed to lock bid: %w", err)
		}

		amount, err := parseStoredAmount(bid.Amount)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return domain.ErrNoBidsToWithdraw
		}

		if err := tx.Model(&bid).
			Updates(map[string]interface{}{
				"amount":     "0",
				"updated_at": gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to zero bid: %w", err)
		}
		if _, err := s.creditAccountTx(tx, input.Bidder, amount); err != nil {
			return err
		}

		event, err := s.journalEvent(tx, domain.EventTypeWithdrawBid, domain.WithdrawBidEvent{
			ListingID: listing.ID,
			Bidder:    input.Bidder,
			Amount:    amount.String(),
		})
		if err != nil {
			return err
		}

		result.Amount = amount
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetListingByID retrieves a listing by id
func (s *pgStore) GetListingByID(ctx context.Context, listingID uint64) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// GetListingsByFilter retrieves listings filtered by status and seller
func (s *pgStore) GetListingsByFilter(ctx context.Context, filter ListingFilter) ([]schema.Listing, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Listing{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Seller != "" {
		query = query.Where("seller = ?", filter.Seller)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []schema.Listing
	query = query.Order("id DESC").Limit(filter.Limit).Offset(int(filter.Offset)) //nolint:gosec,G115
	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get listings: %w", err)
	}

	return listings, uint64(total), nil //nolint:gosec,G115
}

// GetBid retrieves one bidder's cumulative ledger entry for a listing
func (s *pgStore) GetBid(ctx context.Context, listingID uint64, bidder string) (*schema.Bid, error) {
	var bid schema.Bid
	err := s.db.WithContext(ctx).
		Where("listing_id = ? AND bidder = ?", listingID, bidder).
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// GetListingBids retrieves all bid ledger entries for a listing
func (s *pgStore) GetListingBids(ctx context.Context, listingID uint64) ([]schema.Bid, error) {
	var bids []schema.Bid
	err := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("updated_at DESC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	return bids, nil
}
