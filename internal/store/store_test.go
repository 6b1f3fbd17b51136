package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/store/schema"
)

// Amounts are wei strings: wei("5", 17) is 0.5 of the unit token
const (
	weiTenth   = "100000000000000000"  // 0.1
	weiHalf    = "500000000000000000"  // 0.5
	weiPoint3  = "300000000000000000"  // 0.3
	wei055     = "550000000000000000"  // 0.55
	wei0605    = "605000000000000000"  // 0.605
	wei06655   = "665500000000000000"  // 0.6655
	weiOne     = "1000000000000000000" // 1.0
	weiFive    = "5000000000000000000" // 5.0
	weiPoint05 = "50000000000000000"   // 0.05

	seller  = "0x1111111111111111111111111111111111111111"
	bidderA = "0x2222222222222222222222222222222222222222"
	bidderB = "0x3333333333333333333333333333333333333333"
	donorA  = "0x4444444444444444444444444444444444444444"
	donorB  = "0x5555555555555555555555555555555555555555"
	charity = "0x6666666666666666666666666666666666666666"
)

// =============================================================================
// Test Helpers
// =============================================================================

// fundAccount credits an account so it can bid or donate
func fundAccount(t *testing.T, env *testEnv, address, amount string) {
	t.Helper()
	_, err := env.Store.CreditAccount(context.Background(), CreditAccountInput{
		Address: address,
		Amount:  domain.MustAmount(amount),
	})
	require.NoError(t, err)
}

// mintTestToken mints a reward token to an owner
func mintTestToken(t *testing.T, env *testEnv, owner string) *schema.RewardToken {
	t.Helper()
	result, err := env.Store.MintToken(context.Background(), MintTokenInput{
		To:       owner,
		TokenURI: "ipfs://test-token",
	})
	require.NoError(t, err)
	return result.Token
}

// openTestListing mints a token to the seller and opens an hour-long auction
// at a 0.5 floor price
func openTestListing(t *testing.T, env *testEnv) *schema.Listing {
	t.Helper()
	token := mintTestToken(t, env, seller)
	result, err := env.Store.CreateListing(context.Background(), CreateListingInput{
		Seller:   seller,
		TokenID:  token.ID,
		Price:    domain.MustAmount(weiHalf),
		Duration: time.Hour,
	})
	require.NoError(t, err)
	return result.Listing
}

// createTestCampaign creates an active campaign paying out to charity
func createTestCampaign(t *testing.T, env *testEnv) *schema.Campaign {
	t.Helper()
	result, err := env.Store.CreateCampaign(context.Background(), CreateCampaignInput{
		Title:       "Clean Water",
		Description: "Wells for the valley",
		Beneficiary: charity,
	})
	require.NoError(t, err)
	return result.Campaign
}

// seedTestMilestones installs a two-step milestone list: 0.1 and 1.0
func seedTestMilestones(t *testing.T, env *testEnv) {
	t.Helper()
	err := env.Store.SeedMilestones(context.Background(), []MilestoneInput{
		{Index: 0, Threshold: domain.MustAmount(weiTenth), RewardURI: "ipfs://badge-bronze"},
		{Index: 1, Threshold: domain.MustAmount(weiOne), RewardURI: "ipfs://badge-gold"},
	})
	require.NoError(t, err)
}

// accountBalance reads an account balance, "0" when the account does not exist
func accountBalance(t *testing.T, env *testEnv, address string) string {
	t.Helper()
	account, err := env.Store.GetAccount(context.Background(), address)
	if err == domain.ErrAccountNotFound {
		return "0"
	}
	require.NoError(t, err)
	return account.Balance
}

// =============================================================================
// Test: MintToken
// =============================================================================

func testMintToken(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("mint assigns sequential ids and journals the event", func(t *testing.T) {
		first, err := env.Store.MintToken(ctx, MintTokenInput{To: bidderA, TokenURI: "ipfs://one"})
		require.NoError(t, err)
		require.NotNil(t, first.Token)
		assert.Equal(t, bidderA, first.Token.OwnerAddress)
		assert.Equal(t, "ipfs://one", first.Token.TokenURI)
		require.NotNil(t, first.Event)
		assert.Equal(t, domain.EventTypeMinted, first.Event.Type)

		second, err := env.Store.MintToken(ctx, MintTokenInput{To: bidderA, TokenURI: "ipfs://two"})
		require.NoError(t, err)
		assert.Equal(t, first.Token.ID+1, second.Token.ID)

		var journaled int64
		require.NoError(t, env.DB.Model(&schema.LedgerEvent{}).
			Where("event_type = ?", domain.EventTypeMinted).
			Count(&journaled).Error)
		assert.Equal(t, int64(2), journaled)
	})

	t.Run("get by id", func(t *testing.T) {
		minted := mintTestToken(t, env, bidderB)

		token, err := env.Store.GetTokenByID(ctx, minted.ID)
		require.NoError(t, err)
		assert.Equal(t, bidderB, token.OwnerAddress)

		_, err = env.Store.GetTokenByID(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("list by owner with pagination", func(t *testing.T) {
		owner := "0x7777777777777777777777777777777777777777"
		for range 3 {
			mintTestToken(t, env, owner)
		}

		tokens, total, err := env.Store.GetTokensByOwner(ctx, owner, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		assert.Len(t, tokens, 2)

		tokens, total, err = env.Store.GetTokensByOwner(ctx, owner, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		assert.Len(t, tokens, 1)
	})
}

// =============================================================================
// Test: Accounts
// =============================================================================

func testAccounts(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("credit creates the account and accumulates", func(t *testing.T) {
		result, err := env.Store.CreditAccount(ctx, CreditAccountInput{
			Address: bidderA,
			Amount:  domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		assert.Equal(t, weiHalf, result.Account.Balance)
		require.NotNil(t, result.Event)
		assert.Equal(t, domain.EventTypeAccountCredited, result.Event.Type)

		result, err = env.Store.CreditAccount(ctx, CreditAccountInput{
			Address: bidderA,
			Amount:  domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		assert.Equal(t, weiOne, result.Account.Balance)
	})

	t.Run("get missing account", func(t *testing.T) {
		_, err := env.Store.GetAccount(ctx, "0x9999999999999999999999999999999999999999")
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

// =============================================================================
// Test: Platform State
// =============================================================================

func testPlatformState(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("initial state", func(t *testing.T) {
		state, err := env.Store.GetPlatformState(ctx)
		require.NoError(t, err)
		assert.False(t, state.Paused)
		assert.Equal(t, uint32(1000), state.MinAuctionIncrementBps)
		assert.Equal(t, "0", state.TotalDonations)
	})

	t.Run("init is idempotent", func(t *testing.T) {
		require.NoError(t, env.Store.UpdateMinAuctionIncrement(ctx, 500))
		require.NoError(t, env.Store.InitPlatformState(ctx, 1000))

		state, err := env.Store.GetPlatformState(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(500), state.MinAuctionIncrementBps)

		require.NoError(t, env.Store.UpdateMinAuctionIncrement(ctx, 1000))
	})

	t.Run("pause toggles", func(t *testing.T) {
		require.NoError(t, env.Store.SetPaused(ctx, true))
		state, err := env.Store.GetPlatformState(ctx)
		require.NoError(t, err)
		assert.True(t, state.Paused)

		require.NoError(t, env.Store.SetPaused(ctx, false))
		state, err = env.Store.GetPlatformState(ctx)
		require.NoError(t, err)
		assert.False(t, state.Paused)
	})
}

// =============================================================================
// Test: Milestones
// =============================================================================

func testMilestones(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("seed only fills an empty table", func(t *testing.T) {
		seedTestMilestones(t, env)

		// A second seed must not overwrite the installed list
		err := env.Store.SeedMilestones(ctx, []MilestoneInput{
			{Index: 0, Threshold: domain.MustAmount(weiFive), RewardURI: "ipfs://other"},
		})
		require.NoError(t, err)

		milestones, err := env.Store.GetMilestones(ctx)
		require.NoError(t, err)
		require.Len(t, milestones, 2)
		assert.Equal(t, weiTenth, milestones[0].Threshold)
		assert.Equal(t, "ipfs://badge-bronze", milestones[0].RewardURI)
	})

	t.Run("create and update definitions", func(t *testing.T) {
		_, err := env.Store.CreateMilestone(ctx, MilestoneInput{
			Index:     2,
			Threshold: domain.MustAmount(weiFive),
			RewardURI: "ipfs://badge-diamond",
		})
		require.NoError(t, err)

		err = env.Store.UpdateMilestone(ctx, 2, MilestoneInput{
			Index:     2,
			Threshold: domain.MustAmount(weiOne),
			RewardURI: "ipfs://badge-diamond-v2",
		})
		require.NoError(t, err)

		milestones, err := env.Store.GetMilestones(ctx)
		require.NoError(t, err)
		require.Len(t, milestones, 3)
		assert.Equal(t, uint32(2), milestones[2].Index)
		assert.Equal(t, weiOne, milestones[2].Threshold)
		assert.Equal(t, "ipfs://badge-diamond-v2", milestones[2].RewardURI)
	})

	t.Run("update missing definition", func(t *testing.T) {
		err := env.Store.UpdateMilestone(ctx, 42, MilestoneInput{
			Index:     42,
			Threshold: domain.MustAmount(weiOne),
			RewardURI: "ipfs://nope",
		})
		assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
	})
}

// =============================================================================
// Test: CreateListing
// =============================================================================

func testCreateListing(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("listing escrows the token", func(t *testing.T) {
		token := mintTestToken(t, env, seller)

		result, err := env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  token.ID,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		require.NoError(t, err)

		listing := result.Listing
		assert.Equal(t, schema.ListingStatusOpen, listing.Status)
		assert.Equal(t, weiHalf, listing.Price)
		assert.Equal(t, weiHalf, listing.NetPrice)
		assert.Nil(t, listing.HighestBidder)
		assert.Equal(t, env.Clock.Now().UTC(), listing.StartTime.UTC())
		assert.Equal(t, env.Clock.Now().UTC().Add(time.Hour), listing.EndTime.UTC())
		require.NotNil(t, result.Event)
		assert.Equal(t, domain.EventTypeAuctionCreated, result.Event.Type)

		escrowed, err := env.Store.GetTokenByID(ctx, token.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AuctionEscrow, escrowed.OwnerAddress)
	})

	t.Run("only the token owner can list it", func(t *testing.T) {
		token := mintTestToken(t, env, bidderA)

		_, err := env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  token.ID,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("zero price and missing token", func(t *testing.T) {
		token := mintTestToken(t, env, seller)

		_, err := env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  token.ID,
			Price:    domain.ZeroAmount(),
			Duration: time.Hour,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  999999,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("an escrowed token cannot be listed twice", func(t *testing.T) {
		token := mintTestToken(t, env, seller)
		_, err := env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  token.ID,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		require.NoError(t, err)

		// The token now belongs to the escrow identity, not the seller
		_, err = env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  token.ID,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

// =============================================================================
// Test: PlaceBid
// =============================================================================

func testPlaceBid(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("accepted bid raises the price by the increment", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		result, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)

		// 0.5 met the 0.5 floor; the next bidder needs 0.55
		assert.Equal(t, wei055, result.Listing.Price)
		require.NotNil(t, result.Listing.HighestBidder)
		assert.Equal(t, bidderA, *result.Listing.HighestBidder)
		assert.Equal(t, weiHalf, result.Bid.Amount)
		assert.Equal(t, domain.EventTypeBidCreated, result.Event.Type)

		// Escrowed funds left the bidder's account
		assert.Equal(t, weiHalf, accountBalance(t, env, bidderA))
	})

	t.Run("price compounds from the pre-bid price, not the escrow", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		// Escrowing 0.6 against a 0.5 floor still raises the price to 0.55
		result, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount("600000000000000000"),
		})
		require.NoError(t, err)
		assert.Equal(t, wei055, result.Listing.Price)
		assert.Equal(t, "600000000000000000", result.Bid.Amount)
	})

	t.Run("cumulative escrow counts toward the raised price", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)
		fundAccount(t, env, bidderB, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)

		// 0.3 alone is below the raised 0.55 price
		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderB,
			Amount:    domain.MustAmount(weiPoint3),
		})
		assert.ErrorIs(t, err, domain.ErrBidTooLow)

		result, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderB,
			Amount:    domain.MustAmount(wei055),
		})
		require.NoError(t, err)
		assert.Equal(t, wei0605, result.Listing.Price)
		assert.Equal(t, bidderB, *result.Listing.HighestBidder)

		// The outbid leader tops up 0.2 on the existing 0.5 to reach 0.7;
		// the price compounds a third time from 0.605, not from the 0.7 escrow
		result, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount("200000000000000000"),
		})
		require.NoError(t, err)
		assert.Equal(t, "700000000000000000", result.Bid.Amount)
		assert.Equal(t, wei06655, result.Listing.Price)
		assert.Equal(t, bidderA, *result.Listing.HighestBidder)
	})

	t.Run("bid rejections", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    seller,
			Amount:    domain.MustAmount(weiHalf),
		})
		assert.ErrorIs(t, err, domain.ErrSellerCannotBid)

		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.ZeroAmount(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: 999999,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		assert.ErrorIs(t, err, domain.ErrListingNotFound)

		// An unfunded bidder cannot escrow
		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderB,
			Amount:    domain.MustAmount(weiHalf),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		// A rejected bid must not have touched the account
		assert.Equal(t, "0", accountBalance(t, env, bidderB))
	})

	t.Run("bidding closes only after the end time", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		// The end time itself is still inside the bidding window, and the
		// settlement window has not opened yet
		env.Clock.Advance(time.Hour)
		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

		env.Clock.Advance(time.Second)
		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiTenth),
		})
		assert.ErrorIs(t, err, domain.ErrAuctionNotOpen)
	})
}

// =============================================================================
// Test: CompleteAuction
// =============================================================================

func testCompleteAuction(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("settlement pays the seller and releases the token", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)

		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

		// Exactly the end time still counts as open
		env.Clock.Advance(time.Hour)
		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)
		env.Clock.Advance(time.Second)

		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: bidderB})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		result, err := env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		require.NoError(t, err)
		assert.Equal(t, schema.ListingStatusDone, result.Listing.Status)
		assert.Equal(t, domain.EventTypeAuctionCompleted, result.Event.Type)

		payload, ok := result.Event.Payload.(domain.AuctionCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, bidderA, payload.Winner)
		assert.Equal(t, weiHalf, payload.Amount)

		token, err := env.Store.GetTokenByID(ctx, listing.TokenID)
		require.NoError(t, err)
		assert.Equal(t, bidderA, token.OwnerAddress)
		assert.Equal(t, weiHalf, accountBalance(t, env, seller))

		// Done is terminal
		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	})

	t.Run("winner can settle too", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		env.Clock.Advance(2 * time.Hour)

		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: bidderA})
		require.NoError(t, err)
	})

	t.Run("no bids returns the token to the seller", func(t *testing.T) {
		listing := openTestListing(t, env)
		env.Clock.Advance(time.Hour + time.Second)

		result, err := env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		require.NoError(t, err)

		payload, ok := result.Event.Payload.(domain.AuctionCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, seller, payload.Winner)
		assert.Equal(t, "0", payload.Amount)

		token, err := env.Store.GetTokenByID(ctx, listing.TokenID)
		require.NoError(t, err)
		assert.Equal(t, seller, token.OwnerAddress)
	})
}

// =============================================================================
// Test: WithdrawBid
// =============================================================================

func testWithdrawBid(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("losing bidder gets the full escrow back once", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)
		fundAccount(t, env, bidderB, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderB,
			Amount:    domain.MustAmount(wei055),
		})
		require.NoError(t, err)

		_, err = env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)

		// Withdrawal opens with settlement, after the end time passes
		env.Clock.Advance(time.Hour)
		_, err = env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		assert.ErrorIs(t, err, domain.ErrAuctionStillOpen)
		env.Clock.Advance(time.Second)

		result, err := env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		require.NoError(t, err)
		assert.Equal(t, weiHalf, result.Amount.String())
		assert.Equal(t, domain.EventTypeWithdrawBid, result.Event.Type)
		assert.Equal(t, weiOne, accountBalance(t, env, bidderA))

		_, err = env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		assert.ErrorIs(t, err, domain.ErrNoBidsToWithdraw)
	})

	t.Run("highest bidder cannot withdraw", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		env.Clock.Advance(time.Hour + time.Second)

		_, err = env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		assert.ErrorIs(t, err, domain.ErrHighestBidderCannotWithdraw)
	})

	t.Run("address without an entry", func(t *testing.T) {
		listing := openTestListing(t, env)
		env.Clock.Advance(time.Hour + time.Second)

		_, err := env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderB})
		assert.ErrorIs(t, err, domain.ErrNoBidsToWithdraw)
	})

	t.Run("settled winner cannot withdraw the paid-out escrow", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)

		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)
		env.Clock.Advance(time.Hour + time.Second)

		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		require.NoError(t, err)

		_, err = env.Store.WithdrawBid(ctx, WithdrawBidInput{ListingID: listing.ID, Bidder: bidderA})
		assert.ErrorIs(t, err, domain.ErrHighestBidderCannotWithdraw)
	})
}

// =============================================================================
// Test: Pause Gating
// =============================================================================

func testPauseGating(t *testing.T, env *testEnv) {
	ctx := context.Background()

	// Set up an ended auction and an active campaign before pausing
	listing := openTestListing(t, env)
	fundAccount(t, env, bidderA, weiFive)
	fundAccount(t, env, donorA, weiFive)
	_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
		ListingID: listing.ID,
		Bidder:    bidderA,
		Amount:    domain.MustAmount(weiHalf),
	})
	require.NoError(t, err)
	campaign := createTestCampaign(t, env)
	seedTestMilestones(t, env)
	env.Clock.Advance(time.Hour + time.Second)

	require.NoError(t, env.Store.SetPaused(ctx, true))

	t.Run("pause blocks mint, listing and bidding", func(t *testing.T) {
		_, err := env.Store.MintToken(ctx, MintTokenInput{To: seller, TokenURI: "ipfs://x"})
		assert.ErrorIs(t, err, domain.ErrPaused)

		_, err = env.Store.CreateListing(ctx, CreateListingInput{
			Seller:   seller,
			TokenID:  listing.TokenID,
			Price:    domain.MustAmount(weiHalf),
			Duration: time.Hour,
		})
		assert.ErrorIs(t, err, domain.ErrPaused)

		_, err = env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		assert.ErrorIs(t, err, domain.ErrPaused)
	})

	t.Run("funds always move out while paused", func(t *testing.T) {
		_, err := env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		require.NoError(t, err)

		// The milestone claim mints its badge even under pause
		claim, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, donorA, claim.Token.OwnerAddress)

		_, err = env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: listing.ID, Caller: seller})
		require.NoError(t, err)
	})

	t.Run("unpause restores gated operations", func(t *testing.T) {
		require.NoError(t, env.Store.SetPaused(ctx, false))

		_, err := env.Store.MintToken(ctx, MintTokenInput{To: seller, TokenURI: "ipfs://y"})
		require.NoError(t, err)
	})
}

// =============================================================================
// Test: Campaigns
// =============================================================================

func testCampaigns(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("create starts active", func(t *testing.T) {
		result, err := env.Store.CreateCampaign(ctx, CreateCampaignInput{
			Title:       "Food Bank",
			Description: "Winter drive",
			Beneficiary: charity,
		})
		require.NoError(t, err)
		assert.True(t, result.Campaign.Active)
		assert.Equal(t, "0", result.Campaign.TotalRaised)
		assert.Equal(t, domain.EventTypeCampaignCreated, result.Event.Type)
	})

	t.Run("only beneficiary or owner toggles status", func(t *testing.T) {
		campaign := createTestCampaign(t, env)

		_, err := env.Store.UpdateCampaignStatus(ctx, UpdateCampaignStatusInput{
			CampaignID: campaign.ID,
			Caller:     donorA,
			Active:     false,
		})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)

		result, err := env.Store.UpdateCampaignStatus(ctx, UpdateCampaignStatusInput{
			CampaignID: campaign.ID,
			Caller:     charity,
			Active:     false,
		})
		require.NoError(t, err)
		assert.False(t, result.Campaign.Active)

		// The platform owner passes regardless of address
		result, err = env.Store.UpdateCampaignStatus(ctx, UpdateCampaignStatusInput{
			CampaignID: campaign.ID,
			Caller:     donorA,
			IsOwner:    true,
			Active:     true,
		})
		require.NoError(t, err)
		assert.True(t, result.Campaign.Active)
	})

	t.Run("filter active only", func(t *testing.T) {
		open := createTestCampaign(t, env)
		closed := createTestCampaign(t, env)
		_, err := env.Store.UpdateCampaignStatus(ctx, UpdateCampaignStatusInput{
			CampaignID: closed.ID,
			Caller:     charity,
			Active:     false,
		})
		require.NoError(t, err)

		campaigns, _, err := env.Store.GetCampaignsByFilter(ctx, CampaignFilter{ActiveOnly: true, Limit: 100})
		require.NoError(t, err)
		ids := make(map[uint64]bool, len(campaigns))
		for _, c := range campaigns {
			ids[c.ID] = true
		}
		assert.True(t, ids[open.ID])
		assert.False(t, ids[closed.ID])
	})
}

// =============================================================================
// Test: Donate
// =============================================================================

func testDonate(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("donation passes through to the beneficiary", func(t *testing.T) {
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiOne)

		result, err := env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
			Message:    "keep digging",
		})
		require.NoError(t, err)
		assert.Equal(t, weiTenth, result.Campaign.TotalRaised)
		assert.Equal(t, uint32(1), result.Campaign.DonorCount)
		assert.Equal(t, weiTenth, result.CampaignTotal.String())
		assert.Equal(t, weiTenth, result.GlobalTotal.String())
		assert.Equal(t, domain.EventTypeDonationReceived, result.Event.Type)

		assert.Equal(t, "900000000000000000", accountBalance(t, env, donorA))
		assert.Equal(t, weiTenth, accountBalance(t, env, charity))

		donations, total, err := env.Store.GetCampaignDonations(ctx, campaign.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, donations, 1)
		assert.Equal(t, "keep digging", donations[0].Message)
	})

	t.Run("donor count tracks distinct donors", func(t *testing.T) {
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiOne)
		fundAccount(t, env, donorB, weiOne)

		for _, donor := range []string{donorA, donorA, donorB} {
			_, err := env.Store.Donate(ctx, DonateInput{
				CampaignID: campaign.ID,
				Donor:      donor,
				Amount:     domain.MustAmount(weiTenth),
			})
			require.NoError(t, err)
		}

		updated, err := env.Store.GetCampaignByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), updated.DonorCount)
		assert.Equal(t, weiPoint3, updated.TotalRaised)

		row, err := env.Store.GetCampaignDonorTotal(ctx, campaign.ID, donorA)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, "200000000000000000", row.Total)
	})

	t.Run("donation rejections", func(t *testing.T) {
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiTenth)

		_, err := env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.ZeroAmount(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = env.Store.Donate(ctx, DonateInput{
			CampaignID: 999999,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		assert.ErrorIs(t, err, domain.ErrCampaignNotFound)

		_, err = env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiOne),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		_, err = env.Store.UpdateCampaignStatus(ctx, UpdateCampaignStatusInput{
			CampaignID: campaign.ID,
			Caller:     charity,
			Active:     false,
		})
		require.NoError(t, err)

		_, err = env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		assert.ErrorIs(t, err, domain.ErrCampaignNotActive)
	})
}

// =============================================================================
// Test: ClaimMilestone
// =============================================================================

func testClaimMilestone(t *testing.T, env *testEnv) {
	ctx := context.Background()
	seedTestMilestones(t, env)

	t.Run("campaign track mints the badge once", func(t *testing.T) {
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiOne)

		_, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		assert.ErrorIs(t, err, domain.ErrThresholdNotMet)

		_, err = env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		require.NoError(t, err)

		result, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, donorA, result.Token.OwnerAddress)
		assert.Equal(t, "ipfs://badge-bronze", result.Token.TokenURI)
		assert.Equal(t, domain.EventTypeMilestoneClaimed, result.Event.Type)

		claims, err := env.Store.GetCampaignMilestoneClaims(ctx, campaign.ID, donorA)
		require.NoError(t, err)
		require.Len(t, claims, 1)
		assert.Equal(t, result.Token.ID, claims[0].TokenID)

		// Claims are permanent
		_, err = env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	})

	t.Run("global track aggregates across campaigns", func(t *testing.T) {
		first := createTestCampaign(t, env)
		second := createTestCampaign(t, env)
		fundAccount(t, env, donorB, weiOne)

		for _, campaignID := range []uint64{first.ID, second.ID} {
			_, err := env.Store.Donate(ctx, DonateInput{
				CampaignID: campaignID,
				Donor:      donorB,
				Amount:     domain.MustAmount(weiPoint05),
			})
			require.NoError(t, err)
		}

		// Neither campaign total reaches 0.1 on its own
		_, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     first.ID,
			Donor:          donorB,
			MilestoneIndex: 0,
		})
		assert.ErrorIs(t, err, domain.ErrThresholdNotMet)

		// The global total of 0.1 does
		result, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeGlobal,
			Donor:          donorB,
			MilestoneIndex: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, donorB, result.Token.OwnerAddress)

		summary, err := env.Store.GetDonorSummary(ctx, donorB)
		require.NoError(t, err)
		assert.Equal(t, weiTenth, summary.GlobalTotal.String())
		require.Len(t, summary.GlobalClaims, 1)
		assert.Equal(t, uint32(0), summary.GlobalClaims[0].MilestoneIndex)

		_, err = env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeGlobal,
			Donor:          donorB,
			MilestoneIndex: 0,
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	})

	t.Run("unknown milestone", func(t *testing.T) {
		campaign := createTestCampaign(t, env)

		_, err := env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 42,
		})
		assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
	})

	t.Run("a raised threshold does not reopen a claim", func(t *testing.T) {
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiOne)

		_, err := env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		require.NoError(t, err)
		_, err = env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		require.NoError(t, err)

		err = env.Store.UpdateMilestone(ctx, 0, MilestoneInput{
			Index:     0,
			Threshold: domain.MustAmount(weiFive),
			RewardURI: "ipfs://badge-bronze",
		})
		require.NoError(t, err)

		// The claim record wins over the now-unmet threshold
		_, err = env.Store.ClaimMilestone(ctx, ClaimMilestoneInput{
			Scope:          domain.ScopeCampaign,
			CampaignID:     campaign.ID,
			Donor:          donorA,
			MilestoneIndex: 0,
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
	})
}

// =============================================================================
// Test: Queries and Stats
// =============================================================================

func testQueriesAndStats(t *testing.T, env *testEnv) {
	ctx := context.Background()

	t.Run("listing filters", func(t *testing.T) {
		first := openTestListing(t, env)
		second := openTestListing(t, env)
		env.Clock.Advance(time.Hour + time.Second)
		_, err := env.Store.CompleteAuction(ctx, CompleteAuctionInput{ListingID: first.ID, Caller: seller})
		require.NoError(t, err)

		open, total, err := env.Store.GetListingsByFilter(ctx, ListingFilter{
			Status: schema.ListingStatusOpen,
			Seller: seller,
			Limit:  100,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, open, 1)
		assert.Equal(t, second.ID, open[0].ID)
	})

	t.Run("bid lookups", func(t *testing.T) {
		listing := openTestListing(t, env)
		fundAccount(t, env, bidderA, weiOne)
		_, err := env.Store.PlaceBid(ctx, PlaceBidInput{
			ListingID: listing.ID,
			Bidder:    bidderA,
			Amount:    domain.MustAmount(weiHalf),
		})
		require.NoError(t, err)

		bid, err := env.Store.GetBid(ctx, listing.ID, bidderA)
		require.NoError(t, err)
		require.NotNil(t, bid)
		assert.Equal(t, weiHalf, bid.Amount)

		none, err := env.Store.GetBid(ctx, listing.ID, bidderB)
		require.NoError(t, err)
		assert.Nil(t, none)

		bids, err := env.Store.GetListingBids(ctx, listing.ID)
		require.NoError(t, err)
		assert.Len(t, bids, 1)
	})

	t.Run("platform stats", func(t *testing.T) {
		seedTestMilestones(t, env)
		campaign := createTestCampaign(t, env)
		fundAccount(t, env, donorA, weiOne)
		_, err := env.Store.Donate(ctx, DonateInput{
			CampaignID: campaign.ID,
			Donor:      donorA,
			Amount:     domain.MustAmount(weiTenth),
		})
		require.NoError(t, err)

		stats, err := env.Store.GetPlatformStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, weiTenth, stats.TotalDonations.String())
		assert.Equal(t, uint64(1), stats.TotalDonorCount)
		assert.Equal(t, uint64(1), stats.CampaignCount)
		assert.Equal(t, uint64(2), stats.MilestoneCount)
		assert.False(t, stats.Paused)
	})

	t.Run("journal keeps one row per mutation", func(t *testing.T) {
		var before int64
		require.NoError(t, env.DB.Model(&schema.LedgerEvent{}).Count(&before).Error)

		mintTestToken(t, env, seller)

		var after int64
		require.NoError(t, env.DB.Model(&schema.LedgerEvent{}).Count(&after).Error)
		assert.Equal(t, before+1, after)

		var row schema.LedgerEvent
		require.NoError(t, env.DB.Order("id DESC").First(&row).Error)
		assert.Equal(t, string(domain.EventTypeMinted), row.EventType)
		assert.NotEmpty(t, row.EventID)
		assert.NotEmpty(t, row.Payload)
	})
}

// RunStoreTests runs the behavioral suite against a store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) *testEnv, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, *testEnv)
	}{
		{"MintToken", testMintToken},
		{"Accounts", testAccounts},
		{"PlatformState", testPlatformState},
		{"Milestones", testMilestones},
		{"CreateListing", testCreateListing},
		{"PlaceBid", testPlaceBid},
		{"CompleteAuction", testCompleteAuction},
		{"WithdrawBid", testWithdrawBid},
		{"PauseGating", testPauseGating},
		{"Campaigns", testCampaigns},
		{"Donate", testDonate},
		{"ClaimMilestone", testClaimMilestone},
		{"QueriesAndStats", testQueriesAndStats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, env)
		})
	}
}
