package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/donat3/ledger-core/internal/adapter"
	"github.com/donat3/ledger-core/internal/domain"
	"github.com/donat3/ledger-core/internal/store/schema"
)

// platformStateID is the primary key of the singleton platform_state row
const platformStateID = 1

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
	json  adapter.JSON
}

// NewPGStore creates a new PostgreSQL store instance. The clock drives all
// end-time arithmetic so tests can move time without sleeping.
func NewPGStore(db *gorm.DB, clock adapter.Clock, json adapter.JSON) Store {
	return &pgStore{db: db, clock: clock, json: json}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. It accesses the underlying *sql.DB and sets the pool
// configuration. If any of the pool settings are 0 or empty, reasonable
// defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	// Set defaults if not provided
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// journalEvent appends a ledger event inside the operation's transaction and
// returns the envelope for post-commit publishing
func (s *pgStore) journalEvent(tx *gorm.DB, eventType domain.EventType, payload interface{}) (*domain.LedgerEvent, error) {
	event := &domain.LedgerEvent{
		ID:        ulid.Make().String(),
		Type:      eventType,
		Timestamp: s.clock.Now().UTC(),
		Payload:   payload,
	}

	raw, err := s.json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	row := schema.LedgerEvent{
		EventID:   event.ID,
		EventType: string(eventType),
		Payload:   raw,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to journal event: %w", err)
	}

	return event, nil
}

// lockPlatformState loads the singleton state row with a row lock. Every
// transaction that consults Paused or the increment setting takes this lock,
// which lines the writers up behind each other.
func (s *pgStore) lockPlatformState(tx *gorm.DB) (*schema.PlatformState, error) {
	var state schema.PlatformState
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", platformStateID).
		First(&state).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock platform state: %w", err)
	}
	return &state, nil
}

// parseStoredAmount parses a numeric(78,0) column value. The database never
// holds anything unparseable, so a failure here is an infrastructure error.
func parseStoredAmount(s string) (domain.Amount, error) {
	a, err := domain.ParseAmount(s)
	if err != nil {
		return domain.Amount{}, fmt.Errorf("corrupt stored amount %q: %w", s, err)
	}
	return a, nil
}

// creditAccountTx adds funds to an account inside a transaction, creating the
// row on first use. Returns the new balance.
func (s *pgStore) creditAccountTx(tx *gorm.DB, address string, amount domain.Amount) (domain.Amount, error) {
	var account schema.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			account = schema.Account{
				Address: address,
				Balance: amount.String(),
			}
			if err := tx.Create(&account).Error; err != nil {
				return domain.Amount{}, fmt.Errorf("failed to create account: %w", err)
			}
			return amount, nil
		}
		return domain.Amount{}, fmt.Errorf("failed to lock account: %w", err)
	}

	balance, err := parseStoredAmount(account.Balance)
	if err != nil {
		return domain.Amount{}, err
	}
	newBalance := balance.Add(amount)

	if err := tx.Model(&account).
		Updates(map[string]interface{}{
			"balance":    newBalance.String(),
			"updated_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return domain.Amount{}, fmt.Errorf("failed to credit account: %w", err)
	}

	return newBalance, nil
}

// debitAccountTx removes funds from an account inside a transaction. A debit
// below zero returns ErrInsufficientFunds and aborts the caller's transaction.
func (s *pgStore) debitAccountTx(tx *gorm.DB, address string, amount domain.Amount) error {
	var account schema.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}

	balance, err := parseStoredAmount(account.Balance)
	if err != nil {
		return err
	}
	newBalance, ok := balance.Sub(amount)
	if !ok {
		return domain.ErrInsufficientFunds
	}

	if err := tx.Model(&account).
		Updates(map[string]interface{}{
			"balance":    newBalance.String(),
			"updated_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return fmt.Errorf("failed to debit account: %w", err)
	}

	return nil
}

// mintTokenTx creates a reward token inside a transaction
func (s *pgStore) mintTokenTx(tx *gorm.DB, to, tokenURI string) (*schema.RewardToken, error) {
	token := schema.RewardToken{
		OwnerAddress: to,
		TokenURI:     tokenURI,
	}
	if err := tx.Create(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}
	return &token, nil
}

// MintToken mints a reward token to a recipient. Rejected while paused.
func (s *pgStore) MintToken(ctx context.Context, input MintTokenInput) (*MintTokenResult, error) {
	var result MintTokenResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}
		if state.Paused {
			return domain.ErrPaused
		}

		token, err := s.mintTokenTx(tx, input.To, input.TokenURI)
		if err != nil {
			return err
		}

		event, err := s.journalEvent(tx, domain.EventTypeMinted, domain.MintedEvent{
			To:       token.OwnerAddress,
			TokenID:  token.ID,
			TokenURI: token.TokenURI,
		})
		if err != nil {
			return err
		}

		result.Token = token
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTokenByID retrieves a reward token by id
func (s *pgStore) GetTokenByID(ctx context.Context, tokenID uint64) (*schema.RewardToken, error) {
	var token schema.RewardToken
	err := s.db.WithContext(ctx).Where("id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// GetTokensByOwner retrieves the tokens owned by an address
func (s *pgStore) GetTokensByOwner(ctx context.Context, owner string, limit int, offset uint64) ([]schema.RewardToken, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.RewardToken{}).Where("owner_address = ?", owner)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	var tokens []schema.RewardToken
	query = query.Order("id ASC").Limit(limit).Offset(int(offset)) //nolint:gosec,G115
	if err := query.Find(&tokens).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, uint64(total), nil //nolint:gosec,G115
}

// CreditAccount credits an account balance, creating the account on first use
func (s *pgStore) CreditAccount(ctx context.Context, input CreditAccountInput) (*CreditAccountResult, error) {
	var result CreditAccountResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.creditAccountTx(tx, input.Address, input.Amount)
		if err != nil {
			return err
		}

		event, err := s.journalEvent(tx, domain.EventTypeAccountCredited, domain.AccountCreditedEvent{
			Address: input.Address,
			Amount:  input.Amount.String(),
			Balance: balance.String(),
		})
		if err != nil {
			return err
		}

		result.Account = &schema.Account{
			Address: input.Address,
			Balance: balance.String(),
		}
		result.Event = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAccount retrieves an account by address
func (s *pgStore) GetAccount(ctx context.Context, address string) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetPlatformState retrieves the singleton platform state row
func (s *pgStore) GetPlatformState(ctx context.Context) (*schema.PlatformState, error) {
	var state schema.PlatformState
	err := s.db.WithContext(ctx).Where("id = ?", platformStateID).First(&state).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get platform state: %w", err)
	}
	return &state, nil
}

// InitPlatformState inserts the singleton state row if it does not exist yet.
// Called once at startup; a row already present is left untouched.
func (s *pgStore) InitPlatformState(ctx context.Context, minAuctionIncrementBps uint32) error {
	state := schema.PlatformState{
		ID:                     platformStateID,
		MinAuctionIncrementBps: minAuctionIncrementBps,
		TotalDonations:         "0",
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("failed to init platform state: %w", err)
	}
	return nil
}

// SetPaused toggles the pause switch
func (s *pgStore) SetPaused(ctx context.Context, paused bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}
		if state.Paused == paused {
			return nil
		}
		if err := tx.Model(state).
			Updates(map[string]interface{}{
				"paused":     paused,
				"updated_at": gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to set paused: %w", err)
		}
		return nil
	})
}

// UpdateMinAuctionIncrement updates the minimum bid raise in basis points
func (s *pgStore) UpdateMinAuctionIncrement(ctx context.Context, bps uint32) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := s.lockPlatformState(tx)
		if err != nil {
			return err
		}
		if err := tx.Model(state).
			Updates(map[string]interface{}{
				"min_auction_increment_bps": bps,
				"updated_at":                gorm.Expr("now()"),
			}).Error; err != nil {
			return fmt.Errorf("failed to update min auction increment: %w", err)
		}
		return nil
	})
}

// CreateMilestone appends a milestone definition
func (s *pgStore) CreateMilestone(ctx context.Context, input MilestoneInput) (*schema.Milestone, error) {
	milestone := schema.Milestone{
		Index:     input.Index,
		Threshold: input.Threshold.String(),
		RewardURI: input.RewardURI,
	}
	err := s.db.WithContext(ctx).Create(&milestone).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return &milestone, nil
}

// UpdateMilestone replaces an existing milestone definition
func (s *pgStore) UpdateMilestone(ctx context.Context, index uint32, input MilestoneInput) error {
	result := s.db.WithContext(ctx).Model(&schema.Milestone{}).
		Where("index = ?", index).
		Updates(map[string]interface{}{
			"threshold":  input.Threshold.String(),
			"reward_uri": input.RewardURI,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update milestone: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrMilestoneNotFound
	}
	return nil
}

// GetMilestones retrieves all milestone definitions ordered by index
func (s *pgStore) GetMilestones(ctx context.Context) ([]schema.Milestone, error) {
	var milestones []schema.Milestone
	err := s.db.WithContext(ctx).Order("index ASC").Find(&milestones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get milestones: %w", err)
	}
	return milestones, nil
}

// SeedMilestones inserts the initial definitions when the table is empty.
// A non-empty table means a previous boot (or the admin API) already defined
// the list, and the seed is skipped entirely.
func (s *pgStore) SeedMilestones(ctx context.Context, inputs []MilestoneInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&schema.Milestone{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count milestones: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, input := range inputs {
			milestone := schema.Milestone{
				Index:     input.Index,
				Threshold: input.Threshold.String(),
				RewardURI: input.RewardURI,
			}
			if err := tx.Create(&milestone).Error; err != nil {
				return fmt.Errorf("failed to seed milestone %d: %w", input.Index, err)
			}
		}
		return nil
	})
}
