package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

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
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// CreateAsset mints a new asset owned by owner
func (s *pgStore) CreateAsset(ctx context.Context, owner common.Address, tokenURI string) (uint64, error) {
	asset := schema.Asset{
		Owner:    owner.Hex(),
		TokenURI: tokenURI,
	}
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return 0, fmt.Errorf("failed to create asset: %w", err)
	}
	return asset.ID, nil
}

// GetAsset retrieves an asset by id
func (s *pgStore) GetAsset(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).Where("id = ?", assetID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// CountAssets returns the total number of minted assets
func (s *pgStore) CountAssets(ctx context.Context) (uint64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Asset{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return uint64(count), nil
}

// CountAssetsByOwner returns the number of assets held by owner
func (s *pgStore) CountAssetsByOwner(ctx context.Context, owner common.Address) (uint64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Where("owner = ?", owner.Hex()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assets by owner: %w", err)
	}
	return uint64(count), nil
}

// SetOperatorApproval grants or revokes blanket transfer rights
func (s *pgStore) SetOperatorApproval(ctx context.Context, owner, operator common.Address, approved bool) error {
	approval := schema.OperatorApproval{
		Owner:    owner.Hex(),
		Operator: operator.Hex(),
		Approved: approved,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "operator"}},
		DoUpdates: clause.AssignmentColumns([]string{"approved", "updated_at"}),
	}).Create(&approval).Error
	if err != nil {
		return fmt.Errorf("failed to set operator approval: %w", err)
	}
	return nil
}

// IsApprovedForAll reports whether operator holds a blanket grant from owner
func (s *pgStore) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	approved, err := isApprovedForAll(s.db.WithContext(ctx), owner, operator)
	if err != nil {
		return false, fmt.Errorf("failed to check operator approval: %w", err)
	}
	return approved, nil
}

func isApprovedForAll(tx *gorm.DB, owner, operator common.Address) (bool, error) {
	var approval schema.OperatorApproval
	err := tx.
		Where("owner = ? AND operator = ?", owner.Hex(), operator.Hex()).
		First(&approval).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return approval.Approved, nil
}

// TransferAsset reassigns ownership atomically, enforcing the
// owner-or-approved-operator authorization rule
func (s *pgStore) TransferAsset(ctx context.Context, input TransferAssetInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		if asset.Owner != input.From.Hex() {
			return domain.ErrNotAuthorized
		}
		if err := authorizeTransfer(tx, input.Caller, input.From); err != nil {
			return err
		}

		return moveAsset(tx, asset, input.To)
	})
}

// lockAsset fetches an asset row with a FOR UPDATE lock, mapping a missing
// row to ErrUnknownAsset
func lockAsset(tx *gorm.DB, assetID uint64) (*schema.Asset, error) {
	var asset schema.Asset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", assetID).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownAsset
		}
		return nil, fmt.Errorf("failed to lock asset: %w", err)
	}
	return &asset, nil
}

// authorizeTransfer enforces the owner-or-approved-operator rule
func authorizeTransfer(tx *gorm.DB, caller, owner common.Address) error {
	if caller == owner {
		return nil
	}
	approved, err := isApprovedForAll(tx, owner, caller)
	if err != nil {
		return fmt.Errorf("failed to check operator approval: %w", err)
	}
	if !approved {
		return domain.ErrNotAuthorized
	}
	return nil
}

func moveAsset(tx *gorm.DB, asset *schema.Asset, to common.Address) error {
	err := tx.Model(&schema.Asset{}).
		Where("id = ?", asset.ID).
		Update("owner", to.Hex()).Error
	if err != nil {
		return fmt.Errorf("failed to transfer asset: %w", err)
	}
	return nil
}

// CreateListing moves the asset into ledger custody, allocates the listing
// and appends the Offered journal entry in a single transaction
func (s *pgStore) CreateListing(ctx context.Context, input CreateListingInput) (*schema.Listing, *domain.MarketEvent, error) {
	var listing schema.Listing
	var event *domain.MarketEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		// The seller must own the asset, and the ledger must already hold a
		// blanket operator grant from the seller; the custody transfer below
		// is performed by the ledger acting as operator.
		if asset.Owner != input.Seller.Hex() {
			return domain.ErrNotAuthorized
		}
		if err := authorizeTransfer(tx, input.Custodian, input.Seller); err != nil {
			return err
		}

		if err := moveAsset(tx, asset, input.Custodian); err != nil {
			return err
		}

		listing = schema.Listing{
			AssetID: input.AssetID,
			Price:   input.Price,
			Seller:  input.Seller.Hex(),
		}
		if err := tx.Create(&listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		event = &domain.MarketEvent{
			ID:        input.EventID,
			Type:      domain.EventTypeOffered,
			ListingID: listing.ID,
			Registry:  input.Registry,
			AssetID:   input.AssetID,
			Price:     input.Price,
			Seller:    input.Seller,
			Timestamp: input.Now,
		}
		return appendEvent(tx, event)
	})
	if err != nil {
		return nil, nil, err
	}

	return &listing, event, nil
}

// GetListing retrieves a listing by id
func (s *pgStore) GetListing(ctx context.Context, listingID uint64) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// ListListings retrieves listings with optional filters plus the total count
func (s *pgStore) ListListings(ctx context.Context, filter ListingQueryFilter) ([]*schema.Listing, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Listing{})
	if filter.Seller != nil {
		query = query.Where("seller = ?", filter.Seller.Hex())
	}
	if filter.Sold != nil {
		query = query.Where("sold = ?", *filter.Sold)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []*schema.Listing
	err := query.
		Order("id ASC").
		Limit(filter.Limit).
		Offset(int(filter.Offset)). //nolint:gosec
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, uint64(total), nil
}

// CountListings returns the number of listings ever created
func (s *pgStore) CountListings(ctx context.Context) (uint64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Listing{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return uint64(count), nil
}

// SettlePurchase performs the full purchase settlement atomically: the
// buyer's account is debited the attached value, the seller is credited the
// listing price, the fee recipient is credited the remainder, custody moves
// to the buyer and the listing is marked sold.
func (s *pgStore) SettlePurchase(ctx context.Context, input SettlePurchaseInput) (*schema.Listing, *domain.MarketEvent, error) {
	var listing schema.Listing
	var event *domain.MarketEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Preconditions are checked in order: existence, sold flag, payment.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.ListingID).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUnknownListing
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if listing.Sold {
			return domain.ErrAlreadySold
		}

		total := domain.TotalPrice(listing.Price, input.FeePercent)
		if input.PaidValue.Cmp(total) < 0 {
			return domain.ErrInsufficientPayment
		}

		seller, err := domain.ParseAddress(listing.Seller)
		if err != nil {
			return fmt.Errorf("corrupt seller address on listing %d: %w", listing.ID, err)
		}

		// Pay the seller the listing price; everything above it goes to the
		// fee recipient, so any overpayment becomes marketplace fee.
		if err := debitAccount(tx, input.Buyer, input.PaidValue, input.Now); err != nil {
			return err
		}
		if err := creditAccount(tx, seller, listing.Price, input.Now); err != nil {
			return err
		}
		if err := creditAccount(tx, input.FeeRecipient, input.PaidValue.Sub(listing.Price), input.Now); err != nil {
			return err
		}

		asset, err := lockAsset(tx, listing.AssetID)
		if err != nil {
			return err
		}
		if asset.Owner != input.Custodian.Hex() {
			return fmt.Errorf("listing %d asset %d is not in ledger custody", listing.ID, asset.ID)
		}
		if err := moveAsset(tx, asset, input.Buyer); err != nil {
			return err
		}

		buyerHex := input.Buyer.Hex()
		updates := map[string]any{
			"sold":    true,
			"buyer":   buyerHex,
			"sold_at": input.Now,
		}
		if err := tx.Model(&schema.Listing{}).Where("id = ?", listing.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to mark listing sold: %w", err)
		}
		listing.Sold = true
		listing.Buyer = &buyerHex
		listing.SoldAt = &input.Now

		buyer := input.Buyer
		event = &domain.MarketEvent{
			ID:        input.EventID,
			Type:      domain.EventTypeBought,
			ListingID: listing.ID,
			Registry:  input.Registry,
			AssetID:   listing.AssetID,
			Price:     listing.Price,
			Seller:    seller,
			Buyer:     &buyer,
			Timestamp: input.Now,
		}
		return appendEvent(tx, event)
	})
	if err != nil {
		return nil, nil, err
	}

	return &listing, event, nil
}

// CreditAccount adds funds to an account, creating it if needed
func (s *pgStore) CreditAccount(ctx context.Context, address common.Address, amount domain.Amount) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := creditAccount(tx, address, amount, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Where("address = ?", address.Hex()).First(&account).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}
	return &account, nil
}

// GetAccount retrieves an account by address
func (s *pgStore) GetAccount(ctx context.Context, address common.Address) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Where("address = ?", address.Hex()).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// creditAccount upserts an account row, adding amount to its balance
func creditAccount(tx *gorm.DB, address common.Address, amount domain.Amount, now time.Time) error {
	account := schema.Account{
		Address: address.Hex(),
		Balance: amount,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance":    gorm.Expr("accounts.balance + excluded.balance"),
			"updated_at": now,
		}),
	}).Create(&account).Error
	if err != nil {
		return fmt.Errorf("failed to credit account %s: %w", address.Hex(), err)
	}
	return nil
}

// debitAccount subtracts amount from an account balance under a row lock,
// rejecting overdrafts
func debitAccount(tx *gorm.DB, address common.Address, amount domain.Amount, now time.Time) error {
	var account schema.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("address = ?", address.Hex()).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to lock account: %w", err)
	}

	if account.Balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}

	err = tx.Model(&schema.Account{}).
		Where("address = ?", address.Hex()).
		Updates(map[string]any{
			"balance":    account.Balance.Sub(amount),
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", address.Hex(), err)
	}
	return nil
}

// appendEvent inserts a journal row for the event in the surrounding
// transaction
func appendEvent(tx *gorm.DB, event *domain.MarketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	row := schema.MarketEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
		ListingID: event.ListingID,
		Seller:    event.Seller.Hex(),
		Payload:   payload,
		CreatedAt: event.Timestamp,
	}
	if event.Buyer != nil {
		buyer := event.Buyer.Hex()
		row.Buyer = &buyer
	}

	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append event journal entry: %w", err)
	}
	return nil
}

// ListEvents retrieves journal entries in append order with optional filters
func (s *pgStore) ListEvents(ctx context.Context, filter EventQueryFilter) ([]*schema.MarketEvent, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.MarketEvent{})
	if filter.EventType != nil {
		query = query.Where("event_type = ?", string(*filter.EventType))
	}
	if filter.Seller != nil {
		query = query.Where("seller = ?", filter.Seller.Hex())
	}
	if filter.Buyer != nil {
		query = query.Where("buyer = ?", filter.Buyer.Hex())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []*schema.MarketEvent
	err := query.
		Order("id ASC").
		Limit(filter.Limit).
		Offset(int(filter.Offset)). //nolint:gosec
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, uint64(total), nil
}
