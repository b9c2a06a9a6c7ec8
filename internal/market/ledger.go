// Package market implements the listing ledger: fixed-price listings with
// custody held by the ledger, fee accounting and single-transition purchase
// settlement.
package market

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/artfolio/marketplace-ledger/internal/adapter"
	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/logger"
	"github.com/artfolio/marketplace-ledger/internal/messaging"
	"github.com/artfolio/marketplace-ledger/internal/store"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

// Config holds the ledger's immutable construction parameters
type Config struct {
	// FeePercent is the marketplace fee in whole percent (e.g. 1 means 1%),
	// fixed for the ledger's lifetime
	FeePercent uint64
	// FeeRecipient receives the marketplace's cut of each purchase
	FeeRecipient common.Address
	// Custodian is the ledger's own address; it holds listed assets for the
	// listing's duration
	Custodian common.Address
	// Registry is the asset registry identity carried in event payloads
	Registry common.Address
}

// Ledger defines the listing ledger operations
type Ledger interface {
	// MakeItem lists an asset at a seller-chosen price, transferring custody
	// to the ledger, and returns the new listing with its Offered event
	MakeItem(ctx context.Context, seller common.Address, assetID uint64, price domain.Amount) (*schema.Listing, *domain.MarketEvent, error)
	// Purchase settles a listing: pays the seller and the fee recipient,
	// transfers the asset to the buyer and marks the listing sold
	Purchase(ctx context.Context, buyer common.Address, listingID uint64, attachedValue domain.Amount) (*schema.Listing, *domain.MarketEvent, error)
	// TotalPrice returns price + price*feePercent/100 for a listing
	TotalPrice(ctx context.Context, listingID uint64) (domain.Amount, error)
	// Item retrieves the full listing record, sold listings included
	Item(ctx context.Context, listingID uint64) (*schema.Listing, error)
	// Items retrieves listings with optional filters plus the total count
	Items(ctx context.Context, filter store.ListingQueryFilter) ([]*schema.Listing, uint64, error)
	// ItemCount returns the number of listings ever created
	ItemCount(ctx context.Context) (uint64, error)

	// Deposit credits the caller's settlement account
	Deposit(ctx context.Context, caller common.Address, amount domain.Amount) (*schema.Account, error)
	// Account retrieves a settlement account by address
	Account(ctx context.Context, address common.Address) (*schema.Account, error)

	// Events retrieves journal entries in append order with optional filters
	Events(ctx context.Context, filter store.EventQueryFilter) ([]*schema.MarketEvent, uint64, error)

	// FeePercent returns the immutable fee percentage
	FeePercent() uint64
	// FeeRecipient returns the fee recipient address
	FeeRecipient() common.Address
}

type ledger struct {
	cfg       Config
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	ids       adapter.IDGenerator
}

// NewLedger creates a new listing ledger. The publisher may be nil, in which
// case events are journaled but not published.
func NewLedger(cfg Config, s store.Store, publisher messaging.Publisher, clock adapter.Clock, ids adapter.IDGenerator) Ledger {
	return &ledger{
		cfg:       cfg,
		store:     s,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
	}
}

func (l *ledger) MakeItem(ctx context.Context, seller common.Address, assetID uint64, price domain.Amount) (*schema.Listing, *domain.MarketEvent, error) {
	if price.Sign() <= 0 {
		return nil, nil, domain.ErrInvalidPrice
	}

	listing, event, err := l.store.CreateListing(ctx, store.CreateListingInput{
		AssetID:   assetID,
		Price:     price,
		Seller:    seller,
		Custodian: l.cfg.Custodian,
		Registry:  l.cfg.Registry,
		EventID:   l.ids.NewID(),
		Now:       l.clock.Now(),
	})
	if err != nil {
		return nil, nil, err
	}

	logger.InfoCtx(ctx, "Created listing",
		zap.Uint64("listing_id", listing.ID),
		zap.Uint64("asset_id", assetID),
		zap.String("price", price.String()),
		zap.String("seller", seller.Hex()),
	)
	l.publish(ctx, event)

	return listing, event, nil
}

func (l *ledger) Purchase(ctx context.Context, buyer common.Address, listingID uint64, attachedValue domain.Amount) (*schema.Listing, *domain.MarketEvent, error) {
	listing, event, err := l.store.SettlePurchase(ctx, store.SettlePurchaseInput{
		ListingID:    listingID,
		Buyer:        buyer,
		PaidValue:    attachedValue,
		FeePercent:   l.cfg.FeePercent,
		FeeRecipient: l.cfg.FeeRecipient,
		Custodian:    l.cfg.Custodian,
		Registry:     l.cfg.Registry,
		EventID:      l.ids.NewID(),
		Now:          l.clock.Now(),
	})
	if err != nil {
		return nil, nil, err
	}

	logger.InfoCtx(ctx, "Purchased listing",
		zap.Uint64("listing_id", listing.ID),
		zap.String("buyer", buyer.Hex()),
		zap.String("paid", attachedValue.String()),
	)
	l.publish(ctx, event)

	return listing, event, nil
}

func (l *ledger) TotalPrice(ctx context.Context, listingID uint64) (domain.Amount, error) {
	listing, err := l.Item(ctx, listingID)
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.TotalPrice(listing.Price, l.cfg.FeePercent), nil
}

func (l *ledger) Item(ctx context.Context, listingID uint64) (*schema.Listing, error) {
	listing, err := l.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrUnknownListing
	}
	return listing, nil
}

func (l *ledger) Items(ctx context.Context, filter store.ListingQueryFilter) ([]*schema.Listing, uint64, error) {
	return l.store.ListListings(ctx, filter)
}

func (l *ledger) ItemCount(ctx context.Context) (uint64, error) {
	return l.store.CountListings(ctx)
}

func (l *ledger) Deposit(ctx context.Context, caller common.Address, amount domain.Amount) (*schema.Account, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := l.store.CreditAccount(ctx, caller, amount)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Deposited funds",
		zap.String("address", caller.Hex()),
		zap.String("amount", amount.String()),
		zap.String("balance", account.Balance.String()),
	)
	return account, nil
}

func (l *ledger) Account(ctx context.Context, address common.Address) (*schema.Account, error) {
	account, err := l.store.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrUnknownAccount
	}
	return account, nil
}

func (l *ledger) Events(ctx context.Context, filter store.EventQueryFilter) ([]*schema.MarketEvent, uint64, error) {
	return l.store.ListEvents(ctx, filter)
}

func (l *ledger) FeePercent() uint64 {
	return l.cfg.FeePercent
}

func (l *ledger) FeeRecipient() common.Address {
	return l.cfg.FeeRecipient
}

// publish forwards an event to the broker after the state change has
// committed. Delivery is best-effort: the journal row is the durable record,
// so a broker failure is logged, not surfaced to the caller.
func (l *ledger) publish(ctx context.Context, event *domain.MarketEvent) {
	if l.publisher == nil || event == nil {
		return
	}
	if err := l.publisher.PublishEvent(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
	}
}
