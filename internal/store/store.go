package store

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/artfolio/marketplace-ledger/internal/domain"
	"github.com/artfolio/marketplace-ledger/internal/store/schema"
)

// TransferAssetInput holds the parameters for an ownership transfer
type TransferAssetInput struct {
	// Caller is the identity attempting the transfer; must be the asset
	// owner or an approved operator
	Caller  common.Address
	From    common.Address
	To      common.Address
	AssetID uint64
}

// CreateListingInput holds the parameters for creating a listing with its
// custody transfer and Offered journal entry
type CreateListingInput struct {
	AssetID uint64
	Price   domain.Amount
	Seller  common.Address
	// Custodian is the ledger's own address; it takes custody of the asset
	// for the listing's duration
	Custodian common.Address
	// Registry is the asset registry identity carried in the event payload
	Registry common.Address
	EventID  string
	Now      time.Time
}

// SettlePurchaseInput holds the parameters for a purchase settlement
type SettlePurchaseInput struct {
	ListingID uint64
	Buyer     common.Address
	// PaidValue is the full attached value; everything above the listing
	// price is remitted to the fee recipient
	PaidValue    domain.Amount
	FeePercent   uint64
	FeeRecipient common.Address
	Custodian    common.Address
	Registry     common.Address
	EventID      string
	Now          time.Time
}

// ListingQueryFilter holds filters for listing queries
type ListingQueryFilter struct {
	Seller *common.Address
	Sold   *bool
	Limit  int
	Offset uint64
}

// EventQueryFilter holds filters for journal queries
type EventQueryFilter struct {
	EventType *domain.EventType
	Seller    *common.Address
	Buyer     *common.Address
	Limit     int
	Offset    uint64
}

// Store defines the persistence interface for the marketplace ledger.
// Every mutating method is a single all-or-nothing transaction: a
// precondition failure rolls back completely and surfaces one of the
// domain sentinel errors.
type Store interface {
	// CreateAsset mints a new asset owned by owner and returns its id
	CreateAsset(ctx context.Context, owner common.Address, tokenURI string) (uint64, error)
	// GetAsset retrieves an asset by id, returning nil if never minted
	GetAsset(ctx context.Context, assetID uint64) (*schema.Asset, error)
	// CountAssets returns the total number of minted assets
	CountAssets(ctx context.Context) (uint64, error)
	// CountAssetsByOwner returns the number of assets held by owner
	CountAssetsByOwner(ctx context.Context, owner common.Address) (uint64, error)
	// SetOperatorApproval grants or revokes blanket transfer rights; idempotent
	SetOperatorApproval(ctx context.Context, owner, operator common.Address, approved bool) error
	// IsApprovedForAll reports whether operator holds a blanket grant from owner
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	// TransferAsset reassigns ownership, enforcing the owner-or-operator rule
	TransferAsset(ctx context.Context, input TransferAssetInput) error

	// CreateListing moves the asset into ledger custody, allocates the
	// listing and appends the Offered journal entry in one transaction
	CreateListing(ctx context.Context, input CreateListingInput) (*schema.Listing, *domain.MarketEvent, error)
	// GetListing retrieves a listing by id, returning nil if never allocated
	GetListing(ctx context.Context, listingID uint64) (*schema.Listing, error)
	// ListListings retrieves listings with optional filters plus the total count
	ListListings(ctx context.Context, filter ListingQueryFilter) ([]*schema.Listing, uint64, error)
	// CountListings returns the number of listings ever created
	CountListings(ctx context.Context) (uint64, error)
	// SettlePurchase performs the full purchase settlement: payment split,
	// custody transfer, sold flag and the Bought journal entry
	SettlePurchase(ctx context.Context, input SettlePurchaseInput) (*schema.Listing, *domain.MarketEvent, error)

	// CreditAccount adds funds to an account, creating it if needed
	CreditAccount(ctx context.Context, address common.Address, amount domain.Amount) (*schema.Account, error)
	// GetAccount retrieves an account by address, returning nil if never funded
	GetAccount(ctx context.Context, address common.Address) (*schema.Account, error)

	// ListEvents retrieves journal entries in append order with optional filters
	ListEvents(ctx context.Context, filter EventQueryFilter) ([]*schema.MarketEvent, uint64, error)
}
