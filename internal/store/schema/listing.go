package schema

import (
	"time"

	"github.com/artfolio/marketplace-ledger/internal/domain"
)

// Listing represents the listings table - an offer to sell an asset at a
// fixed price. Listings are never deleted; sold listings remain queryable
// as historical records.
type Listing struct {
	// ID is the listing identifier, dense from 1, assigned at creation
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AssetID references the listed asset (weak reference: the ledger holds
	// custody while the listing is open, not ownership)
	AssetID uint64 `gorm:"column:asset_id;not null;index:idx_listings_asset"`
	// Price is the seller-chosen price, immutable after creation
	// (stored as numeric(78,0) to support wei-scale values)
	Price domain.Amount `gorm:"column:price;not null;type:numeric(78,0)"`
	// Seller is the lister's address
	Seller string `gorm:"column:seller;not null;type:text;index:idx_listings_seller"`
	// Sold transitions false -> true at most once; there is no un-sale
	Sold bool `gorm:"column:sold;not null;default:false"`
	// Buyer is the purchaser's address, set when Sold becomes true
	Buyer *string `gorm:"column:buyer;type:text"`
	// CreatedAt is the listing creation timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// SoldAt is the purchase timestamp, nil while the listing is open
	SoldAt *time.Time `gorm:"column:sold_at;type:timestamptz"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}
