package schema

import (
	"time"
)

// Asset represents the assets table - the registry's record of a minted
// asset. IDs are dense, starting at 1 and incremented by exactly one per
// mint; the database sequence provides the monotonic assignment.
type Asset struct {
	// ID is the asset identifier assigned at mint time, never reused
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Owner is the current holder's address
	Owner string `gorm:"column:owner;not null;type:text;index:idx_assets_owner"`
	// TokenURI is the metadata pointer, immutable after mint
	TokenURI string `gorm:"column:token_uri;not null;type:text"`
	// CreatedAt is the mint timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
