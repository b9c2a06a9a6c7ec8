package schema

import (
	"time"

	"gorm.io/datatypes"
)

// MarketEvent represents the market_events table - the append-only journal
// of Offered/Bought notifications. Rows are inserted in the same transaction
// as the state change they describe and are never updated or deleted.
type MarketEvent struct {
	// ID is the internal database primary key, strictly increasing in
	// journal order
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is the externally visible event identifier (uuid)
	EventID string `gorm:"column:event_id;not null;uniqueIndex;type:text"`
	// EventType is "offered" or "bought"
	EventType string `gorm:"column:event_type;not null;type:text;index:idx_market_events_type"`
	// ListingID references the listing the event describes
	ListingID uint64 `gorm:"column:listing_id;not null;index:idx_market_events_listing"`
	// Seller is the listing's seller address
	Seller string `gorm:"column:seller;not null;type:text;index:idx_market_events_seller"`
	// Buyer is the purchaser's address for bought events
	Buyer *string `gorm:"column:buyer;type:text;index:idx_market_events_buyer"`
	// Payload is the full event body as published to the message broker
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// CreatedAt is the journal append timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the MarketEvent model
func (MarketEvent) TableName() string {
	return "market_events"
}
