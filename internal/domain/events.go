package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType represents the type of marketplace event
type EventType string

const (
	// EventTypeOffered is emitted when an asset is listed for sale
	EventTypeOffered EventType = "offered"
	// EventTypeBought is emitted when a listing is purchased
	EventTypeBought EventType = "bought"
)

// MarketEvent represents a marketplace notification. Events are appended to
// the journal in the same transaction as the state change they describe and
// published to NATS after commit.
type MarketEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	ListingID uint64          `json:"listing_id"`
	Registry  common.Address  `json:"asset_registry"`
	AssetID   uint64          `json:"asset_id"`
	Price     Amount          `json:"price"`
	Seller    common.Address  `json:"seller"`
	Buyer     *common.Address `json:"buyer,omitempty"` // set for bought events only
	Timestamp time.Time       `json:"timestamp"`
}

// Valid reports whether the event is well-formed for its type.
func (e *MarketEvent) Valid() bool {
	if e.ListingID == 0 || e.AssetID == 0 {
		return false
	}
	if e.Price.Sign() <= 0 {
		return false
	}

	switch e.Type {
	case EventTypeOffered:
		return e.Buyer == nil
	case EventTypeBought:
		return e.Buyer != nil && *e.Buyer != (common.Address{})
	default:
		return false
	}
}
