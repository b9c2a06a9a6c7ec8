package messaging

import (
	"context"

	"github.com/artfolio/marketplace-ledger/internal/domain"
)

// Publisher defines the interface for publishing marketplace events to the
// message broker
type Publisher interface {
	// PublishEvent publishes an Offered/Bought event
	PublishEvent(ctx context.Context, event *domain.MarketEvent) error
	// Close closes the connection
	Close()
}
