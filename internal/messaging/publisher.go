package messaging

import (
	"context"

	"github.com/donat3/ledger-core/internal/domain"
)

// Publisher defines the interface for publishing ledger events to the
// message broker
type Publisher interface {
	// PublishEvent publishes a ledger event
	PublishEvent(ctx context.Context, event *domain.LedgerEvent) error
	// Close closes the connection
	Close()
}
