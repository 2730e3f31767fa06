// Package events publishes domain events for downstream consumers such as the
// kitchen display and reporting. Publishing happens after commit and is best
// effort: callers log a failure and carry on.
package events

import (
	"context"
	"time"
)

// Routing keys on the events exchange
const (
	OrderCreated = "order.created"
	OrderVoided  = "order.voided"
	LedgerClosed = "ledger.closed"
)

// Publisher sends an event under a routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// Envelope wraps every payload on the wire
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
