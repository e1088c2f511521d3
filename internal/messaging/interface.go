package messaging

import "context"

// EventPublisher is the contract services use to emit domain events.
// A nil publisher is valid and means events are skipped.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
}
