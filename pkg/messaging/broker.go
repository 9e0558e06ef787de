package messaging

import (
	"context"
)

// Broker publishes appointment lifecycle events for consumers outside this
// process. Consumption happens elsewhere, so the surface is publish-only.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// NopBroker discards every message. Used when no broker is configured.
type NopBroker struct{}

func NewNopBroker() *NopBroker {
	return &NopBroker{}
}

func (NopBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (NopBroker) Close() error {
	return nil
}
