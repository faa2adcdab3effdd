package messaging

import (
	"context"
)

// Broker publishes raw JSON payloads to named channels.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}
