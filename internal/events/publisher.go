// Package events distributes committed ledger events to subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-multierror"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

// publishClient is the subset of the go-redis client used to publish
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes each event as a JSON message on a Redis channel
type RedisPublisher struct {
	client  publishClient
	channel string
}

// NewRedisPublisher creates a publisher on channel
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish implements service.EventPublisher. Every event is attempted; the
// failures are returned together.
func (p *RedisPublisher) Publish(ctx context.Context, events []models.Event) error {
	var result *multierror.Error
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("event %d: %w", e.Seq, err))
			continue
		}
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			result = multierror.Append(result, fmt.Errorf("event %d: %w", e.Seq, err))
		}
	}
	return result.ErrorOrNil()
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements service.EventPublisher
func (NopPublisher) Publish(context.Context, []models.Event) error { return nil }
