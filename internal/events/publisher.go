// Package events publishes catalog change notifications on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Envelope is the JSON message written to every channel.
type Envelope struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// RedisPublisher implements catalog.Publisher on top of a Redis client.
type RedisPublisher struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisPublisher returns a publisher writing to rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, now: time.Now}
}

// Publish sends payload on channel wrapped in an Envelope.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	msg, err := Encode(channel, payload, p.now())
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Encode renders the envelope for an event.
func Encode(channel string, payload any, at time.Time) ([]byte, error) {
	msg, err := json.Marshal(Envelope{Type: channel, Data: payload, At: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", channel, err)
	}
	return msg, nil
}
