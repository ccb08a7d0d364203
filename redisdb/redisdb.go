// Package redisdb caches and publishes the latest irreversible ledger in redis.
package redisdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "ripple:"

	keyIrreversible     = "irreversible"
	channelIrreversible = "irreversible"
)

// Client redis client of the irreversible marker
type Client struct {
	rdb     *redis.Client
	key     string
	channel string
}

// NewClient new redis client. Empty 'channel' defaults to "ripple:irreversible".
func NewClient(addr, password string, db int, channel string) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if channel == "" {
		channel = defaultKeyPrefix + channelIrreversible
	}
	return &Client{
		rdb:     rdb,
		key:     defaultKeyPrefix + keyIrreversible,
		channel: channel,
	}
}

// Channel returns the publish channel
func (c *Client) Channel() string {
	return c.channel
}

// Ping test connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close close client
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PublishIrreversible stores the marker and publishes it as json
func (c *Client) PublishIrreversible(ctx context.Context, marker *blocks.IrreversibleMarker) error {
	message, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, c.key, map[string]interface{}{
		"number":     marker.Number,
		"id":         marker.ID,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	pipe.Publish(ctx, c.channel, message)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish irreversible error: %w", err)
	}
	return nil
}
