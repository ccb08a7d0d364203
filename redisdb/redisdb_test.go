package redisdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, channel string) (*Client, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := NewClient(server.Addr(), "", 0, channel)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

func TestPublishIrreversible(t *testing.T) {
	client, server := newTestClient(t, "")
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))
	assert.Equal(t, "ripple:irreversible", client.Channel())
	assert.False(t, server.Exists("ripple:irreversible"))

	want := &blocks.IrreversibleMarker{Number: 45487825, ID: "0C3261AB65F318BC1727F5EC1EE768EA08E11657C328D872C387FAF0CAF3870D"}
	require.NoError(t, client.PublishIrreversible(ctx, want))
	assert.Equal(t, "45487825", server.HGet("ripple:irreversible", "number"))
	assert.Equal(t, want.ID, server.HGet("ripple:irreversible", "id"))
	_, err := time.Parse(time.RFC3339, server.HGet("ripple:irreversible", "updated_at"))
	assert.NoError(t, err)
}

func TestPublishIrreversibleMessage(t *testing.T) {
	client, server := newTestClient(t, "bil2:ripple")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subscriber := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer subscriber.Close()
	sub := subscriber.Subscribe(ctx, "bil2:ripple")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	want := &blocks.IrreversibleMarker{Number: 45487826, ID: "AB"}
	require.NoError(t, client.PublishIrreversible(ctx, want))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bil2:ripple", msg.Channel)
	var marker blocks.IrreversibleMarker
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &marker))
	assert.Equal(t, *want, marker)
}

func TestPublishIrreversibleError(t *testing.T) {
	client, server := newTestClient(t, "")
	server.Close()
	err := client.PublishIrreversible(context.Background(), &blocks.IrreversibleMarker{Number: 1, ID: "A"})
	assert.ErrorContains(t, err, "redis publish irreversible error")
}
