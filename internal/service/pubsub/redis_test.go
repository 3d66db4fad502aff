package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

func newTestPubSub(t *testing.T) *RedisPubSub {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ps := NewRedisPubSub(client, logger.NewNop())
	t.Cleanup(ps.Close)
	return ps
}

func TestPublishSubscribe(t *testing.T) {
	// Arrange
	ps := newTestPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *dto.UsageEventResponse, 1)
	require.NoError(t, ps.Subscribe(ctx, "org-1", func(e *dto.UsageEventResponse) {
		received <- e
	}))

	// Act
	require.NoError(t, ps.Publish(ctx, &dto.UsageEventResponse{ID: "e1", OrganizationID: "org-1", TokensUsed: 25}))

	// Assert
	select {
	case event := <-received:
		assert.Equal(t, "e1", event.ID)
		assert.Equal(t, int64(25), event.TokensUsed)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestSubscribe_IgnoresOtherOrganizations(t *testing.T) {
	ps := newTestPubSub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *dto.UsageEventResponse, 1)
	require.NoError(t, ps.Subscribe(ctx, "org-1", func(e *dto.UsageEventResponse) {
		received <- e
	}))

	require.NoError(t, ps.Publish(ctx, &dto.UsageEventResponse{ID: "e2", OrganizationID: "org-2"}))

	select {
	case event := <-received:
		t.Fatalf("unexpected event %s", event.ID)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	ps := newTestPubSub(t)
	ctx := context.Background()

	require.NoError(t, ps.Subscribe(ctx, "org-1", func(*dto.UsageEventResponse) {}))
	ps.Unsubscribe("org-1")

	ps.subscriberMu.RLock()
	defer ps.subscriberMu.RUnlock()
	assert.Empty(t, ps.subscribers)
}
