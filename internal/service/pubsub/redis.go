package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

const (
	channelPrefix = "usage_events:"
)

// RedisPubSub fans accepted usage events out to every API replica, one channel per organization.
type RedisPubSub struct {
	client       *redis.Client
	logger       *logger.Logger
	subscribers  map[string]*redis.PubSub
	subscriberMu sync.RWMutex
}

func NewRedisPubSub(client *redis.Client, logger *logger.Logger) *RedisPubSub {
	return &RedisPubSub{
		client:      client,
		logger:      logger,
		subscribers: make(map[string]*redis.PubSub),
	}
}

func (ps *RedisPubSub) getChannelName(organizationID string) string {
	return channelPrefix + organizationID
}

// Publish sends an accepted usage event to its organization's channel.
func (ps *RedisPubSub) Publish(ctx context.Context, event *dto.UsageEventResponse) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}

	channel := ps.getChannelName(event.OrganizationID)
	if err := ps.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe starts delivering an organization's events to callback until ctx
// is done or Unsubscribe is called. A second call for the same organization is a no-op.
func (ps *RedisPubSub) Subscribe(ctx context.Context, organizationID string, callback func(*dto.UsageEventResponse)) error {
	channel := ps.getChannelName(organizationID)

	ps.subscriberMu.Lock()
	if _, exists := ps.subscribers[organizationID]; exists {
		ps.subscriberMu.Unlock()
		return nil
	}
	pubsub := ps.client.Subscribe(ctx, channel)
	ps.subscribers[organizationID] = pubsub
	ps.subscriberMu.Unlock()

	// Wait for the subscription to be confirmed so no publish right after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		ps.Unsubscribe(organizationID)
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	go func() {
		defer ps.remove(organizationID, pubsub)

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event dto.UsageEventResponse
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					ps.logger.Errorf("Failed to unmarshal usage event from channel %s: %v", channel, err)
					continue
				}
				callback(&event)

			case <-ctx.Done():
				return
			}
		}
	}()

	ps.logger.Infof("Subscribed to organization channel: %s", channel)
	return nil
}

// remove drops the subscriber only if it is still the registered one.
func (ps *RedisPubSub) remove(organizationID string, pubsub *redis.PubSub) {
	pubsub.Close()

	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()
	if current, ok := ps.subscribers[organizationID]; ok && current == pubsub {
		delete(ps.subscribers, organizationID)
	}
}

func (ps *RedisPubSub) Unsubscribe(organizationID string) {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	if pubsub, exists := ps.subscribers[organizationID]; exists {
		pubsub.Close()
		delete(ps.subscribers, organizationID)
		ps.logger.Infof("Unsubscribed from organization channel: %s", ps.getChannelName(organizationID))
	}
}

func (ps *RedisPubSub) Close() {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	for organizationID, pubsub := range ps.subscribers {
		pubsub.Close()
		delete(ps.subscribers, organizationID)
	}
}
