package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/modportal/portal-api/internal/core/domain"
)

// StatusChannel carries one JSON message per persisted status change.
const StatusChannel = "portal:status-changes"

// Notifier publishes status changes so out-of-process consumers (the chat
// bot) can tell authors about reviews.
type Notifier struct {
	client  *redis.Client
	channel string
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client, channel: StatusChannel}
}

func (n *Notifier) StatusChanged(ctx context.Context, event domain.StatusChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}
	return nil
}
