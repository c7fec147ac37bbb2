package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"messaging-service/internal/model"

	"github.com/redis/go-redis/v9"
)

// MessageEvent is the payload published when a new message exists for a
// tenant, consumed by live inbox views.
type MessageEvent struct {
	MessageID  uint            `json:"message_id"`
	TenantID   uint            `json:"tenant_id"`
	CustomerID uint            `json:"customer_id"`
	Direction  model.Direction `json:"direction"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Notifier publishes real-time message events. Delivery is fire-and-forget:
// a publish failure never affects the message pipeline.
type Notifier interface {
	PublishMessage(ctx context.Context, event MessageEvent) error
}

// RedisNotifier publishes events on Redis pub/sub channels, one channel per
// tenant.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a Redis-backed notifier
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// ChannelForTenant returns the pub/sub channel name for a tenant's messages
func ChannelForTenant(tenantID uint) string {
	return fmt.Sprintf("tenant:%d:messages", tenantID)
}

// PublishMessage publishes a message event on the tenant's channel
func (n *RedisNotifier) PublishMessage(ctx context.Context, event MessageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode message event: %w", err)
	}
	return n.client.Publish(ctx, ChannelForTenant(event.TenantID), payload).Err()
}
