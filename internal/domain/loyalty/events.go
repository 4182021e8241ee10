package loyalty

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const eventsChannel = "reward.events"

// RewardEvent is published when a coupon has been durably minted. The
// realtime backend fans it out to the user's open sessions; delivery is
// best-effort and never blocks order processing.
type RewardEvent struct {
	UserID          uuid.UUID `json:"user_id"`
	ItemSlug        string    `json:"item_slug"`
	CouponID        uuid.UUID `json:"coupon_id"`
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// EventPublisher emits reward events to the display layer.
type EventPublisher interface {
	PublishRewardEarned(ctx context.Context, event RewardEvent)
}

// RedisPublisher publishes reward events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates the publisher. client may be nil, in which case
// events are dropped.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishRewardEarned(ctx context.Context, event RewardEvent) {
	if p == nil || p.client == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := p.client.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", event.UserID.String()).
			Str("coupon_id", event.CouponID.String()).
			Msg("reward event publish failed")
	}
}
