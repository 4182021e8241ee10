package rule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const activeRulesKey = "reward:rules:active"

// Cache holds the active-rule snapshot in Redis so that every order does not
// hit postgres for a catalog that rarely changes. A nil client disables
// caching; cache errors always fall through to the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a rule snapshot cache. client may be nil.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetActive(ctx context.Context) ([]RewardRule, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, activeRulesKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("rule cache read failed")
		}
		return nil, false
	}

	var rules []RewardRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		log.Warn().Err(err).Msg("rule cache entry corrupt, dropping")
		c.Invalidate(ctx)
		return nil, false
	}
	return rules, true
}

func (c *Cache) SetActive(ctx context.Context, rules []RewardRule) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(rules)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activeRulesKey, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("rule cache write failed")
	}
}

// Invalidate drops the snapshot; called after every catalog write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activeRulesKey).Err(); err != nil {
		log.Warn().Err(err).Msg("rule cache invalidation failed")
	}
}
