package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-rounds/models"
	"github.com/go-redis/redis/v8"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Client обертка над redis.Client
type Client struct {
	*redis.Client
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// RoundStateCache хранит снимки состояния раунда не дольше интервала опроса.
// Формат ключа: round_state:{round_session_id}
type RoundStateCache struct {
	client *Client
	ttl    time.Duration
}

func NewRoundStateCache(client *Client, ttl time.Duration) *RoundStateCache {
	return &RoundStateCache{client: client, ttl: ttl}
}

func roundStateKey(roundSessionID int) string {
	return fmt.Sprintf("round_state:%d", roundSessionID)
}

func (c *RoundStateCache) Get(ctx context.Context, roundSessionID int) (*models.RoundState, bool, error) {
	raw, err := c.client.Get(ctx, roundStateKey(roundSessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read round state %d from redis: %w", roundSessionID, err)
	}
	var state models.RoundState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached round state %d: %w", roundSessionID, err)
	}
	return &state, true, nil
}

func (c *RoundStateCache) Set(ctx context.Context, state *models.RoundState) error {
	if state == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode round state %d: %w", state.RoundSessionID, err)
	}
	return c.client.Set(ctx, roundStateKey(state.RoundSessionID), raw, c.ttl).Err()
}

func (c *RoundStateCache) Invalidate(ctx context.Context, roundSessionID int) error {
	return c.client.Del(ctx, roundStateKey(roundSessionID)).Err()
}
