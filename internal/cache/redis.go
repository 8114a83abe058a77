package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"decision-eval/backend/internal/decision"
)

// ErrMiss is returned when no cached result exists for a key.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "decision:result:"

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultOptions() Options {
	return Options{
		Address: "localhost:6379",
		TTL:     24 * time.Hour,
	}
}

// Cache stores evaluation results in Redis. A nil *Cache behaves as an
// always-empty cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultOptions().TTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Cache{client: client, ttl: opts.TTL}
}

// Ping tests connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Version names everything besides the request that shapes a result.
// Changing any field moves evaluations to fresh keys.
type Version struct {
	Knowledge      string `json:"k"`
	Rules          string `json:"r"`
	RetrievalLimit int    `json:"l"`
}

// Key fingerprints a request under the given engine version.
func Key(question string, bc decision.Context, v Version) string {
	payload, _ := json.Marshal(struct {
		Version  Version          `json:"v"`
		Question string           `json:"q"`
		Context  decision.Context `json:"c"`
	}{v, strings.TrimSpace(question), bc})
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// GetResult loads a cached result; ErrMiss when absent.
func (c *Cache) GetResult(ctx context.Context, key string) (decision.Result, error) {
	var res decision.Result
	if c == nil {
		return res, ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return res, ErrMiss
	}
	if err != nil {
		return res, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, fmt.Errorf("decode cached result: %w", err)
	}
	return res, nil
}

// SetResult stores a result with the configured TTL.
func (c *Cache) SetResult(ctx context.Context, key string, res decision.Result) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
