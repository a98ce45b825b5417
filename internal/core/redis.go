// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/clubhouse/internal/config"
)

const (
	redisDialTimeout = 5 * time.Second
	redisPoolTimeout = 30 * time.Second
	redisIdleTimeout = 5 * time.Minute
)

// Redis wraps the shared client. Every key the club writes lives under
// Namespace so several deployments can share one instance.
type Redis struct {
	Client    *redis.Client
	Namespace string
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = redisDialTimeout
	opts.PoolTimeout = redisPoolTimeout
	opts.ConnMaxIdleTime = redisIdleTimeout

	r := &Redis{
		Client:    redis.NewClient(opts),
		Namespace: strings.Trim(cfg.KeyPrefix, ":"),
	}

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}

	return r, nil
}

// Key joins parts under the namespace: Key("courses", "list") is
// "clubhouse:courses:list".
func (r *Redis) Key(parts ...string) string {
	if r.Namespace == "" {
		return strings.Join(parts, ":")
	}
	return r.Namespace + ":" + strings.Join(parts, ":")
}

// Cache returns a JSON cache whose keys live under Key(name).
func (r *Redis) Cache(name string) *JSONCache {
	return NewJSONCache(r.Client, r.Key(name))
}

func (r *Redis) Blacklist() *TokenBlacklist {
	return NewTokenBlacklist(r.Client, r.Key("blacklist"))
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

// TokenBlacklist remembers revoked access token ids until they would have
// expired anyway.
type TokenBlacklist struct {
	client *redis.Client
	prefix string
}

func NewTokenBlacklist(client *redis.Client, prefix string) *TokenBlacklist {
	return &TokenBlacklist{client: client, prefix: prefix}
}

func (b *TokenBlacklist) key(jti string) string {
	return b.prefix + ":" + jti
}

func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, b.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
