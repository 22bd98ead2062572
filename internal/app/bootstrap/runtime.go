package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/hausservice-booking/internal/config"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/internal/webcal"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

const redisDialTimeout = 3 * time.Second

// BuildRedisClient connects to REDIS_ADDR, or returns nil when it is unset.
// With verify set, an unreachable server also yields nil so callers fall
// back to the in-process stores.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DialTimeout: redisDialTimeout,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-process stores", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", cfg.RedisAddr, "tls", cfg.RedisTLS)
	return client
}

// BuildSessionStore keeps booking sessions in Redis when a client is
// available and in process memory otherwise.
func BuildSessionStore(redisClient *redis.Client, ttl time.Duration) webcal.SessionStore {
	if redisClient == nil {
		return webcal.NewMemorySessionStore(ttl)
	}
	return webcal.NewRedisSessionStore(redisClient, ttl)
}

// BuildLeadListStore backs the local lead list the same way.
func BuildLeadListStore(redisClient *redis.Client) leads.ListStore {
	if redisClient == nil {
		return leads.NewMemoryListStore()
	}
	return leads.NewRedisListStore(redisClient)
}
