package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jamjam-trek/config"
)

// cachePrefix trennt die Antwort-Bodies von anderen Schlüsseln im Redis.
const cachePrefix = "trekapi:"

// NewRedisClient erstellt einen Redis-Client und prüft die Verbindung mit PING.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.RedisAddr,
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisDB,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ResponseCache speichert Antwort-Bodies der Trek-API. Redis-Fehler werden nur
// geloggt; der Aufrufer fragt dann direkt die API.
type ResponseCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

// NewResponseCache erstellt einen ResponseCache.
func NewResponseCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	return &ResponseCache{Client: client, TTL: ttl, Logger: logger}
}

// Get liefert einen gecachten Body.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.Client.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Logger.Warn("Cache-Lesefehler", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return body, true
}

// Set speichert einen Body mit der konfigurierten TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.Client.Set(ctx, cachePrefix+key, body, c.TTL).Err(); err != nil {
		c.Logger.Warn("Cache-Schreibfehler", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate löscht alle Einträge, deren Schlüssel mit prefix beginnt.
func (c *ResponseCache) Invalidate(ctx context.Context, prefix string) {
	iter := c.Client.Scan(ctx, 0, cachePrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.Logger.Warn("Cache-Scan fehlgeschlagen", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.Client.Del(ctx, keys...).Err(); err != nil {
		c.Logger.Warn("Cache-Invalidierung fehlgeschlagen", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	c.Logger.Debug("Cache invalidiert", zap.String("prefix", prefix), zap.Int("keys", len(keys)))
}
