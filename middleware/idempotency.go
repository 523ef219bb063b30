package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

// Deduper remembers idempotency keys per user.
type Deduper interface {
	// Add reports whether the key was newly recorded.
	Add(ctx context.Context, userID, key string) (bool, error)
	Remove(ctx context.Context, userID, key string) error
}

// RedisDeduper stores idempotency keys in Redis so every instance sees them.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(userID, key string) string {
	return fmt.Sprintf("idem:%s:%s", userID, key)
}

func (r *RedisDeduper) Add(ctx context.Context, userID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, key), 1, r.ttl).Result()
}

func (r *RedisDeduper) Remove(ctx context.Context, userID, key string) error {
	return r.client.Del(ctx, r.key(userID, key)).Err()
}

// Idempotent rejects a replayed Idempotency-Key with 409. The key is released
// again when the request fails, so the client may retry it. Requests without
// the header pass through. It must run after AccessTokenMiddleware.
func Idempotent(d Deduper, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || d == nil {
			c.Next()
			return
		}
		userID := c.GetString("userId")
		added, err := d.Add(c.Request.Context(), userID, key)
		if err != nil {
			logger.WithError(err).WithField("actor", userID).Error("idempotency check failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency check unavailable"})
			return
		}
		if !added {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Duplicate request"})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := d.Remove(context.WithoutCancel(c.Request.Context()), userID, key); err != nil {
				logger.WithError(err).WithField("actor", userID).Warn("release idempotency key")
			}
		}
	}
}
