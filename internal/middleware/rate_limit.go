package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig configures the request limiter
type RateLimitConfig struct {
	Store     string // memory or redis
	RedisAddr string
	Requests  uint
	Window    time.Duration
}

func rateLimitKey(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		return fmt.Sprintf("user:%v", v)
	}
	return "ip:" + c.ClientIP()
}

func rateLimitExceeded(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(time.Until(info.ResetTime).Seconds())+1))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(dto.ErrorCodeRateLimited, "Too many requests. Try again later."))
}

// NewRateLimiter builds the limiter. The redis store shares counters across
// instances; the memory store is per process. The returned close func releases
// the redis client.
func NewRateLimiter(ctx context.Context, cfg RateLimitConfig) (gin.HandlerFunc, func() error, error) {
	var store ratelimit.Store
	closeFn := func() error { return nil }

	switch strings.ToLower(cfg.Store) {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to rate limit redis at %s: %w", cfg.RedisAddr, err)
		}
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        cfg.Window,
			Limit:       cfg.Requests,
		})
		closeFn = client.Close
	default:
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  cfg.Window,
			Limit: cfg.Requests,
		})
	}

	limiter := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimitExceeded,
		KeyFunc:      rateLimitKey,
	})
	return limiter, closeFn, nil
}
