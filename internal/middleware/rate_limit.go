package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/utils"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

const (
	rateLimitWindow        = time.Minute
	defaultOrgRateLimit    = 1000
	defaultGlobalRateLimit = 10000
)

type RateLimitMiddleware struct {
	redis  *redis.Client
	config *config.Config
	logger *logger.Logger
}

func NewRateLimitMiddleware(redis *redis.Client, config *config.Config, logger *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redis:  redis,
		config: config,
		logger: logger,
	}
}

// OrganizationRateLimit caps requests per organization per minute. It must run after JWTAuth.
func (m *RateLimitMiddleware) OrganizationRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetString(string(utils.OrganizationIDKey))
		if orgID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id claim required for rate limiting"})
			return
		}

		m.enforce(c, "rate_limit:org:"+orgID, positiveOr(m.config.DefaultRateLimit, defaultOrgRateLimit), "Rate limit exceeded")
	}
}

// GlobalRateLimit caps requests per client IP per minute.
func (m *RateLimitMiddleware) GlobalRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.enforce(c, "rate_limit:global:"+c.ClientIP(), positiveOr(m.config.GlobalRateLimit, defaultGlobalRateLimit), "Global rate limit exceeded")
	}
}

func (m *RateLimitMiddleware) enforce(c *gin.Context, key string, limit int, message string) {
	count, err := m.hit(c.Request.Context(), key)
	if err != nil {
		// Fail open.
		m.logger.Error("Redis error in rate limiting", err)
		c.Next()
		return
	}

	reset := strconv.FormatInt(time.Now().Add(rateLimitWindow).Unix(), 10)
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Reset", reset)

	if count > int64(limit) {
		c.Header("X-RateLimit-Remaining", "0")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": message,
			"limit": limit,
			"reset": reset,
		})
		return
	}

	c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
	c.Next()
}

// hit counts one request in the current window and returns the new count.
func (m *RateLimitMiddleware) hit(ctx context.Context, key string) (int64, error) {
	count, err := m.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	// The first hit opens the window.
	if count == 1 {
		if err := m.redis.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
			return 0, fmt.Errorf("rate limit %s: %w", key, err)
		}
	}
	return count, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
