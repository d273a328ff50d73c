package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/utils"
)

// RateLimiterConfig contains configuration for the rate limiter
type RateLimiterConfig struct {
	Redis  *database.RedisClient
	Key    string        // Key prefix for Redis
	Limit  int           // Maximum number of requests, 0 disables the limiter
	Period time.Duration // Fixed window length
}

// RateLimiterMiddleware counts requests per caller in a fixed Redis window.
// Redis failures let the request through.
func RateLimiterMiddleware(config RateLimiterConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if config.Limit <= 0 || config.Redis == nil {
			return next
		}
		return func(c echo.Context) error {
			identifier := c.RealIP()
			if p := GetPrincipal(c); p != nil {
				identifier = p.UserID
			}
			key := fmt.Sprintf("%s:%s:%s", config.Key, c.Path(), identifier)

			ctx := c.Request().Context()
			client := config.Redis.GetClient()

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("Rate limiter unavailable", logger.String("key", key), logger.Err(err))
				return next(c)
			}
			if count == 1 {
				client.Expire(ctx, key, config.Period)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			if count > int64(config.Limit) {
				ttl, err := client.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Period
				}
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				c.Response().Header().Set("Retry-After", strconv.FormatInt(int64(ttl.Seconds()), 10))
				return utils.ErrorResponseHandler(c, http.StatusTooManyRequests, "Rate limit exceeded")
			}

			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(config.Limit)-count, 10))
			return next(c)
		}
	}
}

// UserRateLimiter creates a principal-keyed rate limiter
func UserRateLimiter(limit int, period time.Duration, redis *database.RedisClient) echo.MiddlewareFunc {
	return RateLimiterMiddleware(RateLimiterConfig{
		Redis:  redis,
		Key:    "rate:user",
		Limit:  limit,
		Period: period,
	})
}
