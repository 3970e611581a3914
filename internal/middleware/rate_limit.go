package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:inbound:"

// InboundRateLimit caps deliveries per sender phone (or IP when From is
// absent) per minute. Over the limit the request is passed to limited instead
// of the next handler. Without Redis it is a no-op, and cache errors fail open.
func InboundRateLimit(cache *redis.Client, maxPerMin int, limited fiber.Handler, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 20
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		sender := strings.TrimSpace(c.FormValue("From"))
		if sender == "" {
			sender = c.IP()
		}
		key := rateLimitPrefix + sender

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			logger.Warn("rate limit lookup failed", slog.String("key", key), slog.Any("error", err))
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			logger.Warn("inbound rate limited", slog.String("from", sender), slog.Int64("count", cnt))
			return limited(c)
		}
		return c.Next()
	}
}
