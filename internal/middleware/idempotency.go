package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	messageSidLocal      = "message_sid"
	cacheOpTimeout       = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// IdempotencyConfig configures Idempotency.
type IdempotencyConfig struct {
	Cache  *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
	// Key extracts the idempotency key. Requests with an empty key pass through.
	Key func(*fiber.Ctx) string
	// Duplicate answers a retry that arrives while the first attempt is
	// still being processed.
	Duplicate fiber.Handler
}

// MessageSidKey keys webhook deliveries on the provider message id.
func MessageSidKey(c *fiber.Ctx) string {
	sid := strings.TrimSpace(c.FormValue("MessageSid"))
	if sid != "" {
		c.Locals(messageSidLocal, sid)
	}
	return sid
}

// HeaderKey keys API requests on the Idempotency-Key header.
func HeaderKey(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(idempotencyKeyHeader))
}

// Idempotency replays the first stored response for repeated keys. Responses
// are persisted in Redis for cfg.TTL. Cache failures are logged and the request
// is processed normally.
func Idempotency(cfg IdempotencyConfig) fiber.Handler {
	if cfg.Key == nil {
		cfg.Key = HeaderKey
	}
	if cfg.Duplicate == nil {
		cfg.Duplicate = func(*fiber.Ctx) error {
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := cfg.Cache

	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		switch strings.ToUpper(c.Method()) {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := cfg.Key(c)
		if key == "" {
			return c.Next()
		}
		cacheKey := idempotencyPrefix + c.Path() + ":" + key

		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		cached, err := cache.Get(ctx, cacheKey).Result()
		if err == nil {
			if cached == inProgressMarker {
				return cfg.Duplicate(c)
			}
			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("failed to decode stored idempotent response", slog.String("key", key), slog.Any("error", err))
				return cfg.Duplicate(c)
			}
			for header, value := range stored.Headers {
				if strings.EqualFold(header, fiber.HeaderContentLength) {
					continue
				}
				c.Set(header, value)
			}
			logger.Info("replayed idempotent response", slog.String("key", key))
			return c.Status(stored.Status).SendString(stored.Body)
		}
		if err != redis.Nil {
			logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
			return c.Next()
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, cfg.TTL).Result()
		if err != nil {
			logger.Error("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
			return c.Next()
		}
		if !reserved {
			// Lost the race to a concurrent attempt.
			return cfg.Duplicate(c)
		}

		if err := c.Next(); err != nil {
			release(cache, cacheKey)
			return err
		}

		stored := storedResponse{
			Status:  c.Response().StatusCode(),
			Body:    string(c.Response().Body()),
			Headers: map[string]string{},
		}
		c.Response().Header.VisitAll(func(k, v []byte) {
			stored.Headers[string(k)] = string(v)
		})

		payload, err := json.Marshal(stored)
		if err != nil {
			logger.Error("failed to encode idempotent response", slog.String("key", key), slog.Any("error", err))
			release(cache, cacheKey)
			return nil
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer persistCancel()
		if err := cache.Set(persistCtx, cacheKey, payload, cfg.TTL).Err(); err != nil {
			logger.Error("failed to persist idempotent response", slog.String("key", key), slog.Any("error", err))
			cache.Del(persistCtx, cacheKey)
		}
		return nil
	}
}

func release(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}
