package middleware

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/goaltext/goaltext/internal/logging"
)

func TestInboundRateLimitPerSender(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	limited := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTooManyRequests) }
	app := fiber.New()
	app.Post("/sms/inbound", InboundRateLimit(cache, 2, limited, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(from string) int {
		form := url.Values{"From": {from}}
		req := httptest.NewRequest(fiber.MethodPost, "/sms/inbound", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("+16502530000"); got != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, got)
		}
	}
	if got := send("+16502530000"); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected limit, got %d", got)
	}
	if got := send("+442070313000"); got != fiber.StatusOK {
		t.Fatalf("other sender should pass, got %d", got)
	}
	if ttl := mr.TTL(rateLimitPrefix + "+16502530000"); ttl <= 0 {
		t.Fatalf("expected window expiry to be set, got %v", ttl)
	}
}

func TestInboundRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/", InboundRateLimit(nil, 1, nil, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 got %d", resp.StatusCode)
		}
	}
}
