package server

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/goaltext/goaltext/internal/config"
	"github.com/goaltext/goaltext/internal/logging"
	"github.com/goaltext/goaltext/internal/reply"
)

func TestErrorHandlerKeepsWebhookOnTwiML(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(logging.Discard())})
	app.Use(recover.New())
	app.Post("/sms/inbound", func(c *fiber.Ctx) error {
		panic("pipeline exploded")
	})
	app.Get("/api/v1/broken", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/sms/inbound", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	if string(body) != reply.TwiML(reply.Fallback) {
		t.Fatalf("expected fallback TwiML, got %s", body)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/broken", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.StatusCode)
	}
}

func TestNewInDevelopment(t *testing.T) {
	cfg := config.Config{
		AppName:         "GoalText",
		AppEnv:          "development",
		DefaultRegion:   "US",
		DefaultTimezone: "America/Chicago",
		MatchThreshold:  0.6,
	}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}
