package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a readiness endpoint covering the backing stores.
// Stores that are not configured report "memory".
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		healthy := true
		check := func(configured bool, ping func() error) string {
			if !configured {
				return "memory"
			}
			if err := ping(); err != nil {
				healthy = false
				return err.Error()
			}
			return "ok"
		}
		postgres := check(d.DB != nil, func() error { return d.DB.Ping(ctx) })
		cache := check(d.Cache != nil, func() error { return d.Cache.Ping(ctx).Err() })

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"service":   d.Cfg.AppName,
			"status":    fiber.Map{"postgres": postgres, "redis": cache},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
