package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/identity"
)

// RegisterIdentityRoutes wires account bootstrap endpoints.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, idempotency fiber.Handler) {
	r.Post("/users", idempotency, h.Register)
}
