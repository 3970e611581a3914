package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	// The provider stamps each webhook attempt with this header; retries of
	// one delivery share a value.
	providerTokenHeader = "I-Twilio-Idempotency-Token"
)

// RequestID tags each request with an identifier for tracing and logging,
// reusing the caller's or provider's id when one is present.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = c.Get(providerTokenHeader)
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(requestIDHeader, reqID)

		return c.Next()
	}
}
