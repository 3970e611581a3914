package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/reply"
)

// SendTwiML writes text as a messaging response with status 200. The provider
// retries non-2xx deliveries, so webhook failures are always reported this way.
func SendTwiML(c *fiber.Ctx, text string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(reply.TwiML(text))
}

// EmptyTwiML acknowledges a delivery without replying to the handset.
func EmptyTwiML(c *fiber.Ctx) error {
	return SendTwiML(c, "")
}
