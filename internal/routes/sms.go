package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/inbound"
	"github.com/goaltext/goaltext/internal/middleware"
)

// SMSInboundPath receives the provider's incoming message webhook.
const SMSInboundPath = "/sms/inbound"

// RegisterSMSRoutes wires the inbound webhook behind chain.
func RegisterSMSRoutes(app *fiber.App, pipeline *inbound.Pipeline, chain ...fiber.Handler) {
	handlers := append(append([]fiber.Handler(nil), chain...), func(c *fiber.Ctx) error {
		res := pipeline.Process(c.UserContext(), inboundMessage(c))
		return middleware.SendTwiML(c, res.Reply)
	})
	app.Post(SMSInboundPath, handlers...)
}

// throttledSMS answers deliveries rejected by the rate limiter. The message
// is still logged and the sender is told to slow down.
func throttledSMS(pipeline *inbound.Pipeline) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := pipeline.Throttle(c.UserContext(), inboundMessage(c))
		return middleware.SendTwiML(c, res.Reply)
	}
}

func inboundMessage(c *fiber.Ctx) inbound.Message {
	return inbound.Message{
		From:              c.FormValue("From"),
		Body:              c.FormValue("Body"),
		To:                c.FormValue("To"),
		ProviderMessageID: c.FormValue("MessageSid"),
	}
}
