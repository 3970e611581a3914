package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/auth"
)

const signatureHeader = "X-Twilio-Signature"

// TwilioSignature rejects webhook calls whose signature does not match the
// public callback URL and form body. Rejections still answer 200 with a TwiML
// notice so the provider does not retry.
func TwilioSignature(v *auth.Validator, publicBaseURL string, logger *slog.Logger) fiber.Handler {
	publicBaseURL = strings.TrimRight(publicBaseURL, "/")
	return func(c *fiber.Ctx) error {
		url := publicBaseURL + c.OriginalURL()
		if publicBaseURL == "" {
			url = c.BaseURL() + c.OriginalURL()
		}

		params := map[string][]string{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			key := string(k)
			params[key] = append(params[key], string(v))
		})

		if err := v.Validate(url, params, c.Get(signatureHeader)); err != nil {
			logger.Warn("webhook signature rejected",
				slog.String("url", url),
				slog.String("ip", c.IP()),
				slog.String("error", err.Error()),
			)
			return SendTwiML(c, auth.FailureText)
		}
		return c.Next()
	}
}
