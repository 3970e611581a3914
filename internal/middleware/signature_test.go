package middleware

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/goaltext/goaltext/internal/auth"
	"github.com/goaltext/goaltext/internal/logging"
)

const publicBase = "https://goals.example.com"

func signedApp(v *auth.Validator) *fiber.App {
	app := fiber.New()
	app.Post("/sms/inbound", TwilioSignature(v, publicBase+"/", logging.Discard()), func(c *fiber.Ctx) error {
		return SendTwiML(c, "accepted")
	})
	return app
}

func sendSigned(t *testing.T, app *fiber.App, form url.Values, signature string) string {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/sms/inbound", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestTwilioSignatureAccepts(t *testing.T) {
	v := auth.NewValidator("secret")
	form := url.Values{"From": {"+16502530000"}, "Body": {"done: walk dog"}, "MessageSid": {"SM1"}}
	sig := v.Sign(publicBase+"/sms/inbound", form)

	body := sendSigned(t, signedApp(v), form, sig)
	if !strings.Contains(body, "accepted") {
		t.Fatalf("expected handler reply, got %s", body)
	}
}

func TestTwilioSignatureRejects(t *testing.T) {
	v := auth.NewValidator("secret")
	form := url.Values{"From": {"+16502530000"}, "Body": {"hi"}}

	for name, sig := range map[string]string{
		"missing": "",
		"wrong":   v.Sign(publicBase+"/other", form),
	} {
		body := sendSigned(t, signedApp(v), form, sig)
		if !strings.Contains(body, "couldn&#39;t authenticate") {
			t.Fatalf("%s: expected authentication failure reply, got %s", name, body)
		}
	}
}
