package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goaltext/goaltext/internal/auth"
	"github.com/goaltext/goaltext/internal/config"
	"github.com/goaltext/goaltext/internal/inbound"
	"github.com/goaltext/goaltext/internal/logging"
	"github.com/goaltext/goaltext/internal/reply"
)

func testConfig() config.Config {
	return config.Config{
		AppName:             "GoalText",
		AppEnv:              "test",
		DefaultRegion:       "US",
		DefaultTimezone:     "America/Chicago",
		MatchThreshold:      0.60,
		MatchSubstringBonus: 0.15,
		InboundRateLimit:    20,
	}
}

func newApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	app := fiber.New()
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}))
	return app
}

func sms(t *testing.T, app *fiber.App, form url.Values, signature string) string {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, SMSInboundPath, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegisterThenTextFlow(t *testing.T) {
	app := newApp(t, testConfig())

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/users", strings.NewReader(`{"phone":"(650) 253-0000","display_name":"Sam"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user struct {
		UserID string   `json:"user_id"`
		Phones []string `json:"phones"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	resp.Body.Close()
	assert.Equal(t, []string{"+16502530000"}, user.Phones)

	body := sms(t, app, url.Values{"From": {"+16502530000"}, "Body": {"YES"}, "MessageSid": {"SM1"}}, "")
	assert.Contains(t, body, "You&#39;re all set!")

	body = sms(t, app, url.Values{"From": {"+16502530000"}, "Body": {"Walk the dog - 5"}, "MessageSid": {"SM2"}}, "")
	assert.Contains(t, body, "Got it! I logged these goals:")
}

func TestUnknownSenderGetsPrompt(t *testing.T) {
	app := newApp(t, testConfig())
	body := sms(t, app, url.Values{"From": {"+442070313000"}, "Body": {"hello"}}, "")
	assert.Contains(t, body, "<Message>We don&#39;t recognize this number yet.")
}

func TestRateLimitedSenderIsToldToSlowDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	cfg := testConfig()
	cfg.InboundRateLimit = 1
	app := fiber.New()
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}))

	body := sms(t, app, url.Values{"From": {"+442070313000"}, "Body": {"hello"}, "MessageSid": {"SM1"}}, "")
	assert.Contains(t, body, "recognize this number")

	body = sms(t, app, url.Values{"From": {"+442070313000"}, "Body": {"hello again"}, "MessageSid": {"SM2"}}, "")
	assert.Equal(t, reply.TwiML(inbound.ThrottledText), body)
}

func TestSignatureRequired(t *testing.T) {
	cfg := testConfig()
	cfg.ValidateSignature = true
	cfg.Twilio.AuthToken = "secret"
	cfg.PublicBaseURL = "https://goals.example.com"
	app := newApp(t, cfg)

	form := url.Values{"From": {"+442070313000"}, "Body": {"hello"}}
	body := sms(t, app, form, "bogus")
	assert.Contains(t, body, "couldn&#39;t authenticate")

	sig := auth.NewValidator("secret").Sign("https://goals.example.com"+SMSInboundPath, form)
	body = sms(t, app, form, sig)
	assert.Contains(t, body, "recognize this number")
}

func TestSignatureWithoutTokenFailsSetup(t *testing.T) {
	cfg := testConfig()
	cfg.ValidateSignature = true
	assert.Error(t, Setup(fiber.New(), Deps{Cfg: cfg, Logger: logging.Discard()}))
}

func TestProductionRequiresStores(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	assert.Error(t, Setup(fiber.New(), Deps{Cfg: cfg, Logger: logging.Discard()}))
}

func TestHealthzInMemory(t *testing.T) {
	app := newApp(t, testConfig())
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Status map[string]string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "memory", payload.Status["postgres"])
}
