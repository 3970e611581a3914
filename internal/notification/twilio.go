package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultTwilioAPI = "https://api.twilio.com"

// TwilioConfig holds REST credentials for the provider.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// TwilioSender posts messages to the provider's Messages resource.
type TwilioSender struct {
	cfg      TwilioConfig
	endpoint string
}

// NewTwilioSender validates cfg and builds a sender.
func NewTwilioSender(cfg TwilioConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, errors.New("twilio account sid, auth token and from number are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTwilioAPI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", strings.TrimRight(cfg.BaseURL, "/"), cfg.AccountSID)
	return &TwilioSender{cfg: cfg, endpoint: endpoint}, nil
}

// Send creates one outbound message.
func (s *TwilioSender) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := s.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(s.endpoint)
	agent.BasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	agent.Timeout(timeout)

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("To", message.To)
	args.Set("From", s.cfg.From)
	args.Set("Body", message.Body)
	agent.Form(args)

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("prepare twilio request: %w", err)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("send sms: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("send sms: twilio status %d: %s", code, strings.TrimSpace(string(body)))
	}
	return nil
}
