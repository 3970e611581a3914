package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/goaltext/goaltext/internal/actions"
	"github.com/goaltext/goaltext/internal/auth"
	"github.com/goaltext/goaltext/internal/config"
	"github.com/goaltext/goaltext/internal/goals"
	"github.com/goaltext/goaltext/internal/identity"
	"github.com/goaltext/goaltext/internal/inbound"
	"github.com/goaltext/goaltext/internal/ledger"
	"github.com/goaltext/goaltext/internal/matcher"
	"github.com/goaltext/goaltext/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var (
		identityRepo  identity.Repository
		goalRepo      goals.Repository
		ledgerBackend ledger.Ledger
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		goalRepo = goals.NewPostgresRepository(d.DB)
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory stores")
		identityRepo = identity.NewMemoryRepository()
		goalRepo = goals.NewMemoryRepository()
		ledgerBackend = ledger.NewInMemory()
	}

	identitySvc := identity.NewService(identityRepo, d.Cfg.DefaultTimezone)
	goalSvc := goals.NewService(goalRepo, matcher.New(matcher.Config{
		Threshold:      d.Cfg.MatchThreshold,
		SubstringBonus: d.Cfg.MatchSubstringBonus,
	}), d.Cfg.DefaultTimezone)
	pipeline := inbound.New(inbound.Deps{
		Region:     d.Cfg.DefaultRegion,
		Identities: identitySvc,
		Ledger:     ledgerBackend,
		Executor:   actions.NewExecutor(actions.Handlers(identitySvc, goalSvc), d.Logger),
		Logger:     d.Logger,
	})

	// Webhook
	var chain []fiber.Handler
	if d.Cfg.ValidateSignature {
		if d.Cfg.Twilio.AuthToken == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN is required when VALIDATE_SIGNATURE is enabled")
		}
		chain = append(chain, middleware.TwilioSignature(auth.NewValidator(d.Cfg.Twilio.AuthToken), d.Cfg.PublicBaseURL, d.Logger))
	}
	chain = append(chain,
		middleware.InboundRateLimit(d.Cache, d.Cfg.InboundRateLimit, throttledSMS(pipeline), d.Logger),
		middleware.Idempotency(middleware.IdempotencyConfig{
			Cache:     d.Cache,
			TTL:       d.Cfg.IdempotencyTTL,
			Logger:    d.Logger,
			Key:       middleware.MessageSidKey,
			Duplicate: middleware.EmptyTwiML,
		}),
	)
	RegisterSMSRoutes(app, pipeline, chain...)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	RegisterIdentityRoutes(api, identity.NewHandler(identitySvc, d.Cfg.DefaultRegion), middleware.Idempotency(middleware.IdempotencyConfig{
		Cache:  d.Cache,
		TTL:    d.Cfg.IdempotencyTTL,
		Logger: d.Logger,
		Key:    middleware.HeaderKey,
	}))

	return nil
}
