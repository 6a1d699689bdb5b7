package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/karobar-pay/karobar_pay/internal/auth"
	"github.com/karobar-pay/karobar_pay/internal/config"
	"github.com/karobar-pay/karobar_pay/internal/identity"
	"github.com/karobar-pay/karobar_pay/internal/middleware"
	"github.com/karobar-pay/karobar_pay/internal/payments"
	"github.com/karobar-pay/karobar_pay/internal/payout"
	"github.com/karobar-pay/karobar_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Platform
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !config.IsDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if config.IsDev(d.Cfg.AppEnv) {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}
	// Health
	RegisterHealthRoutes(app, d)

	// Repositories, with in-memory fallbacks for storage-less dev runs.
	var identityRepo identity.Repository
	var walletRepo wallet.Repository
	var payoutRepo payout.Repository
	var paymentRepo payments.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		walletRepo = wallet.NewPostgresRepository(d.DB)
		payoutRepo = payout.NewPostgresRepository(d.DB)
		paymentRepo = payments.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		walletRepo = wallet.NewMemoryRepository()
		payoutRepo = payout.NewMemoryRepository()
		paymentRepo = payments.NewMemoryRepository()
	}

	// Services and handlers
	identitySvc := identity.NewService(identityRepo)
	tokenSvc := auth.NewService(d.Cfg)
	authHandler := auth.NewHandler(identitySvc, tokenSvc)
	payoutSvc := payout.NewService(payoutRepo, walletRepo, identitySvc)
	paymentSvc := payments.NewService(paymentRepo)

	// Seed the bootstrap administrator so merchant approval has an
	// operator from the first start.
	if d.Cfg.AdminEmail != "" {
		if _, err := identitySvc.EnsureAdmin(context.Background(), identity.EnsureAdminInput{
			Email:       d.Cfg.AdminEmail,
			Password:    d.Cfg.AdminPassword,
			DisplayName: "Platform Admin",
			Role:        "superadmin",
		}); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	identityHandler := identity.NewHandler(identityRepo, identitySvc)
	walletHandler := wallet.NewHandler(walletRepo)
	payoutHandler := payout.NewHandler(payoutSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

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

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes. Idempotency runs behind bearer auth so its
	// keys scope to the authenticated subject.
	bearer := middleware.BearerAuth(tokenSvc)
	protected := api.Group("", bearer)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterMerchantRoutes(protected, identityHandler, walletHandler, payoutHandler, paymentHandler)
	RegisterPaymentRoutes(protected, paymentHandler)
	RegisterAdminRoutes(protected, identityHandler)

	return nil
}
