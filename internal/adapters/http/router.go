package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/hongnam/internal/pkg/metrics"
)

// requestTimeout bounds every REST handler.
const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			// probes and scrapes are never limited
			p := c.Path()
			return p == "/metrics" || p == "/v1/health" || p == "/v1/ready"
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	// Entity store
	v1.Get("/restrooms", withTimeout(ListRestroomsHandler(deps)))
	v1.Get("/restrooms/:id", withTimeout(GetRestroomHandler(deps)))
	v1.Post("/restrooms/:id/checkin", withTimeout(CheckInRestroomHandler(deps)))

	// Session
	s := v1.Group("/session")
	s.Get("", withTimeout(GetSessionHandler(deps)))
	s.Put("/filters", withTimeout(SetFiltersHandler(deps)))
	s.Post("/select", withTimeout(SelectHandler(deps)))
	s.Delete("/select", withTimeout(ClearSelectionHandler(deps)))
	s.Put("/region", withTimeout(SetRegionHandler(deps)))
	s.Post("/modals/:modal/open", withTimeout(ModalHandler(deps, "open")))
	s.Post("/modals/:modal/cancel", withTimeout(ModalHandler(deps, "cancel")))
	s.Put("/checkin", withTimeout(UpdateCheckInHandler(deps)))
	s.Post("/checkin/submit", withTimeout(SubmitCheckInHandler(deps)))
	s.Put("/draft", withTimeout(UpdateDraftHandler(deps)))
	s.Post("/draft/photo", withTimeout(AttachPhotoHandler(deps)))
	s.Post("/draft/submit", withTimeout(SubmitAddHandler(deps)))
	s.Post("/emergency", withTimeout(EmergencyHandler(deps)))
	s.Post("/locate", withTimeout(LocateHandler(deps)))
	s.Post("/navigate", withTimeout(NavigateHandler(deps)))
	s.Post("/report", withTimeout(ReportHandler(deps)))
	s.Post("/notices", withTimeout(DrainNoticesHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
