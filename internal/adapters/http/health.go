package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// pinger is implemented by caches backed by a network server.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler checks the store, NATS, and cache. NATS and cache are
// optional; only a configured but unreachable one fails readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Store
		if deps.Restrooms != nil {
			if _, err := deps.Restrooms.ListAll(ctx); err != nil {
				checks["store"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["store"] = "ok"
			}
		} else {
			checks["store"] = "not configured"
			allOK = false
		}

		// NATS
		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		// Cache
		switch cache := deps.Cache.(type) {
		case nil:
			checks["cache"] = "not configured"
		case pinger:
			if err := cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		default:
			checks["cache"] = "in-process"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
