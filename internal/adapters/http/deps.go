package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hongnam/internal/core/ports"
	"github.com/samirrijal/hongnam/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Restrooms *usecases.RestroomService
	Session   *usecases.Session
	NATS      *nats.Conn
	Cache     ports.CacheService
}
