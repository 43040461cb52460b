package ports

import (
	"context"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishCheckIn(ctx context.Context, report *domain.CheckInReport) error
	PublishRestroomAdded(ctx context.Context, r *domain.Restroom) error
	PublishReport(ctx context.Context, report *domain.ProblemReport) error
}

// EventSubscriber consumes domain events from a message broker.
type EventSubscriber interface {
	SubscribeCheckIns(ctx context.Context, handler func(ctx context.Context, report *domain.CheckInReport) error) error
	SubscribeRestroomsAdded(ctx context.Context, handler func(ctx context.Context, r *domain.Restroom) error) error
	SubscribeReports(ctx context.Context, handler func(ctx context.Context, report *domain.ProblemReport) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// LocationProvider is the device's geolocation capability.
type LocationProvider interface {
	RequestPermission(ctx context.Context) (domain.Permission, error)
	CurrentPosition(ctx context.Context) (domain.GeoPoint, error)
}

// PhotoPicker is the device's photo library capability.
type PhotoPicker interface {
	RequestPermission(ctx context.Context) (domain.Permission, error)
	PickImage(ctx context.Context) (domain.PickResult, error)
}

// MapNavigator hands a destination to an external map application.
// It is fire-and-forget: nothing it does is reported back.
type MapNavigator interface {
	Open(ctx context.Context, to domain.GeoPoint, name string)
}
