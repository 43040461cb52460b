// Package device adapts host capabilities (geolocation, photo library,
// external maps) to the session ports. The API process has no device of its
// own, so results either come from configuration or are reported by the
// client in the request body.
package device

import (
	"context"
	"errors"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// ErrNoPosition is returned when a granted locator has nothing to report.
var ErrNoPosition = errors.New("device: position unavailable")

// StaticLocator reports a fixed position, or a denial.
type StaticLocator struct {
	Granted  bool
	Position domain.GeoPoint
}

// RequestPermission implements ports.LocationProvider.
func (l StaticLocator) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionDenied, err
	}
	if l.Granted {
		return domain.PermissionGranted, nil
	}
	return domain.PermissionDenied, nil
}

// CurrentPosition implements ports.LocationProvider.
func (l StaticLocator) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return domain.GeoPoint{}, err
	}
	return l.Position, nil
}

// ReportedLocator forwards the outcome a client obtained from its own
// geolocation prompt.
type ReportedLocator struct {
	Granted  bool
	Position *domain.GeoPoint
}

// RequestPermission implements ports.LocationProvider.
func (l ReportedLocator) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if l.Granted {
		return domain.PermissionGranted, nil
	}
	return domain.PermissionDenied, nil
}

// CurrentPosition implements ports.LocationProvider.
func (l ReportedLocator) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if l.Position == nil {
		return domain.GeoPoint{}, ErrNoPosition
	}
	p := *l.Position
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return domain.GeoPoint{}, ErrNoPosition
	}
	return p, nil
}
