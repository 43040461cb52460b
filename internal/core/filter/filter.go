// Package filter derives the visible subset of restrooms from the active
// criteria and picks an emergency candidate from it. Everything here is pure.
package filter

import (
	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/pkg/geospatial"
)

// Matches reports whether r satisfies every active criterion.
//
// OnlyOpenNow uses the 24-hour flag as a stand-in for real opening hours.
func Matches(r domain.Restroom, f domain.Filters) bool {
	if f.PriceType.Active() && r.PriceType != domain.PriceType(f.PriceType) {
		return false
	}
	if f.OnlyOpenNow && !r.Is24h {
		return false
	}
	if f.Wheelchair && !r.Wheelchair {
		return false
	}
	if f.Water && !r.Water {
		return false
	}
	if f.BabyChanging && !r.BabyChanging {
		return false
	}
	return true
}

// Visible returns the restrooms matching f, preserving input order.
// The input slice is never modified.
func Visible(restrooms []domain.Restroom, f domain.Filters) []domain.Restroom {
	out := make([]domain.Restroom, 0, len(restrooms))
	for _, r := range restrooms {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// NearestOrBest picks the emergency candidate from an already filtered list.
//
// Without an origin it returns the first element, so list order decides.
// With an origin it returns the closest restroom by great-circle distance;
// ties go to the earlier element.
func NearestOrBest(visible []domain.Restroom, from *domain.GeoPoint) (domain.Restroom, bool) {
	if len(visible) == 0 {
		return domain.Restroom{}, false
	}
	if from == nil {
		return visible[0], true
	}

	best := 0
	bestDist := DistanceMeters(*from, visible[0].Location)
	for i := 1; i < len(visible); i++ {
		if d := DistanceMeters(*from, visible[i].Location); d < bestDist {
			best, bestDist = i, d
		}
	}
	return visible[best], true
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Within keeps the restrooms lying within radiusMeters of center, preserving order.
func Within(restrooms []domain.Restroom, center domain.GeoPoint, radiusMeters float64) []domain.Restroom {
	out := make([]domain.Restroom, 0, len(restrooms))
	for _, r := range restrooms {
		if geospatial.WithinRadius(center.Lat, center.Lon, r.Location.Lat, r.Location.Lon, radiusMeters) {
			out = append(out, r)
		}
	}
	return out
}

// InRegion keeps the restrooms inside the viewport, preserving order.
func InRegion(restrooms []domain.Restroom, region domain.Region) []domain.Restroom {
	b := region.Bounds()
	out := make([]domain.Restroom, 0, len(restrooms))
	for _, r := range restrooms {
		if b.Contains(r.Location) {
			out = append(out, r)
		}
	}
	return out
}
