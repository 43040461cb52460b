package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Region is the visible map viewport: a center plus latitude/longitude spans.
type Region struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta"`
}

// Viewport spans.
const (
	DefaultSpan = 0.08
	NearMeSpan  = 0.03
)

// InitialRegion is central Bangkok.
var InitialRegion = Region{
	Latitude:       13.736717,
	Longitude:      100.523186,
	LatitudeDelta:  DefaultSpan,
	LongitudeDelta: DefaultSpan,
}

// Center returns the viewport center.
func (r Region) Center() GeoPoint {
	return GeoPoint{Lat: r.Latitude, Lon: r.Longitude}
}

// RegionAround centers a viewport of the given span on p.
func RegionAround(p GeoPoint, span float64) Region {
	return Region{
		Latitude:       p.Lat,
		Longitude:      p.Lon,
		LatitudeDelta:  span,
		LongitudeDelta: span,
	}
}

// Valid reports whether the region describes a usable viewport.
func (r Region) Valid() bool {
	return r.Latitude >= -90 && r.Latitude <= 90 &&
		r.Longitude >= -180 && r.Longitude <= 180 &&
		r.LatitudeDelta > 0 && r.LongitudeDelta > 0
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bounds returns the box covered by the viewport.
func (r Region) Bounds() Bounds {
	return Bounds{
		MinLat: r.Latitude - r.LatitudeDelta/2,
		MinLon: r.Longitude - r.LongitudeDelta/2,
		MaxLat: r.Latitude + r.LatitudeDelta/2,
		MaxLon: r.Longitude + r.LongitudeDelta/2,
	}
}

// Contains reports whether p falls inside the box.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
