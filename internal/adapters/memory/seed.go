package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// DemoSeed returns the two demo restrooms, verified 4 and 30 hours before now.
func DemoSeed(now time.Time) []domain.Restroom {
	return []domain.Restroom{
		{
			ID:             "1",
			Name:           "ปั๊มสุขใจ บางนา",
			Category:       "ปั๊ม",
			Location:       domain.GeoPoint{Lat: 13.668, Lon: 100.613},
			PriceType:      domain.PriceFree,
			Is24h:          true,
			Wheelchair:     true,
			Water:          true,
			BabyChanging:   false,
			LastVerifiedAt: now.Add(-4 * time.Hour),
			TrustScore:     92,
		},
		{
			ID:             "2",
			Name:           "สวนสุขุมวิท",
			Category:       "สวน",
			Location:       domain.GeoPoint{Lat: 13.731, Lon: 100.569},
			PriceType:      domain.PriceUnknown,
			Is24h:          false,
			Wheelchair:     false,
			Water:          true,
			BabyChanging:   true,
			LastVerifiedAt: now.Add(-30 * time.Hour),
			TrustScore:     65,
		},
	}
}

// seedFile is the on-disk seed layout.
//
//	restrooms:
//	  - id: "1"
//	    name: Bang Na station
//	    lat: 13.668
//	    lon: 100.613
//	    price_type: free
//	    verified_hours_ago: 4
//	    trust_score: 92
type seedFile struct {
	Restrooms []seedEntry `yaml:"restrooms"`
}

type seedEntry struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	Category         string  `yaml:"category"`
	Lat              float64 `yaml:"lat"`
	Lon              float64 `yaml:"lon"`
	PriceType        string  `yaml:"price_type"`
	Is24h            bool    `yaml:"is_24h"`
	Wheelchair       bool    `yaml:"wheelchair"`
	Water            bool    `yaml:"water"`
	BabyChanging     bool    `yaml:"baby_changing"`
	VerifiedHoursAgo float64 `yaml:"verified_hours_ago"`
	TrustScore       int     `yaml:"trust_score"`
}

// LoadSeed reads restrooms from a YAML file.
func LoadSeed(path string, now time.Time) ([]domain.Restroom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data, now)
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte, now time.Time) ([]domain.Restroom, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seen := make(map[string]bool, len(f.Restrooms))
	out := make([]domain.Restroom, 0, len(f.Restrooms))
	for i, e := range f.Restrooms {
		if e.ID == "" {
			return nil, fmt.Errorf("seed entry %d: id is required", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("seed entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true

		price := domain.PriceType(e.PriceType)
		if price == "" {
			price = domain.PriceUnknown
		}
		if !price.Valid() {
			return nil, fmt.Errorf("seed entry %s: unknown price type %q", e.ID, e.PriceType)
		}

		out = append(out, domain.Restroom{
			ID:             e.ID,
			Name:           e.Name,
			Category:       e.Category,
			Location:       domain.GeoPoint{Lat: e.Lat, Lon: e.Lon},
			PriceType:      price,
			Is24h:          e.Is24h,
			Wheelchair:     e.Wheelchair,
			Water:          e.Water,
			BabyChanging:   e.BabyChanging,
			LastVerifiedAt: now.Add(-time.Duration(e.VerifiedHoursAgo * float64(time.Hour))),
			TrustScore:     domain.ClampTrust(e.TrustScore),
		})
	}
	return out, nil
}
