package filter_test

import (
	"testing"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/filter"
)

func fixtures() []domain.Restroom {
	return []domain.Restroom{
		{ID: "1", Name: "Bang Na station", PriceType: domain.PriceFree, Is24h: true, Wheelchair: true, Water: true,
			Location: domain.GeoPoint{Lat: 13.668, Lon: 100.613}, TrustScore: 92},
		{ID: "2", Name: "Benchasiri park", PriceType: domain.PriceUnknown, Water: true, BabyChanging: true,
			Location: domain.GeoPoint{Lat: 13.731, Lon: 100.569}, TrustScore: 65},
		{ID: "3", Name: "Siam mall", PriceType: domain.PricePaid, Is24h: true, Water: true, BabyChanging: true,
			Location: domain.GeoPoint{Lat: 13.746, Lon: 100.534}, TrustScore: 40},
	}
}

func ids(rs []domain.Restroom) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name    string
		filters domain.Filters
		want    []string
	}{
		{"defaults keep everything", domain.DefaultFilters(), []string{"1", "2", "3"}},
		{"zero value keeps everything", domain.Filters{}, []string{"1", "2", "3"}},
		{"free only", domain.Filters{PriceType: domain.PriceFilterFree}, []string{"1"}},
		{"unknown price", domain.Filters{PriceType: domain.PriceFilterUnknown}, []string{"2"}},
		{"open now uses 24h flag", domain.Filters{PriceType: domain.PriceAll, OnlyOpenNow: true}, []string{"1", "3"}},
		{"baby changing", domain.Filters{PriceType: domain.PriceAll, BabyChanging: true}, []string{"2", "3"}},
		{"conjunction", domain.Filters{PriceType: domain.PriceAll, OnlyOpenNow: true, BabyChanging: true}, []string{"3"}},
		{"water", domain.Filters{PriceType: domain.PriceAll, Water: true}, []string{"1", "2", "3"}},
		{"nothing matches", domain.Filters{PriceType: domain.PriceFilterPaid, Wheelchair: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(filter.Visible(fixtures(), tt.filters))
			if !equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVisible_PureAndOrderPreserving(t *testing.T) {
	in := fixtures()
	f := domain.Filters{PriceType: domain.PriceAll, Water: true, OnlyOpenNow: true}

	first := filter.Visible(in, f)
	second := filter.Visible(in, f)
	if !equal(ids(first), ids(second)) {
		t.Fatalf("expected identical output for identical input")
	}
	if len(first) > len(in) {
		t.Fatalf("output longer than input")
	}
	if !equal(ids(in), []string{"1", "2", "3"}) {
		t.Fatalf("input was modified: %v", ids(in))
	}

	// every output element appears in the input after the previous one
	pos := -1
	for _, r := range first {
		found := -1
		for i := pos + 1; i < len(in); i++ {
			if in[i].ID == r.ID {
				found = i
				break
			}
		}
		if found < 0 {
			t.Fatalf("output %s is not an ordered subset of input", r.ID)
		}
		pos = found
	}
}

func TestScenario_FreeFilterPicksA(t *testing.T) {
	entities := fixtures()[:2]
	visible := filter.Visible(entities, domain.Filters{PriceType: domain.PriceFilterFree})
	if !equal(ids(visible), []string{"1"}) {
		t.Fatalf("expected [1], got %v", ids(visible))
	}
	best, ok := filter.NearestOrBest(visible, nil)
	if !ok || best.ID != "1" {
		t.Fatalf("expected emergency pick 1, got %+v (ok=%v)", best, ok)
	}
}

func TestScenario_WheelchairNoMatch(t *testing.T) {
	entities := fixtures()[1:2]
	visible := filter.Visible(entities, domain.Filters{Wheelchair: true})
	if len(visible) != 0 {
		t.Fatalf("expected empty result, got %v", ids(visible))
	}
	if _, ok := filter.NearestOrBest(visible, nil); ok {
		t.Fatalf("expected no candidate")
	}
}

func TestNearestOrBest_ListOrderWithoutOrigin(t *testing.T) {
	best, ok := filter.NearestOrBest(fixtures(), nil)
	if !ok || best.ID != "1" {
		t.Fatalf("expected first element, got %s", best.ID)
	}
}

func TestNearestOrBest_DistanceWithOrigin(t *testing.T) {
	// next to Siam
	from := &domain.GeoPoint{Lat: 13.745, Lon: 100.533}
	best, ok := filter.NearestOrBest(fixtures(), from)
	if !ok || best.ID != "3" {
		t.Fatalf("expected closest restroom 3, got %s", best.ID)
	}
}

func TestNearestOrBest_TieKeepsListOrder(t *testing.T) {
	p := domain.GeoPoint{Lat: 13.7, Lon: 100.5}
	rs := []domain.Restroom{{ID: "a", Location: p}, {ID: "b", Location: p}}
	best, _ := filter.NearestOrBest(rs, &p)
	if best.ID != "a" {
		t.Fatalf("expected tie to go to a, got %s", best.ID)
	}
}

func TestWithin(t *testing.T) {
	center := domain.GeoPoint{Lat: 13.668, Lon: 100.613}
	got := ids(filter.Within(fixtures(), center, 1000))
	if !equal(got, []string{"1"}) {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestInRegion(t *testing.T) {
	got := ids(filter.InRegion(fixtures(), domain.InitialRegion))
	// initial region spans 13.6967..13.7767 / 100.4832..100.5632
	if !equal(got, []string{"3"}) {
		t.Fatalf("expected [3], got %v", got)
	}
}
