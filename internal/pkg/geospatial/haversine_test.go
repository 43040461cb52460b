package geospatial

import "testing"

func TestHaversine(t *testing.T) {
	// Bang Na (13.668, 100.613) to Benchasiri park (13.731, 100.569) is roughly 8.4 km.
	d := Haversine(13.668, 100.613, 13.731, 100.569)
	if d < 8000 || d > 9000 {
		t.Fatalf("unexpected distance: %v", d)
	}
	if Haversine(13.7, 100.5, 13.7, 100.5) != 0 {
		t.Fatalf("expected zero distance for identical points")
	}
}

func TestWithinRadius(t *testing.T) {
	if !WithinRadius(13.668, 100.613, 13.669, 100.614, 500) {
		t.Errorf("expected point ~150 m away to be inside 500 m")
	}
	if WithinRadius(13.668, 100.613, 13.731, 100.569, 1000) {
		t.Errorf("expected point ~8 km away to be outside 1 km")
	}
}
