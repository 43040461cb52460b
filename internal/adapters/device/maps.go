package device

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// MapsLink implements ports.MapNavigator by building a directions URL and
// handing it to Handoff. It never reports failure back to the caller.
type MapsLink struct {
	BaseURL string
	Handoff func(ctx context.Context, name, link string)
}

// NewMapsLink creates a navigator for the given directions base URL.
func NewMapsLink(baseURL string, handoff func(ctx context.Context, name, link string)) *MapsLink {
	return &MapsLink{BaseURL: baseURL, Handoff: handoff}
}

// Open implements ports.MapNavigator.
func (m *MapsLink) Open(ctx context.Context, to domain.GeoPoint, name string) {
	link, err := m.Link(to)
	if err != nil {
		slog.WarnContext(ctx, "build maps link failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "navigation handoff", "destination", name, "url", link)
	if m.Handoff != nil {
		m.Handoff(ctx, name, link)
	}
}

// Link returns the directions URL to to.
func (m *MapsLink) Link(to domain.GeoPoint) (string, error) {
	u, err := url.Parse(m.BaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api", "1")
	q.Set("destination", strconv.FormatFloat(to.Lat, 'f', 6, 64)+","+strconv.FormatFloat(to.Lon, 'f', 6, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
