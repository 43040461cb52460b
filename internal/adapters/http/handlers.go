package http

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/filter"
)

// restroomView is the wire form of a restroom with derived fields.
type restroomView struct {
	domain.Restroom
	Verified       bool     `json:"verified"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

func newRestroomView(r domain.Restroom, from *domain.GeoPoint) restroomView {
	v := restroomView{Restroom: r, Verified: r.Verified()}
	if from != nil {
		d := filter.DistanceMeters(*from, r.Location)
		v.DistanceMeters = &d
	}
	return v
}

func newRestroomViews(rs []domain.Restroom, from *domain.GeoPoint) []restroomView {
	out := make([]restroomView, len(rs))
	for i, r := range rs {
		out[i] = newRestroomView(r, from)
	}
	return out
}

// filterQueryKeys are the query parameters that override session filters.
var filterQueryKeys = []string{"price", "open_now", "wheelchair", "water", "baby_changing"}

// parseFilterQuery applies any filter query parameters on top of base. It
// reports whether at least one was present.
func parseFilterQuery(c *fiber.Ctx, base domain.Filters) (domain.Filters, bool, error) {
	present := false
	for _, k := range filterQueryKeys {
		if c.Query(k) != "" {
			present = true
			break
		}
	}
	if !present {
		return base, false, nil
	}

	f := domain.DefaultFilters()
	if p := c.Query("price"); p != "" {
		f.PriceType = domain.PriceFilter(strings.ToLower(p))
		if !f.PriceType.Valid() {
			return base, true, domain.ErrValidation
		}
	}
	for key, dst := range map[string]*bool{
		"open_now":      &f.OnlyOpenNow,
		"wheelchair":    &f.Wheelchair,
		"water":         &f.Water,
		"baby_changing": &f.BabyChanging,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return base, true, domain.ErrValidation
		}
		*dst = b
	}
	return f, true, nil
}

// parseNear reads an optional lat/lon pair from the query string.
func parseNear(c *fiber.Ctx) (*domain.GeoPoint, error) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lon, err2 := strconv.ParseFloat(lonRaw, 64)
	if err1 != nil || err2 != nil || !finite(lat) || !finite(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, domain.ErrValidation
	}
	return &domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ListRestroomsHandler returns the filtered restroom list. Filter query
// parameters override the session's filters for this request only, and
// in_view=true trims the list to the session's map viewport.
func ListRestroomsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, _, err := parseFilterQuery(c, deps.Session.Filters())
		if err != nil {
			return errBadRequest(c, "invalid filter parameters")
		}
		near, err := parseNear(c)
		if err != nil {
			return errBadRequest(c, "lat and lon must be valid coordinates")
		}
		inView := false
		if raw := c.Query("in_view"); raw != "" {
			if inView, err = strconv.ParseBool(raw); err != nil {
				return errBadRequest(c, "in_view must be true or false")
			}
		}

		restrooms, err := deps.Restrooms.Visible(c.UserContext(), f)
		if err != nil {
			return errDomain(c, err)
		}
		if inView {
			restrooms = filter.InRegion(restrooms, deps.Session.Region())
		}

		if radius := c.QueryFloat("radius", 0); radius != 0 {
			if near == nil {
				return errBadRequest(c, "radius requires lat and lon")
			}
			if !finite(radius) || radius < 0 || radius > 50000 {
				return errBadRequest(c, "radius must be between 1 and 50000 meters")
			}
			restrooms = filter.Within(restrooms, *near, radius)
		}

		// Apply offset/limit pagination on the filtered list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		page, pg := paginate(restrooms, offset, limit)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: newRestroomViews(page, near), Pagination: pg})
	}
}

// GetRestroomHandler returns a single restroom by ID.
func GetRestroomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "restroom id is required")
		}
		r, err := deps.Restrooms.Get(c.UserContext(), id)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(newRestroomView(*r, nil))
	}
}

// CheckInRestroomHandler checks in a restroom directly, without touching the
// session's selection or form state. Missing answers default to open/good.
func CheckInRestroomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "restroom id is required")
		}

		in := domain.DefaultCheckIn()
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&in); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if in.Status == "" {
			in.Status = domain.StatusOpen
		}
		if in.Cleanliness == "" {
			in.Cleanliness = domain.CleanGood
		}
		if !in.Status.Valid() || !in.Cleanliness.Valid() {
			return errBadRequest(c, "status must be open, closed or unknown and cleanliness good, ok or bad")
		}

		updated, err := deps.Restrooms.CheckIn(c.UserContext(), id, in)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(newRestroomView(*updated, nil))
	}
}
