package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// paginate slices items to the requested window. An offset past the end
// yields an empty, non-nil page.
func paginate[T any](items []T, offset, limit int) ([]T, Pagination) {
	total := len(items)
	pg := Pagination{Offset: offset, Limit: limit, Total: total}
	if offset >= total {
		return []T{}, pg
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end], pg
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// Query parameters other than offset and limit are carried over so that
// filters survive page navigation.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	extra := carriedQuery(c)

	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?%soffset=%d&limit=%d>; rel="%s"`, base, extra, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	lastOffset := p.Total - p.Limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	links = append(links, link(lastOffset, "last"))

	c.Set("Link", strings.Join(links, ", "))
}

func carriedQuery(c *fiber.Ctx) string {
	var b strings.Builder
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key == "offset" || key == "limit" {
			return
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(string(v)))
		b.WriteByte('&')
	})
	return b.String()
}
