package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	// DefaultPageSize is used when the caller omits "limit".
	DefaultPageSize = 25
	// MaxPageSize caps "limit" regardless of what the caller requests.
	MaxPageSize = 100
)

// OffsetParams holds the parsed "page"/"limit" query parameters used by every
// list endpoint.
type OffsetParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParseOffsetParams extracts page/limit pagination parameters from the
// request, defaulting to page 1 and DefaultPageSize, and clamping limit to
// MaxPageSize.
func ParseOffsetParams(r *http.Request) (OffsetParams, error) {
	p := OffsetParams{Page: 1, Limit: DefaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.Page = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("limit must be a positive integer")
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		p.Limit = n
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p, nil
}

// OffsetPage is the response payload for paginated list results.
type OffsetPage[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewOffsetPage builds an OffsetPage from a result set and total count.
func NewOffsetPage[T any](items []T, params OffsetParams, totalItems int) OffsetPage[T] {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (totalItems + params.Limit - 1) / params.Limit
	}

	return OffsetPage[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
