package models

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	dErrors "equityshield/pkg/domain-errors"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageRequest selects the slice [(Page-1)*PerPage, Page*PerPage).
type PageRequest struct {
	Page    int
	PerPage int
}

// DefaultPageRequest is page 1 of 10.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: DefaultPage, PerPage: DefaultPerPage}
}

// Page is one slice of a result set plus the metadata clients page with.
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// Paginate slices items for req. Pages past the end are empty, never nil.
// Non-positive fields fall back to the defaults.
func Paginate[T any](items []T, req PageRequest) Page[T] {
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.PerPage < 1 {
		req.PerPage = DefaultPerPage
	}
	total := len(items)
	start := total
	// Compare before multiplying so huge page numbers cannot overflow.
	if req.Page-1 <= total/req.PerPage {
		start = min((req.Page-1)*req.PerPage, total)
	}
	end := min(start+req.PerPage, total)

	slice := make([]T, end-start)
	copy(slice, items[start:end])

	totalPages := 0
	if total > 0 {
		totalPages = (total + req.PerPage - 1) / req.PerPage
	}
	return Page[T]{
		Items:      slice,
		Page:       req.Page,
		PerPage:    req.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

type SortKey string

const (
	SortBySymbol    SortKey = "symbol"
	SortByMarketCap SortKey = "market_cap"
	SortByRevenue   SortKey = "revenue"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortBySymbol, SortByMarketCap, SortByRevenue:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// AssetQuery is the parsed form of the /api/real-assets query string.
type AssetQuery struct {
	MinMarketCap *float64
	MaxMarketCap *float64
	SortBy       SortKey
	SortOrder    SortOrder
	Page         PageRequest
}

// ParsePage reads page and per_page, applying defaults for absent or blank
// values. Non-integer, non-positive or over-limit values are invalid_argument.
func ParsePage(q url.Values) (PageRequest, error) {
	req := DefaultPageRequest()

	page, err := positiveInt(q, "page", DefaultPage)
	if err != nil {
		return req, err
	}
	perPage, err := positiveInt(q, "per_page", DefaultPerPage)
	if err != nil {
		return req, err
	}
	if perPage > MaxPerPage {
		return req, dErrors.Newf(dErrors.CodeInvalidArgument, "per_page must not exceed %d", MaxPerPage)
	}
	req.Page = page
	req.PerPage = perPage
	return req, nil
}

// ParseAssetQuery reads the filter, sort and page parameters for real-assets.
func ParseAssetQuery(q url.Values) (AssetQuery, error) {
	page, err := ParsePage(q)
	if err != nil {
		return AssetQuery{}, err
	}
	minCap, err := optionalFloat(q, "min_market_cap")
	if err != nil {
		return AssetQuery{}, err
	}
	maxCap, err := optionalFloat(q, "max_market_cap")
	if err != nil {
		return AssetQuery{}, err
	}

	sortBy := SortBySymbol
	if v := strings.TrimSpace(q.Get("sort_by")); v != "" {
		sortBy = SortKey(strings.ToLower(v))
		if !sortBy.IsValid() {
			return AssetQuery{}, dErrors.Newf(dErrors.CodeInvalidArgument,
				"sort_by must be one of symbol, market_cap, revenue (got %q)", v)
		}
	}
	sortOrder := SortAsc
	if v := strings.TrimSpace(q.Get("sort_order")); v != "" {
		sortOrder = SortOrder(strings.ToLower(v))
		if !sortOrder.IsValid() {
			return AssetQuery{}, dErrors.Newf(dErrors.CodeInvalidArgument,
				"sort_order must be asc or desc (got %q)", v)
		}
	}

	return AssetQuery{
		MinMarketCap: minCap,
		MaxMarketCap: maxCap,
		SortBy:       sortBy,
		SortOrder:    sortOrder,
		Page:         page,
	}, nil
}

func positiveInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, dErrors.Newf(dErrors.CodeInvalidArgument, "%s must be a positive integer (got %q)", key, v)
	}
	return n, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, dErrors.Newf(dErrors.CodeInvalidArgument, "%s must be a number (got %q)", key, v)
	}
	return &f, nil
}
