// Package listing keeps the product listing's filter controls, its URL query and the displayed
// product page consistent.
package listing

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finitefield.org/collectibles-web/internal/catalog"
)

var (
	// ErrUnknownFilter is returned for filter keys outside FilterSet.
	ErrUnknownFilter = errors.New("listing: unknown filter")
	// ErrInvalidFilterValue is returned when a value is outside the key's allowed set.
	ErrInvalidFilterValue = errors.New("listing: invalid filter value")
)

// FilterKey names one FilterSet field, using the URL parameter spelling.
type FilterKey string

const (
	KeyCategory FilterKey = "category"
	KeyBrand    FilterKey = "brand"
	KeyStatus   FilterKey = "status"
	KeySort     FilterKey = "sort"
	KeySearch   FilterKey = "search"
)

// FilterKeys lists every FilterSet key in URL order.
var FilterKeys = []FilterKey{KeyCategory, KeyBrand, KeyStatus, KeySort, KeySearch}

const (
	paramMinPrice = "minPrice"
	paramMaxPrice = "maxPrice"
	paramPage     = "page"
)

// Sort orders accepted by the backend.
const (
	SortNewest     = "-createdAt"
	SortPriceAsc   = "price"
	SortPriceDesc  = "-price"
	SortBestSeller = "-soldCount"
)

// DefaultSort applies when no sort is chosen.
const DefaultSort = SortNewest

// SortOptions lists the sort orders in display order.
var SortOptions = []string{SortNewest, SortPriceAsc, SortPriceDesc, SortBestSeller}

// ParseFilterKey maps a raw key onto a FilterKey.
func ParseFilterKey(raw string) (FilterKey, error) {
	key := FilterKey(strings.TrimSpace(raw))
	for _, known := range FilterKeys {
		if key == known {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, raw)
}

func validSort(sort string) bool {
	for _, option := range SortOptions {
		if option == sort {
			return true
		}
	}
	return false
}

// FilterSet is the shopper's chosen criteria excluding price.
type FilterSet struct {
	Category string
	Brand    string
	Status   catalog.Status
	Sort     string
	Search   string
}

// DefaultFilters returns the cleared filter set.
func DefaultFilters() FilterSet {
	return FilterSet{Sort: DefaultSort}
}

// Get returns the value stored under key.
func (f FilterSet) Get(key FilterKey) string {
	switch key {
	case KeyCategory:
		return f.Category
	case KeyBrand:
		return f.Brand
	case KeyStatus:
		return string(f.Status)
	case KeySort:
		return f.Sort
	case KeySearch:
		return f.Search
	}
	return ""
}

// With returns a copy of f with key set to value. An empty sort falls back to DefaultSort.
func (f FilterSet) With(key FilterKey, value string) (FilterSet, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyCategory:
		f.Category = value
	case KeyBrand:
		f.Brand = value
	case KeyStatus:
		status := catalog.Status(value)
		if value != "" && !status.Valid() {
			return f, fmt.Errorf("%w: status %q", ErrInvalidFilterValue, value)
		}
		f.Status = status
	case KeySort:
		if value == "" {
			value = DefaultSort
		}
		if !validSort(value) {
			return f, fmt.Errorf("%w: sort %q", ErrInvalidFilterValue, value)
		}
		f.Sort = value
	case KeySearch:
		f.Search = value
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return f, nil
}

// PriceRange bounds the effective product price. Nil bounds are unset.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// IsZero reports whether neither bound is set.
func (p PriceRange) IsZero() bool {
	return p.Min == nil && p.Max == nil
}

// Equal compares bound values.
func (p PriceRange) Equal(other PriceRange) bool {
	return equalBound(p.Min, other.Min) && equalBound(p.Max, other.Max)
}

func equalBound(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ParsePrice parses one price input. Blank input yields a nil bound.
func ParsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q", ErrInvalidFilterValue, raw)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: negative price %q", ErrInvalidFilterValue, raw)
	}
	return &value, nil
}

// ParsePriceRange parses both price inputs.
func ParsePriceRange(minRaw, maxRaw string) (PriceRange, error) {
	minPrice, err := ParsePrice(minRaw)
	if err != nil {
		return PriceRange{}, err
	}
	maxPrice, err := ParsePrice(maxRaw)
	if err != nil {
		return PriceRange{}, err
	}
	return PriceRange{Min: minPrice, Max: maxPrice}, nil
}

// ViewState is the committed view: filters, committed price range and page. Page 0 means the URL
// carries no page and the first page is shown.
type ViewState struct {
	Filters FilterSet
	Price   PriceRange
	Page    int
}

// DefaultViewState is the state of an empty URL query.
func DefaultViewState() ViewState {
	return ViewState{Filters: DefaultFilters()}
}

// ParseViewState reads a view from URL query values. Values outside their allowed sets are
// treated as absent.
func ParseViewState(values url.Values) ViewState {
	state := DefaultViewState()
	for _, key := range FilterKeys {
		if next, err := state.Filters.With(key, values.Get(string(key))); err == nil {
			state.Filters = next
		}
	}
	if minPrice, err := ParsePrice(values.Get(paramMinPrice)); err == nil {
		state.Price.Min = minPrice
	}
	if maxPrice, err := ParsePrice(values.Get(paramMaxPrice)); err == nil {
		state.Price.Max = maxPrice
	}
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(paramPage))); err == nil && page >= 1 {
		state.Page = page
	}
	return state
}

// Values serializes the view for the URL. Only non-empty fields are written.
func (v ViewState) Values() url.Values {
	values := url.Values{}
	for _, key := range FilterKeys {
		if value := v.Filters.Get(key); value != "" {
			values.Set(string(key), value)
		}
	}
	if v.Price.Min != nil {
		values.Set(paramMinPrice, v.Price.Min.String())
	}
	if v.Price.Max != nil {
		values.Set(paramMaxPrice, v.Price.Max.String())
	}
	if v.Page >= 1 {
		values.Set(paramPage, strconv.Itoa(v.Page))
	}
	return values
}

// CurrentPage returns the page to request, defaulting to 1.
func (v ViewState) CurrentPage() int {
	if v.Page < 1 {
		return 1
	}
	return v.Page
}

// ProductQuery builds the backend query for the view.
func (v ViewState) ProductQuery() catalog.ProductQuery {
	return catalog.ProductQuery{
		Category: v.Filters.Category,
		Brand:    v.Filters.Brand,
		Status:   v.Filters.Status,
		Sort:     v.Filters.Sort,
		Search:   v.Filters.Search,
		MinPrice: v.Price.Min,
		MaxPrice: v.Price.Max,
		Page:     v.CurrentPage(),
	}
}

// HasActiveFilters reports whether anything narrows the result set. Sort order does not count.
func (v ViewState) HasActiveFilters() bool {
	f := v.Filters
	return f.Category != "" || f.Brand != "" || f.Status != "" || f.Search != "" || !v.Price.IsZero()
}

// WithFilter returns the view with key set and paging reset.
func (v ViewState) WithFilter(key FilterKey, value string) (ViewState, error) {
	filters, err := v.Filters.With(key, value)
	if err != nil {
		return v, err
	}
	v.Filters = filters
	v.Page = 0
	return v, nil
}

// WithPrice returns the view with the given committed price range and paging reset.
func (v ViewState) WithPrice(price PriceRange) ViewState {
	v.Price = price
	v.Page = 0
	return v
}

// WithPage returns the view showing page, clamped to [1, pages].
func (v ViewState) WithPage(page, pages int) ViewState {
	v.Page = ClampPage(page, pages)
	return v
}

// ClampPage limits page to [1, pages]. A pages value below 1 is treated as 1.
func ClampPage(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

func sameQuery(a, b catalog.ProductQuery) bool {
	return a.Values().Encode() == b.Values().Encode()
}
