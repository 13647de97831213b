package products

import (
	"fmt"
	"net/url"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/format"
	"finitefield.org/collectibles-web/internal/listing"
	"finitefield.org/collectibles-web/internal/storefront/templates/layout"
)

// Routes used by the listing markup.
const (
	PagePath     = "/products"
	FragmentPath = "/products/grid"
	ListingID    = "product-listing"
	IndicatorID  = "product-loading"
)

const pageWindow = 2

// PageData represents the payload for the product index page.
type PageData struct {
	Head    layout.Head
	Heading string
	Listing ListingData
}

// ListingData is the swappable listing region: filters, grid and pagination.
type ListingData struct {
	Filters    FilterControls
	Grid       GridData
	Pagination PaginationData
	Loading    bool
}

// SelectOption represents a select menu option.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// FilterControls encapsulates filter control data.
type FilterControls struct {
	Categories []SelectOption
	Brands     []SelectOption
	Statuses   []SelectOption
	Sorts      []SelectOption
	Search     string
	MinPrice   string
	MaxPrice   string
	HasActive  bool
}

// GridData holds the product cards or the empty state.
type GridData struct {
	Cards     []CardData
	Loaded    bool
	ShowClear bool
}

// CardData is the display model of one product card.
type CardData struct {
	Name        string
	Href        string
	Image       string
	Price       string
	ListPrice   string
	OnSale      bool
	StatusLabel string
	StatusTone  string
}

// PaginationData describes the pager and the paging metadata carried back by fragment requests.
type PaginationData struct {
	Page       int
	Pages      int
	Total      int
	TotalLabel string
	Prev       *PageLink
	Next       *PageLink
	Links      []PageLink
}

// PageLink is one pager entry. Gap entries render as an ellipsis.
type PageLink struct {
	Number  int
	Href    string
	Current bool
	Gap     bool
}

var sortLabels = map[string]string{
	listing.SortNewest:     "Newest",
	listing.SortPriceAsc:   "Price: low to high",
	listing.SortPriceDesc:  "Price: high to low",
	listing.SortBestSeller: "Best sellers",
}

// BuildPageData assembles the full page payload.
func BuildPageData(snap listing.Snapshot, f *format.Formatter) PageData {
	canonical := PagePath
	if encoded := snap.State.Values().Encode(); encoded != "" {
		canonical += "?" + encoded
	}
	return PageData{
		Head: layout.Head{
			Title:       "Products",
			Description: "Scale figures, Nendoroids, figma and model kits in stock, on order and open for pre-order.",
			Canonical:   canonical,
		},
		Heading: "Products",
		Listing: BuildListing(snap, f),
	}
}

// BuildListing maps a listing snapshot onto the listing region payload.
func BuildListing(snap listing.Snapshot, f *format.Formatter) ListingData {
	state := snap.State
	cards := make([]CardData, 0, len(snap.Products))
	for _, p := range snap.Products {
		cards = append(cards, Card(p, f))
	}
	return ListingData{
		Filters: FilterControls{
			Categories: lookupOptions("All categories", state.Filters.Category, snap.Categories, func(c catalog.Category) (string, string) { return c.ID, c.Name }),
			Brands:     lookupOptions("All brands", state.Filters.Brand, snap.Brands, func(b catalog.Brand) (string, string) { return b.ID, b.Name }),
			Statuses:   statusOptions(state.Filters.Status),
			Sorts:      sortOptions(state.Filters.Sort),
			Search:     state.Filters.Search,
			MinPrice:   format.PriceInput(snap.StagedPrice.Min),
			MaxPrice:   format.PriceInput(snap.StagedPrice.Max),
			HasActive:  snap.HasActiveFilters,
		},
		Grid: GridData{
			Cards:     cards,
			Loaded:    snap.Loaded,
			ShowClear: snap.HasActiveFilters,
		},
		Pagination: buildPagination(state, snap.Pagination, f),
		Loading:    snap.Loading,
	}
}

// Card maps a product onto its card display model.
func Card(p catalog.Product, f *format.Formatter) CardData {
	card := CardData{
		Name:        p.Name,
		Href:        PagePath + "/" + url.PathEscape(p.Slug),
		Image:       p.PrimaryImage(),
		Price:       f.Price(p.EffectivePrice()),
		OnSale:      p.OnSale(),
		StatusLabel: p.Status.Label(),
		StatusTone:  statusTone(p.Status),
	}
	if card.OnSale {
		card.ListPrice = f.Price(p.Price)
	}
	return card
}

func statusTone(s catalog.Status) string {
	switch s {
	case catalog.StatusAvailable:
		return "success"
	case catalog.StatusPreorder:
		return "info"
	case catalog.StatusOrder:
		return "warning"
	default:
		return "neutral"
	}
}

func lookupOptions[T any](allLabel, selected string, items []T, fields func(T) (string, string)) []SelectOption {
	options := make([]SelectOption, 0, len(items)+2)
	options = append(options, SelectOption{Value: "", Label: allLabel, Selected: selected == ""})
	found := selected == ""
	for _, item := range items {
		id, name := fields(item)
		options = append(options, SelectOption{Value: id, Label: name, Selected: id == selected})
		if id == selected {
			found = true
		}
	}
	if !found {
		options = append(options, SelectOption{Value: selected, Label: selected, Selected: true})
	}
	return options
}

func statusOptions(selected catalog.Status) []SelectOption {
	options := []SelectOption{{Value: "", Label: "Any availability", Selected: selected == ""}}
	for _, s := range []catalog.Status{catalog.StatusAvailable, catalog.StatusOrder, catalog.StatusPreorder} {
		options = append(options, SelectOption{Value: string(s), Label: s.Label(), Selected: s == selected})
	}
	return options
}

func sortOptions(selected string) []SelectOption {
	options := make([]SelectOption, 0, len(listing.SortOptions))
	for _, value := range listing.SortOptions {
		options = append(options, SelectOption{Value: value, Label: sortLabels[value], Selected: value == selected})
	}
	return options
}

func buildPagination(state listing.ViewState, p catalog.Pagination, f *format.Formatter) PaginationData {
	pages := max(p.Pages, 1)
	current := listing.ClampPage(p.Page, pages)
	data := PaginationData{
		Page:       current,
		Pages:      pages,
		Total:      p.Total,
		TotalLabel: totalLabel(p.Total, f),
	}
	link := func(n int) PageLink {
		return PageLink{Number: n, Href: pageHref(state, n, pages), Current: n == current}
	}
	if current > 1 {
		prev := link(current - 1)
		data.Prev = &prev
	}
	if current < pages {
		next := link(current + 1)
		data.Next = &next
	}
	// Only the first page, the window around current and the last page are linked. Bounds are
	// derived without adding to current so a huge page count cannot overflow.
	numbers := []int{1}
	hi := pages - 1
	if current <= pages-1-pageWindow {
		hi = current + pageWindow
	}
	for n := max(current-pageWindow, 2); n <= hi; n++ {
		numbers = append(numbers, n)
	}
	if pages > 1 {
		numbers = append(numbers, pages)
	}
	for i, n := range numbers {
		if i > 0 && n-numbers[i-1] > 1 {
			data.Links = append(data.Links, PageLink{Gap: true})
		}
		data.Links = append(data.Links, link(n))
	}
	return data
}

func pageHref(state listing.ViewState, n, pages int) string {
	return PagePath + "?" + state.WithPage(n, pages).Values().Encode()
}

// PageFragmentURL is the htmx endpoint that moves the listing to page n.
func PageFragmentURL(n int) string {
	return fmt.Sprintf("%s?intent=page&page=%d", FragmentPath, n)
}

func totalLabel(total int, f *format.Formatter) string {
	if total == 1 {
		return "1 product"
	}
	return f.Count(total) + " products"
}
