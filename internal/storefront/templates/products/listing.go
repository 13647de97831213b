package products

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/collectibles-web/internal/storefront/templates/helpers"
	"finitefield.org/collectibles-web/internal/storefront/templates/layout"
)

const (
	clearFragmentURL = FragmentPath + "?intent=clear"
	listingInclude   = "#" + ListingID + " [name='pages'], #" + ListingID + " [name='total'], #price-min, #price-max"
)

// Index renders the product index page.
func Index(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<div class="page page--products"><h1>`)
		h.Text(data.Heading)
		h.Raw("</h1>")
		h.Render(ctx, Listing(data.Listing))
		h.Raw("</div>")
		return h.Err()
	})
	return layout.Base(data.Head, body)
}

// Listing renders the swappable region targeted by every filter, price and page request.
func Listing(data ListingData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw("<section")
		h.Attr("id", ListingID)
		h.Attr("class", "product-listing")
		h.Attr("hx-target", "this")
		h.Attr("hx-swap", "outerHTML")
		h.Attr("hx-sync", "closest section:replace")
		h.Attr("hx-indicator", "#"+IndicatorID)
		h.Attr("hx-include", listingInclude)
		if data.Loading {
			h.Attr("aria-busy", "true")
		} else {
			h.Attr("aria-busy", "false")
		}
		h.Raw(">")
		h.Render(ctx, FilterForm(data.Filters))
		h.Render(ctx, LoadingIndicator(data.Loading))
		if len(data.Grid.Cards) == 0 {
			h.Render(ctx, EmptyState(data.Grid.ShowClear))
		} else {
			h.Render(ctx, Grid(data.Grid))
		}
		h.Render(ctx, Pagination(data.Pagination))
		h.Raw("</section>")
		return h.Err()
	})
}

// FilterForm renders the filter controls. Selects and search commit on change; price inputs
// commit on blur or Enter. Without JavaScript the form submits to the page route.
func FilterForm(data FilterControls) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<form id="product-filters" class="filters" role="search" method="get"`)
		h.Attr("action", PagePath)
		h.Raw(">")

		filterSelect(h, "category", "Category", data.Categories)
		filterSelect(h, "brand", "Brand", data.Brands)
		filterSelect(h, "status", "Availability", data.Statuses)
		filterSelect(h, "sort", "Sort by", data.Sorts)

		h.Raw(`<label class="field"><span>Search</span><input type="search" id="filter-search" name="search"`)
		h.Attr("value", data.Search)
		h.Attr("placeholder", "Character, series, maker")
		filterTrigger(h, "search", "change")
		h.Raw("></label>")

		h.Raw(`<fieldset id="price-range" class="price-range"><legend>Price</legend>`)
		priceInput(h, "price-min", "minPrice", "Min", data.MinPrice)
		priceInput(h, "price-max", "maxPrice", "Max", data.MaxPrice)
		h.Raw("</fieldset>")

		h.Raw(`<noscript><button type="submit">Apply</button></noscript>`)
		if data.HasActive {
			clearLink(h, "clear-filters clear-filters--inline")
		}
		h.Raw("</form>")
		return h.Err()
	})
}

func filterSelect(h *helpers.HTML, key, label string, options []SelectOption) {
	h.Raw(`<label class="field"><span>`)
	h.Text(label)
	h.Raw("</span><select")
	h.Attr("id", "filter-"+key)
	h.Attr("name", key)
	filterTrigger(h, key, "change")
	h.Raw(">")
	for _, option := range options {
		h.Raw("<option")
		h.Attr("value", option.Value)
		h.Bool("selected", option.Selected)
		h.Raw(">")
		h.Text(option.Label)
		h.Raw("</option>")
	}
	h.Raw("</select></label>")
}

func filterTrigger(h *helpers.HTML, key, trigger string) {
	h.Attr("hx-get", FragmentPath)
	h.Attr("hx-trigger", trigger)
	h.Attr("hx-vals", `{"intent":"filter","key":"`+key+`"}`)
}

func priceInput(h *helpers.HTML, id, name, label, value string) {
	h.Raw(`<label class="field field--price"><span>`)
	h.Text(label)
	h.Raw(`</span><input type="number" min="0" step="any" inputmode="numeric"`)
	h.Attr("id", id)
	h.Attr("name", name)
	h.Attr("value", value)
	h.Attr("hx-get", FragmentPath)
	h.Attr("hx-trigger", "blur changed, keyup[key=='Enter']")
	h.Attr("hx-vals", `{"intent":"price"}`)
	h.Raw("></label>")
}

func clearLink(h *helpers.HTML, class string) {
	h.Raw("<a")
	h.Attr("class", class)
	h.Attr("href", PagePath)
	h.Attr("hx-get", clearFragmentURL)
	h.Raw(" data-clear-filters>Clear filters</a>")
}

// LoadingIndicator is shown by htmx while a listing request is in flight.
func LoadingIndicator(active bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw("<div")
		h.Attr("id", IndicatorID)
		h.Attr("class", helpers.Classes("htmx-indicator", "loading-indicator", activeClass(active)))
		h.Raw(` role="status" aria-live="polite"><span class="spinner" aria-hidden="true"></span><span class="visually-hidden">Loading products…</span></div>`)
		return h.Err()
	})
}

func activeClass(active bool) string {
	if active {
		return "is-active"
	}
	return ""
}

// EmptyState renders the "no products" panel. The clear action appears only when filters narrow
// the result.
func EmptyState(showClear bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<div class="empty-state" data-empty-state><p class="empty-state__title">No products found</p>`)
		if showClear {
			h.Raw(`<p>Try removing a filter or widening the price range.</p>`)
			clearLink(h, "button clear-filters")
		}
		h.Raw("</div>")
		return h.Err()
	})
}

// Grid renders the product cards.
func Grid(data GridData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<ul class="product-grid" data-product-grid>`)
		for _, card := range data.Cards {
			h.Raw("<li>")
			h.Render(ctx, ProductCard(card))
			h.Raw("</li>")
		}
		h.Raw("</ul>")
		return h.Err()
	})
}

// ProductCard renders one product summary.
func ProductCard(card CardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw("<article")
		h.Attr("class", helpers.Classes("product-card", saleClass(card.OnSale)))
		h.Raw(" data-product-card><a")
		h.Attr("href", card.Href)
		h.Raw(` class="product-card__link">`)
		if card.Image != "" {
			h.Raw("<img")
			h.Attr("src", card.Image)
			h.Attr("alt", card.Name)
			h.Raw(` loading="lazy" width="320" height="320">`)
		} else {
			h.Raw(`<div class="product-card__placeholder" aria-hidden="true"></div>`)
		}
		h.Raw(`<h3 class="product-card__name">`)
		h.Text(card.Name)
		h.Raw(`</h3></a><p class="product-card__price" data-price>`)
		if card.OnSale {
			h.Raw("<del>")
			h.Text(card.ListPrice)
			h.Raw(`</del> <strong class="sale">`)
			h.Text(card.Price)
			h.Raw("</strong>")
		} else {
			h.Text(card.Price)
		}
		h.Raw("</p>")
		if card.StatusLabel != "" {
			h.Raw("<span")
			h.Attr("class", "badge badge--"+card.StatusTone)
			h.Raw(">")
			h.Text(card.StatusLabel)
			h.Raw("</span>")
		}
		h.Raw("</article>")
		return h.Err()
	})
}

func saleClass(onSale bool) string {
	if onSale {
		return "is-sale"
	}
	return ""
}

// Pagination renders the pager plus hidden paging metadata so fragment requests can clamp page
// changes without refetching.
func Pagination(data PaginationData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<nav class="pagination" aria-label="Pagination" data-pagination><input type="hidden" name="pages"`)
		h.Attr("value", strconv.Itoa(data.Pages))
		h.Raw(`><input type="hidden" name="total"`)
		h.Attr("value", strconv.Itoa(data.Total))
		h.Raw(`><p class="pagination__summary">`)
		h.Text(data.TotalLabel)
		h.Raw("</p>")
		if data.Pages > 1 {
			h.Raw("<ul>")
			if data.Prev != nil {
				pageLink(h, *data.Prev, "Previous", "prev")
			}
			for _, link := range data.Links {
				if link.Gap {
					h.Raw(`<li class="pagination__gap" aria-hidden="true">…</li>`)
					continue
				}
				pageLink(h, link, strconv.Itoa(link.Number), "")
			}
			if data.Next != nil {
				pageLink(h, *data.Next, "Next", "next")
			}
			h.Raw("</ul>")
		}
		h.Raw("</nav>")
		return h.Err()
	})
}

func pageLink(h *helpers.HTML, link PageLink, label, rel string) {
	h.Raw("<li><a")
	h.Attr("href", link.Href)
	h.Attr("hx-get", PageFragmentURL(link.Number))
	h.AttrIf("rel", rel)
	if link.Current && rel == "" {
		h.Attr("aria-current", "page")
	}
	h.Raw(">")
	h.Text(label)
	h.Raw("</a></li>")
}
