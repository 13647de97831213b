package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/listing"
	"finitefield.org/collectibles-web/internal/platform/observability"
	custommw "finitefield.org/collectibles-web/internal/storefront/middleware"
	"finitefield.org/collectibles-web/internal/storefront/templates/pages"
	productstpl "finitefield.org/collectibles-web/internal/storefront/templates/products"
)

// Fragment intents sent by the listing controls.
const (
	intentFilter = "filter"
	intentPrice  = "price"
	intentPage   = "page"
	intentClear  = "clear"
)

// maxRestoredPages bounds the page count echoed back by the client. Larger values are treated as
// unknown and the count is fetched instead.
const maxRestoredPages = 10_000

// ProductsPage renders the full product listing for the current URL.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := listing.NewURLLocation(r.URL)
	view := listing.New(h.catalog, loc, listing.WithLogger(observability.FromContext(ctx)))
	view.Mount(ctx)

	site := custommw.SiteFromContext(ctx)
	payload := productstpl.BuildPageData(view.Snapshot(), site.Format)
	templ.Handler(productstpl.Index(payload)).ServeHTTP(w, r)
}

// ProductsGrid applies one listing action and returns the re-rendered listing region. The
// committed URL is pushed to the browser history through HX-Push-Url.
func (h *Handlers) ProductsGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	q := r.URL.Query()

	loc := listing.NewURLLocation(fragmentLocation(r, q))
	view := listing.New(h.catalog, loc, listing.WithLogger(logger))
	view.LoadLookups(ctx)
	pageCount := atoiDefault(q.Get("pages"), 0)
	if pageCount > maxRestoredPages {
		pageCount = 0
	}
	if pageCount > 0 {
		view.Restore(catalog.Pagination{Pages: pageCount, Total: atoiDefault(q.Get("total"), 0)})
	}

	intent := strings.ToLower(strings.TrimSpace(q.Get("intent")))
	switch intent {
	case intentFilter:
		key, err := listing.ParseFilterKey(q.Get("key"))
		if err != nil {
			http.Error(w, "Unknown filter.", http.StatusBadRequest)
			return
		}
		if q.Has("minPrice") || q.Has("maxPrice") {
			price, err := listing.ParsePriceRange(q.Get("minPrice"), q.Get("maxPrice"))
			if err != nil {
				http.Error(w, "Enter a valid price.", http.StatusBadRequest)
				return
			}
			view.StagePrice(price)
		}
		if err := view.ApplyFilter(ctx, key, q.Get(string(key))); err != nil {
			logger.Debug("filter rejected", zap.String("key", string(key)), zap.Error(err))
			http.Error(w, "Invalid filter value.", http.StatusBadRequest)
			return
		}
	case intentPrice:
		price, err := listing.ParsePriceRange(q.Get("minPrice"), q.Get("maxPrice"))
		if err != nil {
			http.Error(w, "Enter a valid price.", http.StatusBadRequest)
			return
		}
		view.StagePrice(price)
		view.CommitPriceRange(ctx)
	case intentPage:
		n, err := strconv.Atoi(strings.TrimSpace(q.Get("page")))
		if err != nil {
			http.Error(w, "Invalid page.", http.StatusBadRequest)
			return
		}
		if pageCount == 0 {
			// Page count unknown; fetch the current page first so the move can be clamped.
			view.Refresh(ctx)
		}
		view.ChangePage(ctx, n)
	case intentClear:
		view.ClearFilters(ctx)
	default:
		http.Error(w, "Unknown listing action.", http.StatusBadRequest)
		return
	}

	snap := view.Snapshot()
	w.Header().Set("HX-Push-Url", loc.String())
	if snap.FetchFailed {
		// Nothing newer to show; keep the listing already on screen.
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusOK)
		return
	}
	if snap.ScrollToTop {
		w.Header().Set("HX-Reswap", "outerHTML show:window:top")
	}
	site := custommw.SiteFromContext(ctx)
	templ.Handler(productstpl.Listing(productstpl.BuildListing(snap, site.Format))).ServeHTTP(w, r)
}

// fragmentLocation resolves the page URL a fragment request acts on. htmx reports the browser
// location in HX-Current-URL; requests without it fall back to their own query minus the staged
// price inputs and the target page, which are not committed state.
func fragmentLocation(r *http.Request, q url.Values) *url.URL {
	var seed url.Values
	if current := custommw.HTMXInfoFromContext(r.Context()).CurrentLocation(); current != nil && isListingPath(current.Path) {
		seed = current.Query()
	} else {
		seed = url.Values{}
		for key, values := range q {
			switch key {
			case "minPrice", "maxPrice", "page":
				continue
			}
			seed[key] = values
		}
	}
	state := listing.ParseViewState(seed)
	return &url.URL{Path: productstpl.PagePath, RawQuery: state.Values().Encode()}
}

func isListingPath(p string) bool {
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	return p == productstpl.PagePath
}

// ProductDetail renders one product.
func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	product, err := h.catalog.GetProduct(ctx, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			renderStatus(w, r, http.StatusNotFound, pages.NotFound("This product is no longer listed."))
			return
		}
		observability.FromContext(ctx).Error("product detail fetch failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "The catalog is unavailable right now. Please try again shortly.", http.StatusBadGateway)
		return
	}

	description, err := h.markdown.Render(product.Description)
	if err != nil {
		observability.FromContext(ctx).Warn("product description render failed", zap.String("slug", slug), zap.Error(err))
		description = ""
	}

	site := custommw.SiteFromContext(ctx)
	templ.Handler(pages.ProductDetail(pages.BuildProductData(product, description, site.Format))).ServeHTTP(w, r)
}

func atoiDefault(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
