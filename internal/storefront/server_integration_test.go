package storefront_test

import (
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"finitefield.org/collectibles-web/internal/catalog"
	catalogmock "finitefield.org/collectibles-web/internal/mock/catalog"
	"finitefield.org/collectibles-web/internal/storefront/testutil"
)

func get(t *testing.T, target string, header http.Header) (*http.Response, *goquery.Document) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, testutil.ParseHTML(t, body)
}

func htmxHeader(baseURL, currentPath string) http.Header {
	h := http.Header{}
	h.Set("HX-Request", "true")
	h.Set("HX-Current-URL", baseURL+currentPath)
	return h
}

func fragment(baseURL string, params url.Values) string {
	return baseURL + "/products/grid?" + params.Encode()
}

func TestProductsPageRendersFirstPage(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, doc := get(t, ts.URL+"/products", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Products | Figure Vault", doc.Find("title").First().Text())
	require.Equal(t, "vi", doc.Find("html").AttrOr("lang", ""))

	listing := doc.Find("section#product-listing")
	require.Equal(t, 1, listing.Length())
	require.Equal(t, "outerHTML", listing.AttrOr("hx-swap", ""))
	require.Equal(t, catalog.StaticPageSize, listing.Find("[data-product-card]").Length())
	require.Equal(t, "2", listing.Find("input[name='pages']").AttrOr("value", ""))
	require.Equal(t, "14", listing.Find("input[name='total']").AttrOr("value", ""))
	require.Contains(t, listing.Find(".pagination__summary").Text(), "14 products")

	require.Equal(t, 5, doc.Find("select[name='category'] option").Length())
	require.Equal(t, "-createdAt", doc.Find("select[name='sort'] option[selected]").AttrOr("value", ""))
	require.Equal(t, "Frame Arms Girl Stylet", strings.TrimSpace(doc.Find("[data-product-card] h3").First().Text()))
	require.Equal(t, 0, doc.Find("[data-clear-filters]").Length(), "no clear action without active filters")
	require.Equal(t, "/products?page=2&sort=-createdAt", doc.Find(".pagination a[rel='next']").AttrOr("href", ""))
}

func TestProductsPageAppliesURLFilters(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, doc := get(t, ts.URL+"/products?category=scale&sort=price&status=bogus", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	cards := doc.Find("[data-product-card]")
	require.Equal(t, 4, cards.Length())
	require.Equal(t, "Asuka Langley 1/7 Plugsuit", strings.TrimSpace(cards.First().Find("h3").Text()))
	require.Equal(t, "scale", doc.Find("select[name='category'] option[selected]").AttrOr("value", ""))
	require.Equal(t, "", doc.Find("select[name='status'] option[selected]").AttrOr("value", "missing"))
	require.Equal(t, 1, doc.Find("form [data-clear-filters]").Length())
	require.Equal(t, "/products?category=scale&sort=price", doc.Find("link[rel='canonical']").AttrOr("href", ""))
}

func TestProductsGridRequiresHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, _ := get(t, ts.URL+"/products/grid?intent=clear", nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductsGridFilterPushesURL(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{
		"intent":   {"filter"},
		"key":      {"category"},
		"category": {"scale"},
		"minPrice": {""},
		"maxPrice": {""},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products?page=2"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?category=scale&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.Empty(t, resp.Header.Get("HX-Reswap"))
	require.Equal(t, 0, doc.Find("title").Length(), "fragment must not render the document shell")
	require.Equal(t, 1, doc.Find("section#product-listing").Length())
	require.Equal(t, 4, doc.Find("[data-product-card]").Length())
	require.Equal(t, "1", doc.Find("input[name='pages']").AttrOr("value", ""))
}

func TestProductsGridFilterCommitsStagedPrice(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{
		"intent":   {"filter"},
		"key":      {"brand"},
		"brand":    {"gsc"},
		"minPrice": {"2000000"},
		"maxPrice": {""},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?brand=gsc&minPrice=2000000&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, 2, doc.Find("[data-product-card]").Length())
	require.Equal(t, "2000000", doc.Find("#price-min").AttrOr("value", ""))
}

func TestProductsGridPriceCommit(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{
		"intent":   {"price"},
		"minPrice": {"5000000"},
		"maxPrice": {""},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products?category=scale"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?category=scale&minPrice=5000000&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, 3, doc.Find("[data-product-card]").Length())
}

func TestProductsGridRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	cases := map[string]url.Values{
		"price":       {"intent": {"price"}, "minPrice": {"cheap"}},
		"unknown key": {"intent": {"filter"}, "key": {"colour"}},
		"bad sort":    {"intent": {"filter"}, "key": {"sort"}, "sort": {"random"}},
		"bad page":    {"intent": {"page"}, "page": {"two"}},
		"no intent":   {},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			resp, _ := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestProductsGridPageClampsAndScrolls(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{
		"intent": {"page"},
		"page":   {"9"},
		"pages":  {"2"},
		"total":  {"14"},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?page=2&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, "outerHTML show:window:top", resp.Header.Get("HX-Reswap"))
	require.Equal(t, 2, doc.Find("[data-product-card]").Length())
	require.Equal(t, "page", doc.Find(".pagination a[aria-current]").AttrOr("aria-current", ""))
	require.Equal(t, "2", strings.TrimSpace(doc.Find(".pagination a[aria-current]").Text()))
}

func TestProductsGridPageWithoutMetadataFetchesFirst(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{"intent": {"page"}, "page": {"5"}}
	resp, _ := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products?category=figma"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?category=figma&page=1&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
}

func TestProductsGridClearEmptiesQuery(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, doc := get(t, fragment(ts.URL, url.Values{"intent": {"clear"}}), htmxHeader(ts.URL, "/products?category=scale&minPrice=10&page=1"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, catalog.StaticPageSize, doc.Find("[data-product-card]").Length())
	require.Equal(t, "", doc.Find("#price-min").AttrOr("value", "missing"))
	require.Equal(t, "-createdAt", doc.Find("select[name='sort'] option[selected]").AttrOr("value", ""))
}

func TestEmptyStateOffersClearOnlyWhenFiltered(t *testing.T) {
	t.Parallel()

	t.Run("filtered", func(t *testing.T) {
		t.Parallel()

		ts := testutil.NewServer(t)
		params := url.Values{"intent": {"filter"}, "key": {"search"}, "search": {"zzz"}}
		resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/products?search=zzz&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
		empty := doc.Find("[data-empty-state]")
		require.Equal(t, 1, empty.Length())
		require.Equal(t, 1, empty.Find("[data-clear-filters]").Length())
		require.Equal(t, "/products/grid?intent=clear", empty.Find("[data-clear-filters]").AttrOr("hx-get", ""))
	})

	t.Run("unfiltered", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		svc := catalogmock.NewMockService(ctrl)
		svc.EXPECT().ListCategories(gomock.Any()).Return([]catalog.Category{}, nil).AnyTimes()
		svc.EXPECT().ListBrands(gomock.Any()).Return([]catalog.Brand{}, nil).AnyTimes()
		svc.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(catalog.ProductPage{
			Products:   []catalog.Product{},
			Pagination: catalog.Pagination{Page: 1, Pages: 1},
		}, nil)

		ts := testutil.NewServer(t, testutil.WithCatalog(svc))
		resp, doc := get(t, ts.URL+"/products", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, doc.Find("[data-empty-state]").Length())
		require.Equal(t, 0, doc.Find("[data-clear-filters]").Length())
		require.Contains(t, doc.Find(".pagination__summary").Text(), "0 products")
	})
}

func TestProductsPageSurvivesCatalogFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := catalogmock.NewMockService(ctrl)
	svc.EXPECT().ListCategories(gomock.Any()).Return(nil, errors.New("lookup down")).AnyTimes()
	svc.EXPECT().ListBrands(gomock.Any()).Return(nil, errors.New("lookup down")).AnyTimes()
	svc.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(catalog.ProductPage{}, errors.New("backend down"))

	ts := testutil.NewServer(t, testutil.WithCatalog(svc))
	resp, doc := get(t, ts.URL+"/products?category=scale", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 0, doc.Find("[data-product-card]").Length())
	require.Equal(t, 1, doc.Find("[data-empty-state]").Length())
	// The unknown selection is kept as an option so the control reflects the URL.
	require.Equal(t, "scale", doc.Find("select[name='category'] option[selected]").AttrOr("value", ""))
}

func TestProductsGridKeepsListingWhenFetchFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := catalogmock.NewMockService(ctrl)
	svc.EXPECT().ListCategories(gomock.Any()).Return([]catalog.Category{}, nil).AnyTimes()
	svc.EXPECT().ListBrands(gomock.Any()).Return([]catalog.Brand{}, nil).AnyTimes()
	svc.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(catalog.ProductPage{}, errors.New("backend down"))

	ts := testutil.NewServer(t, testutil.WithCatalog(svc))
	params := url.Values{
		"intent": {"filter"},
		"key":    {"status"},
		"status": {"preorder"},
		"pages":  {"3"},
		"total":  {"30"},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))
	require.Equal(t, "/products?sort=-createdAt&status=preorder", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, 0, doc.Find("section#product-listing").Length())
	require.Equal(t, 0, doc.Find("[data-empty-state]").Length())
	require.NotContains(t, doc.Text(), "30 products")
}

func TestProductsGridIgnoresOversizedPageCount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := catalogmock.NewMockService(ctrl)
	svc.EXPECT().ListCategories(gomock.Any()).Return([]catalog.Category{}, nil).AnyTimes()
	svc.EXPECT().ListBrands(gomock.Any()).Return([]catalog.Brand{}, nil).AnyTimes()
	// The echoed count is discarded, so the handler fetches the current page before moving.
	svc.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(catalog.ProductPage{
		Products:   []catalog.Product{},
		Pagination: catalog.Pagination{Page: 1, Pages: 2, Total: 14},
	}, nil).Times(2)

	ts := testutil.NewServer(t, testutil.WithCatalog(svc))
	params := url.Values{
		"intent": {"page"},
		"page":   {"9"},
		"pages":  {strconv.Itoa(math.MaxInt)},
		"total":  {"14"},
	}
	resp, doc := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?page=2&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.LessOrEqual(t, doc.Find(".pagination a").Length(), 10)
}

func TestProductsPageRendersHugePageCount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := catalogmock.NewMockService(ctrl)
	svc.EXPECT().ListCategories(gomock.Any()).Return([]catalog.Category{}, nil).AnyTimes()
	svc.EXPECT().ListBrands(gomock.Any()).Return([]catalog.Brand{}, nil).AnyTimes()
	svc.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(catalog.ProductPage{
		Products:   []catalog.Product{},
		Pagination: catalog.Pagination{Page: 1, Pages: math.MaxInt, Total: math.MaxInt},
	}, nil)

	ts := testutil.NewServer(t, testutil.WithCatalog(svc))
	resp, doc := get(t, ts.URL+"/products", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, strconv.Itoa(math.MaxInt), doc.Find("input[name='pages']").AttrOr("value", ""))
	require.LessOrEqual(t, doc.Find(".pagination a").Length(), 10)
}

func TestProductsGridAcceptsTrailingSlashLocation(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{"intent": {"filter"}, "key": {"brand"}, "brand": {"gsc"}}
	resp, _ := get(t, fragment(ts.URL, params), htmxHeader(ts.URL, "/products/?category=scale"))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/products?brand=gsc&category=scale&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
}

func TestProductsGridWithoutLocationIgnoresStagedParams(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	params := url.Values{
		"intent":   {"page"},
		"page":     {"2"},
		"pages":    {"2"},
		"total":    {"14"},
		"minPrice": {"7000000"},
		"maxPrice": {""},
	}
	header := http.Header{}
	header.Set("HX-Request", "true")
	resp, doc := get(t, fragment(ts.URL, params), header)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	// An uncommitted price input must not leak into the listing on a page move.
	require.Equal(t, "/products?page=2&sort=-createdAt", resp.Header.Get("HX-Push-Url"))
	require.Equal(t, 2, doc.Find("[data-product-card]").Length())
}

func TestProductDetail(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, doc := get(t, ts.URL+"/products/nendoroid-frieren", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Nendoroid Frieren", doc.Find("h1").First().Text())
	require.Equal(t, "three", doc.Find(".prose em").Text())
	require.Equal(t, 1, doc.Find(".product-detail__price del").Length())
	require.Equal(t, "Nendoroid Frieren | Figure Vault", doc.Find("title").Text())

	resp, doc = get(t, ts.URL+"/products/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, 1, doc.Find("[data-not-found]").Length())
}

func TestProductDetailBackendFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := catalogmock.NewMockService(ctrl)
	svc.EXPECT().GetProduct(gomock.Any(), "miku").Return(catalog.Product{}, errors.New("timeout"))

	ts := testutil.NewServer(t, testutil.WithCatalog(svc))
	resp, _ := get(t, ts.URL+"/products/miku", nil)

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestPolicyPages(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, doc := get(t, ts.URL+"/policies/shipping", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, doc.Find("[data-policy] table").Length())
	require.Equal(t, "page", doc.Find(".policy-nav a[href='/policies/shipping']").AttrOr("aria-current", ""))

	resp, _ = get(t, ts.URL+"/policies/unknown", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthzAndRootRedirect(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	resp, _ = get(t, ts.URL+"/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/products", resp.Header.Get("Location"))
}

func TestStaticAssetsServed(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, err := http.Get(ts.URL + "/static/app.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}
