package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/platform/observability"
)

func TestClientListProductsSendsQuery(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/products", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "scale", q.Get("category"))
		require.Equal(t, "-price", q.Get("sort"))
		require.Equal(t, "1000000", q.Get("minPrice"))
		require.Equal(t, "2", q.Get("page"))
		require.False(t, q.Has("brand"))
		require.False(t, q.Has("maxPrice"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","name":"Rem","slug":"rem","price":"5900000"}],"page":2,"pages":4,"total":40}`))
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL+"/api/", catalog.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	minPrice := decimal.NewFromInt(1_000_000)
	page, err := client.ListProducts(context.Background(), catalog.ProductQuery{
		Category: "scale",
		Sort:     "-price",
		MinPrice: &minPrice,
		Page:     2,
	})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	require.Equal(t, catalog.Pagination{Page: 2, Pages: 4, Total: 40}, page.Pagination)
}

func TestClientForwardsRequestID(t *testing.T) {
	t.Parallel()

	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL, catalog.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	_, err = client.ListBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, "req-42", got)
}

func TestClientLookupsHandleBothShapes(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		switch r.URL.Path {
		case "/categories":
			_, _ = w.Write([]byte(`{"categories":[{"id":"scale","name":"Scale figures"}]}`))
		case "/brands":
			_, _ = w.Write([]byte(`[{"id":"gsc","name":"Good Smile Company"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL, catalog.WithHTTPClient(ts.Client()), catalog.WithLookupLimit(25))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := observability.WithLogger(context.Background(), zap.New(core))

	categories, err := client.ListCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, "scale", categories[0].ID)

	brands, err := client.ListBrands(ctx)
	require.NoError(t, err)
	require.Equal(t, "gsc", brands[0].ID)

	decoded := logs.FilterMessage("catalog lookup decoded").All()
	require.Len(t, decoded, 2)
	require.Equal(t, "categories", decoded[0].ContextMap()["lookup"])
	require.Equal(t, "wrapped", decoded[0].ContextMap()["shape"])
	require.Equal(t, "brands", decoded[1].ContextMap()["lookup"])
	require.Equal(t, "bare", decoded[1].ContextMap()["shape"])
}

func TestClientStatusErrors(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/missing":
			http.Error(w, "no such product", http.StatusNotFound)
		default:
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL, catalog.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "missing")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = client.ListProducts(context.Background(), catalog.ProductQuery{})
	var statusErr *catalog.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.Code)
	require.Equal(t, "upstream exploded", statusErr.Body)
	require.NotErrorIs(t, err, catalog.ErrNotFound)
}

func TestClientMalformedResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL, catalog.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	_, err = client.ListCategories(context.Background())
	require.ErrorIs(t, err, catalog.ErrMalformedResponse)
}

func TestClientPostEncodesJSON(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.Close)

	client, err := catalog.NewClient(ts.URL, catalog.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	body, err := client.Post(context.Background(), "/wishlist", map[string]string{"productId": "p1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	_, err := catalog.NewClient("")
	require.Error(t, err)
	_, err = catalog.NewClient("not a url")
	require.Error(t, err)
}
