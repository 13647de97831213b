package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/format"
	"finitefield.org/collectibles-web/internal/storefront"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*storefront.Config)

// WithCatalog wires a custom catalog service implementation.
func WithCatalog(service catalog.Service) ServerOption {
	return func(cfg *storefront.Config) {
		cfg.Catalog = service
	}
}

// WithContent overrides the policy page store.
func WithContent(store *content.Store) ServerOption {
	return func(cfg *storefront.Config) {
		cfg.Content = store
	}
}

// WithLogger overrides the test logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *storefront.Config) {
		cfg.Logger = logger
	}
}

// NewServer constructs an httptest server running the storefront HTTP stack with the static
// catalog and embedded content.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := storefront.Config{
		Address:     ":0",
		SiteName:    "Figure Vault",
		Environment: "test",
		Catalog:     catalog.NewStaticService(),
		Content:     content.NewEmbeddedStore(),
		Formatter:   format.MustNew("vi", "VND"),
		Logger:      zaptest.NewLogger(t),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := storefront.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
