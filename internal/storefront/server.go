package storefront

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/format"
	"finitefield.org/collectibles-web/internal/platform/observability"
	custommw "finitefield.org/collectibles-web/internal/storefront/middleware"
	"finitefield.org/collectibles-web/internal/storefront/public"
	"finitefield.org/collectibles-web/internal/storefront/ui"
	productstpl "finitefield.org/collectibles-web/internal/storefront/templates/products"
)

const (
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultHandlerTimeout = 30 * time.Second
)

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address      string
	SiteName     string
	Environment  string
	Catalog      catalog.Service
	Content      *content.Store
	Formatter    *format.Formatter
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	formatter := cfg.Formatter
	if formatter == nil {
		formatter = format.MustNew("vi", "VND")
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(logger))
	router.Use(observability.RequestLogger())
	router.Use(chimw.Recoverer)
	router.Use(chimw.Compress(5, "text/html", "text/css", "text/plain"))
	router.Use(chimw.Timeout(defaultHandlerTimeout))
	router.Use(custommw.HTMX())
	router.Use(custommw.Site(cfg.SiteName, cfg.Environment, formatter))

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	handlers := ui.NewHandlers(ui.Dependencies{
		Catalog: cfg.Catalog,
		Content: cfg.Content,
	})
	mountRoutes(router, handlers)

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}
}

func mountRoutes(router chi.Router, h *ui.Handlers) {
	router.Get("/healthz", h.Healthz)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, productstpl.PagePath, http.StatusFound)
	})

	router.Route(productstpl.PagePath, func(r chi.Router) {
		r.Get("/", h.ProductsPage)
		RegisterFragment(r, "/grid", h.ProductsGrid)
		r.Get("/{slug}", h.ProductDetail)
	})
	router.Get("/policies/{slug}", h.PolicyPage)
	router.NotFound(h.NotFound)
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX(), custommw.NoStore()).Get(pattern, handler)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
