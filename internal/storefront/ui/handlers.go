package ui

import (
	"net/http"

	"github.com/a-h/templ"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/storefront/templates/pages"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Catalog  catalog.Service
	Content  *content.Store
	Markdown *content.Renderer
}

// Handlers exposes HTTP handlers for storefront pages and fragments.
type Handlers struct {
	catalog  catalog.Service
	content  *content.Store
	markdown *content.Renderer
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	svc := deps.Catalog
	if svc == nil {
		svc = catalog.NewStaticService()
	}
	store := deps.Content
	if store == nil {
		store = content.NewEmbeddedStore()
	}
	md := deps.Markdown
	if md == nil {
		md = content.NewRenderer()
	}
	return &Handlers{
		catalog:  svc,
		content:  store,
		markdown: md,
	}
}

// Healthz answers liveness probes.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte("ok"))
}

// NotFound renders the storefront 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	renderStatus(w, r, http.StatusNotFound, pages.NotFound("We couldn't find the page you were looking for."))
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}
