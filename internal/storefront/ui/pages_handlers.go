package ui

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/platform/observability"
	"finitefield.org/collectibles-web/internal/storefront/templates/pages"
)

// PolicyPage renders a markdown content page.
func (h *Handlers) PolicyPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, err := h.content.Get(slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("content load failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	templ.Handler(pages.Policy(page)).ServeHTTP(w, r)
}
