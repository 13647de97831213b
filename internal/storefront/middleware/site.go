package middleware

import (
	"context"
	"net/http"
	"strings"

	"finitefield.org/collectibles-web/internal/format"
)

type siteContextKey struct{}

// SiteInfo holds per-request metadata exposed to templates.
type SiteInfo struct {
	Name        string
	Environment string
	Path        string
	Format      *format.Formatter
}

// Site annotates the context with the shop name, environment label, formatter and request path.
func Site(name, environment string, formatter *format.Formatter) func(http.Handler) http.Handler {
	name = strings.TrimSpace(name)
	environment = strings.TrimSpace(environment)
	if environment == "" {
		environment = "development"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &SiteInfo{
				Name:        name,
				Environment: environment,
				Path:        r.URL.Path,
				Format:      formatter,
			}
			ctx := context.WithValue(r.Context(), siteContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SiteFromContext returns the site metadata, or a zero value with a default formatter.
func SiteFromContext(ctx context.Context) SiteInfo {
	if ctx != nil {
		if info, ok := ctx.Value(siteContextKey{}).(*SiteInfo); ok && info != nil {
			out := *info
			if out.Format == nil {
				out.Format = defaultFormatter
			}
			return out
		}
	}
	return SiteInfo{Environment: "development", Format: defaultFormatter}
}

var defaultFormatter = format.MustNew("vi", "VND")
