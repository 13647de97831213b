package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/collectibles-web/internal/storefront/middleware"
	"finitefield.org/collectibles-web/internal/storefront/templates/helpers"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// Head carries the document metadata for one page.
type Head struct {
	Title       string
	Description string
	Canonical   string
}

// NavLink is one entry of the header or footer navigation.
type NavLink struct {
	Label string
	Href  string
}

var headerLinks = []NavLink{
	{Label: "Products", Href: "/products"},
}

var footerLinks = []NavLink{
	{Label: "Shipping", Href: "/policies/shipping"},
	{Label: "Returns", Href: "/policies/returns"},
	{Label: "Privacy", Href: "/policies/privacy"},
}

// Base wraps body in the storefront document shell.
func Base(head Head, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		site := middleware.SiteFromContext(ctx)
		title := head.Title
		if site.Name != "" {
			if title == "" {
				title = site.Name
			} else {
				title += " | " + site.Name
			}
		}

		h := helpers.NewHTML(w)
		h.Raw("<!DOCTYPE html><html")
		h.Attr("lang", site.Format.Lang())
		h.Raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.Text(title)
		h.Raw("</title>")
		if head.Description != "" {
			h.Raw(`<meta name="description"`)
			h.Attr("content", head.Description)
			h.Raw(">")
		}
		if head.Canonical != "" {
			h.Raw(`<link rel="canonical"`)
			h.Attr("href", head.Canonical)
			h.Raw(">")
		}
		h.Raw(`<link rel="stylesheet" href="/static/app.css"><script defer`)
		h.Attr("src", htmxScript)
		h.Raw(`></script></head><body`)
		h.Attr("data-environment", site.Environment)
		h.Raw(`><header class="site-header"><a class="brand" href="/">`)
		h.Text(site.Name)
		h.Raw("</a>")
		navigation(h, "site-nav", headerLinks, site.Path)
		h.Raw(`</header><main id="main">`)
		h.Render(ctx, body)
		h.Raw(`</main><footer class="site-footer">`)
		navigation(h, "policy-nav", footerLinks, site.Path)
		h.Raw("</footer></body></html>")
		return h.Err()
	})
}

func navigation(h *helpers.HTML, class string, links []NavLink, current string) {
	h.Raw("<nav")
	h.Attr("class", class)
	h.Raw("><ul>")
	for _, link := range links {
		h.Raw("<li><a")
		h.Attr("href", link.Href)
		if link.Href == current {
			h.Attr("aria-current", "page")
		}
		h.Raw(">")
		h.Text(link.Label)
		h.Raw("</a></li>")
	}
	h.Raw("</ul></nav>")
}
