package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/content"
	"finitefield.org/collectibles-web/internal/format"
	"finitefield.org/collectibles-web/internal/storefront/templates/helpers"
	"finitefield.org/collectibles-web/internal/storefront/templates/layout"
)

// ProductData is the payload of the product detail page.
type ProductData struct {
	Name        string
	Slug        string
	Images      []string
	Price       string
	ListPrice   string
	OnSale      bool
	StatusLabel string
	// Description is sanitised HTML.
	Description string
	Summary     string
}

// BuildProductData maps a product and its rendered description onto the detail payload.
func BuildProductData(p catalog.Product, descriptionHTML string, f *format.Formatter) ProductData {
	data := ProductData{
		Name:        p.Name,
		Slug:        p.Slug,
		Images:      p.Images,
		Price:       f.Price(p.EffectivePrice()),
		OnSale:      p.OnSale(),
		StatusLabel: p.Status.Label(),
		Description: descriptionHTML,
		Summary:     content.PlainText(descriptionHTML, 160),
	}
	if data.OnSale {
		data.ListPrice = f.Price(p.Price)
	}
	return data
}

// ProductDetail renders a single product.
func ProductDetail(data ProductData) templ.Component {
	head := layout.Head{
		Title:       data.Name,
		Description: data.Summary,
		Canonical:   "/products/" + url.PathEscape(data.Slug),
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<article class="product-detail" data-product-detail><nav class="breadcrumbs"><a href="/products">Products</a></nav><div class="product-detail__media">`)
		for i, img := range data.Images {
			h.Raw("<img")
			h.Attr("src", img)
			h.Attr("alt", data.Name)
			if i > 0 {
				h.Raw(` loading="lazy"`)
			}
			h.Raw(">")
		}
		h.Raw(`</div><div class="product-detail__body"><h1>`)
		h.Text(data.Name)
		h.Raw(`</h1><p class="product-detail__price" data-price>`)
		if data.OnSale {
			h.Raw("<del>")
			h.Text(data.ListPrice)
			h.Raw(`</del> <strong class="sale">`)
			h.Text(data.Price)
			h.Raw("</strong>")
		} else {
			h.Text(data.Price)
		}
		h.Raw("</p>")
		if data.StatusLabel != "" {
			h.Raw(`<p class="badge">`)
			h.Text(data.StatusLabel)
			h.Raw("</p>")
		}
		if data.Description != "" {
			h.Raw(`<div class="prose">`)
			h.Render(ctx, templ.Raw(data.Description))
			h.Raw("</div>")
		}
		h.Raw("</div></article>")
		return h.Err()
	})
	return layout.Base(head, body)
}

// Policy renders a content page such as shipping or returns.
func Policy(page content.Page) templ.Component {
	head := layout.Head{
		Title:       page.Title,
		Description: page.Summary,
		Canonical:   "/policies/" + page.Slug,
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<article class="policy prose" data-policy><h1>`)
		h.Text(page.Title)
		h.Raw("</h1>")
		if !page.UpdatedAt.IsZero() {
			h.Raw("<p class=\"policy__updated\">Last updated <time")
			h.Attr("datetime", page.UpdatedAt.Format("2006-01-02"))
			h.Raw(">")
			h.Text(page.UpdatedAt.Format("January 2, 2006"))
			h.Raw("</time></p>")
		}
		h.Render(ctx, templ.Raw(page.HTML))
		h.Raw("</article>")
		return h.Err()
	})
	return layout.Base(head, body)
}

// NotFound renders the 404 page body.
func NotFound(message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<section class="not-found" data-not-found><h1>Page not found</h1><p>`)
		h.Text(message)
		h.Raw(`</p><a class="button" href="/products">Browse products</a></section>`)
		return h.Err()
	})
	return layout.Base(layout.Head{Title: "Not found"}, body)
}
