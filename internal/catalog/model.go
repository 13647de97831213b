package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=model.go -destination=../mock/catalog/service_mock.go -package=mock

// Service exposes the catalog reads the storefront needs.
type Service interface {
	// ListProducts returns one page of products matching the query.
	ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error)

	// ListCategories returns the category lookup used by the filter controls.
	ListCategories(ctx context.Context) ([]Category, error)

	// ListBrands returns the brand lookup used by the filter controls.
	ListBrands(ctx context.Context) ([]Brand, error)

	// GetProduct loads a single product by slug.
	GetProduct(ctx context.Context, slug string) (Product, error)
}

// Status is the availability state of a product.
type Status string

const (
	// StatusAvailable marks in-stock products.
	StatusAvailable Status = "available"
	// StatusOrder marks products sourced on order.
	StatusOrder Status = "order"
	// StatusPreorder marks announced products open for pre-order.
	StatusPreorder Status = "preorder"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOrder, StatusPreorder:
		return true
	}
	return false
}

// Label returns the shopper-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "In stock"
	case StatusOrder:
		return "Order"
	case StatusPreorder:
		return "Pre-order"
	default:
		return ""
	}
}

// Product is a read-only product record owned by the backend.
type Product struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Slug        string           `json:"slug" validate:"required"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Images      []string         `json:"images"`
	Status      Status           `json:"status"`
	Description string           `json:"description,omitempty"`
	CategoryID  string           `json:"category,omitempty"`
	BrandID     string           `json:"brand,omitempty"`
	SoldCount   int              `json:"soldCount,omitempty"`
}

// OnSale reports whether a sale price below the list price is set.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// EffectivePrice returns the price the shopper pays.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// PrimaryImage returns the first image URL or an empty string.
func (p Product) PrimaryImage() string {
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return ""
}

// Category is a product category lookup entry.
type Category struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug,omitempty"`
}

// Brand is a manufacturer lookup entry.
type Brand struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug,omitempty"`
}

// Pagination mirrors the paging metadata returned with a product page.
type Pagination struct {
	Page  int
	Pages int
	Total int
}

// ProductPage is one page of the product collection.
type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

// ProductQuery captures the filters accepted by GET /products.
type ProductQuery struct {
	Category string
	Brand    string
	Status   Status
	Sort     string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
}

// Values encodes the query for the wire. Empty fields are omitted; page is always present.
func (q ProductQuery) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	set("category", q.Category)
	set("brand", q.Brand)
	set("status", string(q.Status))
	set("sort", q.Sort)
	set("search", q.Search)
	if q.MinPrice != nil {
		values.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		values.Set("maxPrice", q.MaxPrice.String())
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	return values
}
