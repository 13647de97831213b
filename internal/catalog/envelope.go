package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedResponse is returned when a response body matches none of the accepted shapes.
var ErrMalformedResponse = errors.New("catalog: malformed response")

var validate = validator.New(validator.WithRequiredStructEnabled())

// EnvelopeShape identifies which of the accepted lookup payload shapes was received.
type EnvelopeShape int

const (
	// ShapeUnknown is the zero value; never returned alongside a nil error.
	ShapeUnknown EnvelopeShape = iota
	// ShapeWrapped is an object carrying the list under a named key, e.g. {"categories": [...]}.
	ShapeWrapped
	// ShapeBare is a top-level JSON array.
	ShapeBare
)

func (s EnvelopeShape) String() string {
	switch s {
	case ShapeWrapped:
		return "wrapped"
	case ShapeBare:
		return "bare"
	default:
		return "unknown"
	}
}

// ParseCategories decodes a /categories response in either the wrapped or the bare shape.
func ParseCategories(body []byte) ([]Category, EnvelopeShape, error) {
	return parseLookup[Category](body, "categories")
}

// ParseBrands decodes a /brands response in either the wrapped or the bare shape.
func ParseBrands(body []byte) ([]Brand, EnvelopeShape, error) {
	return parseLookup[Brand](body, "brands")
}

func parseLookup[T any](body []byte, key string) ([]T, EnvelopeShape, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ShapeUnknown, fmt.Errorf("%w: empty %s body", ErrMalformedResponse, key)
	}

	var (
		raw   json.RawMessage
		shape EnvelopeShape
	)
	switch trimmed[0] {
	case '[':
		raw = trimmed
		shape = ShapeBare
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, ShapeUnknown, fmt.Errorf("%w: %s envelope: %v", ErrMalformedResponse, key, err)
		}
		inner, ok := envelope[key]
		if !ok {
			return nil, ShapeUnknown, fmt.Errorf("%w: %s envelope lacks %q", ErrMalformedResponse, key, key)
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) == 0 || inner[0] != '[' {
			return nil, ShapeUnknown, fmt.Errorf("%w: %q is not a list", ErrMalformedResponse, key)
		}
		raw = inner
		shape = ShapeWrapped
	default:
		return nil, ShapeUnknown, fmt.Errorf("%w: unexpected %s payload", ErrMalformedResponse, key)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ShapeUnknown, fmt.Errorf("%w: %s items: %v", ErrMalformedResponse, key, err)
	}
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return nil, ShapeUnknown, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedResponse, key, i, err)
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, shape, nil
}

type productPagePayload struct {
	Products *[]Product `json:"products"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
	Total    int        `json:"total"`
}

// ParseProductPage decodes a /products response. The products list is mandatory.
func ParseProductPage(body []byte) (ProductPage, error) {
	var payload productPagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ProductPage{}, fmt.Errorf("%w: products: %v", ErrMalformedResponse, err)
	}
	if payload.Products == nil {
		return ProductPage{}, fmt.Errorf("%w: products envelope lacks \"products\"", ErrMalformedResponse)
	}
	products := *payload.Products
	for i := range products {
		if err := validate.Struct(products[i]); err != nil {
			return ProductPage{}, fmt.Errorf("%w: products[%d]: %v", ErrMalformedResponse, i, err)
		}
	}
	if payload.Total < 0 {
		return ProductPage{}, fmt.Errorf("%w: negative total", ErrMalformedResponse)
	}

	page := payload.Page
	if page < 1 {
		page = 1
	}
	pages := payload.Pages
	if pages < 1 {
		pages = 1
	}
	return ProductPage{
		Products: products,
		Pagination: Pagination{
			Page:  page,
			Pages: pages,
			Total: payload.Total,
		},
	}, nil
}

// ParseProduct decodes a product detail response, either {"product": {...}} or the bare object.
func ParseProduct(body []byte) (Product, error) {
	var envelope struct {
		Product *Product `json:"product"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Product{}, fmt.Errorf("%w: product: %v", ErrMalformedResponse, err)
	}
	var product Product
	if envelope.Product != nil {
		product = *envelope.Product
	} else if err := json.Unmarshal(body, &product); err != nil {
		return Product{}, fmt.Errorf("%w: product: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(product); err != nil {
		return Product{}, fmt.Errorf("%w: product: %v", ErrMalformedResponse, err)
	}
	return product, nil
}
