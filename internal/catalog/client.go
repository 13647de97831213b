package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/collectibles-web/internal/platform/observability"
)

const (
	defaultTimeout     = 8 * time.Second
	defaultLookupLimit = 100
	requestIDHeader    = "X-Request-Id"
	maxErrorBody       = 2048
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("catalog: not found")

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("catalog: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps 404 onto ErrNotFound so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client issues JSON requests against the storefront REST backend.
type Client struct {
	baseURL     string
	http        *http.Client
	lookupLimit int
	tracer      trace.Tracer
}

// ClientOption customises the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLookupLimit sets the limit query parameter sent with lookup requests.
func WithLookupLimit(limit int) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.lookupLimit = limit
		}
	}
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("catalog: base url is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog: invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL:     trimmed,
		http:        &http.Client{Timeout: defaultTimeout},
		lookupLimit: defaultLookupLimit,
		tracer:      observability.Tracer("catalog"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Get performs a GET request and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post sends body as JSON and returns the raw response body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put sends body as JSON and returns the raw response body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues a request relative to the base URL. A non-nil body is JSON encoded.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("catalog: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, span := c.tracer.Start(ctx, "catalog "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, strconv.Itoa(resp.StatusCode))
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   drainError(resp.Body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("catalog: read %s %s: %w", method, path, err)
	}
	return data, nil
}

// ListProducts implements Service.
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error) {
	body, err := c.Get(ctx, "/products", query.Values())
	if err != nil {
		return ProductPage{}, err
	}
	return ParseProductPage(body)
}

// ListCategories implements Service.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	body, err := c.Get(ctx, "/categories", c.lookupQuery())
	if err != nil {
		return nil, err
	}
	categories, shape, err := ParseCategories(body)
	if err != nil {
		return nil, err
	}
	logLookupShape(ctx, "categories", shape, len(categories))
	return categories, nil
}

// ListBrands implements Service.
func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	body, err := c.Get(ctx, "/brands", c.lookupQuery())
	if err != nil {
		return nil, err
	}
	brands, shape, err := ParseBrands(body)
	if err != nil {
		return nil, err
	}
	logLookupShape(ctx, "brands", shape, len(brands))
	return brands, nil
}

// The backend has shipped both lookup envelopes; record which one answered.
func logLookupShape(ctx context.Context, lookup string, shape EnvelopeShape, n int) {
	observability.FromContext(ctx).Debug("catalog lookup decoded",
		zap.String("lookup", lookup),
		zap.Stringer("shape", shape),
		zap.Int("count", n),
	)
}

// GetProduct implements Service.
func (c *Client) GetProduct(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, ErrNotFound
	}
	body, err := c.Get(ctx, "/products/"+url.PathEscape(slug), nil)
	if err != nil {
		return Product{}, err
	}
	return ParseProduct(body)
}

func (c *Client) lookupQuery() url.Values {
	return url.Values{"limit": []string{strconv.Itoa(c.lookupLimit)}}
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("catalog: build endpoint %q: %w", path, err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint, nil
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return ulid.Make().String()
}

func drainError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
