package listing

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/collectibles-web/internal/catalog"
	"finitefield.org/collectibles-web/internal/platform/observability"
)

// Snapshot is a consistent copy of everything needed to render the listing.
type Snapshot struct {
	State       ViewState
	StagedPrice PriceRange
	Products    []catalog.Product
	Pagination  catalog.Pagination
	Categories  []catalog.Category
	Brands      []catalog.Brand
	Loading     bool
	// Loaded is true once any product response has been applied.
	Loaded           bool
	HasActiveFilters bool
	// ScrollToTop is set by ChangePage.
	ScrollToTop bool
	// FetchFailed is true when the latest product request failed. Products and Pagination then
	// still hold the last applied response.
	FetchFailed bool
}

// Option customises a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for swallowed fetch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMeter sets the meter that records dropped stale responses.
func WithMeter(meter metric.Meter) Option {
	return func(s *Synchronizer) {
		if meter != nil {
			s.meter = meter
		}
	}
}

// Synchronizer owns one listing view. Every committing action writes the URL through Location
// and then fetches the resolved product page. Responses are applied only when they answer the
// most recently issued request.
type Synchronizer struct {
	svc    catalog.Service
	loc    Location
	logger *zap.Logger
	meter  metric.Meter
	stale  metric.Int64Counter

	mu          sync.Mutex
	state       ViewState
	staged      PriceRange
	products    []catalog.Product
	pagination  catalog.Pagination
	categories  []catalog.Category
	brands      []catalog.Brand
	loading     bool
	loaded      bool
	scrollToTop bool
	fetchFailed bool
	seq         uint64
	issued      *catalog.ProductQuery
}

// New seeds a synchronizer from the location's current query.
func New(svc catalog.Service, loc Location, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		svc:        svc,
		loc:        loc,
		logger:     zap.NewNop(),
		meter:      observability.Meter("listing"),
		pagination: catalog.Pagination{Page: 1, Pages: 1},
		products:   []catalog.Product{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	counter, err := s.meter.Int64Counter("listing.stale_responses",
		metric.WithDescription("Product responses dropped because a newer request was issued"),
	)
	if err != nil {
		s.logger.Warn("stale response counter unavailable", zap.Error(err))
		counter = noop.Int64Counter{}
	}
	s.stale = counter

	s.state = ParseViewState(loc.Query())
	s.staged = s.state.Price
	s.pagination.Page = s.state.CurrentPage()
	return s
}

// Mount loads the category and brand lookups, then fetches the first product page.
func (s *Synchronizer) Mount(ctx context.Context) {
	s.LoadLookups(ctx)
	s.Refresh(ctx)
}

// LoadLookups fetches categories and brands concurrently. Failures are logged and leave the
// corresponding lookup empty.
func (s *Synchronizer) LoadLookups(ctx context.Context) {
	var (
		g          errgroup.Group
		categories []catalog.Category
		brands     []catalog.Brand
	)
	g.Go(func() error {
		items, err := s.svc.ListCategories(ctx)
		if err != nil {
			s.logger.Warn("category lookup failed", zap.Error(err))
			return err
		}
		categories = items
		return nil
	})
	g.Go(func() error {
		items, err := s.svc.ListBrands(ctx)
		if err != nil {
			s.logger.Warn("brand lookup failed", zap.Error(err))
			return err
		}
		brands = items
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if categories != nil {
		s.categories = categories
	}
	if brands != nil {
		s.brands = brands
	}
}

// Restore seeds paging metadata carried by previously rendered markup so ChangePage can clamp
// without refetching.
func (s *Synchronizer) Restore(p catalog.Pagination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Pages < 1 {
		p.Pages = 1
	}
	if p.Page < 1 {
		p.Page = s.state.CurrentPage()
	}
	if p.Total < 0 {
		p.Total = 0
	}
	s.pagination = p
}

// ApplyFilter sets one filter, commits the filters plus any staged price bounds to the URL with
// paging reset, and fetches.
func (s *Synchronizer) ApplyFilter(ctx context.Context, key FilterKey, value string) error {
	s.mu.Lock()
	next, err := s.state.WithFilter(key, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.commitLocked(next.WithPrice(s.staged))
	s.mu.Unlock()

	s.Refresh(ctx)
	return nil
}

// StagePrice edits the local price inputs. Neither the URL nor the fetch path sees the change
// until CommitPriceRange.
func (s *Synchronizer) StagePrice(price PriceRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = price
}

// CommitPriceRange writes the filters and staged price range to the URL and fetches.
func (s *Synchronizer) CommitPriceRange(ctx context.Context) {
	s.mu.Lock()
	if !s.state.Price.Equal(s.staged) {
		s.commitLocked(s.state.WithPrice(s.staged))
	} else {
		s.loc.ReplaceQuery(s.state.Values())
	}
	s.mu.Unlock()

	s.Refresh(ctx)
}

// ChangePage moves to page n clamped to the known page count, keeping all filters, and requests
// a scroll to the top of the viewport.
func (s *Synchronizer) ChangePage(ctx context.Context, n int) {
	s.mu.Lock()
	s.commitLocked(s.state.WithPage(n, s.pagination.Pages))
	s.scrollToTop = true
	s.mu.Unlock()

	s.Refresh(ctx)
}

// ClearFilters restores the default filters, drops both price ranges and empties the URL query.
func (s *Synchronizer) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.state = DefaultViewState()
	s.staged = PriceRange{}
	s.loc.ReplaceQuery(url.Values{})
	s.mu.Unlock()

	s.Refresh(ctx)
}

// Refresh fetches the product page for the committed state. A request identical to the latest
// issued one is not repeated. Failures are logged and keep the previous products and pagination.
func (s *Synchronizer) Refresh(ctx context.Context) {
	s.mu.Lock()
	query := s.state.ProductQuery()
	if s.issued != nil && sameQuery(*s.issued, query) {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	s.issued = &query
	s.loading = true
	s.mu.Unlock()

	page, err := s.svc.ListProducts(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.stale.Add(context.WithoutCancel(ctx), 1)
		s.logger.Debug("dropping stale product response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", s.seq),
		)
		return
	}
	s.loading = false
	if err != nil {
		s.issued = nil
		s.fetchFailed = true
		fields := []zap.Field{zap.Error(err), zap.String("query", query.Values().Encode())}
		if errors.Is(err, context.Canceled) {
			s.logger.Info("product fetch cancelled", fields...)
		} else {
			s.logger.Error("product fetch failed", fields...)
		}
		return
	}
	s.products = page.Products
	if s.products == nil {
		s.products = []catalog.Product{}
	}
	s.pagination = page.Pagination
	s.loaded = true
	s.fetchFailed = false
}

// Snapshot returns a copy of the current view.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:            s.state,
		StagedPrice:      s.staged,
		Products:         slices.Clone(s.products),
		Pagination:       s.pagination,
		Categories:       slices.Clone(s.categories),
		Brands:           slices.Clone(s.brands),
		Loading:          s.loading,
		Loaded:           s.loaded,
		HasActiveFilters: s.state.HasActiveFilters(),
		ScrollToTop:      s.scrollToTop,
		FetchFailed:      s.fetchFailed,
	}
}

func (s *Synchronizer) commitLocked(next ViewState) {
	s.state = next
	s.loc.ReplaceQuery(next.Values())
}
