package catalog

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StaticPageSize is the number of products per page served by StaticService.
const StaticPageSize = 12

// StaticService serves a fixed in-process catalog. It backs local development when no API base
// URL is configured.
type StaticService struct {
	products   []staticProduct
	categories []Category
	brands     []Brand
	pageSize   int
}

type staticProduct struct {
	Product
	createdAt time.Time
}

// NewStaticService returns a service preloaded with the sample figurine catalog.
func NewStaticService() *StaticService {
	return &StaticService{
		products:   sampleProducts(),
		categories: sampleCategories(),
		brands:     sampleBrands(),
		pageSize:   StaticPageSize,
	}
}

// ListProducts filters, sorts and paginates the sample catalog.
func (s *StaticService) ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error) {
	if err := ctx.Err(); err != nil {
		return ProductPage{}, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	matched := make([]staticProduct, 0, len(s.products))
	for _, p := range s.products {
		if query.Category != "" && p.CategoryID != query.Category {
			continue
		}
		if query.Brand != "" && p.BrandID != query.Brand {
			continue
		}
		if query.Status != "" && p.Status != query.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		price := p.EffectivePrice()
		if query.MinPrice != nil && price.LessThan(*query.MinPrice) {
			continue
		}
		if query.MaxPrice != nil && price.GreaterThan(*query.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}

	slices.SortStableFunc(matched, staticComparator(query.Sort))

	total := len(matched)
	pages := (total + s.pageSize - 1) / s.pageSize
	if pages < 1 {
		pages = 1
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	products := []Product{}
	start := (page - 1) * s.pageSize
	if start < total {
		end := min(start+s.pageSize, total)
		for _, p := range matched[start:end] {
			products = append(products, p.Product)
		}
	}

	return ProductPage{
		Products:   products,
		Pagination: Pagination{Page: page, Pages: pages, Total: total},
	}, nil
}

// ListCategories returns the sample categories.
func (s *StaticService) ListCategories(ctx context.Context) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.categories), nil
}

// ListBrands returns the sample brands.
func (s *StaticService) ListBrands(ctx context.Context) ([]Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.brands), nil
}

// GetProduct looks a sample product up by slug.
func (s *StaticService) GetProduct(ctx context.Context, slug string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	slug = strings.TrimSpace(slug)
	for _, p := range s.products {
		if p.Slug == slug {
			return p.Product, nil
		}
	}
	return Product{}, ErrNotFound
}

func staticComparator(sort string) func(a, b staticProduct) int {
	switch sort {
	case "price":
		return func(a, b staticProduct) int { return a.EffectivePrice().Cmp(b.EffectivePrice()) }
	case "-price":
		return func(a, b staticProduct) int { return b.EffectivePrice().Cmp(a.EffectivePrice()) }
	case "-soldCount":
		return func(a, b staticProduct) int { return b.SoldCount - a.SoldCount }
	default:
		return func(a, b staticProduct) int { return b.createdAt.Compare(a.createdAt) }
	}
}

func sampleCategories() []Category {
	return []Category{
		{ID: "scale", Name: "Scale figures", Slug: "scale-figures"},
		{ID: "nendoroid", Name: "Nendoroid", Slug: "nendoroid"},
		{ID: "figma", Name: "figma", Slug: "figma"},
		{ID: "model-kit", Name: "Model kits", Slug: "model-kits"},
	}
}

func sampleBrands() []Brand {
	return []Brand{
		{ID: "gsc", Name: "Good Smile Company", Slug: "good-smile-company"},
		{ID: "max-factory", Name: "Max Factory", Slug: "max-factory"},
		{ID: "bandai", Name: "Bandai Spirits", Slug: "bandai-spirits"},
		{ID: "kotobukiya", Name: "Kotobukiya", Slug: "kotobukiya"},
	}
}

func sampleProducts() []staticProduct {
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	type seed struct {
		name     string
		slug     string
		price    int64
		sale     int64
		status   Status
		category string
		brand    string
		sold     int
		desc     string
	}
	seeds := []seed{
		{"Hatsune Miku: Symphony 2025 1/7", "miku-symphony-2025", 5_200_000, 0, StatusPreorder, "scale", "gsc", 14, "Celebrating the **Symphony 2025** concert series."},
		{"Nendoroid Frieren", "nendoroid-frieren", 1_350_000, 1_190_000, StatusAvailable, "nendoroid", "gsc", 212, "Includes *three* face plates and the staff."},
		{"figma Link: Tears of the Kingdom", "figma-link-totk", 2_450_000, 0, StatusOrder, "figma", "max-factory", 96, ""},
		{"RG 1/144 RX-78-2 Gundam Ver. 2.0", "rg-rx-78-2-v2", 890_000, 790_000, StatusAvailable, "model-kit", "bandai", 341, "Real Grade kit with the updated inner frame."},
		{"Asuka Langley 1/7 Plugsuit", "asuka-plugsuit-1-7", 4_800_000, 0, StatusAvailable, "scale", "kotobukiya", 57, ""},
		{"Nendoroid Anya Forger", "nendoroid-anya", 1_250_000, 0, StatusAvailable, "nendoroid", "gsc", 405, "Waku waku!"},
		{"figma Makima", "figma-makima", 2_100_000, 1_890_000, StatusAvailable, "figma", "max-factory", 128, ""},
		{"MG 1/100 Freedom Gundam 2.0", "mg-freedom-2", 1_650_000, 0, StatusOrder, "model-kit", "bandai", 188, ""},
		{"Rem: Crystal Dress 1/7", "rem-crystal-dress", 5_900_000, 0, StatusPreorder, "scale", "kotobukiya", 9, "Translucent *crystal* skirt parts."},
		{"Nendoroid Gojo Satoru", "nendoroid-gojo", 1_390_000, 0, StatusOrder, "nendoroid", "gsc", 276, ""},
		{"figma Samus Aran: Dread", "figma-samus-dread", 2_300_000, 0, StatusPreorder, "figma", "max-factory", 33, ""},
		{"HG 1/144 Aerial", "hg-aerial", 450_000, 390_000, StatusAvailable, "model-kit", "bandai", 512, ""},
		{"Raiden Shogun 1/7", "raiden-shogun-1-7", 6_400_000, 0, StatusOrder, "scale", "gsc", 41, ""},
		{"Frame Arms Girl Stylet", "fag-stylet", 1_150_000, 0, StatusAvailable, "model-kit", "kotobukiya", 74, ""},
	}

	products := make([]staticProduct, 0, len(seeds))
	for i, s := range seeds {
		p := Product{
			ID:          s.slug,
			Name:        s.name,
			Slug:        s.slug,
			Price:       decimal.NewFromInt(s.price),
			Images:      []string{"/static/img/products/" + s.slug + ".jpg"},
			Status:      s.status,
			Description: s.desc,
			CategoryID:  s.category,
			BrandID:     s.brand,
			SoldCount:   s.sold,
		}
		if s.sale > 0 {
			sale := decimal.NewFromInt(s.sale)
			p.SalePrice = &sale
		}
		products = append(products, staticProduct{
			Product:   p,
			createdAt: base.Add(time.Duration(i) * 72 * time.Hour),
		})
	}
	return products
}
