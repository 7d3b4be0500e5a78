// Package search implements the deterministic filter-and-score engine
// over the product catalog: hard filters, a weighted additive scoring
// function, sort modes, and SKU deduplication.
package search

import "github.com/chicbot/chicbot/internal/catalog"

// Filters are the hard constraints applied before scoring. All fields
// are optional; the zero value filters nothing. Materials carry no
// hard filter of their own — they reach the engine through the
// composed query text and influence scoring only.
type Filters struct {
	ProductType string
	Colors      []string
	Materials   []string
	Brand       string
	PriceMin    *float64
	PriceMax    *float64
	Sizes       []string
	Features    []string
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f.ProductType == "" && len(f.Colors) == 0 && len(f.Materials) == 0 &&
		f.Brand == "" && f.PriceMin == nil && f.PriceMax == nil &&
		len(f.Sizes) == 0 && len(f.Features) == 0
}

// SortMode selects the ordering of ranked output.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortNewest    SortMode = "newest"
)

// ParseSortMode maps a free-form sort preference to a SortMode,
// defaulting to relevance.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPriceAsc, SortPriceDesc, SortNewest:
		return SortMode(s)
	default:
		return SortRelevance
	}
}

// Result is the normalized projection of a ranked product. It carries
// at most three image references and never exposes the underlying
// record or its catalog position.
type Result struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Price       *float64 `json:"price"`
	URL         string   `json:"url"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	BaseColor   string   `json:"base_color"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

// scored pairs a catalog record with its relevance score for the
// duration of one search call.
type scored struct {
	product *catalog.Product
	score   float64
}

func project(p *catalog.Product) Result {
	images := p.ImageURLs
	if len(images) > 3 {
		images = images[:3]
	}
	return Result{
		Name:        p.Name,
		Category:    p.Category,
		Color:       p.Color,
		Price:       p.Price,
		URL:         p.URL,
		SKU:         p.SKU,
		Description: p.Description,
		Brand:       p.Brand,
		BaseColor:   p.BaseColor,
		ImageURLs:   images,
	}
}
