package search

import (
	"math"
	"sort"

	"github.com/chicbot/chicbot/internal/catalog"
)

// DefaultMaxResults caps ranked output when the caller passes no limit.
const DefaultMaxResults = 5

// Engine ranks catalog products against a query and optional filters.
// The catalog is read-only, so an Engine is safe for concurrent use.
type Engine struct {
	store *catalog.Store
}

// NewEngine creates an Engine over the given catalog store.
func NewEngine(store *catalog.Store) *Engine {
	return &Engine{store: store}
}

// Search filters, scores, sorts, and deduplicates the catalog. filters
// may be nil for stand-alone keyword search (type/color terms are then
// inferred from the query tokens). Records scoring zero or below never
// appear in the output.
func (e *Engine) Search(query string, filters *Filters, maxResults int, sortBy SortMode) []Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	products := e.store.Products()
	candidates := make([]scored, 0, 16)
	for i := range products {
		p := &products[i]
		if !matchesFilters(p, filters) {
			continue
		}
		sc := scoreProduct(p, query, filters)
		if sc <= 0 {
			continue
		}
		candidates = append(candidates, scored{product: p, score: sc})
	}

	sortCandidates(candidates, sortBy)

	// Keep the first (highest-ranked) occurrence of each SKU. Records
	// without a SKU are never deduplicated against each other.
	seen := make(map[string]bool, len(candidates))
	results := make([]Result, 0, maxResults)
	for _, c := range candidates {
		sku := c.product.SKU
		if sku != "" {
			if seen[sku] {
				continue
			}
			seen[sku] = true
		}
		results = append(results, project(c.product))
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

// sortCandidates orders candidates in place. Price sorts override the
// relevance order entirely; a missing price behaves as +Inf, so it
// sorts last ascending and first descending. The catalog carries no
// timestamps, so newest falls back to relevance order.
func sortCandidates(candidates []scored, sortBy SortMode) {
	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(candidates, func(i, j int) bool {
			return priceKey(candidates[i]) < priceKey(candidates[j])
		})
	case SortPriceDesc:
		sort.SliceStable(candidates, func(i, j int) bool {
			return priceKey(candidates[i]) > priceKey(candidates[j])
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
	}
}

func priceKey(c scored) float64 {
	if c.product.Price == nil {
		return math.Inf(1)
	}
	return *c.product.Price
}
