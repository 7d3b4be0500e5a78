// Package extract resolves structured shopping attributes from free
// text via the LLM collaborator, and owns the Entities shape shared by
// the pipeline, the conversation history, and the search filters.
package extract

import (
	"strings"

	"github.com/chicbot/chicbot/internal/search"
)

// Entities is the fixed-shape structured extraction result. All fields
// are optional; IsFashionQuery is tri-state (nil means the extractor
// did not judge the query either way).
type Entities struct {
	ProductType    string   `json:"product_type"`
	Materials      []string `json:"materials"`
	Colors         []string `json:"colors"`
	PriceMin       *float64 `json:"price_min"`
	PriceMax       *float64 `json:"price_max"`
	Sizes          []string `json:"sizes"`
	Gender         string   `json:"gender"`
	Brand          string   `json:"brand"`
	Features       []string `json:"features"`
	SortBy         string   `json:"sort_by"`
	IsFashionQuery *bool    `json:"is_fashion_query"`
}

// HasAttributes reports whether the extraction carries anything the
// search engine can act on. Gender and sort preference alone don't
// qualify: with nothing else set, the pipeline falls back to rule-based
// enrichment.
func (e Entities) HasAttributes() bool {
	return e.ProductType != "" || len(e.Materials) > 0 || len(e.Colors) > 0 ||
		e.PriceMin != nil || e.PriceMax != nil || len(e.Sizes) > 0 ||
		e.Brand != "" || len(e.Features) > 0
}

// Merge fills fields absent in e from prev: scalars fill-if-absent,
// list fields union with e's values first. Fields e already populated
// are never overwritten. Returns the merged copy; neither input is
// modified.
func (e Entities) Merge(prev *Entities) Entities {
	if prev == nil {
		return e
	}
	out := e
	if out.ProductType == "" {
		out.ProductType = prev.ProductType
	}
	if out.Gender == "" {
		out.Gender = prev.Gender
	}
	if out.Brand == "" {
		out.Brand = prev.Brand
	}
	if out.SortBy == "" {
		out.SortBy = prev.SortBy
	}
	if out.PriceMin == nil {
		out.PriceMin = prev.PriceMin
	}
	if out.PriceMax == nil {
		out.PriceMax = prev.PriceMax
	}
	out.Materials = unionLists(e.Materials, prev.Materials)
	out.Colors = unionLists(e.Colors, prev.Colors)
	out.Sizes = unionLists(e.Sizes, prev.Sizes)
	out.Features = unionLists(e.Features, prev.Features)
	return out
}

// unionLists keeps fresh values first, then prior values not already
// present, so downstream query composition is deterministic.
func unionLists(fresh, prev []string) []string {
	if len(prev) == 0 {
		return fresh
	}
	out := make([]string, 0, len(fresh)+len(prev))
	seen := make(map[string]bool, len(fresh)+len(prev))
	for _, v := range fresh {
		key := strings.ToLower(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	for _, v := range prev {
		key := strings.ToLower(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

// ComposeQuery builds the search query text from the merged entities:
// colors, materials, product type, brand, in that order, skipping
// absent fields.
func (e Entities) ComposeQuery() string {
	var parts []string
	parts = append(parts, e.Colors...)
	parts = append(parts, e.Materials...)
	if e.ProductType != "" {
		parts = append(parts, e.ProductType)
	}
	if e.Brand != "" {
		parts = append(parts, e.Brand)
	}
	return strings.Join(parts, " ")
}

// Filters converts the entities to the hard filters passed to the
// search engine.
func (e Entities) Filters() *search.Filters {
	return &search.Filters{
		ProductType: e.ProductType,
		Colors:      e.Colors,
		Materials:   e.Materials,
		Brand:       e.Brand,
		PriceMin:    e.PriceMin,
		PriceMax:    e.PriceMax,
		Sizes:       e.Sizes,
		Features:    e.Features,
	}
}
