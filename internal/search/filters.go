package search

import (
	"strings"

	"github.com/chicbot/chicbot/internal/catalog"
	"github.com/chicbot/chicbot/internal/vocab"
)

// matchesFilters applies the hard filters: a record failing any
// provided filter is excluded before scoring.
func matchesFilters(p *catalog.Product, f *Filters) bool {
	if f == nil {
		return true
	}

	if f.ProductType != "" {
		t := strings.ToLower(f.ProductType)
		if !strings.Contains(strings.ToLower(p.ProductType), t) &&
			!strings.Contains(strings.ToLower(p.Category), t) {
			return false
		}
	}

	// At least one requested color must whole-word match the color
	// fields or the product name.
	if len(f.Colors) > 0 {
		matched := false
		for _, c := range f.Colors {
			c = strings.ToLower(c)
			if vocab.ContainsWord(p.Color, c) || vocab.ContainsWord(p.BaseColor, c) ||
				vocab.ContainsWord(p.Name, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// All requested features must match (conjunctive).
	haystack := p.Name + " " + p.Category + " " + p.Description
	for _, feat := range f.Features {
		if !phraseMatch(haystack, feat) {
			return false
		}
	}

	if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(f.Brand)) {
		return false
	}

	// Unknown price fails a minimum-price filter: a record must not
	// silently satisfy a lower bound it cannot prove. It passes a
	// maximum-only bound.
	if f.PriceMin != nil {
		if p.Price == nil || *p.Price < *f.PriceMin {
			return false
		}
	}
	if f.PriceMax != nil && p.Price != nil && *p.Price > *f.PriceMax {
		return false
	}

	if len(f.Sizes) > 0 {
		matched := false
		for _, want := range f.Sizes {
			for _, have := range p.AvailableSizes {
				if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(have)) {
					matched = true
					break
				}
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// phraseMatch matches multi-word phrases by substring and single words
// whole-word, so "midi" never matches inside an unrelated word while
// "long sleeve" still spans token boundaries.
func phraseMatch(text, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	if strings.ContainsRune(phrase, ' ') || strings.ContainsRune(phrase, '-') {
		return strings.Contains(strings.ToLower(text), phrase)
	}
	return vocab.ContainsWord(text, phrase)
}
