package search

import (
	"math"
	"strings"

	"github.com/chicbot/chicbot/internal/catalog"
	"github.com/chicbot/chicbot/internal/vocab"
)

// Scoring weights. Internally consistent rather than calibrated: the
// relative order (phrase > type > color > feature > residual) is what
// the ranking depends on.
const (
	wPhraseName    = 15.0
	wPhraseCat     = 12.0
	wTypeField     = 10.0
	wTypeName      = 8.0
	wTypeCat       = 6.0
	wColorSolid    = 10.0
	wColorBase     = 8.0
	wColorMulti    = 6.0
	wColorBaseMul  = 5.0
	wColorNameBon  = 2.0
	wFeatureMain   = 6.0
	wFeatureDesc   = 3.0
	wBrandFilter   = 8.0
	wBrandToken    = 2.0
	wPriceRangeMax = 5.0
	wPriceOneSided = 2.0
	wSize          = 2.0
	wResidualName  = 3.0
	wResidualCat   = 2.0
	wResidualSub   = 1.0
	wCoverage      = 5.0

	coverageRatio = 0.7
)

// typeWordMatch reports whether text contains term as a whole token,
// tolerating simple plural forms on either side.
func typeWordMatch(text, term string) bool {
	for _, tok := range vocab.Tokenize(text) {
		if tok == term || tok == term+"s" || tok == term+"es" ||
			term == tok+"s" || term == tok+"es" {
			return true
		}
	}
	return false
}

// scoreProduct computes the weighted additive relevance score for one
// record. filters may be nil, in which case type/color/feature terms
// are inferred directly from the query tokens.
func scoreProduct(p *catalog.Product, query string, filters *Filters) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	tokens := vocab.Tokenize(query)

	lname := strings.ToLower(p.Name)
	lcat := strings.ToLower(p.Category)
	lbrand := strings.ToLower(p.Brand)

	var score float64
	consumed := make(map[string]bool)

	// Exact phrase match of the full query.
	if q != "" {
		if strings.Contains(lname, q) {
			score += wPhraseName
		}
		if strings.Contains(lcat, q) {
			score += wPhraseCat
		}
	}

	// Product-type terms: normalized type field beats name beats category.
	typeTerms := typeTermsFor(tokens, filters)
	for _, t := range typeTerms {
		switch {
		case typeWordMatch(p.ProductType, t):
			score += wTypeField
		case typeWordMatch(lname, t):
			score += wTypeName
		case typeWordMatch(lcat, t):
			score += wTypeCat
		}
		consumed[t] = true
	}

	// Color terms. A solid-color record outranks a multicolor one
	// matching the same color; base color scores slightly lower than
	// the primary field; the in-name bonus applies to solids only.
	solid := !vocab.IsMulticolor(p.Color)
	for _, c := range colorTermsFor(tokens, filters) {
		c = strings.ToLower(c)
		matched := false
		switch {
		case vocab.ContainsWord(p.Color, c):
			if solid {
				score += wColorSolid
			} else {
				score += wColorMulti
			}
			matched = true
		case vocab.ContainsWord(p.BaseColor, c):
			if solid {
				score += wColorBase
			} else {
				score += wColorBaseMul
			}
			matched = true
		}
		if matched && solid && vocab.ContainsWord(lname, c) {
			score += wColorNameBon
		}
		consumed[c] = true
	}

	// Feature phrases: name/category beats description-only.
	for _, feat := range featureTermsFor(query, filters) {
		if phraseMatch(p.Name, feat) || phraseMatch(p.Category, feat) {
			score += wFeatureMain
		} else if phraseMatch(p.Description, feat) {
			score += wFeatureDesc
		}
		for _, tok := range vocab.Tokenize(feat) {
			consumed[tok] = true
		}
	}

	// Brand: fixed bonus for an explicit filter match; a leftover query
	// token matching the brand earns a smaller incidental bonus below.
	if filters != nil && filters.Brand != "" &&
		strings.Contains(lbrand, strings.ToLower(filters.Brand)) {
		score += wBrandFilter
	}

	score += priceProximity(p, filters)

	if filters != nil && len(filters.Sizes) > 0 && hasAnySize(p, filters.Sizes) {
		score += wSize
	}

	// Residual keyword coverage over tokens not already claimed by
	// type/color/feature matching.
	matchedTokens := 0
	for _, tok := range tokens {
		inName := vocab.ContainsWord(lname, tok)
		inCat := vocab.ContainsWord(lcat, tok)
		inColor := vocab.ContainsWord(p.Color, tok) || vocab.ContainsWord(p.BaseColor, tok)
		subName := strings.Contains(lname, tok)
		subCat := strings.Contains(lcat, tok)

		if inName || inCat || inColor || subName || subCat {
			matchedTokens++
		}
		if consumed[tok] {
			continue
		}
		switch {
		case inName:
			score += wResidualName
		case inCat:
			score += wResidualCat
		case subName || subCat:
			score += wResidualSub
		case vocab.ContainsWord(lbrand, tok):
			score += wBrandToken
		}
	}
	if n := len(tokens); n > 0 && float64(matchedTokens) >= coverageRatio*float64(n) {
		score += wCoverage
	}

	return score
}

func typeTermsFor(tokens []string, filters *Filters) []string {
	if filters != nil && filters.ProductType != "" {
		return []string{strings.ToLower(filters.ProductType)}
	}
	var terms []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		for _, typ := range vocab.ProductTypes {
			if (tok == typ || tok == typ+"s" || tok == typ+"es") && !seen[typ] {
				seen[typ] = true
				terms = append(terms, typ)
			}
		}
	}
	return terms
}

func colorTermsFor(tokens []string, filters *Filters) []string {
	if filters != nil && len(filters.Colors) > 0 {
		return filters.Colors
	}
	return vocab.FindColors(tokens)
}

func featureTermsFor(query string, filters *Filters) []string {
	if filters != nil && len(filters.Features) > 0 {
		return filters.Features
	}
	return vocab.FindFeatures(query)
}

// priceProximity rewards records close to the midpoint of an active
// price range, scaled by the range width, capped at wPriceRangeMax. A
// satisfied one-sided bound earns a small flat bonus instead.
func priceProximity(p *catalog.Product, filters *Filters) float64 {
	if filters == nil || p.Price == nil {
		return 0
	}
	price := *p.Price
	min, max := filters.PriceMin, filters.PriceMax

	switch {
	case min != nil && max != nil:
		width := *max - *min
		mid := (*min + *max) / 2
		if width <= 0 {
			if price == mid {
				return wPriceRangeMax
			}
			return 0
		}
		norm := math.Abs(price-mid) / width
		if norm > 1 {
			norm = 1
		}
		return wPriceRangeMax * (1 - norm)
	case min != nil:
		if price >= *min {
			return wPriceOneSided
		}
	case max != nil:
		if price <= *max {
			return wPriceOneSided
		}
	}
	return 0
}

func hasAnySize(p *catalog.Product, sizes []string) bool {
	for _, want := range sizes {
		for _, have := range p.AvailableSizes {
			if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}
