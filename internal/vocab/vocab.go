// Package vocab holds the shared heuristic keyword tables used by both
// the enrichment rules and the ranking engine. Keeping a single source
// guarantees the two components never disagree on what counts as a
// product type, a color, or a price modifier.
package vocab

import "strings"

// ProductTypes are the catalog item kinds the system recognizes in free
// text. Order matters: FindProductType returns the first match.
var ProductTypes = []string{
	"dress", "skirt", "trousers", "jeans", "shorts", "leggings",
	"jacket", "coat", "blazer", "cardigan", "jumper", "sweater",
	"hoodie", "sweatshirt", "shirt", "t-shirt", "tshirt", "top",
	"blouse", "vest", "suit", "shoes", "trainers", "sneakers",
	"boots", "sandals", "heels", "bag", "scarf", "hat", "belt",
}

// Colors are the recognized color attribute terms.
var Colors = []string{
	"black", "white", "red", "blue", "navy", "green", "yellow",
	"pink", "purple", "orange", "brown", "beige", "grey", "gray",
	"cream", "khaki", "burgundy", "gold", "silver",
}

// Materials are fabric terms, kept distinct from product types.
var Materials = []string{
	"denim", "leather", "cotton", "silk", "wool", "suede", "linen",
	"satin", "velvet", "cashmere", "knit", "fleece",
}

// Features are multi-word style/design phrases matched by substring.
var Features = []string{
	"short sleeve", "long sleeve", "sleeveless", "v neck", "v-neck",
	"high neck", "midi", "mini", "maxi", "slim fit", "skinny",
	"oversized", "relaxed", "fitted", "hooded", "cropped",
	"high waist", "embroidered", "pleated", "ribbed",
}

// AttributeTerms classify a follow-up as adding a style/length/fit
// refinement (sleeve length, silhouette length, fit descriptors).
var AttributeTerms = []string{
	"sleeve", "sleeves", "sleeveless", "midi", "mini", "maxi",
	"slim", "skinny", "fitted", "loose", "oversized", "relaxed",
	"cropped", "hooded", "longer", "shorter",
}

// PriceModifiers classify a follow-up as a relative price request.
var PriceModifiers = []string{
	"cheap", "cheaper", "cheapest", "expensive", "pricey", "budget",
	"affordable", "premium", "luxury", "costly",
}

// VagueTerms are generic continuation words ("show me more").
var VagueTerms = []string{
	"more", "other", "others", "another", "different", "else",
	"similar", "like",
}

// multicolorIndicators mark a color field as multi-color or printed
// rather than a single dominant color.
var multicolorIndicators = []string{
	"multi", "multicolour", "multicolor", "print", "printed",
	"pattern", "patterned", "floral", "stripe", "striped", "check",
	"checked", "colourblock", "colorblock",
}

// Tokenize lowercases s and splits it into alphanumeric tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
}

// ContainsWord reports whether word appears as a whole token in text.
// Used wherever substring matching would be too permissive (e.g. the
// color "red" must not match "bordered").
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for _, tok := range Tokenize(text) {
		if tok == word {
			return true
		}
	}
	return false
}

// matchesType reports whether token names the given product type,
// tolerating simple plural forms ("jackets", "dresses").
func matchesType(token, typ string) bool {
	return token == typ || token == typ+"s" || token == typ+"es"
}

// FindProductType returns the first known product-type keyword among
// tokens, or "" if none is present.
func FindProductType(tokens []string) string {
	for _, tok := range tokens {
		for _, typ := range ProductTypes {
			if matchesType(tok, typ) {
				return typ
			}
		}
	}
	return ""
}

// HasProductType reports whether tokens contain any product-type keyword.
func HasProductType(tokens []string) bool {
	return FindProductType(tokens) != ""
}

// FindColors returns the color terms present in tokens, in token order,
// without duplicates.
func FindColors(tokens []string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		for _, c := range Colors {
			if tok == c && !seen[c] {
				seen[c] = true
				found = append(found, c)
			}
		}
	}
	return found
}

// FindColor returns the first color term in tokens, or "".
func FindColor(tokens []string) string {
	if colors := FindColors(tokens); len(colors) > 0 {
		return colors[0]
	}
	return ""
}

// FindFeatures returns the known feature phrases contained in text
// (lowercased substring match, since features span multiple tokens).
func FindFeatures(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, f := range Features {
		if strings.Contains(lower, f) {
			found = append(found, f)
		}
	}
	return found
}

// HasAny reports whether any token is present in the given term list.
func HasAny(tokens, terms []string) bool {
	for _, tok := range tokens {
		for _, t := range terms {
			if tok == t {
				return true
			}
		}
	}
	return false
}

// IsMulticolor reports whether a catalog color field describes a
// multi-color or printed record rather than a single dominant color.
func IsMulticolor(colorField string) bool {
	lower := strings.ToLower(colorField)
	for _, ind := range multicolorIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
