// Package enrich rewrites terse follow-up queries into self-contained
// ones using the most recent exchange, for turns where structured
// entity extraction produced nothing usable.
package enrich

import (
	"strings"

	"github.com/chicbot/chicbot/internal/conversation"
	"github.com/chicbot/chicbot/internal/vocab"
)

// Rule identifies which rewrite rule classified the query. Rules are
// evaluated in declaration order; the first match wins.
type Rule string

const (
	RuleNone        Rule = "none"
	RuleColorChange Rule = "color_change"
	RuleAttribute   Rule = "attribute_addition"
	RulePrice       Rule = "price_modifier"
	RuleVague       Rule = "vague_followup"
	RuleFallback    Rule = "generic_fallback"
)

// Rewrite resolves a context-dependent follow-up against the last
// exchange in history. A query that already names a product type is
// returned unchanged: an explicit type always takes priority and
// bypasses enrichment. With empty history the input is returned as is.
//
// Ordering is significant: price modifiers are classified before vague
// follow-ups so "something cheaper" is never mistaken for "show me
// more", and attribute terms are checked before both.
func Rewrite(query string, history []conversation.Exchange) (string, Rule) {
	if len(history) == 0 {
		return query, RuleNone
	}

	tokens := vocab.Tokenize(query)
	if vocab.HasProductType(tokens) {
		return query, RuleNone
	}

	last := history[len(history)-1]
	lastTokens := vocab.Tokenize(last.QueryEnglish)
	lastType := vocab.FindProductType(lastTokens)

	switch {
	case len(vocab.FindColors(tokens)) > 0 && lastType != "":
		// Color change: compose the new color terms with the product
		// type carried over from the last exchange. Without a type to
		// carry, the remaining rules get their turn.
		parts := append(vocab.FindColors(tokens), lastType)
		return strings.Join(parts, " "), RuleColorChange

	case vocab.HasAny(tokens, vocab.AttributeTerms):
		return composeWithContext(query, lastTokens, lastType), RuleAttribute

	case vocab.HasAny(tokens, vocab.PriceModifiers):
		return composeWithContext(query, lastTokens, lastType), RulePrice

	case vocab.HasAny(tokens, vocab.VagueTerms):
		// "show me more": the last resolved query already says it all.
		return last.QueryEnglish, RuleVague

	case lastType != "":
		return lastType + " " + query, RuleFallback
	}

	return query, RuleNone
}

// composeWithContext builds "[last color] [last type] [current text]",
// skipping context parts the last query didn't carry.
func composeWithContext(query string, lastTokens []string, lastType string) string {
	var parts []string
	if c := vocab.FindColor(lastTokens); c != "" {
		parts = append(parts, c)
	}
	if lastType != "" {
		parts = append(parts, lastType)
	}
	parts = append(parts, query)
	return strings.Join(parts, " ")
}
