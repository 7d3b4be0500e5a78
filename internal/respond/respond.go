// Package respond formats search results into natural-language
// replies and translates them back to the user's language.
package respond

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chicbot/chicbot/internal/search"
	"github.com/chicbot/chicbot/internal/translate"
)

// RefusalMessage is returned verbatim for queries outside the
// assistant's shopping domain, regardless of why they were rejected.
const RefusalMessage = "I'm a fashion shopping assistant, so I can only help you find clothing, shoes, and accessories. Is there something from our catalog I can help you with?"

// maxShown caps how many products a reply lists.
const maxShown = 3

// Translator renders English text back into the user's language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) translate.Result
}

// Generator builds user-facing replies. A nil translator means all
// replies stay in English.
type Generator struct {
	translator Translator
	logger     *slog.Logger
}

func NewGenerator(translator Translator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{translator: translator, logger: logger}
}

// Generate formats products into a reply in the user's language.
// followUp selects continuation phrasing for sessions with prior
// exchanges. Translation failures fall back silently to English.
func (g *Generator) Generate(ctx context.Context, products []search.Result, language, query string, followUp bool) string {
	return g.toUserLanguage(ctx, g.english(products, query, followUp), language)
}

// Refuse returns the fixed out-of-domain reply in the user's language.
func (g *Generator) Refuse(ctx context.Context, language string) string {
	return g.toUserLanguage(ctx, RefusalMessage, language)
}

func (g *Generator) english(products []search.Result, query string, followUp bool) string {
	if len(products) == 0 {
		if followUp {
			return fmt.Sprintf("I couldn't find any more %s in our catalog. Would you like to try different keywords?", strings.ToLower(query))
		}
		return fmt.Sprintf("I couldn't find any %s in our catalog. Would you like to search for something else?", strings.ToLower(query))
	}

	lines := make([]string, 0, maxShown)
	for i, p := range products {
		if i >= maxShown {
			break
		}
		lines = append(lines, formatProduct(p))
	}
	list := strings.Join(lines, "\n")

	if followUp {
		return fmt.Sprintf("Here are %d more options for '%s':\n\n%s\n\nWould you like more details about any of these items?", len(products), query, list)
	}
	return fmt.Sprintf("Great! I found %d products matching '%s':\n\n%s\n\nWould you like more details about any of these items?", len(products), query, list)
}

func formatProduct(p search.Result) string {
	line := "• " + p.Name
	if p.Color != "" {
		line += " (" + p.Color + ")"
	}
	if p.Price != nil {
		line += fmt.Sprintf(" - £%.2f", *p.Price)
	}
	return line
}

func (g *Generator) toUserLanguage(ctx context.Context, text, language string) string {
	if language == "" || language == "en" || g.translator == nil {
		return text
	}
	res := g.translator.Translate(ctx, text, "en", language)
	if res.Note == translate.NoteError || strings.TrimSpace(res.Text) == "" {
		g.logger.Warn("reply translation failed, falling back to English", "language", language)
		return text
	}
	return res.Text
}
