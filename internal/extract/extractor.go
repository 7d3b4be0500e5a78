package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/chicbot/chicbot/internal/llm"
)

const extractionTimeout = 3 * time.Second

// Chatter is the chat completion interface the extractor consumes.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, jsonSchema *llm.Schema) (string, error)
}

// Turn is the slice of conversation history the extractor sees: the
// user's text and the entities that turn resolved to, if any.
type Turn struct {
	User     string
	Entities *Entities
}

// Extractor resolves structured shopping attributes from a query using
// the LLM collaborator with JSON-schema constrained output.
type Extractor struct {
	client Chatter
}

// New creates an Extractor using the given chat client.
func New(client Chatter) *Extractor {
	return &Extractor{client: client}
}

// Extract analyses the query with up to the last three history turns
// for context. On any failure (timeout, malformed JSON, API error) it
// returns a zero-value Entities — the pipeline must never block or
// fail on extraction problems.
func (e *Extractor) Extract(ctx context.Context, query string, history []Turn) Entities {
	if query == "" || e.client == nil {
		return Entities{}
	}

	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	if len(history) > 3 {
		history = history[len(history)-3:]
	}

	raw, err := e.client.Chat(ctx, BuildPrompt(query, history), entitiesSchema())
	if err != nil {
		slog.Warn("entity extraction chat failed", "error", err)
		return Entities{}
	}

	result, err := parseEntities(raw)
	if err != nil {
		slog.Warn("failed to unmarshal entities from LLM response", "error", err, "response", raw)
		return Entities{}
	}
	return result
}

// parseEntities tolerates markdown code fences and conversational
// filler around the JSON object, the way small models often respond.
func parseEntities(raw string) (Entities, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start != -1 && end > start {
		s = s[start : end+1]
	}

	var result Entities
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return Entities{}, err
	}
	return result, nil
}

// entitiesSchema returns the JSON schema for structured entity output.
func entitiesSchema() *llm.Schema {
	stringArray := &llm.SchemaProperty{Type: "string"}
	return &llm.Schema{
		Type: "object",
		Properties: map[string]llm.SchemaProperty{
			"product_type": {Type: "string", Description: "The type of product (e.g. 'dress', 'trousers', 'jacket'). NOT materials like 'denim'. Singular form."},
			"materials":    {Type: "array", Description: "Material/fabric types (e.g. 'denim', 'leather', 'cotton'). Lowercase.", Items: stringArray},
			"colors":       {Type: "array", Description: "Color attributes (e.g. 'black', 'navy blue'). Lowercase.", Items: stringArray},
			"price_min":    {Type: "number", Description: "Minimum price budget if specified."},
			"price_max":    {Type: "number", Description: "Maximum price budget if specified."},
			"sizes":        {Type: "array", Description: "Size specifications (e.g. 'M', '42').", Items: stringArray},
			"gender":       {Type: "string", Description: "Target gender (e.g. 'women', 'men', 'unisex')."},
			"brand":        {Type: "string", Description: "Brand name (e.g. 'Nike', 'Tommy Jeans')."},
			"features":     {Type: "array", Description: "Style/design features: 'short sleeve', 'midi', 'hooded', 'cropped'. Lowercase phrases.", Items: stringArray},
			"sort_by":      {Type: "string", Description: "Sort preference: 'price_asc', 'price_desc', 'newest'."},
			"is_fashion_query": {Type: "boolean", Description: "True if the query is about fashion/clothing shopping, false otherwise (food, electronics, general chat)."},
		},
		Required: []string{"is_fashion_query"},
	}
}
