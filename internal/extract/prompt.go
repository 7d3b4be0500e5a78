package extract

import (
	"fmt"
	"strings"

	"github.com/chicbot/chicbot/internal/llm"
)

const systemPrompt = `You are an expert fashion e-commerce assistant. Extract structured product attributes from the user query. Your output must be ONLY a single valid JSON object conforming to the provided schema.

CRITICAL DISTINCTIONS:
1. Product types (what item): dress, trousers, jacket, coat, shirt, skirt, shoes, bag
2. Materials (what fabric): denim, leather, cotton, silk, wool, suede, linen
3. Colors (what color): black, red, blue, white, navy, pink
4. Features (style details): short sleeve, long sleeve, midi, mini, hooded, cropped

EXAMPLES:
- "black denim jacket" -> product_type='jacket', materials=['denim'], colors=['black']
- "jeans" -> materials=['denim'], product_type from context or empty
- "black" -> colors=['black'], inherit product_type/materials from context

CONTEXT HANDLING:
If the user gives just a material, color, or feature, they are refining the previous search - merge with the conversation context.

VALIDATION:
- Set is_fashion_query=true ONLY for fashion shopping (clothing, shoes, accessories).
- Set is_fashion_query=false for food, electronics, services, personal questions.`

// BuildPrompt constructs the chat messages for entity extraction,
// folding up to three prior turns into the context block.
func BuildPrompt(query string, history []Turn) []llm.Message {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if len(history) > 0 {
		sb.WriteString("\n\nConversation history:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "User: %s\n", turn.User)
			if turn.Entities != nil && turn.Entities.HasAttributes() {
				fmt.Fprintf(&sb, "  (resolved: %s)\n", turn.Entities.ComposeQuery())
			}
		}
	}

	return []llm.Message{
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: fmt.Sprintf("Current query: %q\n\nExtract attributes.", query)},
	}
}
