// Package translate wraps the chat-completion collaborator as a
// best-effort translation capability. Failures never propagate past
// this package: the caller always gets usable text plus a note
// describing how it was produced.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chicbot/chicbot/internal/llm"
)

const translationTimeout = 20 * time.Second

// Notes describing how the returned text was produced.
const (
	NoteOK             = ""
	NoteAlreadyEnglish = "already_english"
	NoteDisabled       = "translator_disabled"
	NoteError          = "error"
)

// Chatter is the chat completion interface the translator consumes.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, jsonSchema *llm.Schema) (string, error)
}

// languageNames maps supported language codes to the names used in
// translation prompts.
var languageNames = map[string]string{
	"en":      "English",
	"fr":      "French",
	"ar":      "Arabic",
	"tn_latn": "Tunisian (Latin script)",
}

// Result is a tagged translation outcome. Text is always usable.
type Result struct {
	Text string
	Note string
}

// Translator translates between the supported languages via the chat
// collaborator. A nil client disables translation entirely.
type Translator struct {
	client Chatter
}

// New creates a Translator. Pass nil to run with translation disabled
// (all calls fall back to the input text).
func New(client Chatter) *Translator {
	return &Translator{client: client}
}

// Translate converts text from source to target language. It never
// returns an error: on any failure the original text comes back with
// an explanatory note.
func (t *Translator) Translate(ctx context.Context, text, source, target string) Result {
	if source == target {
		note := NoteOK
		if target == "en" {
			note = NoteAlreadyEnglish
		}
		return Result{Text: text, Note: note}
	}
	if t.client == nil {
		return Result{Text: text, Note: NoteDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, translationTimeout)
	defer cancel()

	out, err := t.client.Chat(ctx, buildPrompt(text, source, target), nil)
	if err != nil || out == "" {
		slog.Warn("translation failed, falling back to original text",
			"source", source, "target", target, "error", err)
		return Result{Text: text, Note: NoteError}
	}
	return Result{Text: out, Note: NoteOK}
}

func buildPrompt(text, source, target string) []llm.Message {
	sourceName := languageName(source)
	targetName := languageName(target)
	return []llm.Message{
		{
			Role: "system",
			Content: fmt.Sprintf("You are a professional translator. Translate text from %s to %s accurately and naturally. "+
				"Return only the translation without any additional text or explanations.", sourceName, targetName),
		},
		{
			Role: "user",
			Content: fmt.Sprintf("Translate the following text from %s to %s. Only return the translation.\n\nText to translate: %s",
				sourceName, targetName, text),
		},
	}
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
