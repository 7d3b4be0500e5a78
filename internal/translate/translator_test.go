package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chicbot/chicbot/internal/llm"
)

type mockChatter struct {
	chatFn func(ctx context.Context, messages []llm.Message, schema *llm.Schema) (string, error)
}

func (m *mockChatter) Chat(ctx context.Context, messages []llm.Message, schema *llm.Schema) (string, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, messages, schema)
	}
	return "", nil
}

func TestTranslateSameLanguagePassthrough(t *testing.T) {
	tr := New(&mockChatter{chatFn: func(context.Context, []llm.Message, *llm.Schema) (string, error) {
		t.Fatal("no chat call expected for same-language input")
		return "", nil
	}})
	got := tr.Translate(context.Background(), "black jacket", "en", "en")
	if got.Text != "black jacket" || got.Note != NoteAlreadyEnglish {
		t.Errorf("got %+v", got)
	}
}

func TestTranslateDisabled(t *testing.T) {
	tr := New(nil)
	got := tr.Translate(context.Background(), "veste noire", "fr", "en")
	if got.Text != "veste noire" || got.Note != NoteDisabled {
		t.Errorf("got %+v", got)
	}
}

func TestTranslateSuccess(t *testing.T) {
	tr := New(&mockChatter{chatFn: func(_ context.Context, messages []llm.Message, _ *llm.Schema) (string, error) {
		if len(messages) != 2 {
			t.Fatalf("expected system+user messages, got %d", len(messages))
		}
		if !strings.Contains(messages[0].Content, "French") || !strings.Contains(messages[0].Content, "English") {
			t.Errorf("prompt lacks language names: %q", messages[0].Content)
		}
		return "black jacket", nil
	}})
	got := tr.Translate(context.Background(), "veste noire", "fr", "en")
	if got.Text != "black jacket" || got.Note != NoteOK {
		t.Errorf("got %+v", got)
	}
}

func TestTranslateErrorFallsBack(t *testing.T) {
	tr := New(&mockChatter{chatFn: func(context.Context, []llm.Message, *llm.Schema) (string, error) {
		return "", errors.New("network down")
	}})
	got := tr.Translate(context.Background(), "veste noire", "fr", "en")
	if got.Text != "veste noire" || got.Note != NoteError {
		t.Errorf("fallback expected, got %+v", got)
	}
}

func TestTranslateUnknownLanguageCodeUsedVerbatim(t *testing.T) {
	var prompt string
	tr := New(&mockChatter{chatFn: func(_ context.Context, messages []llm.Message, _ *llm.Schema) (string, error) {
		prompt = messages[0].Content
		return "ok", nil
	}})
	tr.Translate(context.Background(), "hola", "es", "en")
	if !strings.Contains(prompt, "es") {
		t.Errorf("unknown code should appear verbatim in prompt: %q", prompt)
	}
}
