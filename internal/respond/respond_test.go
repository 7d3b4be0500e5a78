package respond

import (
	"context"
	"strings"
	"testing"

	"github.com/chicbot/chicbot/internal/search"
	"github.com/chicbot/chicbot/internal/translate"
)

type fakeTranslator struct {
	result translate.Result
	called bool
	text   string
	target string
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, target string) translate.Result {
	f.called = true
	f.text = text
	f.target = target
	return f.result
}

func price(v float64) *float64 { return &v }

func TestGenerateNoResults(t *testing.T) {
	g := NewGenerator(nil, nil)
	got := g.Generate(context.Background(), nil, "en", "Purple Capes", false)
	want := "I couldn't find any purple capes in our catalog. Would you like to search for something else?"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerateNoResultsFollowUp(t *testing.T) {
	g := NewGenerator(nil, nil)
	got := g.Generate(context.Background(), nil, "en", "purple capes", true)
	if !strings.Contains(got, "any more purple capes") {
		t.Errorf("follow-up phrasing missing: %q", got)
	}
}

func TestGenerateListsAtMostThree(t *testing.T) {
	products := []search.Result{
		{Name: "Jacket A", Color: "black", Price: price(49.99)},
		{Name: "Jacket B", Color: "navy", Price: price(59.99)},
		{Name: "Jacket C", Color: "grey", Price: price(39.99)},
		{Name: "Jacket D", Color: "red", Price: price(29.99)},
	}
	g := NewGenerator(nil, nil)
	got := g.Generate(context.Background(), products, "en", "jacket", false)

	if !strings.Contains(got, "I found 4 products matching 'jacket'") {
		t.Errorf("count phrasing missing: %q", got)
	}
	for _, name := range []string{"Jacket A", "Jacket B", "Jacket C"} {
		if !strings.Contains(got, name) {
			t.Errorf("missing %s in %q", name, got)
		}
	}
	if strings.Contains(got, "Jacket D") {
		t.Errorf("fourth product should not be listed: %q", got)
	}
	if !strings.Contains(got, "£49.99") {
		t.Errorf("price formatting missing: %q", got)
	}
}

func TestGenerateFollowUpPhrasing(t *testing.T) {
	products := []search.Result{{Name: "Jacket A", Color: "black"}}
	g := NewGenerator(nil, nil)
	got := g.Generate(context.Background(), products, "en", "jacket", true)
	if !strings.HasPrefix(got, "Here are 1 more options") {
		t.Errorf("follow-up phrasing missing: %q", got)
	}
}

func TestGenerateTranslatesBack(t *testing.T) {
	ft := &fakeTranslator{result: translate.Result{Text: "Super! J'ai trouvé 1 produits."}}
	g := NewGenerator(ft, nil)
	got := g.Generate(context.Background(), []search.Result{{Name: "Veste"}}, "fr", "veste", false)

	if !ft.called {
		t.Fatal("translator was not called")
	}
	if ft.target != "fr" {
		t.Errorf("target = %q, want fr", ft.target)
	}
	if got != "Super! J'ai trouvé 1 produits." {
		t.Errorf("got %q, want translated text", got)
	}
}

func TestGenerateTranslationFailureFallsBack(t *testing.T) {
	ft := &fakeTranslator{result: translate.Result{Text: "whatever", Note: translate.NoteError}}
	g := NewGenerator(ft, nil)
	got := g.Generate(context.Background(), nil, "ar", "dress", false)
	if !strings.HasPrefix(got, "I couldn't find any dress") {
		t.Errorf("expected English fallback, got %q", got)
	}
}

func TestGenerateEnglishSkipsTranslator(t *testing.T) {
	ft := &fakeTranslator{result: translate.Result{Text: "nope"}}
	g := NewGenerator(ft, nil)
	g.Generate(context.Background(), nil, "en", "dress", false)
	if ft.called {
		t.Error("translator should not be called for English")
	}
}

func TestRefuse(t *testing.T) {
	g := NewGenerator(nil, nil)
	if got := g.Refuse(context.Background(), "en"); got != RefusalMessage {
		t.Errorf("got %q, want refusal message", got)
	}

	ft := &fakeTranslator{result: translate.Result{Text: "Je suis un assistant mode."}}
	g = NewGenerator(ft, nil)
	if got := g.Refuse(context.Background(), "fr"); got != "Je suis un assistant mode." {
		t.Errorf("got %q, want translated refusal", got)
	}
	if ft.text != RefusalMessage {
		t.Errorf("translator input = %q, want refusal message", ft.text)
	}
}
