package vocab

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Black Jacket", []string{"black", "jacket"}},
		{"show me blue!", []string{"show", "me", "blue"}},
		{"v-neck t-shirt", []string{"v", "neck", "t", "shirt"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindProductType(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"black jacket", "jacket"},
		{"show me some dresses", "dress"},
		{"leather jackets under 50", "jacket"},
		{"something cheaper", ""},
		{"red denim", ""},
	}
	for _, tt := range tests {
		if got := FindProductType(Tokenize(tt.query)); got != tt.want {
			t.Errorf("FindProductType(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestFindColors(t *testing.T) {
	got := FindColors(Tokenize("navy and black striped shirt, black trim"))
	want := []string{"navy", "black"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindColors = %v, want %v", got, want)
	}
}

func TestContainsWord(t *testing.T) {
	if !ContainsWord("Jet Black Puffer", "black") {
		t.Error("expected whole-word match on color field")
	}
	if ContainsWord("bordered hem dress", "red") {
		t.Error("substring inside another word must not match")
	}
}

func TestIsMulticolor(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"black", false},
		{"black/white multicolor print", true},
		{"Floral Navy", true},
		{"Burgundy", false},
	}
	for _, tt := range tests {
		if got := IsMulticolor(tt.field); got != tt.want {
			t.Errorf("IsMulticolor(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestFindFeatures(t *testing.T) {
	got := FindFeatures("Oversized long sleeve midi dress")
	want := map[string]bool{"long sleeve": true, "midi": true, "oversized": true}
	if len(got) != len(want) {
		t.Fatalf("FindFeatures = %v, want keys %v", got, want)
	}
	for _, f := range got {
		if !want[f] {
			t.Errorf("unexpected feature %q", f)
		}
	}
}
