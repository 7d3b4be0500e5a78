package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict/language" {
			t.Errorf("path = %q, want /predict/language", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "bonjour" {
			t.Errorf("text = %q, want bonjour", req.Text)
		}
		json.NewEncoder(w).Encode(Prediction{Label: "fr", Confidence: 0.97})
	}))
	defer srv.Close()

	c := New(srv.URL)
	p, err := c.DetectLanguage(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if p.Label != "fr" || p.Confidence != 0.97 {
		t.Errorf("prediction = %+v, want fr/0.97", p)
	}
}

func TestClassifyIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict/intent" {
			t.Errorf("path = %q, want /predict/intent", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Prediction{Label: IntentOutOfContext, Confidence: 0.88})
	}))
	defer srv.Close()

	c := New(srv.URL)
	p, err := c.ClassifyIntent(context.Background(), "what's the weather")
	if err != nil {
		t.Fatalf("ClassifyIntent: %v", err)
	}
	if p.Label != IntentOutOfContext {
		t.Errorf("label = %q, want %q", p.Label, IntentOutOfContext)
	}
}

func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.DetectLanguage(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 500, got nil")
	}
}

func TestPredictEmptyLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Prediction{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.ClassifyIntent(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on empty label, got nil")
	}
}

func TestIsRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if !c.IsRunning(context.Background()) {
		t.Error("IsRunning = false, want true")
	}

	srv.Close()
	if c.IsRunning(context.Background()) {
		t.Error("IsRunning = true after server closed, want false")
	}
}
