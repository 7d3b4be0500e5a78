// Package api exposes the assistant over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chicbot/chicbot/internal/pipeline"
	"github.com/chicbot/chicbot/internal/search"
	"github.com/chicbot/chicbot/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// maxChatProducts caps how many products a chat reply carries.
const maxChatProducts = 3

// ChatBot processes one conversational message.
type ChatBot interface {
	Process(ctx context.Context, sessionID, message string) (pipeline.Result, error)
}

// InteractionStore covers the storage reads the handlers need.
type InteractionStore interface {
	ListInteractions(limit int) ([]storage.Interaction, error)
	CountProducts() (int, error)
}

// Deps holds the collaborators behind the HTTP surface.
type Deps struct {
	Bot        ChatBot
	Engine     *search.Engine
	Store      InteractionStore
	MaxResults int    // default search limit; 0 means search.DefaultMaxResults
	APIToken   string // empty disables /interactions
}

func (d Deps) defaultLimit() int {
	if d.MaxResults > 0 {
		return d.MaxResults
	}
	return search.DefaultMaxResults
}

// NewHandler returns the REST API router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", handleHealth(deps))
	r.Post("/api/chat", handleChat(deps))
	r.Get("/api/products/search", handleProductSearch(deps))

	if deps.APIToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(deps.APIToken))
			r.Get("/interactions", handleInteractions(deps))
		})
	}

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := deps.Store.CountProducts()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "counting products: %v", err)
			return
		}
		writeJSON(w, map[string]any{
			"status":   "ok",
			"products": count,
		})
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatMetadata struct {
	SessionID          string  `json:"session_id"`
	Status             string  `json:"status"`
	Reason             string  `json:"reason,omitempty"`
	DetectedLanguage   string  `json:"detected_language"`
	LanguageConfidence float64 `json:"language_confidence"`
	Intent             string  `json:"intent,omitempty"`
	IntentConfidence   float64 `json:"intent_confidence,omitempty"`
	QueryEnglish       string  `json:"query_english"`
	TotalProducts      int     `json:"total_products"`
	ResolvedQuery      string  `json:"resolved_query,omitempty"`
	EnrichmentRule     string  `json:"enrichment_rule,omitempty"`
	TranslationNote    string  `json:"translation_note,omitempty"`
}

type chatResponse struct {
	Response string          `json:"response"`
	Products []search.Result `json:"products"`
	Metadata chatMetadata    `json:"metadata"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		result, err := deps.Bot.Process(r.Context(), req.SessionID, req.Message)
		if err != nil {
			// Only context cancellation reaches here; the client is gone.
			httpError(w, http.StatusServiceUnavailable, "api_error", "request aborted: %v", err)
			return
		}

		products := result.Products
		if len(products) > maxChatProducts {
			products = products[:maxChatProducts]
		}
		if products == nil {
			products = []search.Result{}
		}

		writeJSON(w, chatResponse{
			Response: result.Response,
			Products: products,
			Metadata: chatMetadata{
				SessionID:          req.SessionID,
				Status:             result.Status,
				Reason:             result.Reason,
				DetectedLanguage:   result.DetectedLanguage,
				LanguageConfidence: result.LanguageConfidence,
				Intent:             result.Intent,
				IntentConfidence:   result.IntentConfidence,
				QueryEnglish:       result.QueryEnglish,
				TotalProducts:      len(result.Products),
				ResolvedQuery:      result.ResolvedQuery,
				EnrichmentRule:     string(result.EnrichmentRule),
				TranslationNote:    result.TranslationNote,
			},
		})
	}
}

func handleProductSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
			return
		}

		limit := deps.defaultLimit()
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a positive integer")
				return
			}
			if n > 50 {
				n = 50
			}
			limit = n
		}

		sortBy := search.ParseSortMode(r.URL.Query().Get("sort"))
		results := deps.Engine.Search(query, nil, limit, sortBy)
		if results == nil {
			results = []search.Result{}
		}
		writeJSON(w, map[string]any{
			"query":    query,
			"products": results,
		})
	}
}

func handleInteractions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "limit must be a positive integer")
				return
			}
			limit = n
		}

		interactions, err := deps.Store.ListInteractions(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing interactions: %v", err)
			return
		}
		if interactions == nil {
			interactions = []storage.Interaction{}
		}
		writeJSON(w, map[string]any{"interactions": interactions})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
