// Package pipeline orchestrates one chat request end to end: language
// detection, translation to English, the intent gate, entity
// resolution with rule-based enrichment fallback, catalog search,
// response generation, and the per-session context update.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chicbot/chicbot/internal/conversation"
	"github.com/chicbot/chicbot/internal/enrich"
	"github.com/chicbot/chicbot/internal/extract"
	"github.com/chicbot/chicbot/internal/inference"
	"github.com/chicbot/chicbot/internal/search"
	"github.com/chicbot/chicbot/internal/storage"
	"github.com/chicbot/chicbot/internal/translate"
)

// Request statuses.
const (
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// Rejection reasons. Both render the same user-facing message; the
// distinct codes are kept for diagnostics.
const (
	ReasonOutOfContext = "out_of_context"
	ReasonNotFashion   = "not_fashion"
)

// LanguageUnknown is reported when the language detector fails.
const LanguageUnknown = "unknown"

// NoteDetectorError flags a reply produced without language detection.
const NoteDetectorError = "detector_error"

// Classifier covers the model-server predictions the pipeline needs.
type Classifier interface {
	DetectLanguage(ctx context.Context, text string) (inference.Prediction, error)
	ClassifyIntent(ctx context.Context, text string) (inference.Prediction, error)
}

// Translator converts text between supported languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) translate.Result
}

// Extractor resolves structured entities from free text.
type Extractor interface {
	Extract(ctx context.Context, query string, history []extract.Turn) extract.Entities
}

// Responder formats the user-facing reply.
type Responder interface {
	Generate(ctx context.Context, products []search.Result, language, query string, followUp bool) string
	Refuse(ctx context.Context, language string) string
}

// AuditLog records processed requests. May be nil.
type AuditLog interface {
	SaveInteraction(i storage.Interaction) error
}

// Result is the full outcome of one processed message, including the
// diagnostic fields surfaced in API metadata.
type Result struct {
	Response           string
	Products           []search.Result
	Status             string
	Reason             string
	DetectedLanguage   string
	LanguageConfidence float64
	Intent             string
	IntentConfidence   float64
	OriginalQuery      string
	QueryEnglish       string
	ResolvedQuery      string
	EnrichmentRule     enrich.Rule
	TranslationNote    string
}

// Bot ties the collaborators together. Collaborator failures degrade
// the answer; only context cancellation aborts a request.
type Bot struct {
	classifier Classifier
	translator Translator
	extractor  Extractor
	responder  Responder
	engine     *search.Engine
	maxResults int
	sessions   *conversation.Manager
	audit      AuditLog
	logger     *slog.Logger
}

func New(classifier Classifier, translator Translator, extractor Extractor, responder Responder, engine *search.Engine, maxResults int, sessions *conversation.Manager, audit AuditLog, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if maxResults <= 0 {
		maxResults = search.DefaultMaxResults
	}
	return &Bot{
		classifier: classifier,
		translator: translator,
		extractor:  extractor,
		responder:  responder,
		engine:     engine,
		maxResults: maxResults,
		sessions:   sessions,
		audit:      audit,
		logger:     logger,
	}
}

// Process runs one message through the pipeline. The session is locked
// for the whole call so concurrent requests against the same session
// observe consistent history.
func (b *Bot) Process(ctx context.Context, sessionID, message string) (Result, error) {
	session := b.sessions.Get(sessionID)
	session.Lock()
	defer session.Unlock()

	res := Result{
		OriginalQuery: message,
		Status:        StatusCompleted,
	}

	// Language detection. Failure is non-fatal: the text is carried
	// through untranslated with a diagnostic note.
	detected, err := b.classifier.DetectLanguage(ctx, message)
	if err != nil {
		b.logger.Warn("language detection failed", "session", sessionID, "error", err)
		res.DetectedLanguage = LanguageUnknown
		res.QueryEnglish = message
		res.TranslationNote = NoteDetectorError
	} else {
		res.DetectedLanguage = detected.Label
		res.LanguageConfidence = detected.Confidence

		tr := b.translator.Translate(ctx, message, detected.Label, "en")
		res.QueryEnglish = tr.Text
		res.TranslationNote = tr.Note
	}

	history := session.Window().Exchanges()
	turns := historyTurns(history)

	// Intent gate and extraction run concurrently; the gate is
	// resolved first, and its verdict decides whether the extraction
	// result is consumed at all.
	var (
		intent   inference.Prediction
		entities extract.Entities
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := b.classifier.ClassifyIntent(gctx, res.QueryEnglish)
		if err != nil {
			// Fail open: without a classifier verdict the request
			// proceeds and the fashion veto can still reject it.
			b.logger.Warn("intent classification failed", "session", sessionID, "error", err)
			p = inference.Prediction{Label: inference.IntentInContext}
		}
		intent = p
		return nil
	})
	g.Go(func() error {
		entities = b.extractor.Extract(gctx, res.QueryEnglish, turns)
		return nil
	})
	_ = g.Wait() // goroutines handle their own failures

	res.Intent = intent.Label
	res.IntentConfidence = intent.Confidence

	if intent.Label == inference.IntentOutOfContext {
		return b.reject(ctx, sessionID, res, ReasonOutOfContext)
	}
	if entities.IsFashionQuery != nil && !*entities.IsFashionQuery {
		return b.reject(ctx, sessionID, res, ReasonNotFashion)
	}

	// Entity resolution: structured entities when the extractor
	// produced any, otherwise the rule-based rewrite.
	var (
		filters   *search.Filters
		sortBy    search.SortMode
		exchanged *extract.Entities
	)
	if entities.HasAttributes() {
		merged := entities.Merge(lastEntities(history))
		if q := merged.ComposeQuery(); q != "" {
			res.ResolvedQuery = q
		} else {
			res.ResolvedQuery = res.QueryEnglish
		}
		filters = merged.Filters()
		sortBy = search.ParseSortMode(merged.SortBy)
		exchanged = &merged
	} else {
		res.ResolvedQuery, res.EnrichmentRule = enrich.Rewrite(res.QueryEnglish, history)
		sortBy = search.ParseSortMode("")
	}

	res.Products = b.engine.Search(res.ResolvedQuery, filters, b.maxResults, sortBy)

	followUp := len(history) > 0
	res.Response = b.responder.Generate(ctx, res.Products, res.DetectedLanguage, res.ResolvedQuery, followUp)

	// A cancelled request must not leave a partial exchange behind.
	if err := ctx.Err(); err != nil {
		return res, err
	}

	session.Window().Append(conversation.Exchange{
		Original:     message,
		QueryEnglish: res.ResolvedQuery,
		Entities:     exchanged,
		Response:     res.Response,
		ProductNames: topNames(res.Products, 3),
		Language:     res.DetectedLanguage,
	})

	b.record(sessionID, res)
	return res, nil
}

func (b *Bot) reject(ctx context.Context, sessionID string, res Result, reason string) (Result, error) {
	res.Status = StatusRejected
	res.Reason = reason
	res.Response = b.responder.Refuse(ctx, res.DetectedLanguage)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	b.record(sessionID, res)
	return res, nil
}

// record writes the audit entry. Best-effort: a storage error never
// fails the request.
func (b *Bot) record(sessionID string, res Result) {
	if b.audit == nil {
		return
	}
	err := b.audit.SaveInteraction(storage.Interaction{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now(),
		SessionID:        sessionID,
		OriginalQuery:    res.OriginalQuery,
		QueryEnglish:     res.QueryEnglish,
		DetectedLanguage: res.DetectedLanguage,
		Intent:           res.Intent,
		Status:           res.Status,
		Reason:           res.Reason,
		ProductCount:     len(res.Products),
	})
	if err != nil {
		b.logger.Warn("recording interaction failed", "session", sessionID, "error", err)
	}
}

func historyTurns(history []conversation.Exchange) []extract.Turn {
	turns := make([]extract.Turn, 0, len(history))
	for _, ex := range history {
		turns = append(turns, extract.Turn{User: ex.QueryEnglish, Entities: ex.Entities})
	}
	return turns
}

func lastEntities(history []conversation.Exchange) *extract.Entities {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Entities != nil {
			return history[i].Entities
		}
	}
	return nil
}

func topNames(products []search.Result, n int) []string {
	names := make([]string, 0, n)
	for i, p := range products {
		if i >= n {
			break
		}
		names = append(names, p.Name)
	}
	return names
}
