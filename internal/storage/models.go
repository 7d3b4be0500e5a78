package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one processed chat request, recorded for diagnostics.
type Interaction struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	SessionID        string    `json:"session_id"`
	OriginalQuery    string    `json:"original_query"`
	QueryEnglish     string    `json:"query_english"`
	DetectedLanguage string    `json:"detected_language"`
	Intent           string    `json:"intent"`
	Status           string    `json:"status"` // "completed" or "rejected"
	Reason           string    `json:"reason,omitempty"`
	ProductCount     int       `json:"product_count"`
}
