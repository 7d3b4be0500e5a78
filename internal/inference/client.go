// Package inference talks to the model-server sidecar that hosts the
// trained language-identification and intent-classification
// checkpoints over HTTP.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const predictTimeout = 5 * time.Second

// Prediction is one classifier result.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Intent labels returned by the intent classifier.
const (
	IntentInContext    = "in_context"
	IntentOutOfContext = "out_of_context"
)

// Client communicates with the model server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given model-server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

// DetectLanguage classifies the language of text, returning a code
// (en, fr, ar, tn_latn) and a confidence in [0,1]. Errors surface to
// the caller; the pipeline decides how to degrade.
func (c *Client) DetectLanguage(ctx context.Context, text string) (Prediction, error) {
	return c.predict(ctx, "/predict/language", text)
}

// ClassifyIntent classifies text as in_context or out_of_context.
func (c *Client) ClassifyIntent(ctx context.Context, text string) (Prediction, error) {
	return c.predict(ctx, "/predict/intent", text)
}

func (c *Client) predict(ctx context.Context, path, text string) (Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, predictTimeout)
	defer cancel()

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return Prediction{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	var p Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Prediction{}, fmt.Errorf("decoding prediction: %w", err)
	}
	if p.Label == "" {
		return Prediction{}, fmt.Errorf("empty label in prediction from %s", path)
	}
	return p, nil
}

// IsRunning returns true if the model server responds to GET /health
// with 200.
func (c *Client) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
