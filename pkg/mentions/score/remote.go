package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Remote scores windows with a model served over HTTP. Each call posts
// {"tokens": [...]} and expects {"score": x}, or {"error": {"message": ...}}.
type Remote struct {
	URL    string
	APIKey string

	HTTPClient *http.Client
}

type remoteRequest struct {
	Tokens []string `json:"tokens"`
}

type remoteResponse struct {
	Score *float64 `json:"score"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Score implements Scorer.
func (r *Remote) Score(ctx context.Context, tokens []string) (float64, error) {
	if r.URL == "" {
		return 0, Error(fmt.Errorf("remote: url required"))
	}
	if tokens == nil {
		tokens = []string{}
	}
	body, err := json.Marshal(remoteRequest{Tokens: tokens})
	if err != nil {
		return 0, Error(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return 0, Error(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return 0, Error(err)
	}
	defer resp.Body.Close()

	var payload remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, Error(fmt.Errorf("remote: decode response (status %d): %w", resp.StatusCode, err))
	}
	if payload.Error != nil {
		return 0, Error(fmt.Errorf("remote: %s", payload.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return 0, Error(fmt.Errorf("remote: status %d", resp.StatusCode))
	}
	if payload.Score == nil {
		return 0, Error(fmt.Errorf("remote: response has no score"))
	}
	return *payload.Score, nil
}

// defaultHTTPClient is shared by every Remote without its own client, so
// connections to the model server are pooled across calls and batches.
var defaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

func (r *Remote) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return defaultHTTPClient
}
