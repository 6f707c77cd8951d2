package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"outdial-platform/internal/calls"
)

// HTTPSummarizer produces post-call analysis from a finished transcript by
// calling an LLM summary service over JSON. It satisfies calls.Analyzer.
//
// A slow or failing vendor must never block call finalization, so the engine
// runs this off the hot path with a bounded timeout.
type HTTPSummarizer struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

func NewHTTPSummarizer(endpoint, apiKey string) *HTTPSummarizer {
	return &HTTPSummarizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *HTTPSummarizer) Summarize(ctx context.Context, callID string, transcript []calls.TranscriptEntry) (calls.Analysis, error) {
	payload := struct {
		CallID     string                  `json:"call_id"`
		Transcript []calls.TranscriptEntry `json:"transcript"`
	}{CallID: callID, Transcript: transcript}

	raw, err := json.Marshal(payload)
	if err != nil {
		return calls.Analysis{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return calls.Analysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return calls.Analysis{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return calls.Analysis{}, fmt.Errorf("speech: summary service returned %d", resp.StatusCode)
	}

	var out calls.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return calls.Analysis{}, fmt.Errorf("speech: malformed summary response: %w", err)
	}
	return out, nil
}
