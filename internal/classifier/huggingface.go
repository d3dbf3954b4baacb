package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HuggingFaceAnalyzer calls a hosted text-classification model that labels
// input as LABEL_0 (negative), LABEL_1 (neutral) or LABEL_2 (positive).
type HuggingFaceAnalyzer struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHuggingFaceAnalyzer(endpoint, token string, client *http.Client) *HuggingFaceAnalyzer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HuggingFaceAnalyzer{
		endpoint: endpoint,
		token:    token,
		client:   client,
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analyze submits text and returns the highest scoring label.
func (a *HuggingFaceAnalyzer) Analyze(ctx context.Context, text string) (Sentiment, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sentiment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sentiment service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	results, err := decodeLabelScores(raw)
	if err != nil {
		return "", err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}

	return sentimentFromLabel(best.Label)
}

// decodeLabelScores accepts [[{...}]], [{...}] or a single {...}.
func decodeLabelScores(raw []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var single labelScore
	if err := json.Unmarshal(raw, &single); err == nil && single.Label != "" {
		return []labelScore{single}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(string(raw), 200))
}

func sentimentFromLabel(label string) (Sentiment, error) {
	switch strings.ToUpper(label) {
	case "LABEL_0", "NEGATIVE":
		return SentimentNegative, nil
	case "LABEL_1", "NEUTRAL":
		return SentimentNeutral, nil
	case "LABEL_2", "POSITIVE":
		return SentimentPositive, nil
	}
	return "", fmt.Errorf("%w: unknown label %q", ErrMalformedResponse, label)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
