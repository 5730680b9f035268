// Package summary produces a short, human-readable digest of a vehicle's
// violations using a hosted language model. It is best effort: every failure
// degrades to a fixed fallback text.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"traffic-care-service/internal/model"
)

const (
	NoViolationsText = "There are no violations to summarize."
	FallbackText     = "Violation summary is unavailable right now."

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	systemPrompt   = "You are an expert in Vietnamese traffic law. Summarize the violations briefly and politely and give concrete instructions for paying the fines."
)

type Summarizer interface {
	Summarize(ctx context.Context, violations []model.ViolationRecord) string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type geminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	log        zerolog.Logger
}

// New returns a Gemini-backed summarizer, or a static one when no API key is
// configured.
func New(cfg Config, log zerolog.Logger) Summarizer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return staticSummarizer{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &geminiClient{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		log:        log,
	}
}

func (c *geminiClient) Summarize(ctx context.Context, violations []model.ViolationRecord) string {
	if len(violations) == 0 {
		return NoViolationsText
	}
	text, err := c.generate(ctx, violations)
	if err != nil {
		c.log.Warn().Err(err).Int("violations", len(violations)).Msg("violation summary failed")
		return FallbackText
	}
	return text
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) generate(ctx context.Context, violations []model.ViolationRecord) (string, error) {
	payload, err := json.Marshal(violations)
	if err != nil {
		return "", fmt.Errorf("marshal violations: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: "Summarize the following traffic violations and advise the owner: " + string(payload)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty summary")
	}
	return text, nil
}

type staticSummarizer struct{}

func (staticSummarizer) Summarize(_ context.Context, violations []model.ViolationRecord) string {
	if len(violations) == 0 {
		return NoViolationsText
	}
	return FallbackText
}
