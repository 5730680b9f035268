package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"traffic-care-service/internal/model"
)

var sample = []model.ViolationRecord{{
	PlateNumber: "30G-460.44",
	Time:        "21:15, 05/02/2025",
	Behavior:    "Speeding",
	Status:      model.ViolationStatusUnresolved,
}}

func TestSummarizeEmptyList(t *testing.T) {
	s := New(Config{APIKey: "k", Model: "m"}, zerolog.Nop())
	assert.Equal(t, NoViolationsText, s.Summarize(context.Background(), nil))
}

func TestSummarizeWithoutKeyFallsBack(t *testing.T) {
	s := New(Config{}, zerolog.Nop())
	assert.Equal(t, FallbackText, s.Summarize(context.Background(), sample))
}

func TestSummarizeReturnsModelText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "30G-460.44")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" Pay the fine "},{"text":"at Ha Dong."}]}}]}`))
	}))
	defer server.Close()

	s := New(Config{APIKey: "secret", Model: "test-model", BaseURL: server.URL, Timeout: time.Second}, zerolog.Nop())
	assert.Equal(t, "Pay the fine at Ha Dong.", s.Summarize(context.Background(), sample))
}

func TestSummarizeAPIErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := New(Config{APIKey: "secret", Model: "m", BaseURL: server.URL}, zerolog.Nop())
	assert.Equal(t, FallbackText, s.Summarize(context.Background(), sample))
}

func TestSummarizeEmptyCandidatesFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	s := New(Config{APIKey: "secret", Model: "m", BaseURL: server.URL}, zerolog.Nop())
	assert.Equal(t, FallbackText, s.Summarize(context.Background(), sample))
}
