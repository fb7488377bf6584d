package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/domain"
	howlhttp "github.com/davidbz/howl/internal/http"
)

// stubTransport is a canned-response Transport for handler tests.
type stubTransport struct {
	content   string
	fragments []domain.Fragment
}

func (s *stubTransport) Complete(_ context.Context, params *domain.Params) (*domain.Completion, error) {
	return &domain.Completion{
		ID:      "stub-id",
		Model:   params.Model,
		Content: s.content,
		Usage:   domain.TokenUsage{PromptTokens: 2, CompletionTokens: 2},
	}, nil
}

func (s *stubTransport) Stream(ctx context.Context, _ *domain.Params) (<-chan domain.Fragment, error) {
	ch := make(chan domain.Fragment)
	go func() {
		defer close(ch)
		for _, fragment := range s.fragments {
			select {
			case ch <- fragment:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s *stubTransport) ReportsUsage() bool { return true }
func (s *stubTransport) Name() string       { return "stub" }

func newTestHandler(t *testing.T, transport domain.Transport) *howlhttp.Handler {
	t.Helper()
	client, err := domain.NewClient(transport, domain.ClientConfig{
		Model:   "gpt-4",
		Pricing: domain.PricingTable{PromptPerK: 0.03, CompletionPerK: 0.06},
	})
	require.NoError(t, err)
	return howlhttp.NewHandler(client)
}

func TestHandleStream(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{
		fragments: []domain.Fragment{
			{Deltas: []domain.ChoiceDelta{{Index: 0, Text: "Hel"}}},
			{Deltas: []domain.ChoiceDelta{{Index: 0, Text: "lo"}}},
			{Usage: &domain.TokenUsage{PromptTokens: 3, CompletionTokens: 2}},
		},
	})

	body := `{"prompt": "greet me"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleStream(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	require.Contains(t, out, `"delta":"Hel"`)
	require.Contains(t, out, `"delta":"lo"`)
	require.Contains(t, out, "event: done")
}

func TestHandleStreamInvalidParameter(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{})

	body := `{"prompt": "hello", "temperature": 3.5}`
	req := httptest.NewRequest(http.MethodPost, "/v1/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleStream(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "temperature")
}

func TestHandleStreamMalformedBody(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{})

	req := httptest.NewRequest(http.MethodPost, "/v1/stream", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.HandleStream(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStreamMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stream", nil)
	rec := httptest.NewRecorder()

	handler.HandleStream(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleExtract(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{
		content: `{"city": "Berlin"}`,
	})

	body := `{"prompt": "where?", "response_format": {"type": "json_object"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleExtract(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Berlin", payload["city"])
}

func TestHandleExtractEmptyPrompt(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{content: "{}"})

	body := `{"prompt": "  "}`
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleExtract(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUsage(t *testing.T) {
	transport := &stubTransport{
		fragments: []domain.Fragment{
			{Deltas: []domain.ChoiceDelta{{Index: 0, Text: "hi"}}},
			{Usage: &domain.TokenUsage{PromptTokens: 1000, CompletionTokens: 500}},
		},
	}
	handler := newTestHandler(t, transport)

	// Run one stream to completion so the ledger has something to report.
	streamReq := httptest.NewRequest(http.MethodPost, "/v1/stream", strings.NewReader(`{"prompt": "hi"}`))
	handler.HandleStream(httptest.NewRecorder(), streamReq)

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()
	handler.HandleUsage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot domain.UsageSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Equal(t, 1000, snapshot.PromptTokens)
	require.Equal(t, 500, snapshot.CompletionTokens)
	require.Equal(t, 1500, snapshot.TotalTokens)
	require.InDelta(t, 0.06, snapshot.TotalCost, 1e-9)
	require.Equal(t, 1, snapshot.Requests)
}

func TestHandleUsageMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{})

	req := httptest.NewRequest(http.MethodPost, "/v1/usage", nil)
	rec := httptest.NewRecorder()
	handler.HandleUsage(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler(t, &stubTransport{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HandleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "healthy", payload["status"])
}
