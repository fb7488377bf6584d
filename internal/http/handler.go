package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/observability"
	"go.uber.org/zap"
)

// Handler handles HTTP requests.
type Handler struct {
	client *domain.Client
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(client *domain.Client) *Handler {
	return &Handler{
		client: client,
	}
}

// extractRequest is the wire shape for structured extraction requests.
type extractRequest struct {
	Prompt         string                 `json:"prompt"`
	ResponseFormat *domain.ResponseFormat `json:"response_format,omitempty"`
}

// HandleStream processes streaming completion requests over SSE.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	// Inject transport and model into context for downstream logging.
	ctx = observability.WithTransport(ctx, h.client.TransportName())
	ctx = observability.WithModel(ctx, h.client.Model())

	logger := observability.FromContext(ctx)
	logger.Info("stream request received",
		zap.Int("prompt_length", len(req.Prompt)),
	)

	chunks, err := h.client.Stream(ctx, &req)
	if err != nil {
		logger.Error("stream failed", zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for chunk := range chunks {
		if chunk.Err != nil {
			logger.Error("stream chunk error", zap.Error(chunk.Err))
			// Send error as event.
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", chunk.Err.Error())
			flusher.Flush()
			return
		}

		// Send chunk as event.
		data, _ := json.Marshal(chunk)
		fmt.Fprintf(w, "data: %s\n\n", string(data))
		flusher.Flush()
	}

	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
	logger.Info("stream completed")
}

// HandleExtract processes structured extraction requests.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx = observability.WithTransport(ctx, h.client.TransportName())
	ctx = observability.WithModel(ctx, h.client.Model())

	logger := observability.FromContext(ctx)
	logger.Info("extract request received",
		zap.Int("prompt_length", len(req.Prompt)),
	)

	var payload json.RawMessage
	if err := h.client.Extract(ctx, req.Prompt, req.ResponseFormat, &payload); err != nil {
		logger.Error("extract failed", zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleUsage returns the lifetime usage totals.
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.client.UsageStats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode usage", zap.Error(err))
		http.Error(w, fmt.Sprintf("failed to encode usage: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var invalidParam *domain.InvalidParameterError
	if errors.As(err, &invalidParam) {
		return http.StatusBadRequest
	}

	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
