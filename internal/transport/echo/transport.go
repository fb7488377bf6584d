// Package echo provides a completion transport that echoes the request
// back. It implements the domain.Transport interface without any external
// call, producing deterministic fragments and word-count usage for
// development and tests.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/howl/internal/domain"
)

const (
	transportName = "echo"
	chunkDelay    = 10 * time.Millisecond
)

// Transport implements the domain.Transport interface for echo testing.
type Transport struct {
	name string
}

// NewTransport creates a new echo transport.
// No configuration is required as this transport operates entirely in-memory.
func NewTransport() *Transport {
	return &Transport{
		name: transportName,
	}
}

// Complete returns the echoed request as a full response.
func (t *Transport) Complete(_ context.Context, params *domain.Params) (*domain.Completion, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}

	content := buildEchoContent(params.Messages)
	promptTokens := countTokens(content)

	return &domain.Completion{
		ID:      fmt.Sprintf("echo-%d", time.Now().UnixNano()),
		Model:   params.Model,
		Content: content,
		Usage: domain.TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: promptTokens, // Echo returns same size
		},
	}, nil
}

// Stream echoes the request back one word per fragment, ending with a
// usage-bearing fragment so the echoed usage counts are authoritative.
func (t *Transport) Stream(ctx context.Context, params *domain.Params) (<-chan domain.Fragment, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}

	content := buildEchoContent(params.Messages)
	fragments := make(chan domain.Fragment)

	go func() {
		defer close(fragments)

		words := strings.Fields(content)
		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " " // Add space between words
			}

			fragment := domain.Fragment{
				Deltas: []domain.ChoiceDelta{{Index: 0, Text: delta}},
			}

			select {
			case fragments <- fragment:
				time.Sleep(chunkDelay)
			case <-ctx.Done():
				return
			}
		}

		usage := &domain.TokenUsage{
			PromptTokens:     len(words),
			CompletionTokens: len(words),
		}
		select {
		case fragments <- domain.Fragment{Usage: usage}:
		case <-ctx.Done():
		}
	}()

	return fragments, nil
}

// ReportsUsage reports that the final fragment carries usage counts.
func (t *Transport) ReportsUsage() bool {
	return true
}

// Name returns the transport identifier.
func (t *Transport) Name() string {
	return t.name
}

// buildEchoContent constructs the echo response from request messages.
func buildEchoContent(messages []domain.Message) string {
	if len(messages) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, msg := range messages {
		builder.WriteString(fmt.Sprintf("[%s]: %s\n", msg.Role, msg.Content))
	}
	return builder.String()
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Fields(content))
}
