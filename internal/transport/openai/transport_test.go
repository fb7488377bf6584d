package openai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/transport/openai"
)

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name        string
		config      openai.Config
		expectError bool
	}{
		{
			name:        "valid config",
			config:      openai.Config{APIKey: "test-key"},
			expectError: false,
		},
		{
			name: "full config",
			config: openai.Config{
				APIKey:     "test-key",
				BaseURL:    "https://example.com/v1",
				Timeout:    30,
				MaxRetries: 5,
			},
			expectError: false,
		},
		{
			name:        "missing API key",
			config:      openai.Config{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := openai.NewTransport(tt.config)

			if tt.expectError {
				require.Error(t, err)
				require.Nil(t, transport)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, transport)
		})
	}
}

func TestTransportName(t *testing.T) {
	transport, err := openai.NewTransport(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)
	require.Equal(t, "openai", transport.Name())
}

func TestTransportReportsUsage(t *testing.T) {
	transport, err := openai.NewTransport(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)
	require.True(t, transport.ReportsUsage())
}

func TestCompleteNilParams(t *testing.T) {
	transport, err := openai.NewTransport(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = transport.Complete(context.Background(), nil)
	require.Error(t, err)
}

func TestStreamNilParams(t *testing.T) {
	transport, err := openai.NewTransport(openai.Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = transport.Stream(context.Background(), nil)
	require.Error(t, err)
}

func TestPricingFor(t *testing.T) {
	tests := []struct {
		name               string
		model              string
		wantPromptPerK     float64
		wantCompletionPerK float64
	}{
		{
			name:               "gpt-4",
			model:              "gpt-4",
			wantPromptPerK:     0.03,
			wantCompletionPerK: 0.06,
		},
		{
			name:               "gpt-4-turbo",
			model:              "gpt-4-turbo",
			wantPromptPerK:     0.01,
			wantCompletionPerK: 0.03,
		},
		{
			name:               "gpt-3.5-turbo",
			model:              "gpt-3.5-turbo",
			wantPromptPerK:     0.0005,
			wantCompletionPerK: 0.0015,
		},
		{
			name:  "unknown model gets zero table",
			model: "totally-unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := openai.PricingFor(tt.model)
			require.InDelta(t, tt.wantPromptPerK, table.PromptPerK, 1e-9)
			require.InDelta(t, tt.wantCompletionPerK, table.CompletionPerK, 1e-9)
		})
	}
}
