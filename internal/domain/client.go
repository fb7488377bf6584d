package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxTokens is the fallback output budget when a request carries none.
const DefaultMaxTokens = 1000

// ClientConfig holds everything a Client needs at construction. Logging is
// an explicit dependency here, not ambient process state, so the client can
// be exercised in isolation.
type ClientConfig struct {
	Model            string
	DefaultMaxTokens int
	Pricing          PricingTable
	Logger           *zap.Logger
	Events           EventPublisher
}

// Client is the completion facade: it validates requests, drives the
// transport, reassembles the streamed fragments and accounts usage into its
// ledger exactly once per completed request.
type Client struct {
	transport        Transport
	model            string
	defaultMaxTokens int
	ledger           *Ledger
	logger           *zap.Logger
	events           EventPublisher
}

// NewClient creates a completion client over the given transport.
func NewClient(transport Transport, cfg ClientConfig) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if cfg.Model == "" {
		return nil, errors.New("model cannot be empty")
	}

	maxTokens := cfg.DefaultMaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		transport:        transport,
		model:            cfg.Model,
		defaultMaxTokens: maxTokens,
		ledger:           NewLedger(cfg.Pricing),
		logger:           logger,
		events:           cfg.Events,
	}, nil
}

// Stream validates the request, opens a streaming call against the
// transport and returns the text increments as they arrive. The returned
// channel is unbuffered: production suspends until the caller consumes.
//
// Failure modes: an InvalidParameterError is returned before any network
// activity; a TransportError is returned synchronously when the call cannot
// be opened, or delivered as the final chunk after any partial increments
// when the stream fails mid-flight. Partial output already delivered is not
// retracted. The ledger is updated exactly once, before the channel closes,
// and only for streams that complete; abandoned or errored streams record
// nothing.
func (c *Client) Stream(ctx context.Context, req *Request) (<-chan StreamChunk, error) {
	params, err := NormalizeRequest(req, c.model, c.defaultMaxTokens)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("starting stream",
		zap.String("model", params.Model),
		zap.Int("prompt_length", len(req.Prompt)),
		zap.Int("max_tokens", params.MaxTokens),
		zap.Float64("temperature", params.Temperature),
	)

	// Transports that cannot report usage mid-stream get a non-streaming
	// probe first, so the prompt token count has a better source than
	// whitespace splitting.
	probeTokens := 0
	if !c.transport.ReportsUsage() {
		probe, probeErr := c.transport.Complete(ctx, params)
		if probeErr != nil {
			return nil, &TransportError{Transport: c.transport.Name(), Err: probeErr}
		}
		probeTokens = probe.Usage.PromptTokens
	}

	fragments, err := c.transport.Stream(ctx, params)
	if err != nil {
		return nil, &TransportError{Transport: c.transport.Name(), Err: err}
	}

	out := make(chan StreamChunk)
	go c.forward(ctx, params, fragments, probeTokens, out)
	return out, nil
}

// forward drives the reassembler over the fragment sequence and yields
// increments to the caller in arrival order.
func (c *Client) forward(
	ctx context.Context,
	params *Params,
	fragments <-chan Fragment,
	probeTokens int,
	out chan<- StreamChunk,
) {
	defer close(out)

	assembler := NewReassembler()

	for fragment := range fragments {
		if fragment.Err != nil {
			c.logger.Error("stream failed mid-flight", zap.Error(fragment.Err))
			terr := &TransportError{Transport: c.transport.Name(), Err: fragment.Err}
			select {
			case out <- StreamChunk{Err: terr}:
			case <-ctx.Done():
			}
			return
		}

		for _, delta := range fragment.Deltas {
			assembler.Append(delta)
			select {
			case out <- StreamChunk{Index: delta.Index, Delta: delta.Text}:
			case <-ctx.Done():
				// Caller abandoned consumption: release without recording.
				return
			}
		}

		if fragment.Usage != nil {
			assembler.ObserveUsage(fragment.Usage)
		}
	}

	if ctx.Err() != nil {
		return
	}

	sample := assembler.Finalize(renderPrompt(params.Messages), probeTokens)
	c.ledger.Record(sample)

	c.logger.Debug("stream complete",
		zap.Int("prompt_tokens", sample.PromptTokens),
		zap.Int("completion_tokens", sample.CompletionTokens),
		zap.Bool("estimated", sample.Estimated),
	)

	if c.events != nil {
		c.events.Publish(ctx, "completion.stream.finished", map[string]interface{}{
			"model":             params.Model,
			"prompt_tokens":     sample.PromptTokens,
			"completion_tokens": sample.CompletionTokens,
			"estimated":         sample.Estimated,
		})
	}
}

// Extract asks the transport for a single response constrained to the given
// structural shape and decodes the payload into out. Usage is not tracked
// for this call: the accounting path is deliberately asymmetric with Stream.
func (c *Client) Extract(ctx context.Context, prompt string, format *ResponseFormat, out interface{}) error {
	req := &Request{Prompt: prompt, ResponseFormat: format}
	params, err := NormalizeRequest(req, c.model, c.defaultMaxTokens)
	if err != nil {
		return err
	}

	resp, err := c.transport.Complete(ctx, params)
	if err != nil {
		return &TransportError{Transport: c.transport.Name(), Err: err}
	}

	if unmarshalErr := json.Unmarshal([]byte(resp.Content), out); unmarshalErr != nil {
		return &TransportError{Transport: c.transport.Name(), Err: unmarshalErr}
	}

	return nil
}

// UsageStats returns a read-only copy of the lifetime usage totals.
func (c *Client) UsageStats() UsageSnapshot {
	return c.ledger.Snapshot()
}

// Model returns the model every request is dispatched with.
func (c *Client) Model() string {
	return c.model
}

// TransportName returns the name of the underlying transport.
func (c *Client) TransportName() string {
	return c.transport.Name()
}

// renderPrompt flattens the message contents for the estimation fallback.
func renderPrompt(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, " ")
}
