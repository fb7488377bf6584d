package domain

import "context"

// Transport represents the remote completion endpoint. Implementations own
// authentication, wire encoding and low-level retry; any failure they report
// is treated as opaque by the client and wrapped as TransportError.
type Transport interface {
	// Complete sends a non-streaming request and returns the full response.
	Complete(ctx context.Context, params *Params) (*Completion, error)

	// Stream sends a streaming request and returns an ordered sequence of
	// fragments. The channel is closed when the stream is exhausted; a
	// fragment with Err set terminates the stream.
	Stream(ctx context.Context, params *Params) (<-chan Fragment, error)

	// ReportsUsage reports whether streamed fragments carry authoritative
	// token counts. When false the client takes a non-streaming probe to
	// obtain a prompt token count before streaming.
	ReportsUsage() bool

	// Name returns the transport identifier.
	Name() string
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
