package domain

import "encoding/json"

// Request represents a single completion request. A Request is a value
// object: it is constructed fresh per call and never mutated by the client.
type Request struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`

	Temperature      float64  `json:"temperature,omitempty"`
	TopP             float64  `json:"top_p,omitempty"`
	N                int      `json:"n,omitempty"`
	FrequencyPenalty float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`

	// Structured extras, passed through to the transport opaquely.
	ResponseFormat *ResponseFormat  `json:"response_format,omitempty"`
	Seed           *int64           `json:"seed,omitempty"`
	Tools          json.RawMessage  `json:"tools,omitempty"`
	ToolChoice     json.RawMessage  `json:"tool_choice,omitempty"`
	LogitBias      map[string]int64 `json:"logit_bias,omitempty"`
	User           string           `json:"user,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ResponseFormat hints the structural shape of the completion.
type ResponseFormat struct {
	Type   string          `json:"type"` // "json_object" or "json_schema"
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// Params is the validated, normalized parameter set produced by
// ValidateRequest and dispatched to the transport. The system instruction
// has been merged as a leading message and defaults have been resolved.
type Params struct {
	Model            string
	Messages         []Message
	Temperature      float64
	TopP             float64
	N                int
	FrequencyPenalty float64
	PresencePenalty  float64
	Stop             []string
	MaxTokens        int
	ResponseFormat   *ResponseFormat
	Seed             *int64
	Tools            json.RawMessage
	ToolChoice       json.RawMessage
	LogitBias        map[string]int64
	User             string
}

// ChoiceDelta is a single text increment for one choice index.
type ChoiceDelta struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Fragment is one incremental unit emitted by a transport during streaming.
// Fragments arrive in strict emission order; a fragment may carry deltas,
// a usage summary, both, or an error terminating the stream.
type Fragment struct {
	Deltas []ChoiceDelta
	Usage  *TokenUsage
	Err    error
}

// TokenUsage holds token counts for one request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// UsageSample is a single recorded usage observation. Estimated marks
// counts derived by whitespace approximation rather than reported by the
// transport.
type UsageSample struct {
	TokenUsage
	Estimated bool `json:"estimated"`
}

// UsageSnapshot is an immutable copy of the ledger totals. TotalTokens is
// derived on read and never stored.
type UsageSnapshot struct {
	PromptTokens      int     `json:"prompt_tokens"`
	CompletionTokens  int     `json:"completion_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	TotalCost         float64 `json:"total_cost"`
	Requests          int     `json:"requests"`
	EstimatedRequests int     `json:"estimated_requests"`
}

// PricingTable maps token categories to USD cost per 1K tokens. It is
// immutable and supplied at client construction.
type PricingTable struct {
	PromptPerK     float64 `json:"price_per_1k_prompt"`
	CompletionPerK float64 `json:"price_per_1k_completion"`
}

// Completion is a full non-streaming transport response.
type Completion struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Content string     `json:"content"`
	Usage   TokenUsage `json:"usage"`
}

// StreamChunk is a single text increment yielded to the caller of Stream.
// A chunk with Err set is always the last one delivered.
type StreamChunk struct {
	Index int    `json:"index"`
	Delta string `json:"delta"`
	Err   error  `json:"-"`
}
