// Package openai provides a completion transport backed by the official
// OpenAI SDK. It converts the validated domain parameter set into SDK
// parameters, streams chunks back as domain fragments and surfaces the
// usage summary the API reports with every stream.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/davidbz/howl/internal/domain"
)

const transportName = "openai"

// Transport implements the domain.Transport interface for OpenAI.
type Transport struct {
	client openai.Client
	name   string
}

// NewTransport creates a new OpenAI transport.
func NewTransport(config Config) (*Transport, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Transport{
		client: openai.NewClient(opts...),
		name:   transportName,
	}, nil
}

// Complete sends a non-streaming completion request.
func (t *Transport) Complete(ctx context.Context, params *domain.Params) (*domain.Completion, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}

	sdkParams, opts := toSDKParams(params, false)

	resp, err := t.client.Chat.Completions.New(ctx, sdkParams, opts...)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &domain.Completion{
		ID:      resp.ID,
		Model:   string(resp.Model),
		Content: content,
		Usage: domain.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// Stream sends a streaming completion request and returns the fragment
// sequence. The final usage-bearing chunk the API emits (stream_options
// include_usage) becomes a fragment carrying the authoritative counts.
func (t *Transport) Stream(ctx context.Context, params *domain.Params) (<-chan domain.Fragment, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}

	sdkParams, opts := toSDKParams(params, true)
	stream := t.client.Chat.Completions.NewStreaming(ctx, sdkParams, opts...)

	fragments := make(chan domain.Fragment)

	go func() {
		defer close(fragments)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()

			fragment := domain.Fragment{}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				fragment.Deltas = append(fragment.Deltas, domain.ChoiceDelta{
					Index: int(choice.Index),
					Text:  choice.Delta.Content,
				})
			}

			if chunk.JSON.Usage.Valid() {
				fragment.Usage = &domain.TokenUsage{
					PromptTokens:     int(chunk.Usage.PromptTokens),
					CompletionTokens: int(chunk.Usage.CompletionTokens),
				}
			}

			if len(fragment.Deltas) == 0 && fragment.Usage == nil {
				continue
			}

			select {
			case fragments <- fragment:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			select {
			case fragments <- domain.Fragment{Err: fmt.Errorf("OpenAI stream error: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return fragments, nil
}

// ReportsUsage reports that streamed fragments carry authoritative counts.
func (t *Transport) ReportsUsage() bool {
	return true
}

// Name returns the transport identifier.
func (t *Transport) Name() string {
	return t.name
}

// toSDKParams converts the domain parameter set to SDK ChatCompletionNewParams.
// Opaque extras (tools, tool choice) are injected into the request body as
// raw JSON so their shape never crosses the domain boundary.
func toSDKParams(params *domain.Params, streaming bool) (openai.ChatCompletionNewParams, []option.RequestOption) {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(params.Messages))
	for i, msg := range params.Messages {
		switch msg.Role {
		case "user":
			messages[i] = openai.UserMessage(msg.Content)
		case "assistant":
			messages[i] = openai.AssistantMessage(msg.Content)
		case "system":
			messages[i] = openai.SystemMessage(msg.Content)
		default:
			// Fallback to user message if role is unknown
			messages[i] = openai.UserMessage(msg.Content)
		}
	}

	sdkParams := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(params.Model),
		Messages: messages,
	}

	if params.Temperature > 0 {
		sdkParams.Temperature = openai.Float(params.Temperature)
	}

	if params.TopP > 0 {
		sdkParams.TopP = openai.Float(params.TopP)
	}

	if params.N > 1 {
		sdkParams.N = openai.Int(int64(params.N))
	}

	if params.FrequencyPenalty != 0 {
		sdkParams.FrequencyPenalty = openai.Float(params.FrequencyPenalty)
	}

	if params.PresencePenalty != 0 {
		sdkParams.PresencePenalty = openai.Float(params.PresencePenalty)
	}

	if params.MaxTokens > 0 {
		sdkParams.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	if len(params.Stop) > 0 {
		sdkParams.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: params.Stop,
		}
	}

	if len(params.LogitBias) > 0 {
		sdkParams.LogitBias = params.LogitBias
	}

	if params.User != "" {
		sdkParams.User = openai.String(params.User)
	}

	if params.Seed != nil {
		sdkParams.Seed = openai.Int(*params.Seed)
	}

	if params.ResponseFormat != nil {
		sdkParams.ResponseFormat = toResponseFormat(params.ResponseFormat)
	}

	if streaming {
		sdkParams.StreamOptions = openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		}
	}

	var opts []option.RequestOption
	if len(params.Tools) > 0 {
		opts = append(opts, option.WithJSONSet("tools", params.Tools))
	}
	if len(params.ToolChoice) > 0 {
		opts = append(opts, option.WithJSONSet("tool_choice", params.ToolChoice))
	}

	return sdkParams, opts
}

// toResponseFormat maps the domain format hint to the SDK union.
func toResponseFormat(format *domain.ResponseFormat) openai.ChatCompletionNewParamsResponseFormatUnion {
	if format.Type == "json_schema" {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   format.Name,
					Schema: format.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
}
