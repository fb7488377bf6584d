package domain

import "strings"

const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minTopP        = 0.0
	maxTopP        = 1.0
)

// ValidateRequest checks every request field against its allowed range.
// Each rule is independent and checked before any network call. The zero
// value of a sampling field means "unset" and is omitted at the transport.
func ValidateRequest(req *Request) error {
	if req == nil {
		return &InvalidParameterError{Param: "request", Reason: "cannot be nil"}
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return &InvalidParameterError{Param: "prompt", Reason: "cannot be empty"}
	}

	if req.Temperature < minTemperature || req.Temperature > maxTemperature {
		return &InvalidParameterError{Param: "temperature", Reason: "must be between 0 and 2"}
	}

	if req.TopP < minTopP || req.TopP > maxTopP {
		return &InvalidParameterError{Param: "top_p", Reason: "must be between 0 and 1"}
	}

	if req.N < 0 {
		return &InvalidParameterError{Param: "n", Reason: "must be >= 1"}
	}

	if req.MaxTokens < 0 {
		return &InvalidParameterError{Param: "max_tokens", Reason: "must be >= 1"}
	}

	return nil
}

// NormalizeRequest validates req and produces the parameter set dispatched
// to the transport: the system instruction becomes the leading message,
// a zero completion count becomes 1 and a zero max token budget falls back
// to the supplied default. Pure function, no side effects.
func NormalizeRequest(req *Request, model string, defaultMaxTokens int) (*Params, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, 2)
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	n := req.N
	if n == 0 {
		n = 1
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &Params{
		Model:            model,
		Messages:         messages,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		N:                n,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Stop:             req.Stop,
		MaxTokens:        maxTokens,
		ResponseFormat:   req.ResponseFormat,
		Seed:             req.Seed,
		Tools:            req.Tools,
		ToolChoice:       req.ToolChoice,
		LogitBias:        req.LogitBias,
		User:             req.User,
	}, nil
}
