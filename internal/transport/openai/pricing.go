package openai

import "github.com/davidbz/howl/internal/domain"

const (
	// GPT-4 pricing per 1K tokens
	gpt4PromptPerK     = 0.03
	gpt4CompletionPerK = 0.06

	// GPT-4 Turbo pricing per 1K tokens
	gpt4TurboPromptPerK     = 0.01
	gpt4TurboCompletionPerK = 0.03

	// GPT-3.5 Turbo pricing per 1K tokens
	gpt35TurboPromptPerK     = 0.0005
	gpt35TurboCompletionPerK = 0.0015
)

// PricingFor returns the default pricing table for a known OpenAI model.
// Unknown models get a zero table, so their streams record zero cost.
func PricingFor(model string) domain.PricingTable {
	tables := map[string]domain.PricingTable{
		"gpt-4": {
			PromptPerK:     gpt4PromptPerK,
			CompletionPerK: gpt4CompletionPerK,
		},
		"gpt-4-turbo": {
			PromptPerK:     gpt4TurboPromptPerK,
			CompletionPerK: gpt4TurboCompletionPerK,
		},
		"gpt-3.5-turbo": {
			PromptPerK:     gpt35TurboPromptPerK,
			CompletionPerK: gpt35TurboCompletionPerK,
		},
	}

	table, exists := tables[model]
	if !exists {
		return domain.PricingTable{}
	}

	return table
}
