package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/domain"
)

func TestReassemblerAppend(t *testing.T) {
	r := domain.NewReassembler()

	r.Append(domain.ChoiceDelta{Index: 0, Text: "Hel"})
	r.Append(domain.ChoiceDelta{Index: 0, Text: "lo"})

	require.Equal(t, "Hello", r.Text(0))
}

func TestReassemblerInterleavedChoices(t *testing.T) {
	r := domain.NewReassembler()

	r.Append(domain.ChoiceDelta{Index: 1, Text: "sec"})
	r.Append(domain.ChoiceDelta{Index: 0, Text: "fir"})
	r.Append(domain.ChoiceDelta{Index: 1, Text: "ond"})
	r.Append(domain.ChoiceDelta{Index: 0, Text: "st"})

	require.Equal(t, "first", r.Text(0))
	require.Equal(t, "second", r.Text(1))
	require.Equal(t, []string{"first", "second"}, r.Texts())
}

func TestReassemblerTextUnknownIndex(t *testing.T) {
	r := domain.NewReassembler()
	require.Empty(t, r.Text(7))
}

func TestReassemblerFinalizeAuthoritative(t *testing.T) {
	r := domain.NewReassembler()
	r.Append(domain.ChoiceDelta{Index: 0, Text: "four words of text"})
	r.ObserveUsage(&domain.TokenUsage{PromptTokens: 12, CompletionTokens: 7})

	sample := r.Finalize("what is the answer", 0)

	require.False(t, sample.Estimated)
	require.Equal(t, 12, sample.PromptTokens)
	require.Equal(t, 7, sample.CompletionTokens)
}

func TestReassemblerLastUsageWins(t *testing.T) {
	r := domain.NewReassembler()
	r.ObserveUsage(&domain.TokenUsage{PromptTokens: 1, CompletionTokens: 1})
	r.ObserveUsage(&domain.TokenUsage{PromptTokens: 9, CompletionTokens: 4})

	sample := r.Finalize("", 0)

	require.False(t, sample.Estimated)
	require.Equal(t, 9, sample.PromptTokens)
	require.Equal(t, 4, sample.CompletionTokens)
}

func TestReassemblerFinalizeEstimated(t *testing.T) {
	tests := []struct {
		name           string
		texts          map[int]string
		renderedPrompt string
		probeTokens    int
		wantPrompt     int
		wantCompletion int
	}{
		{
			name:           "whitespace fallback for both sides",
			texts:          map[int]string{0: "the answer is four"},
			renderedPrompt: "what is two plus two",
			wantPrompt:     5,
			wantCompletion: 4,
		},
		{
			name:           "probe count overrides prompt splitting",
			texts:          map[int]string{0: "hi there"},
			renderedPrompt: "a much longer prompt than the probe reported",
			probeTokens:    3,
			wantPrompt:     3,
			wantCompletion: 2,
		},
		{
			name:           "multiple choices all counted",
			texts:          map[int]string{0: "one two", 1: "three four five"},
			renderedPrompt: "prompt",
			wantPrompt:     1,
			wantCompletion: 5,
		},
		{
			name:           "empty stream",
			texts:          map[int]string{},
			renderedPrompt: "",
			wantPrompt:     0,
			wantCompletion: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.NewReassembler()
			for index, text := range tt.texts {
				r.Append(domain.ChoiceDelta{Index: index, Text: text})
			}

			sample := r.Finalize(tt.renderedPrompt, tt.probeTokens)

			require.True(t, sample.Estimated)
			require.Equal(t, tt.wantPrompt, sample.PromptTokens)
			require.Equal(t, tt.wantCompletion, sample.CompletionTokens)
		})
	}
}

func TestReassemblerObserveUsageCopies(t *testing.T) {
	r := domain.NewReassembler()

	usage := &domain.TokenUsage{PromptTokens: 5, CompletionTokens: 2}
	r.ObserveUsage(usage)
	usage.PromptTokens = 999

	sample := r.Finalize("", 0)
	require.Equal(t, 5, sample.PromptTokens)
}

func TestReassemblerObserveUsageNil(t *testing.T) {
	r := domain.NewReassembler()
	r.ObserveUsage(nil)

	sample := r.Finalize("one two", 0)
	require.True(t, sample.Estimated)
	require.Equal(t, 2, sample.PromptTokens)
}
