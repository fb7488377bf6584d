package domain

import (
	"sort"
	"strings"
)

// Reassembler turns an ordered fragment sequence into per-choice text and a
// final usage sample. It keeps no buffering beyond the current fragment:
// deltas are appended to their choice accumulator and forwarded by the
// caller immediately, in arrival order.
type Reassembler struct {
	choices map[int]*strings.Builder
	usage   *TokenUsage
}

// NewReassembler creates an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{
		choices: make(map[int]*strings.Builder),
	}
}

// Append adds a delta's text to its choice accumulator.
func (r *Reassembler) Append(delta ChoiceDelta) {
	b, ok := r.choices[delta.Index]
	if !ok {
		b = &strings.Builder{}
		r.choices[delta.Index] = b
	}
	b.WriteString(delta.Text)
}

// ObserveUsage captures a usage summary carried by a fragment. Usage may
// appear on any fragment, not necessarily the last; the last occurrence
// observed is authoritative.
func (r *Reassembler) ObserveUsage(usage *TokenUsage) {
	if usage == nil {
		return
	}
	u := *usage
	r.usage = &u
}

// Text returns the accumulated text for one choice index.
func (r *Reassembler) Text(index int) string {
	if b, ok := r.choices[index]; ok {
		return b.String()
	}
	return ""
}

// Texts returns the accumulated text of every choice, ordered by index.
func (r *Reassembler) Texts() []string {
	indexes := make([]int, 0, len(r.choices))
	for i := range r.choices {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	texts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		texts = append(texts, r.choices[i].String())
	}
	return texts
}

// Finalize produces the usage sample for a fully consumed stream. When the
// transport reported usage, those counts are authoritative. Otherwise the
// sample is an explicit approximation: prompt tokens come from the probe
// count when one was taken, else from whitespace-splitting the rendered
// prompt; completion tokens from whitespace-splitting the accumulated text
// of every choice.
func (r *Reassembler) Finalize(renderedPrompt string, probePromptTokens int) UsageSample {
	if r.usage != nil {
		return UsageSample{TokenUsage: *r.usage, Estimated: false}
	}

	promptTokens := probePromptTokens
	if promptTokens == 0 {
		promptTokens = len(strings.Fields(renderedPrompt))
	}

	completionTokens := 0
	for _, b := range r.choices {
		completionTokens += len(strings.Fields(b.String()))
	}

	return UsageSample{
		TokenUsage: TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
		},
		Estimated: true,
	}
}
