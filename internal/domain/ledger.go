package domain

import "sync"

const tokensToPerK = 1000.0

// Ledger accumulates lifetime token and cost usage for one client instance.
// Record is the sole writer of the totals; no other component mutates them.
// The ledger is never reset automatically.
type Ledger struct {
	pricing PricingTable

	mu                sync.Mutex
	promptTokens      int
	completionTokens  int
	totalCost         float64
	requests          int
	estimatedRequests int
}

// NewLedger creates a ledger priced by the given table.
func NewLedger(pricing PricingTable) *Ledger {
	return &Ledger{pricing: pricing}
}

// Record adds one completed request's usage to the running totals. Cost is
// a pure function of the recorded token counts and the pricing table. All
// counters advance as one logical update, so concurrent streams completing
// interleaved never lose updates. Record never fails.
func (l *Ledger) Record(sample UsageSample) {
	promptCost := float64(sample.PromptTokens) / tokensToPerK * l.pricing.PromptPerK
	completionCost := float64(sample.CompletionTokens) / tokensToPerK * l.pricing.CompletionPerK

	l.mu.Lock()
	defer l.mu.Unlock()

	l.promptTokens += sample.PromptTokens
	l.completionTokens += sample.CompletionTokens
	l.totalCost += promptCost + completionCost
	l.requests++
	if sample.Estimated {
		l.estimatedRequests++
	}
}

// Snapshot returns an immutable copy of the current totals. TotalTokens is
// derived at read time. Safe to call concurrently with Record.
func (l *Ledger) Snapshot() UsageSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return UsageSnapshot{
		PromptTokens:      l.promptTokens,
		CompletionTokens:  l.completionTokens,
		TotalTokens:       l.promptTokens + l.completionTokens,
		TotalCost:         l.totalCost,
		Requests:          l.requests,
		EstimatedRequests: l.estimatedRequests,
	}
}

// Pricing returns the table the ledger was constructed with.
func (l *Ledger) Pricing() PricingTable {
	return l.pricing
}
