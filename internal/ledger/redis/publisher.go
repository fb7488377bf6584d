// Package redis mirrors usage ledger snapshots into Redis so lifetime
// token and cost totals can be read by dashboards outside the process.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/observability"
)

// Publisher writes usage snapshots to a Redis hash.
type Publisher struct {
	client *redis.Client
	key    string
}

// NewPublisher creates a new snapshot publisher writing to the given key.
func NewPublisher(client *redis.Client, key string) *Publisher {
	return &Publisher{
		client: client,
		key:    key,
	}
}

// Publish writes one snapshot. The hash always reflects the latest totals;
// snapshots are cumulative so overwriting loses nothing.
func (p *Publisher) Publish(ctx context.Context, snap domain.UsageSnapshot) error {
	fields := map[string]interface{}{
		"prompt_tokens":      snap.PromptTokens,
		"completion_tokens":  snap.CompletionTokens,
		"total_tokens":       snap.TotalTokens,
		"total_cost":         snap.TotalCost,
		"requests":           snap.Requests,
		"estimated_requests": snap.EstimatedRequests,
		"updated_at":         time.Now().UTC().Format(time.RFC3339),
	}

	if err := p.client.HSet(ctx, p.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to publish usage snapshot: %w", err)
	}

	return nil
}

// Run publishes the source snapshot at the given interval until the context
// is done. Publishing is best-effort: failures are logged and never touch
// the ledger itself.
func (p *Publisher) Run(ctx context.Context, interval time.Duration, source func() domain.UsageSnapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Publish(ctx, source()); err != nil {
				observability.FromContext(ctx).Warn("usage snapshot publish failed",
					observability.Error(err))
			}
		}
	}
}
