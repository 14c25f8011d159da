package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/observability"
)

// StatusTransformer implements Transformer with domain.ParseStatusUpdate.
type StatusTransformer struct{}

// NewTransformer creates a StatusTransformer.
func NewTransformer() *StatusTransformer {
	return &StatusTransformer{}
}

func (t *StatusTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.StatusUpdate, error) {
	return domain.ParseStatusUpdate(raw)
}

// UpdateApplier writes status updates to a hub store.
type UpdateApplier interface {
	ApplyUpdates(updates []domain.StatusUpdate) (applied int, unknown []string)
}

// CacheInvalidator discards cached responses.
type CacheInvalidator interface {
	Refresh()
}

// StoreLoader implements BatchLoader by applying updates to the hub store and
// then clearing the response cache so reads see the new state.
type StoreLoader struct {
	store       UpdateApplier
	invalidator CacheInvalidator
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewStoreLoader creates a loader. A nil invalidator skips cache invalidation.
func NewStoreLoader(store UpdateApplier, invalidator CacheInvalidator, logger *slog.Logger, metrics *observability.Metrics) *StoreLoader {
	return &StoreLoader{store: store, invalidator: invalidator, logger: logger, metrics: metrics}
}

// LoadBatch fails without touching the store once ctx is done, so a batch
// interrupted by shutdown is never committed.
func (l *StoreLoader) LoadBatch(ctx context.Context, updates []domain.StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("apply status batch: %w", err)
	}
	applied, unknown := l.store.ApplyUpdates(updates)
	for _, id := range unknown {
		l.logger.Warn("status update for unknown hub", "hub_id", id)
	}
	l.metrics.UpdatesApplied.Add(float64(applied))
	l.metrics.UpdatesRejected.Add(float64(len(unknown)))

	if applied > 0 && l.invalidator != nil {
		l.invalidator.Refresh()
	}
	l.logger.Debug("status batch applied", "applied", applied, "unknown", len(unknown))
	return nil
}
