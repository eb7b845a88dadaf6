package ingest

import (
	"context"
	"log/slog"
	"sync"

	"inkboard/internal/middleware"
	"inkboard/internal/models"
	"inkboard/internal/observability"
	"inkboard/internal/store"

	"go.opentelemetry.io/otel/attribute"
)

// Orchestrator coordinates one full ingestion cycle: all adapters fetched
// concurrently, results concatenated in the configured adapter order, and the
// combined batch handed to the store for dedup and persistence.
type Orchestrator struct {
	adapters []SourceAdapter
	store    store.PostStore
}

// NewOrchestrator creates an Orchestrator over the given adapters. The slice
// order fixes the concatenation order of their results.
func NewOrchestrator(posts store.PostStore, adapters ...SourceAdapter) *Orchestrator {
	return &Orchestrator{adapters: adapters, store: posts}
}

// IngestAll runs one ingestion cycle and returns the count of newly added
// posts. A failing adapter contributes an empty batch and never aborts the
// cycle; only a persistence failure is returned as an error.
func (o *Orchestrator) IngestAll(ctx context.Context) (int, error) {
	span, ctx := observability.NewSpan(ctx, "ingest.all")
	defer span.End()

	batches := make([][]models.Post, len(o.adapters))
	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter SourceAdapter) {
			defer wg.Done()
			batches[i] = o.fetchOne(ctx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	var combined []models.Post
	for _, batch := range batches {
		combined = append(combined, batch...)
	}

	added, err := o.store.UpsertMany(ctx, combined)
	if err != nil {
		span.SetError(err)
		return 0, err
	}

	span.AddAttributes(
		attribute.Int("ingest.fetched", len(combined)),
		attribute.Int("ingest.added", added),
	)
	middleware.Logger.InfoContext(ctx, "ingestion cycle complete",
		slog.Int("fetched", len(combined)),
		slog.Int("added", added),
	)
	return added, nil
}

// fetchOne isolates a single adapter: panics and errors are contained here
// and degrade to an empty contribution.
func (o *Orchestrator) fetchOne(ctx context.Context, adapter SourceAdapter) (posts []models.Post) {
	source := string(adapter.Name())

	span, ctx := observability.NewSpan(ctx, "ingest.fetch."+source)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			observability.AdapterFailures.WithLabelValues(source).Inc()
			middleware.Logger.ErrorContext(ctx, "source adapter panicked",
				slog.String("source", source), slog.Any("panic", r))
			posts = nil
		}
	}()

	posts, err := adapter.Fetch(ctx)
	if err != nil {
		observability.AdapterFailures.WithLabelValues(source).Inc()
		span.SetError(err)
		middleware.Logger.ErrorContext(ctx, "source adapter failed",
			slog.String("source", source), slog.String("error", err.Error()))
		return nil
	}

	span.AddAttributes(attribute.Int("ingest.batch_size", len(posts)))
	return posts
}
