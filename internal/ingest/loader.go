package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/e64/stackgraph/internal/stack"
)

// GraphWriter is the upsert boundary. All graph writes for a batch go
// through a single call; the implementation owns the transaction.
type GraphWriter interface {
	ImportQuestions(ctx context.Context, records []Question) error
}

// BatchSource supplies raw question pages.
type BatchSource interface {
	FetchPage(ctx context.Context, tag string, page int) (*stack.Batch, error)
	FetchHighScore(ctx context.Context) (*stack.Batch, error)
}

// Loader drives batches from the source through normalization into the graph.
// A failed upsert surfaces the whole batch as failed; retrying (re-running
// the same page) is the caller's decision.
type Loader struct {
	source     BatchSource
	normalizer *Normalizer
	graph      GraphWriter
	logger     *slog.Logger
}

func NewLoader(source BatchSource, normalizer *Normalizer, graph GraphWriter, logger *slog.Logger) *Loader {
	return &Loader{source: source, normalizer: normalizer, graph: graph, logger: logger}
}

// LoadTag ingests one page of questions for a tag.
func (l *Loader) LoadTag(ctx context.Context, tag string, page int) error {
	batch, err := l.source.FetchPage(ctx, tag, page)
	if err != nil {
		return fmt.Errorf("fetch page %d for tag %q: %w", page, tag, err)
	}
	return l.ingest(ctx, batch, slog.String("tag", tag), slog.Int("page", page))
}

// LoadPages ingests n consecutive pages for a tag starting at from. The
// first failed page aborts the run; earlier pages stay committed.
func (l *Loader) LoadPages(ctx context.Context, tag string, from, n int) error {
	for page := from; page < from+n; page++ {
		if err := l.LoadTag(ctx, tag, page); err != nil {
			return err
		}
	}
	return nil
}

// LoadHighScore ingests the top-voted question batch.
func (l *Loader) LoadHighScore(ctx context.Context) error {
	batch, err := l.source.FetchHighScore(ctx)
	if err != nil {
		return fmt.Errorf("fetch high-score batch: %w", err)
	}
	return l.ingest(ctx, batch, slog.String("mode", "high_score"))
}

func (l *Loader) ingest(ctx context.Context, batch *stack.Batch, attrs ...any) error {
	runID := uuid.New()
	logAttrs := append([]any{slog.String("run_id", runID.String())}, attrs...)

	l.logger.Info("batch fetched", append(logAttrs,
		slog.Int("items", len(batch.Items)),
		slog.Int("quota_remaining", batch.QuotaRemaining))...)

	records := l.normalizer.Normalize(ctx, batch.Items)
	if dropped := len(batch.Items) - len(records); dropped > 0 {
		l.logger.Warn("records dropped during normalization",
			append(logAttrs, slog.Int("dropped", dropped))...)
	}
	if len(records) == 0 {
		l.logger.Info("nothing to ingest", logAttrs...)
		return nil
	}

	if err := l.graph.ImportQuestions(ctx, records); err != nil {
		return fmt.Errorf("import batch: %w", err)
	}

	l.logger.Info("batch ingested", append(logAttrs,
		slog.Int("questions", len(records)))...)
	return nil
}
