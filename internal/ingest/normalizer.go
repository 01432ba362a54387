package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/e64/stackgraph/internal/embedding"
	"github.com/e64/stackgraph/internal/stack"
)

const defaultConcurrency = 8

// Normalizer turns raw question batches into embedding-enriched records.
//
// Normalization is best-effort: a record missing its question id, or whose
// embedding call fails, is dropped with a warning and the rest of the batch
// proceeds. Batch-level failure only exists at the upsert stage.
type Normalizer struct {
	embedder    embedding.Embedder
	concurrency int
	logger      *slog.Logger
}

func NewNormalizer(embedder embedding.Embedder, concurrency int, logger *slog.Logger) *Normalizer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Normalizer{embedder: embedder, concurrency: concurrency, logger: logger}
}

// Normalize embeds every question and answer in the batch and returns the
// surviving records in input order.
//
// Each question is processed by its own goroutine (bounded by the
// concurrency limit) which writes only into its own pre-allocated slot, so
// an embedding can never end up attached to a different record.
func (n *Normalizer) Normalize(ctx context.Context, items []stack.Question) []Question {
	if len(items) == 0 {
		return nil
	}

	slots := make([]*Question, len(items))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(n.concurrency)

	for i, item := range items {
		i, item := i, item
		if item.QuestionID == 0 {
			n.logger.Warn("skipping record without question id",
				slog.String("title", item.Title))
			continue
		}
		eg.Go(func() error {
			rec, err := n.normalizeOne(egCtx, item)
			if err != nil {
				n.logger.Warn("skipping record, embedding failed",
					slog.Int64("question_id", item.QuestionID),
					slog.String("error", err.Error()))
				return nil
			}
			slots[i] = rec
			return nil
		})
	}

	// Goroutines never return errors; Wait only observes context cancellation.
	_ = eg.Wait()

	out := make([]Question, 0, len(items))
	for _, rec := range slots {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

func (n *Normalizer) normalizeOne(ctx context.Context, item stack.Question) (*Question, error) {
	questionText := item.Title + "\n" + item.BodyMarkdown

	qvec, err := n.embedder.Embed(ctx, questionText)
	if err != nil {
		return nil, err
	}

	rec := &Question{
		QuestionID:    item.QuestionID,
		Title:         item.Title,
		Link:          item.Link,
		Score:         item.Score,
		FavoriteCount: item.FavoriteCount,
		CreationDate:  item.CreationDate,
		Body:          item.BodyMarkdown,
		Tags:          item.Tags,
		Owner:         item.Owner,
		Embedding:     qvec,
	}

	for _, a := range item.Answers {
		avec, err := n.embedder.Embed(ctx, questionText+"\n"+a.BodyMarkdown)
		if err != nil {
			return nil, err
		}
		rec.Answers = append(rec.Answers, Answer{
			AnswerID:     a.AnswerID,
			IsAccepted:   a.IsAccepted,
			Score:        a.Score,
			CreationDate: a.CreationDate,
			Body:         a.BodyMarkdown,
			Owner:        a.Owner,
			Embedding:    avec,
		})
	}
	return rec, nil
}
