package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/e64/stackgraph/internal/ingest"
	"github.com/e64/stackgraph/internal/stack"
)

const batchSize = 500

// deletedUserKey is the sentinel key for answers whose owner account no
// longer exists.
const deletedUserKey = "deleted"

// ImportQuestions applies a normalized batch as idempotent merges. Each
// chunk of up to batchSize questions runs in a single write transaction:
// questions, then tags, answers and askers, so a committed chunk always
// carries the full relationship set for its questions. Any transaction
// failure surfaces the batch as failed; retrying is the caller's concern.
func (c *Client) ImportQuestions(ctx context.Context, records []ingest.Question) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		chunk := records[i:end]

		questions, tags, answers, askers := buildUpsertParams(chunk)

		_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
			if _, err := tx.Run(ctx, upsertQuestions, map[string]any{"questions": questions}); err != nil {
				return struct{}{}, fmt.Errorf("upsert questions: %w", err)
			}
			if _, err := tx.Run(ctx, upsertQuestionTags, map[string]any{"tags": tags}); err != nil {
				return struct{}{}, fmt.Errorf("upsert tags: %w", err)
			}
			if _, err := tx.Run(ctx, upsertAnswers, map[string]any{"answers": answers}); err != nil {
				return struct{}{}, fmt.Errorf("upsert answers: %w", err)
			}
			if _, err := tx.Run(ctx, upsertAskers, map[string]any{"askers": askers}); err != nil {
				return struct{}{}, fmt.Errorf("upsert askers: %w", err)
			}
			return struct{}{}, nil
		})
		if err != nil {
			return fmt.Errorf("import chunk %d: %w", i/batchSize, err)
		}
	}
	return nil
}

// buildUpsertParams flattens normalized records into the four UNWIND row
// batches. Asker rows exist only for questions with a non-null owner id:
// a null question owner skips the ASKED edge instead of minting a user
// with a null key.
func buildUpsertParams(records []ingest.Question) (questions, tags, answers, askers []map[string]any) {
	for _, q := range records {
		questions = append(questions, map[string]any{
			"id":             q.QuestionID,
			"title":          q.Title,
			"link":           q.Link,
			"score":          q.Score,
			"favorite_count": q.FavoriteCount,
			"creation_date":  q.CreationDate,
			"body":           q.Body,
			"embedding":      vectorParam(q.Embedding),
		})

		for _, name := range q.Tags {
			tags = append(tags, map[string]any{
				"question_id": q.QuestionID,
				"name":        name,
			})
		}

		for _, a := range q.Answers {
			answers = append(answers, map[string]any{
				"question_id":   q.QuestionID,
				"id":            a.AnswerID,
				"is_accepted":   a.IsAccepted,
				"score":         a.Score,
				"creation_date": a.CreationDate,
				"body":          a.Body,
				"embedding":     vectorParam(a.Embedding),
				"owner_id":      ownerKey(a.Owner),
				"owner": map[string]any{
					"display_name": ownerName(a.Owner),
					"reputation":   ownerReputation(a.Owner),
				},
			})
		}

		if q.Owner != nil && q.Owner.UserID != nil {
			askers = append(askers, map[string]any{
				"question_id":  q.QuestionID,
				"id":           *q.Owner.UserID,
				"display_name": q.Owner.DisplayName,
				"reputation":   q.Owner.Reputation,
			})
		}
	}
	return questions, tags, answers, askers
}

// ownerKey falls back to the deleted-user sentinel when the owner id is
// absent, so orphaned answers still link to a user node.
func ownerKey(o *stack.Owner) any {
	if o == nil || o.UserID == nil {
		return deletedUserKey
	}
	return *o.UserID
}

func ownerName(o *stack.Owner) string {
	if o == nil {
		return ""
	}
	return o.DisplayName
}

func ownerReputation(o *stack.Owner) int64 {
	if o == nil {
		return 0
	}
	return o.Reputation
}

// vectorParam widens an embedding for the bolt wire format.
func vectorParam(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
