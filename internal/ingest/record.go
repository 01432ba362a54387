// Package ingest normalizes raw question batches into embedding-enriched
// records and drives them through the graph upsert engine.
package ingest

import "github.com/e64/stackgraph/internal/stack"

// Question is a raw question record enriched with its embedding, ready for
// upsert. The embedding is computed over title + "\n" + body.
type Question struct {
	QuestionID    int64
	Title         string
	Link          string
	Score         int64
	FavoriteCount int64
	CreationDate  int64
	Body          string
	Tags          []string
	Owner         *stack.Owner
	Answers       []Answer
	Embedding     []float32
}

// Answer is a raw answer enriched with its embedding. The embedding is
// computed over the question text + "\n" + answer body, so answers embed
// close to their question.
type Answer struct {
	AnswerID     int64
	IsAccepted   bool
	Score        int64
	CreationDate int64
	Body         string
	Owner        *stack.Owner
	Embedding    []float32
}
