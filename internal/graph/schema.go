package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EnsureConstraints idempotently declares the uniqueness constraints for
// every node type's natural key. It must run, and succeed, before any
// upsert; a failure here is fatal to ingestion.
func (c *Client) EnsureConstraints(ctx context.Context) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	statements := []string{
		createConstraintQuestionID,
		createConstraintAnswerID,
		createConstraintUserID,
		createConstraintTagName,
	}

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return struct{}{}, fmt.Errorf("create constraint: %w", err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// DimensionMismatchError reports a pre-existing vector index whose dimension
// disagrees with the configured embedding model. Proceeding would corrupt
// the index, so this is fatal at startup.
type DimensionMismatchError struct {
	Index     string
	Existing  int
	Requested int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector index %q has dimension %d but the embedding model produces %d; drop the index or change EMBEDDING_MODEL",
		e.Index, e.Existing, e.Requested)
}

// EnsureVectorIndexes idempotently creates the similarity indexes over
// Question.embedding and Answer.embedding sized to dimension. An existing
// index with a different dimension returns a DimensionMismatchError before
// anything is written.
func (c *Client) EnsureVectorIndexes(ctx context.Context, dimension int) error {
	existing, err := c.vectorIndexDimensions(ctx)
	if err != nil {
		return fmt.Errorf("inspect vector indexes: %w", err)
	}

	targets := []struct {
		name  string
		label string
	}{
		{questionIndexName, "Question"},
		{answerIndexName, "Answer"},
	}

	for _, t := range targets {
		if dim, ok := existing[t.name]; ok {
			if dim != dimension {
				return &DimensionMismatchError{Index: t.name, Existing: dim, Requested: dimension}
			}
		}
	}

	session := c.Session(ctx)
	defer session.Close(ctx)

	_, err = neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, t := range targets {
			if _, ok := existing[t.name]; ok {
				continue
			}
			stmt := renderCreateVectorIndex(t.name, t.label, dimension)
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return struct{}{}, fmt.Errorf("create vector index %s: %w", t.name, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

func renderCreateVectorIndex(name, label string, dimension int) string {
	return fmt.Sprintf(createVectorIndexTemplate, name, label, dimension)
}

// vectorIndexDimensions returns the declared dimension of every vector index
// in the database, keyed by index name.
func (c *Client) vectorIndexDimensions(ctx context.Context) (map[string]int, error) {
	session := c.readSession(ctx)
	defer session.Close(ctx)

	result, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (map[string]int, error) {
		res, err := tx.Run(ctx, showVectorIndexes, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		dims := make(map[string]int, len(records))
		for _, rec := range records {
			name, _ := rec.Get("name")
			options, _ := rec.Get("options")
			n, ok := name.(string)
			if !ok {
				continue
			}
			if dim, ok := indexDimension(options); ok {
				dims[n] = dim
			}
		}
		return dims, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// indexDimension extracts vector.dimensions from a SHOW VECTOR INDEXES
// options value.
func indexDimension(options any) (int, bool) {
	opts, ok := options.(map[string]any)
	if !ok {
		return 0, false
	}
	cfg, ok := opts["indexConfig"].(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := cfg["vector.dimensions"].(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
