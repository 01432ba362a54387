package graph

import (
	"testing"

	"github.com/e64/stackgraph/internal/ingest"
	"github.com/e64/stackgraph/internal/stack"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBuildUpsertParams(t *testing.T) {
	records := []ingest.Question{
		{
			QuestionID:    1,
			Title:         "How to MERGE",
			Link:          "https://example.org/q/1",
			Score:         5,
			FavoriteCount: 2,
			CreationDate:  1700000000,
			Body:          "body",
			Tags:          []string{"neo4j", "cypher"},
			Owner:         &stack.Owner{UserID: int64Ptr(5), DisplayName: "alice", Reputation: 900},
			Embedding:     []float32{0.25, 0.5},
			Answers: []ingest.Answer{
				{
					AnswerID:     10,
					IsAccepted:   true,
					Score:        3,
					CreationDate: 1700000100,
					Body:         "answer body",
					Owner:        &stack.Owner{UserID: int64Ptr(5), DisplayName: "alice", Reputation: 900},
					Embedding:    []float32{0.75, 1.0},
				},
			},
		},
	}

	questions, tags, answers, askers := buildUpsertParams(records)

	if len(questions) != 1 {
		t.Fatalf("expected 1 question row, got %d", len(questions))
	}
	q := questions[0]
	if q["id"] != int64(1) || q["title"] != "How to MERGE" {
		t.Errorf("unexpected question row: %v", q)
	}
	vec, ok := q["embedding"].([]float64)
	if !ok || len(vec) != 2 || vec[0] != 0.25 {
		t.Errorf("embedding not widened to float64: %v", q["embedding"])
	}

	if len(tags) != 2 {
		t.Fatalf("expected 2 tag rows, got %d", len(tags))
	}
	if tags[0]["question_id"] != int64(1) || tags[0]["name"] != "neo4j" {
		t.Errorf("unexpected tag row: %v", tags[0])
	}

	if len(answers) != 1 {
		t.Fatalf("expected 1 answer row, got %d", len(answers))
	}
	a := answers[0]
	if a["id"] != int64(10) || a["question_id"] != int64(1) || a["is_accepted"] != true {
		t.Errorf("unexpected answer row: %v", a)
	}
	if a["owner_id"] != int64(5) {
		t.Errorf("expected owner id 5, got %v", a["owner_id"])
	}

	if len(askers) != 1 {
		t.Fatalf("expected 1 asker row, got %d", len(askers))
	}
	if askers[0]["id"] != int64(5) || askers[0]["display_name"] != "alice" {
		t.Errorf("unexpected asker row: %v", askers[0])
	}
}

func TestBuildUpsertParams_DeletedAnswerOwner(t *testing.T) {
	records := []ingest.Question{
		{
			QuestionID: 1,
			Answers: []ingest.Answer{
				{AnswerID: 10, Owner: nil},
				{AnswerID: 11, Owner: &stack.Owner{UserID: nil, DisplayName: "ghost"}},
			},
		},
	}

	_, _, answers, _ := buildUpsertParams(records)
	if len(answers) != 2 {
		t.Fatalf("expected 2 answer rows, got %d", len(answers))
	}
	for _, a := range answers {
		if a["owner_id"] != deletedUserKey {
			t.Errorf("answer %v should fall back to the deleted user, got %v", a["id"], a["owner_id"])
		}
	}
}

func TestBuildUpsertParams_NullQuestionOwnerSkipsAsked(t *testing.T) {
	records := []ingest.Question{
		{QuestionID: 1, Owner: nil},
		{QuestionID: 2, Owner: &stack.Owner{UserID: nil, DisplayName: "ghost"}},
		{QuestionID: 3, Owner: &stack.Owner{UserID: int64Ptr(7), DisplayName: "bob"}},
	}

	_, _, _, askers := buildUpsertParams(records)
	if len(askers) != 1 {
		t.Fatalf("expected 1 asker row, got %d", len(askers))
	}
	if askers[0]["question_id"] != int64(3) || askers[0]["id"] != int64(7) {
		t.Errorf("unexpected asker row: %v", askers[0])
	}
}

func TestBuildUpsertParams_SharedTagProducesRowPerQuestion(t *testing.T) {
	records := []ingest.Question{
		{QuestionID: 1, Tags: []string{"neo4j"}},
		{QuestionID: 2, Tags: []string{"neo4j"}},
	}

	_, tags, _, _ := buildUpsertParams(records)
	// Two TAGGED rows; the MERGE on Tag{name} collapses them to one node.
	if len(tags) != 2 {
		t.Fatalf("expected 2 tag rows, got %d", len(tags))
	}
	if tags[0]["name"] != "neo4j" || tags[1]["name"] != "neo4j" {
		t.Errorf("unexpected tag rows: %v", tags)
	}
}
