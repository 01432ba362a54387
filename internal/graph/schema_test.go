package graph

import (
	"strings"
	"testing"
)

func TestIndexDimension(t *testing.T) {
	tests := []struct {
		name    string
		options any
		want    int
		ok      bool
	}{
		{
			name: "int64 dimension",
			options: map[string]any{
				"indexConfig": map[string]any{
					"vector.dimensions":          int64(384),
					"vector.similarity_function": "cosine",
				},
			},
			want: 384,
			ok:   true,
		},
		{
			name: "float64 dimension",
			options: map[string]any{
				"indexConfig": map[string]any{"vector.dimensions": float64(768)},
			},
			want: 768,
			ok:   true,
		},
		{
			name:    "missing indexConfig",
			options: map[string]any{},
			ok:      false,
		},
		{
			name:    "not a map",
			options: "garbage",
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := indexDimension(tt.options)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDimensionMismatchError(t *testing.T) {
	err := &DimensionMismatchError{Index: "stackoverflow", Existing: 384, Requested: 768}
	msg := err.Error()
	if !strings.Contains(msg, "stackoverflow") || !strings.Contains(msg, "384") || !strings.Contains(msg, "768") {
		t.Errorf("error message missing details: %s", msg)
	}
}

func TestVectorIndexStatement(t *testing.T) {
	stmt := renderCreateVectorIndex(questionIndexName, "Question", 768)
	if !strings.Contains(stmt, "CREATE VECTOR INDEX stackoverflow IF NOT EXISTS") {
		t.Errorf("statement not idempotent: %s", stmt)
	}
	if !strings.Contains(stmt, "`vector.dimensions`: 768") {
		t.Errorf("dimension not rendered: %s", stmt)
	}
	if !strings.Contains(stmt, "'cosine'") {
		t.Errorf("similarity function missing: %s", stmt)
	}
}
