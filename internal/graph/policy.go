package graph

import (
	"fmt"
	"strings"
)

// propMode says when a node property is written during upsert.
type propMode int

const (
	// onCreate properties are set only when the node is first merged;
	// re-ingestion never overwrites them.
	onCreate propMode = iota
	// always properties are refreshed on every ingestion.
	always
)

// propSpec is one property in a node's write policy. expr, when set,
// overrides the plain row lookup (used for epoch → datetime conversion).
type propSpec struct {
	name string
	mode propMode
	expr string
}

// Write policies per node label. Questions are archival: everything is
// set on create only. Answers are volatile: score and acceptance change
// over time, so every property is refreshed. User display data is kept
// from first sighting.
var (
	questionProps = []propSpec{
		{name: "title", mode: onCreate},
		{name: "link", mode: onCreate},
		{name: "score", mode: onCreate},
		{name: "favorite_count", mode: onCreate},
		{name: "creation_date", mode: onCreate, expr: "datetime({epochSeconds: %s.creation_date})"},
		{name: "body", mode: onCreate},
		{name: "embedding", mode: onCreate},
	}

	answerProps = []propSpec{
		{name: "is_accepted", mode: always},
		{name: "score", mode: always},
		{name: "creation_date", mode: always, expr: "datetime({epochSeconds: %s.creation_date})"},
		{name: "body", mode: always},
		{name: "embedding", mode: always},
	}

	userProps = []propSpec{
		{name: "display_name", mode: onCreate},
		{name: "reputation", mode: onCreate},
	}
)

// setClause renders the assignments for all properties with the given mode,
// e.g. `question.title = q.title, question.link = q.link`.
func setClause(alias, row string, props []propSpec, mode propMode) string {
	var parts []string
	for _, p := range props {
		if p.mode != mode {
			continue
		}
		value := fmt.Sprintf("%s.%s", row, p.name)
		if p.expr != "" {
			value = fmt.Sprintf(p.expr, row)
		}
		parts = append(parts, fmt.Sprintf("%s.%s = %s", alias, p.name, value))
	}
	return strings.Join(parts, ",\n    ")
}
