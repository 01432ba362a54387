package graph

import "fmt"

// Cypher for schema provisioning. Uniqueness constraints on the natural key
// of every node type are the defense against duplicates under re-ingestion
// and concurrent runs; they also index the MERGE lookups.
const (
	createConstraintQuestionID = `CREATE CONSTRAINT question_id IF NOT EXISTS FOR (q:Question) REQUIRE q.id IS UNIQUE`
	createConstraintAnswerID   = `CREATE CONSTRAINT answer_id IF NOT EXISTS FOR (a:Answer) REQUIRE a.id IS UNIQUE`
	createConstraintUserID     = `CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`
	createConstraintTagName    = `CREATE CONSTRAINT tag_name IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`
)

// Vector index names and targets. Dimensions are rendered into the statement;
// CREATE INDEX does not accept parameters in OPTIONS.
const (
	questionIndexName = "stackoverflow"
	answerIndexName   = "top_answers"

	showVectorIndexes = `SHOW VECTOR INDEXES YIELD name, options RETURN name, options`

	createVectorIndexTemplate = "CREATE VECTOR INDEX %s IF NOT EXISTS " +
		"FOR (n:%s) ON n.embedding " +
		"OPTIONS {indexConfig: {`vector.dimensions`: %d, `vector.similarity_function`: 'cosine'}}"
)

// Upsert statements, rendered from the per-field write policies in policy.go.
// Each statement consumes a flat UNWIND row batch; together the four run in
// one write transaction per chunk.
var (
	// upsertQuestions merges questions by id; properties only on create.
	upsertQuestions = fmt.Sprintf(`
UNWIND $questions AS q
MERGE (question:Question {id: q.id})
ON CREATE SET %s`, setClause("question", "q", questionProps, onCreate))

	// upsertQuestionTags merges tags by name and the TAGGED edges.
	upsertQuestionTags = `
UNWIND $tags AS t
MATCH (question:Question {id: t.question_id})
MERGE (tag:Tag {name: t.name})
MERGE (question)-[:TAGGED]->(tag)`

	// upsertAnswers merges answers by id with overwrite semantics, links
	// them to their question and to their owner (sentinel "deleted" owner
	// ids are resolved in Go before the rows reach this statement).
	upsertAnswers = fmt.Sprintf(`
UNWIND $answers AS a
MATCH (question:Question {id: a.question_id})
MERGE (answer:Answer {id: a.id})
MERGE (answer)-[:ANSWERS]->(question)
SET %s
MERGE (owner:User {id: a.owner_id})
ON CREATE SET %s
MERGE (owner)-[:PROVIDED]->(answer)`,
		setClause("answer", "a", answerProps, always),
		setClause("owner", "a.owner", userProps, onCreate))

	// upsertAskers merges question owners and the ASKED edges. Rows for
	// questions without an owner id never reach this statement.
	upsertAskers = fmt.Sprintf(`
UNWIND $askers AS u
MATCH (question:Question {id: u.question_id})
MERGE (owner:User {id: u.id})
ON CREATE SET %s
MERGE (owner)-[:ASKED]->(question)`,
		setClause("owner", "u", userProps, onCreate))
)
