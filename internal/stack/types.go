// Package stack provides types and a client for the Stack Exchange
// search/advanced API. The ingestion core does not call this package
// directly; the loader driver fetches batches here and feeds them in.
package stack

// Owner is the question or answer author as reported by the API.
// UserID is nil for deleted accounts.
type Owner struct {
	UserID      *int64 `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Reputation  int64  `json:"reputation"`
}

// Answer is one answer nested under a question record.
type Answer struct {
	AnswerID     int64  `json:"answer_id"`
	IsAccepted   bool   `json:"is_accepted"`
	Score        int64  `json:"score"`
	CreationDate int64  `json:"creation_date"`
	BodyMarkdown string `json:"body_markdown"`
	Owner        *Owner `json:"owner,omitempty"`
}

// Question is one raw question record from the API.
type Question struct {
	QuestionID    int64    `json:"question_id"`
	Title         string   `json:"title"`
	Link          string   `json:"link"`
	Score         int64    `json:"score"`
	FavoriteCount int64    `json:"favorite_count"`
	CreationDate  int64    `json:"creation_date"`
	BodyMarkdown  string   `json:"body_markdown"`
	Tags          []string `json:"tags"`
	Owner         *Owner   `json:"owner,omitempty"`
	Answers       []Answer `json:"answers"`
}

// Batch is one page of the search/advanced response.
type Batch struct {
	Items          []Question `json:"items"`
	HasMore        bool       `json:"has_more"`
	QuotaRemaining int        `json:"quota_remaining"`
}
