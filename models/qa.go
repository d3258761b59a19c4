package models

// RunRequest is the body of POST /api/v1/qa/run: one document source plus
// the questions to answer against it.
type RunRequest struct {
	Documents string   `json:"documents" binding:"required"`
	Questions []string `json:"questions" binding:"required,min=1"`
}

// AnswerItem is one answer entry in the response. ClauseReference is nil
// when the model did not cite a clause; Rationale may be empty.
type AnswerItem struct {
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	Rationale       string  `json:"rationale"`
	ClauseReference *string `json:"clause_reference"`
	Score           float64 `json:"score"`
}

// RunResponse always carries exactly one AnswerItem per submitted question,
// or a single explanatory entry when the request failed before fan-out.
type RunResponse struct {
	Answers []AnswerItem `json:"answers"`
}

// IndexRequest is the body of POST /api/v1/qa/documents (background
// pre-indexing of a document without questions).
type IndexRequest struct {
	Documents string `json:"documents" binding:"required"`
}
