package models

// Chunk is one bounded, overlapping segment of extracted document text.
// Chunks are created once during ingestion and never mutated; the vector
// index references their content through its metadata, it does not own them.
type Chunk struct {
	Text             string `json:"text"`
	SourceDocumentID string `json:"source_document_id"`
	SequenceIndex    int    `json:"sequence_index"`
}
