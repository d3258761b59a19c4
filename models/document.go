package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentRecord tracks one ingested document. Extracted text is stored
// compressed (see utils/compression.go); CompressedText is base64 of the
// compressed bytes and Compression names the algorithm used.
type DocumentRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	DocumentID     string             `bson:"document_id"`
	Name           string             `bson:"name"`
	SourceURL      string             `bson:"source_url,omitempty"`
	ChunkCount     int                `bson:"chunk_count"`
	CompressedText string             `bson:"compressed_text,omitempty"`
	Compression    string             `bson:"compression,omitempty"`
	UploadedAt     time.Time          `bson:"uploaded_at"`
}

// QuestionRecord is one asked question, keyed to its document.
type QuestionRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	DocumentID string             `bson:"document_id"`
	Text       string             `bson:"question_text"`
	AskedAt    time.Time          `bson:"asked_at"`
}

// AnswerRecord is the computed answer for one question.
type AnswerRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	QuestionID      primitive.ObjectID `bson:"question_id"`
	Text            string             `bson:"answer_text"`
	Rationale       string             `bson:"rationale,omitempty"`
	ClauseReference string             `bson:"clause_reference,omitempty"`
	Score           float64            `bson:"score"`
	CreatedAt       time.Time          `bson:"created_at"`
}
