package services

import (
	"context"
	"encoding/base64"
	"time"

	"document-qa-platform/internal/logger"
	"document-qa-platform/models"
	"document-qa-platform/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnswerStore is the persistence sink the pipeline writes to. Failures are
// reported as PersistenceError; callers log and move on, they never abort an
// in-flight answer computation over a failed write.
type AnswerStore interface {
	CreateDocument(ctx context.Context, docID, name, sourceURL, text string, chunkCount int) error
	SaveResult(ctx context.Context, docID string, item models.AnswerItem) error
}

// MongoStore persists documents, questions and answers to their own
// collections, one insert per logical record.
type MongoStore struct {
	documents *mongo.Collection
	questions *mongo.Collection
	answers   *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		documents: db.Collection("documents"),
		questions: db.Collection("questions"),
		answers:   db.Collection("answers"),
	}
}

// CreateDocument records an ingested document with its extracted text stored
// compressed.
func (s *MongoStore) CreateDocument(ctx context.Context, docID, name, sourceURL, text string, chunkCount int) error {
	compressed, algorithm, err := utils.CompressText(text)
	if err != nil {
		// Store the record without the text rather than losing it entirely.
		logger.Warn("Failed to compress document text", "document_id", docID, "error", err)
		compressed, algorithm = nil, utils.CompressionNone
	}

	record := models.DocumentRecord{
		DocumentID:     docID,
		Name:           name,
		SourceURL:      sourceURL,
		ChunkCount:     chunkCount,
		CompressedText: base64.StdEncoding.EncodeToString(compressed),
		Compression:    string(algorithm),
		UploadedAt:     time.Now(),
	}

	if _, err := s.documents.InsertOne(ctx, record); err != nil {
		return &PersistenceError{Op: "create-document", Err: err}
	}
	return nil
}

// SaveResult inserts the question and its answer. A failed answer insert
// rolls back the question row so the two never drift apart.
func (s *MongoStore) SaveResult(ctx context.Context, docID string, item models.AnswerItem) error {
	question := models.QuestionRecord{
		DocumentID: docID,
		Text:       item.Question,
		AskedAt:    time.Now(),
	}

	res, err := s.questions.InsertOne(ctx, question)
	if err != nil {
		return &PersistenceError{Op: "create-question", Err: err}
	}

	questionID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		questionID = primitive.NewObjectID()
	}

	clauseRef := ""
	if item.ClauseReference != nil {
		clauseRef = *item.ClauseReference
	}

	answer := models.AnswerRecord{
		QuestionID:      questionID,
		Text:            item.Answer,
		Rationale:       item.Rationale,
		ClauseReference: clauseRef,
		Score:           item.Score,
		CreatedAt:       time.Now(),
	}

	if _, err := s.answers.InsertOne(ctx, answer); err != nil {
		if _, delErr := s.questions.DeleteOne(ctx, bson.M{"_id": res.InsertedID}); delErr != nil {
			logger.Warn("Failed to roll back question record", "error", delErr)
		}
		return &PersistenceError{Op: "create-answer", Err: err}
	}

	return nil
}

// NoopStore discards everything; used when persistence is disabled and in
// tests.
type NoopStore struct{}

func (NoopStore) CreateDocument(ctx context.Context, docID, name, sourceURL, text string, chunkCount int) error {
	return nil
}

func (NoopStore) SaveResult(ctx context.Context, docID string, item models.AnswerItem) error {
	return nil
}
