package services

import "fmt"

// IngestionError reports a document download or extraction failure. It is
// fatal to the whole request: with no text there is nothing to retrieve.
type IngestionError struct {
	Source  string
	Message string
	Err     error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("document ingestion failed for %q: %s", e.Source, e.Message)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write to the answer store. It is logged
// and rolled back, never fatal to the in-flight answer computation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
