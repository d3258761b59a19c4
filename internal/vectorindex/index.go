// Package vectorindex provides an in-process nearest-neighbor store over
// L2-normalized vectors with synchronous on-disk persistence. Search is
// exact brute-force inner product, which at single-document scale (low
// thousands of chunks) beats the bookkeeping cost of an approximate index.
//
// There is no per-document delete: entries are append-only and Clear resets
// the whole index, so a long-lived shared index grows across requests. Known
// gap, kept to match the upstream design.
package vectorindex

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"document-qa-platform/internal/logger"
)

// Metadata is the per-vector payload stored alongside each entry. The index
// references chunk text, it does not own the chunks.
type Metadata struct {
	Text          string
	DocumentID    string
	SequenceIndex int
	Type          string
}

// Result is one retrieval hit. Score is cosine similarity in [-1, 1].
type Result struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Stats describes the current index contents.
type Stats struct {
	TotalVectors  int `json:"total_vectors"`
	Dimension     int `json:"dimension"`
	MetadataCount int `json:"metadata_count"`
}

// ValidationError reports malformed upsert or query input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "vector index validation: " + e.Message
}

// Index holds parallel vectors/metadata/ids slices; their lengths are always
// equal. Vectors are normalized before storage so the stored inner product
// equals cosine similarity.
type Index struct {
	mu       sync.RWMutex
	path     string
	dim      int
	vectors  [][]float32
	metadata []Metadata
	ids      []string
}

type indexFile struct {
	Dim     int
	Vectors [][]float32
}

type metaFile struct {
	Metadata []Metadata
	IDs      []string
}

// Open creates an index persisted under the given path prefix and loads any
// existing state. A missing or corrupt persisted pair starts empty rather
// than failing: losing a warm index is recoverable, refusing to start is not.
func Open(path string, dim int) *Index {
	ix := &Index{
		path: path,
		dim:  dim,
	}
	ix.load()
	return ix
}

func (ix *Index) indexPath() string { return ix.path + ".index" }
func (ix *Index) metaPath() string  { return ix.path + ".meta" }

func (ix *Index) load() {
	f, err := os.Open(ix.indexPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Could not open existing vector index", "path", ix.indexPath(), "error", err)
		}
		return
	}
	defer f.Close()

	var idx indexFile
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		logger.Warn("Could not decode existing vector index, starting empty", "error", err)
		return
	}

	mf, err := os.Open(ix.metaPath())
	if err != nil {
		logger.Warn("Vector index metadata missing, starting empty", "error", err)
		return
	}
	defer mf.Close()

	var meta metaFile
	if err := gob.NewDecoder(mf).Decode(&meta); err != nil {
		logger.Warn("Could not decode vector index metadata, starting empty", "error", err)
		return
	}

	if len(idx.Vectors) != len(meta.Metadata) || len(idx.Vectors) != len(meta.IDs) {
		logger.Warn("Persisted vector index is inconsistent, starting empty",
			"vectors", len(idx.Vectors), "metadata", len(meta.Metadata), "ids", len(meta.IDs))
		return
	}

	ix.vectors = idx.Vectors
	ix.metadata = meta.Metadata
	ix.ids = meta.IDs
	if idx.Dim > 0 {
		ix.dim = idx.Dim
	}
	logger.Info("Loaded existing vector index", "vectors", len(ix.vectors))
}

// persistLocked writes the full collection to the on-disk pair. Caller holds
// the write lock.
func (ix *Index) persistLocked() error {
	f, err := os.Create(ix.indexPath())
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(indexFile{Dim: ix.dim, Vectors: ix.vectors}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}

	mf, err := os.Create(ix.metaPath())
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	if err := gob.NewEncoder(mf).Encode(metaFile{Metadata: ix.metadata, IDs: ix.ids}); err != nil {
		mf.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := mf.Close(); err != nil {
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	return nil
}

// Upsert appends vectors with their metadata and persists the full
// collection before returning. When ids is nil, sequential vec_<N> ids are
// generated. Length or dimension mismatches fail with a ValidationError and
// write nothing.
func (ix *Index) Upsert(vectors [][]float32, metadata []Metadata, ids []string) ([]string, error) {
	if len(vectors) != len(metadata) {
		return nil, &ValidationError{Message: fmt.Sprintf(
			"number of vectors (%d) must match number of metadata items (%d)", len(vectors), len(metadata))}
	}
	if ids != nil && len(ids) != len(vectors) {
		return nil, &ValidationError{Message: fmt.Sprintf(
			"number of ids (%d) must match number of vectors (%d)", len(ids), len(vectors))}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if ix.dim > 0 && len(v) != ix.dim {
			return nil, &ValidationError{Message: fmt.Sprintf(
				"vector %d has dimension %d, index expects %d", i, len(v), ix.dim)}
		}
		normalized[i] = normalize(v)
	}

	if ids == nil {
		start := len(ix.ids)
		ids = make([]string, len(vectors))
		for i := range vectors {
			ids[i] = fmt.Sprintf("vec_%d", start+i)
		}
	}

	prevLen := len(ix.vectors)
	ix.vectors = append(ix.vectors, normalized...)
	ix.metadata = append(ix.metadata, metadata...)
	ix.ids = append(ix.ids, ids...)

	if err := ix.persistLocked(); err != nil {
		// An upsert is not complete until durably recorded; undo the append.
		ix.vectors = ix.vectors[:prevLen]
		ix.metadata = ix.metadata[:prevLen]
		ix.ids = ix.ids[:prevLen]
		return nil, err
	}

	logger.Info("Upserted vectors to index", "count", len(vectors), "total", len(ix.vectors))
	return ids, nil
}

// Query returns up to topK entries ordered by descending cosine similarity.
// An empty index yields an empty result, never an error.
func (ix *Index) Query(vector []float32, topK int) ([]Result, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return []Result{}, nil
	}
	if ix.dim > 0 && len(vector) != ix.dim {
		return nil, &ValidationError{Message: fmt.Sprintf(
			"query vector has dimension %d, index expects %d", len(vector), ix.dim)}
	}
	if topK <= 0 {
		return []Result{}, nil
	}
	if topK > len(ix.vectors) {
		topK = len(ix.vectors)
	}

	query := normalize(vector)

	order := make([]int, len(ix.vectors))
	scores := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		order[i] = i
		scores[i] = dot(v, query)
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]Result, 0, topK)
	for _, idx := range order[:topK] {
		results = append(results, Result{
			ID:       ix.ids[idx],
			Score:    scores[idx],
			Metadata: ix.metadata[idx],
		})
	}

	return results, nil
}

// Clear resets the index to empty and removes the persisted pair. It is a
// full reinitialization, not a per-document delete.
func (ix *Index) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.vectors = nil
	ix.metadata = nil
	ix.ids = nil

	for _, path := range []string{ix.indexPath(), ix.metaPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	logger.Info("Cleared vector index")
	return nil
}

// Flush re-persists the current state; used at shutdown.
func (ix *Index) Flush() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.vectors) == 0 {
		return nil
	}
	return ix.persistLocked()
}

// Size returns the number of stored vectors.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Stats returns statistics about the index.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		TotalVectors:  len(ix.vectors),
		Dimension:     ix.dim,
		MetadataCount: len(ix.metadata),
	}
}

// normalize returns an L2-normalized copy; a zero vector is returned as a
// copy unchanged.
func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
