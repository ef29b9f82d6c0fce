package storage

// Content type labels stored in the payload's content_type field.
const (
	ContentTypeText  = "text"
	ContentTypeTable = "table"
)

// ContentUnit is one indexable fact extracted from a document page.
// Units are immutable once persisted: re-ingestion of the same document
// produces the same deterministic IDs and overwrites in place.
type ContentUnit struct {
	DocumentID  string
	PageNumber  int    // 1-based, never 0
	ContentType string // "text" or "table"
	RawText     string // narrative text, or normalized table markup
	Embedding   []float32
}

// ScoredUnit is a ContentUnit with its similarity score from one search.
// Embeddings are not carried back out of the store.
type ScoredUnit struct {
	Unit  ContentUnit
	Score float64
}

// CollectionName is the single Qdrant collection holding all evidence units.
const CollectionName = "evidence"
