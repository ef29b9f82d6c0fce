package storage

import "errors"

var (
	ErrQdrantUnreachable       = errors.New("qdrant server unreachable")
	ErrDimensionMismatch       = errors.New("embedding dimension mismatch")
	ErrEmbedderVersionMismatch = errors.New("embedder version mismatch with indexed records")
)
