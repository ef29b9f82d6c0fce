// Package storage owns the vector store boundary. Qdrant is treated as an
// external stateful service: the core holds no index state of its own, only
// the collection schema and the record shape it writes.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// DefaultRequestTimeout bounds every store RPC so call sites surface a
// timeout error instead of hanging.
const DefaultRequestTimeout = 30 * time.Second

// upsertBatchSize is the number of points sent per upsert request.
const upsertBatchSize = 100

// QdrantStorage wraps the Qdrant client with connection management,
// collection setup and retrying writes.
type QdrantStorage struct {
	client          *qdrant.Client
	dimension       uint64
	embedderVersion string
	timeout         time.Duration
}

// NewQdrantStorage creates a Qdrant client bound to the given embedder
// configuration. It performs a health check with retry on startup and fails
// fast if Qdrant is unreachable.
func NewQdrantStorage(host string, port int, dimension int, embedderVersion string) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	s := &QdrantStorage{
		client:          client,
		dimension:       uint64(dimension),
		embedderVersion: embedderVersion,
		timeout:         DefaultRequestTimeout,
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return s, nil
}

// healthCheckWithRetry performs the startup health check with exponential
// backoff. Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the evidence collection if absent, with cosine
// vectors sized to the embedder's output and payload indexes on the
// filterable fields. Idempotent.
func (s *QdrantStorage) EnsureCollection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return s.createPayloadIndexes(ctx)
}

// createPayloadIndexes creates keyword indexes for the filterable fields.
func (s *QdrantStorage) createPayloadIndexes(ctx context.Context) error {
	fields := []string{
		"document_id",      // Count/filter units by source document
		"content_type",     // "text" vs "table"
		"embedder_version", // Detect stale-index vs new-embedder mismatches
	}

	for _, field := range fields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}

	return nil
}

// ClearCollection deletes all points and recreates the collection.
func (s *QdrantStorage) ClearCollection(ctx context.Context) error {
	deleteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.DeleteCollection(deleteCtx, CollectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return s.EnsureCollection(ctx)
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// upsertWithRetry sends one batch with exponential backoff retry. Permanent
// rejection surfaces to the caller; nothing is silently dropped.
func (s *QdrantStorage) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		_, err := s.client.Upsert(opCtx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// UpsertUnits stores embedded content units, batched in groups of 100.
// Point IDs are deterministic (UnitID), so re-ingesting unchanged content
// overwrites rather than duplicates.
func (s *QdrantStorage) UpsertUnits(ctx context.Context, units []ContentUnit) error {
	if len(units) == 0 {
		return nil
	}

	for i, unit := range units {
		if uint64(len(unit.Embedding)) != s.dimension {
			return fmt.Errorf("%w: unit %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(unit.Embedding), s.dimension)
		}
	}

	for i := 0; i < len(units); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(units))
		batch := units[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, unit := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(UnitID(unit)),
				Vectors: qdrant.NewVectors(unit.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"document_id":      unit.DocumentID,
					"page_number":      int64(unit.PageNumber),
					"content_type":     unit.ContentType,
					"raw_text":         unit.RawText,
					"embedder_version": s.embedderVersion,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// SearchUnits performs vector similarity search, filtered to records written
// with the current embedder version. Results come back ranked by score
// descending. Reads retry once and then surface the failure.
func (s *QdrantStorage) SearchUnits(ctx context.Context, vector []float32, limit int) ([]ScoredUnit, error) {
	if uint64(len(vector)) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}

	var results []*qdrant.ScoredPoint
	operation := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var err error
		results, err = s.client.Query(opCtx, &qdrant.QueryPoints{
			CollectionName: CollectionName,
			Query:          qdrant.NewQuery(vector...),
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatch("embedder_version", s.embedderVersion),
				},
			},
			Limit:       qdrant.PtrOf(uint64(limit)),
			WithPayload: qdrant.NewWithPayload(true),
			WithVectors: qdrant.NewWithVectors(false),
		})
		return err
	}

	err := backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 1), ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to search units: %w", err)
	}

	units := make([]ScoredUnit, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		units = append(units, ScoredUnit{
			Unit: ContentUnit{
				DocumentID:  payload["document_id"].GetStringValue(),
				PageNumber:  int(payload["page_number"].GetIntegerValue()),
				ContentType: payload["content_type"].GetStringValue(),
				RawText:     payload["raw_text"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}

	return units, nil
}

// StoredVersion returns the embedder version stamped on indexed records, or
// "" when the collection is empty. Retrieval compares it against the current
// embedder configuration before searching.
func (s *QdrantStorage) StoredVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CollectionName,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayloadInclude("embedder_version"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to scroll for embedder version: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	return results[0].Payload["embedder_version"].GetStringValue(), nil
}

// CountDocumentUnits returns the number of stored units for one document.
func (s *QdrantStorage) CountDocumentUnits(ctx context.Context, documentID string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		},
		Exact: qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count units for %s: %w", documentID, err)
	}
	return count, nil
}

// CollectionInfo contains collection statistics.
type CollectionInfo struct {
	PointsCount uint64
}

// GetCollectionInfo retrieves the total point count for status reporting.
func (s *QdrantStorage) GetCollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	collection, err := s.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return &CollectionInfo{PointsCount: collection.GetPointsCount()}, nil
}
