// Package retrieval turns a query into ranked, policy-ordered candidates.
// Retrieval is stateless and read-only; any number of callers may retrieve
// concurrently.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/storage"
)

// Policy selects how oversampled candidates are filtered and ordered.
type Policy string

const (
	// PolicySimilarity keeps the top-K candidates by similarity score.
	PolicySimilarity Policy = "similarity"
	// PolicyTableFirst emits table candidates before narrative ones,
	// padding with the best remaining text when tables run short.
	PolicyTableFirst Policy = "table_first"
)

// ParsePolicy maps a user-supplied policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "similarity":
		return PolicySimilarity, nil
	case "table_first", "table-first", "tables":
		return PolicyTableFirst, nil
	}
	return "", fmt.Errorf("unknown retrieval policy %q", name)
}

// Oversampling factors: ask the store for more than top-K before the policy
// stage filters and reorders, so structured content is not lost to
// under-retrieval. Table-first oversamples harder because tables are sparse
// relative to narrative units.
const (
	DefaultTopK          = 5
	DefaultOversample    = 12
	TableFirstOversample = 40
)

// Candidate is a retrieved unit with its similarity score and final rank.
// It exists only within one retrieval call.
type Candidate struct {
	Unit  storage.ContentUnit
	Score float64
	Rank  int // 1-based position after policy ordering
}

// Searcher is the read side of the vector store.
type Searcher interface {
	SearchUnits(ctx context.Context, vector []float32, limit int) ([]storage.ScoredUnit, error)
	StoredVersion(ctx context.Context) (string, error)
}

// Retriever embeds queries and applies retrieval policies over store results.
type Retriever struct {
	store    Searcher
	embedder *embedding.Embedder
	logger   *slog.Logger
}

// NewRetriever creates a retriever. The embedder must be the same
// configuration used at index time; Retrieve verifies this against the
// stored version stamp. A nil logger falls back to slog.Default.
func NewRetriever(store Searcher, embedder *embedding.Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Retrieve embeds the query, searches topK*oversample candidates and applies
// the policy. topK <= 0 and oversample <= 0 take the policy defaults.
// An empty result set is a valid empty answer, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, policy Policy, topK, oversample int) ([]Candidate, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if oversample <= 0 {
		oversample = DefaultOversample
		if policy == PolicyTableFirst {
			oversample = TableFirstOversample
		}
	}

	stored, err := r.store.StoredVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("check stored embedder version: %w", err)
	}
	if stored != "" && stored != r.embedder.Version() {
		return nil, fmt.Errorf("%w: index has %q, embedder is %q",
			storage.ErrEmbedderVersionMismatch, stored, r.embedder.Version())
	}

	vector := r.embedder.Embed(query)
	scored, err := r.store.SearchUnits(ctx, vector, topK*oversample)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	candidates := make([]Candidate, len(scored))
	for i, su := range scored {
		candidates[i] = Candidate{Unit: su.Unit, Score: su.Score}
	}

	// Deterministic base order: score descending, ties broken by ascending
	// page number then ascending document ID.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Unit.PageNumber != candidates[j].Unit.PageNumber {
			return candidates[i].Unit.PageNumber < candidates[j].Unit.PageNumber
		}
		return candidates[i].Unit.DocumentID < candidates[j].Unit.DocumentID
	})

	if policy == PolicyTableFirst {
		candidates = tablesFirst(candidates)
	}

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	r.logger.Debug("retrieval complete",
		"policy", string(policy), "top_k", topK, "returned", len(candidates))

	return candidates, nil
}

// tablesFirst stably partitions candidates into tables then texts, each
// subset keeping its similarity order.
func tablesFirst(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Unit.ContentType == storage.ContentTypeTable {
			out = append(out, c)
		}
	}
	for _, c := range candidates {
		if c.Unit.ContentType != storage.ContentTypeTable {
			out = append(out, c)
		}
	}
	return out
}
