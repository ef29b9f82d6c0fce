// Package indexer orchestrates ingestion: parse a PDF into content units,
// embed every unit, and hand the batch to the vector store.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/pdf"
	"github.com/hollis/pagecite/internal/storage"
)

// ErrDocumentBusy is returned when an ingestion of the same document is
// already in flight. Concurrent runs over one document would race the
// deterministic-ID overwrite scheme.
var ErrDocumentBusy = errors.New("document ingestion already in progress")

// DefaultPageWorkers bounds the per-page embedding workers.
const DefaultPageWorkers = 4

// UnitStore is the write side of the vector store.
type UnitStore interface {
	UpsertUnits(ctx context.Context, units []storage.ContentUnit) error
	CountDocumentUnits(ctx context.Context, documentID string) (uint64, error)
}

// IngestResult is the per-document ingestion report. IndexedUnits counts the
// units written by this run; StoredUnits is the store's total for the
// document, which can be larger when earlier ingests of different content
// left records behind.
type IngestResult struct {
	DocumentID   string
	PageCount    int
	TextPages    int
	Tables       int
	IndexedUnits int
	StoredUnits  int
	SkippedPages []pdf.PageWarning
	Duration     time.Duration
}

// FailedDoc records a document that failed to ingest in a batch run.
type FailedDoc struct {
	Path   string
	Reason string
}

// BatchResult aggregates a multi-document ingestion run.
type BatchResult struct {
	Results    []*IngestResult
	FailedDocs []FailedDoc
	Duration   time.Duration
}

// Pipeline runs ingestion. Pages within a document are embedded by parallel
// workers; documents are mutually excluded by ID so two runs never interleave
// writes for the same document.
type Pipeline struct {
	parser   *pdf.Parser
	embedder *embedding.Embedder
	store    UnitStore
	logger   *slog.Logger
	workers  int

	mu     sync.Mutex
	active map[string]bool
}

// NewPipeline creates an ingestion pipeline. workers <= 0 takes
// DefaultPageWorkers; a nil logger falls back to slog.Default.
func NewPipeline(parser *pdf.Parser, embedder *embedding.Embedder, store UnitStore, logger *slog.Logger, workers int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = DefaultPageWorkers
	}
	return &Pipeline{
		parser:   parser,
		embedder: embedder,
		store:    store,
		logger:   logger,
		workers:  workers,
		active:   make(map[string]bool),
	}
}

// IngestFile ingests the PDF at path, identified by its base file name.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	docID := filepath.Base(path)

	if !p.acquire(docID) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentBusy, docID)
	}
	defer p.release(docID)

	start := time.Now()

	parsed, err := p.parser.ParseFile(path, docID)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", docID, err)
	}
	for _, w := range parsed.Warnings {
		p.logger.Warn("page skipped during ingestion",
			"document", docID, "page", w.Page, "reason", w.Reason)
	}

	return p.index(ctx, start, parsed)
}

// index embeds and stores the parsed units and builds the ingestion report.
func (p *Pipeline) index(ctx context.Context, start time.Time, parsed *pdf.Result) (*IngestResult, error) {
	docID := parsed.DocumentID

	units, err := p.embedUnits(ctx, parsed.Units)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", docID, err)
	}

	if len(units) > 0 {
		if err := p.store.UpsertUnits(ctx, units); err != nil {
			return nil, fmt.Errorf("index %s: %w", docID, err)
		}
	}

	stored, err := p.store.CountDocumentUnits(ctx, docID)
	if err != nil {
		// The upsert succeeded; a failed count only degrades the report.
		p.logger.Warn("could not count stored units", "document", docID, "error", err)
		stored = uint64(len(units))
	}

	result := &IngestResult{
		DocumentID:   docID,
		PageCount:    parsed.PageCount,
		TextPages:    parsed.TextPages(),
		Tables:       parsed.Tables(),
		IndexedUnits: len(units),
		StoredUnits:  int(stored),
		SkippedPages: parsed.Warnings,
		Duration:     time.Since(start),
	}

	p.logger.Info("document ingested",
		"document", docID,
		"text_pages", result.TextPages,
		"tables", result.Tables,
		"indexed", result.IndexedUnits,
		"stored", result.StoredUnits,
		"skipped_pages", len(result.SkippedPages),
		"duration", result.Duration,
	)

	return result, nil
}

// IngestAll ingests every path, continuing past per-document failures and
// reporting them in the batch result.
func (p *Pipeline) IngestAll(ctx context.Context, paths []string) *BatchResult {
	start := time.Now()
	batch := &BatchResult{}

	for _, path := range paths {
		result, err := p.IngestFile(ctx, path)
		if err != nil {
			p.logger.Warn("document failed to ingest", "path", path, "error", err)
			batch.FailedDocs = append(batch.FailedDocs, FailedDoc{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}
		batch.Results = append(batch.Results, result)
	}

	batch.Duration = time.Since(start)
	return batch
}

// embedUnits attaches embeddings, with pages processed by parallel workers.
// Pages have no inter-page data dependency, but all units are collected
// before the batch handoff, flattened back into page order.
func (p *Pipeline) embedUnits(ctx context.Context, units []pdf.Unit) ([]storage.ContentUnit, error) {
	pages := groupByPage(units)

	embedded := make([][]storage.ContentUnit, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, pageUnits := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			converted := make([]storage.ContentUnit, len(pageUnits))
			for j, u := range pageUnits {
				converted[j] = storage.ContentUnit{
					DocumentID:  u.DocumentID,
					PageNumber:  u.Page,
					ContentType: string(u.Type),
					RawText:     u.Text,
					Embedding:   p.embedder.Embed(u.Text),
				}
			}
			embedded[i] = converted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []storage.ContentUnit
	for _, pageUnits := range embedded {
		out = append(out, pageUnits...)
	}
	return out, nil
}

// groupByPage splits units into per-page groups ordered by page number.
func groupByPage(units []pdf.Unit) [][]pdf.Unit {
	byPage := make(map[int][]pdf.Unit)
	for _, u := range units {
		byPage[u.Page] = append(byPage[u.Page], u)
	}

	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	groups := make([][]pdf.Unit, len(pages))
	for i, page := range pages {
		groups[i] = byPage[page]
	}
	return groups
}

func (p *Pipeline) acquire(docID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[docID] {
		return false
	}
	p.active[docID] = true
	return true
}

func (p *Pipeline) release(docID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, docID)
}
