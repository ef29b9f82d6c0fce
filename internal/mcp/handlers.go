package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/evidence"
	"github.com/hollis/pagecite/internal/indexer"
	"github.com/hollis/pagecite/internal/retrieval"
	"github.com/hollis/pagecite/internal/storage"
)

// makeSearchHandler creates the search_evidence tool handler.
// Search flow:
// 1. Parse the retrieval policy (similarity by default)
// 2. Retrieve oversampled candidates and apply the policy ordering
// 3. Assemble the page-ordered evidence list with citations
// 4. Return both views: assembled entries and the raw ranked candidates
func makeSearchHandler(retriever *retrieval.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchEvidenceInput,
) (*mcp.CallToolResult, SearchEvidenceOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchEvidenceInput) (
		*mcp.CallToolResult, SearchEvidenceOutput, error,
	) {
		policy, err := retrieval.ParsePolicy(input.Policy)
		if err != nil {
			return nil, SearchEvidenceOutput{}, err
		}

		candidates, err := retriever.Retrieve(ctx, input.Query, policy, input.TopK, 0)
		if err != nil {
			return nil, SearchEvidenceOutput{}, fmt.Errorf("retrieval failed: %w", err)
		}

		if len(candidates) == 0 {
			return nil, SearchEvidenceOutput{
				Entries:   []EvidenceResult{},
				Ranked:    []RankedResult{},
				Citations: []string{},
				Message:   "No matching content found. Try broader terms or ingest more documents.",
			}, nil
		}

		entries := evidence.Assemble(candidates)

		output := SearchEvidenceOutput{
			Entries:   make([]EvidenceResult, len(entries)),
			Ranked:    make([]RankedResult, len(candidates)),
			Citations: make([]string, 0, len(entries)),
		}
		for i, e := range entries {
			output.Entries[i] = EvidenceResult{
				DocumentID:  e.DocumentID,
				PageNumber:  e.PageNumber,
				ContentType: e.ContentType,
				Text:        e.RawText,
				DisplayRank: e.DisplayRank,
			}
		}
		for i, c := range candidates {
			output.Ranked[i] = RankedResult{
				DocumentID:  c.Unit.DocumentID,
				PageNumber:  c.Unit.PageNumber,
				ContentType: c.Unit.ContentType,
				Text:        c.Unit.RawText,
				Score:       c.Score,
				Rank:        c.Rank,
			}
		}
		for _, c := range evidence.Citations(entries) {
			output.Citations = append(output.Citations, c.String())
		}

		return nil, output, nil
	}
}

// makeIngestHandler creates the ingest_document tool handler. Per-page
// failures are reported in the output, not surfaced as tool errors.
func makeIngestHandler(pipeline *indexer.Pipeline) func(
	context.Context, *mcp.CallToolRequest, IngestDocumentInput,
) (*mcp.CallToolResult, IngestDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IngestDocumentInput) (
		*mcp.CallToolResult, IngestDocumentOutput, error,
	) {
		result, err := pipeline.IngestFile(ctx, input.Path)
		if err != nil {
			return nil, IngestDocumentOutput{}, fmt.Errorf("ingestion failed: %w", err)
		}

		output := IngestDocumentOutput{
			DocumentID:   result.DocumentID,
			PageCount:    result.PageCount,
			TextPages:    result.TextPages,
			Tables:       result.Tables,
			IndexedUnits: result.IndexedUnits,
			StoredUnits:  result.StoredUnits,
			SkippedPages: make([]SkippedPage, len(result.SkippedPages)),
		}
		for i, w := range result.SkippedPages {
			output.SkippedPages[i] = SkippedPage{Page: w.Page, Reason: w.Reason}
		}

		return nil, output, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(store *storage.QdrantStorage, embedder *embedding.Embedder) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		info, err := store.GetCollectionInfo(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to read collection info: %w", err)
		}
		indexedVersion, err := store.StoredVersion(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("failed to read stored version: %w", err)
		}

		return nil, IndexStatusOutput{
			Units:           info.PointsCount,
			EmbedderVersion: embedder.Version(),
			IndexedVersion:  indexedVersion,
		}, nil
	}
}
