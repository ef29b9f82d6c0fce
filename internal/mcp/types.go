// Package mcp exposes ingestion and evidence retrieval to MCP clients.
package mcp

// SearchEvidenceInput defines the input parameters for the search_evidence tool.
type SearchEvidenceInput struct {
	// Query is the question to retrieve evidence for.
	Query string `json:"query" jsonschema:"required,description=The question to retrieve page-cited evidence for"`
	// Policy selects the retrieval policy: "similarity" (default) or "table_first".
	Policy string `json:"policy,omitempty" jsonschema:"description=Retrieval policy: similarity (default) or table_first"`
	// TopK is the maximum number of evidence entries to return.
	TopK int `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of evidence entries to return"`
}

// EvidenceResult is one page-cited extract in the assembled evidence list.
type EvidenceResult struct {
	// DocumentID identifies the source file.
	DocumentID string `json:"document_id"`
	// PageNumber is the 1-based source page.
	PageNumber int `json:"page_number"`
	// ContentType labels the extract: "text" or "table".
	ContentType string `json:"content_type"`
	// Text is the verbatim retrieved extract.
	Text string `json:"text"`
	// DisplayRank is the position in the page-ordered list.
	DisplayRank int `json:"display_rank"`
}

// RankedResult is one raw similarity-ranked candidate, for consumers that
// need the unassembled ordering. Vectors are never exposed.
type RankedResult struct {
	DocumentID  string  `json:"document_id"`
	PageNumber  int     `json:"page_number"`
	ContentType string  `json:"content_type"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// SearchEvidenceOutput contains the assembled evidence and its citations.
type SearchEvidenceOutput struct {
	// Entries is the page-ordered evidence list.
	Entries []EvidenceResult `json:"entries"`
	// Ranked is the similarity-ordered candidate list the entries came from.
	Ranked []RankedResult `json:"ranked"`
	// Citations lists deduplicated "document – p.N" source references.
	Citations []string `json:"citations"`
	// Message provides informational context (e.g. no matching content).
	Message string `json:"message,omitempty"`
}

// IngestDocumentInput defines the input parameters for the ingest_document tool.
type IngestDocumentInput struct {
	// Path is the local path of the PDF to ingest.
	Path string `json:"path" jsonschema:"required,description=Local filesystem path of the PDF document to ingest"`
}

// SkippedPage reports a page that could not be parsed during ingestion.
type SkippedPage struct {
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// IngestDocumentOutput is the per-document ingestion report. IndexedUnits
// counts units written by this run; StoredUnits is the store's total for the
// document, including records left over from earlier ingests.
type IngestDocumentOutput struct {
	DocumentID   string        `json:"document_id"`
	PageCount    int           `json:"page_count"`
	TextPages    int           `json:"text_pages"`
	Tables       int           `json:"tables"`
	IndexedUnits int           `json:"indexed_units"`
	StoredUnits  int           `json:"stored_units"`
	SkippedPages []SkippedPage `json:"skipped_pages"`
}

// IndexStatusInput defines the input for the get_index_status tool.
// The tool takes no parameters.
type IndexStatusInput struct{}

// IndexStatusOutput reports index size and embedder configuration.
type IndexStatusOutput struct {
	// Units is the total number of indexed content units.
	Units uint64 `json:"units"`
	// EmbedderVersion is the configuration stamp of the current embedder.
	EmbedderVersion string `json:"embedder_version"`
	// IndexedVersion is the stamp found on stored records ("" when empty).
	IndexedVersion string `json:"indexed_version"`
}
