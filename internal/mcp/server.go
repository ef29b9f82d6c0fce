package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/indexer"
	"github.com/hollis/pagecite/internal/retrieval"
	"github.com/hollis/pagecite/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server    *mcp.Server
	storage   *storage.QdrantStorage
	retriever *retrieval.Retriever
	pipeline  *indexer.Pipeline
}

// Config holds server dependencies.
type Config struct {
	Storage   *storage.QdrantStorage
	Embedder  *embedding.Embedder
	Retriever *retrieval.Retriever
	Pipeline  *indexer.Pipeline
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "pagecite-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_evidence",
		Description: "Retrieve page-cited evidence extracts from ingested PDF documents. Returns a page-ordered evidence list with citations plus the raw similarity ranking.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Parse a local PDF into text and table units, embed them and index them. Returns per-document counts and any skipped pages.",
	}, makeIngestHandler(cfg.Pipeline))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current index status: total indexed units and the embedder version stamps of the configuration and the stored records.",
	}, makeStatusHandler(cfg.Storage, cfg.Embedder))

	return &Server{
		server:    server,
		storage:   cfg.Storage,
		retriever: cfg.Retriever,
		pipeline:  cfg.Pipeline,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
