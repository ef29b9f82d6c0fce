// Package main provides the MCP server entry point for page-cited evidence
// retrieval over ingested PDF documents.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/indexer"
	mcpserver "github.com/hollis/pagecite/internal/mcp"
	"github.com/hollis/pagecite/internal/pdf"
	"github.com/hollis/pagecite/internal/retrieval"
	"github.com/hollis/pagecite/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing.
	_ = godotenv.Load()

	logger := newLogger()
	slog.SetDefault(logger)

	// Create context that cancels on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	qdrantHost := getEnv("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)
	port := getEnv("PORT", "8080")

	embedder := embedding.NewEmbedder(getEnvInt("EMBEDDING_DIM", embedding.DefaultDimension))

	store, err := storage.NewQdrantStorage(qdrantHost, qdrantPort, embedder.Dimension(), embedder.Version())
	if err != nil {
		logger.Error("failed to connect to Qdrant", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		logger.Error("failed to ensure collection", "error", err)
		os.Exit(1)
	}

	pipeline := indexer.NewPipeline(
		pdf.NewParser(logger),
		embedder,
		store,
		logger,
		getEnvInt("PAGE_WORKERS", indexer.DefaultPageWorkers),
	)
	retriever := retrieval.NewRetriever(store, embedder, logger)

	server := mcpserver.NewServer(&mcpserver.Config{
		Storage:   store,
		Embedder:  embedder,
		Retriever: retriever,
		Pipeline:  pipeline,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store, embedder.Version()))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, false))

	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients.
		addr := "0.0.0.0:" + port
		logger.Info("starting HTTP server", "addr", addr, "mcp", "/mcp", "health", "/health")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Stdio mode: run MCP over stdin/stdout, with the health endpoint in the
	// background for local testing.
	go func() {
		addr := "0.0.0.0:" + port
		logger.Info("starting health server", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("health server error", "error", err)
		}
	}()

	logger.Info("starting pagecite MCP server (stdio mode)")
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds a JSON slog logger with the level taken from LOG_LEVEL.
func newLogger() *slog.Logger {
	var level slog.Level
	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "pagecite")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
