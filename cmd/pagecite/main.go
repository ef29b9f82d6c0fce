// Package main provides the pagecite CLI for ingesting PDF documents and
// retrieving page-cited evidence.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hollis/pagecite/internal/embedding"
	"github.com/hollis/pagecite/internal/evidence"
	"github.com/hollis/pagecite/internal/indexer"
	"github.com/hollis/pagecite/internal/pdf"
	"github.com/hollis/pagecite/internal/retrieval"
	"github.com/hollis/pagecite/internal/storage"
)

// extractPreviewLen caps how much of an extract the terminal output shows.
const extractPreviewLen = 350

var (
	flagPolicy string
	flagTopK   int
)

var rootCmd = &cobra.Command{
	Use:   "pagecite",
	Short: "Page-cited evidence retrieval over PDF documents",
	Long:  "Ingests PDFs into text and table units with page provenance and retrieves grounded, page-cited evidence for a query.",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Parse, embed and index one or more PDF documents",
	Long: `Parses each PDF into per-page narrative text and table units, embeds
them with the deterministic offline embedder and upserts them into Qdrant.

Re-ingesting an unchanged document overwrites its records; nothing is
duplicated. Pages that cannot be parsed are skipped and reported.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  EMBEDDING_DIM  Embedding dimension (default: 384)
  PAGE_WORKERS   Parallel page workers per document (default: 4)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query QUESTION",
	Short: "Retrieve page-cited evidence for a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index size and embedder version",
	RunE:  runStatus,
}

func init() {
	queryCmd.Flags().StringVar(&flagPolicy, "policy", "similarity", "retrieval policy: similarity or table-first")
	queryCmd.Flags().IntVar(&flagTopK, "top-k", retrieval.DefaultTopK, "maximum number of evidence entries")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect wires the embedder and the Qdrant-backed store from environment
// configuration.
func connect() (*storage.QdrantStorage, *embedding.Embedder, error) {
	embedder := embedding.NewEmbedder(getEnvInt("EMBEDDING_DIM", embedding.DefaultDimension))

	store, err := storage.NewQdrantStorage(
		getEnv("QDRANT_HOST", "localhost"),
		getEnvInt("QDRANT_PORT", 6334),
		embedder.Dimension(),
		embedder.Version(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to Qdrant: %w", err)
	}
	return store, embedder, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, embedder, err := connect()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	pipeline := indexer.NewPipeline(
		pdf.NewParser(nil),
		embedder,
		store,
		nil,
		getEnvInt("PAGE_WORKERS", indexer.DefaultPageWorkers),
	)

	batch := pipeline.IngestAll(ctx, args)

	for _, result := range batch.Results {
		fmt.Printf("%s: text_pages=%d, tables=%d\n",
			result.DocumentID, result.TextPages, result.Tables)
		fmt.Printf("  indexed %d units across %d pages (%d stored for this document)\n",
			result.IndexedUnits, result.PageCount, result.StoredUnits)
		for _, skipped := range result.SkippedPages {
			fmt.Printf("  skipped page %d: %s\n", skipped.Page, skipped.Reason)
		}
	}

	if len(batch.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents:")
		for _, failed := range batch.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.Path, failed.Reason)
		}
		return fmt.Errorf("%d of %d documents failed to ingest",
			len(batch.FailedDocs), len(args))
	}

	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := args[0]

	policy, err := retrieval.ParsePolicy(flagPolicy)
	if err != nil {
		return err
	}

	store, embedder, err := connect()
	if err != nil {
		return err
	}
	defer store.Close()

	retriever := retrieval.NewRetriever(store, embedder, nil)
	candidates, err := retriever.Retrieve(ctx, question, policy, flagTopK, 0)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println("No results.")
		return nil
	}

	entries := evidence.Assemble(candidates)

	fmt.Println("=== EVIDENCE (page order) ===")
	for _, entry := range entries {
		fmt.Printf("%d. [%s] %s p.%d\n   %s\n",
			entry.DisplayRank, entry.ContentType, entry.DocumentID, entry.PageNumber,
			preview(entry.RawText))
	}

	fmt.Println()
	fmt.Println("=== SOURCES ===")
	for _, citation := range evidence.Citations(entries) {
		fmt.Printf("- %s\n", citation)
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, embedder, err := connect()
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.GetCollectionInfo(ctx)
	if err != nil {
		return fmt.Errorf("collection info: %w", err)
	}
	indexedVersion, err := store.StoredVersion(ctx)
	if err != nil {
		return fmt.Errorf("stored version: %w", err)
	}

	fmt.Printf("Indexed units:    %d\n", info.PointsCount)
	fmt.Printf("Embedder version: %s\n", embedder.Version())
	if indexedVersion == "" {
		fmt.Println("Index version:    (empty index)")
	} else {
		fmt.Printf("Index version:    %s\n", indexedVersion)
		if indexedVersion != embedder.Version() {
			fmt.Println("WARNING: index was built with a different embedder version; re-ingest before querying")
		}
	}

	return nil
}

// preview flattens an extract to one truncated display line.
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) > extractPreviewLen {
		return flat[:extractPreviewLen] + "..."
	}
	return flat
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
