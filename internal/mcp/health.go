package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

// HealthChecker is the slice of the storage layer the health endpoint needs.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// healthResponse is the /health payload. VectorStore reports reachability of
// the evidence index; EmbedderVersion identifies the vectors it must hold.
type healthResponse struct {
	Status          string `json:"status"`
	VectorStore     string `json:"vector_store"`
	EmbedderVersion string `json:"embedder_version"`
	CheckedAt       string `json:"checked_at"`
}

// NewHealthHandler serves /health: 200 when the vector store responds within
// the check timeout, 503 otherwise.
func NewHealthHandler(store HealthChecker, embedderVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{
			Status:          "ok",
			VectorStore:     "reachable",
			EmbedderVersion: embedderVersion,
			CheckedAt:       time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK

		if err := store.Health(ctx); err != nil {
			resp.Status = "degraded"
			resp.VectorStore = "unreachable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(resp)
	}
}
