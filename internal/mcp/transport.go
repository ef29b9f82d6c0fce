package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewHTTPHandler exposes the server over the Streamable HTTP transport,
// mountable on any mux path. Stateless mode disables session management;
// the evidence tools never issue server-to-client requests, so stateless
// suits single-shot clients.
func NewHTTPHandler(server *Server, stateless bool) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server.MCPServer()
	}, &mcp.StreamableHTTPOptions{Stateless: stateless})
}
