// ABOUTME: MCP server setup for the pulse metrics store.
// ABOUTME: Exposes stored records and on-demand collection over stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/collector"
	"github.com/harperreed/pulse/internal/storage"
)

// Server wraps the MCP server with storage and collector access.
type Server struct {
	mcpServer *mcp.Server
	store     *storage.DB
	collector *collector.Collector
}

// NewServer creates a new MCP server. col may be nil when no vendor
// credentials are configured; the collect_date tool then reports that.
func NewServer(store *storage.DB, col *collector.Collector) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pulse",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		collector: col,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
