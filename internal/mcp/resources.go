// ABOUTME: MCP resource implementations for pulse.
// ABOUTME: Provides pulse://recent and pulse://latest resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/storage"
)

func (s *Server) registerResources() {
	// pulse://recent - last two weeks of daily records
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "pulse://recent",
		Name:        "Recent Daily Records",
		Description: "Last 14 days of physiological metrics and body composition",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// pulse://latest - the newest record of each kind
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "pulse://latest",
		Name:        "Latest Records",
		Description: "Most recent daily record and body composition",
		MIMEType:    "application/json",
	}, s.handleLatestResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	daily, err := s.store.ListDailyRecords(14)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	body, err := s.store.ListBodyCompositions(14)
	if err != nil {
		return nil, fmt.Errorf("failed to list body compositions: %w", err)
	}

	result := map[string]any{
		"daily": daily,
		"body":  body,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "pulse://recent",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	result := map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
	}

	daily, err := s.store.ListDailyRecords(1)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	if len(daily) > 0 {
		result["daily"] = daily[0]
		body, err := s.store.GetBodyComposition(daily[0].Date)
		if err == nil {
			result["body"] = body
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to get body composition: %w", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "pulse://latest",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
