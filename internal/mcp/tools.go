// ABOUTME: MCP tool implementations for pulse.
// ABOUTME: Record lookups, listings, and on-demand collection runs.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/collector"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/storage"
)

func (s *Server) registerTools() {
	// get_daily_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_daily_record",
		Description: "Get the daily physiological metrics record for a date (YYYY-MM-DD)",
	}, s.handleGetDailyRecord)

	// list_daily_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_daily_records",
		Description: "List recent daily records, newest first",
	}, s.handleListDailyRecords)

	// get_body_composition
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_body_composition",
		Description: "Get the body composition record for a date (YYYY-MM-DD)",
	}, s.handleGetBodyComposition)

	// collect_date
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "collect_date",
		Description: "Fetch vendor data for a date and merge it into the store",
	}, s.handleCollectDate)
}

// Tool input/output types

type dateInput struct {
	Date string `json:"date" jsonschema:"Date in YYYY-MM-DD format"`
}

type listInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 14)"`
}

type collectInput struct {
	Date   string   `json:"date" jsonschema:"Date in YYYY-MM-DD format"`
	Groups []string `json:"groups,omitempty" jsonschema:"Metric groups to collect (sleep, cardio, activity, body); all when omitted"`
}

type collectOutput struct {
	RunID   string              `json:"run_id"`
	Results []map[string]string `json:"results"`
	Message string              `json:"message"`
}

// Tool handlers

func (s *Server) handleGetDailyRecord(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date, err := models.ParseDateKey(input.Date)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.store.GetDailyRecord(date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, map[string]any{"message": fmt.Sprintf("No record for %s.", date)}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get daily record: %w", err)
	}
	return nil, rec, nil
}

func (s *Server) handleListDailyRecords(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 14
	}

	records, err := s.store.ListDailyRecords(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	if len(records) == 0 {
		return nil, map[string]any{"message": "No records found."}, nil
	}
	return nil, records, nil
}

func (s *Server) handleGetBodyComposition(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date, err := models.ParseDateKey(input.Date)
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.store.GetBodyComposition(date)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, map[string]any{"message": fmt.Sprintf("No body composition for %s.", date)}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get body composition: %w", err)
	}
	return nil, rec, nil
}

func (s *Server) handleCollectDate(ctx context.Context, req *mcp.CallToolRequest, input collectInput) (*mcp.CallToolResult, collectOutput, error) {
	if s.collector == nil {
		return nil, collectOutput{}, errors.New("no vendor credentials configured")
	}

	date, err := models.ParseDateKey(input.Date)
	if err != nil {
		return nil, collectOutput{}, err
	}

	var groups []collector.MetricGroup
	for _, name := range input.Groups {
		g, err := collector.ParseGroup(name)
		if err != nil {
			return nil, collectOutput{}, err
		}
		groups = append(groups, g)
	}

	report := s.collector.CollectDate(ctx, date, groups)

	out := collectOutput{RunID: report.RunID.String()}
	for _, g := range report.Groups {
		result := map[string]string{
			"group":   string(g.Group),
			"date":    g.Date.String(),
			"outcome": string(g.Outcome),
		}
		if g.Err != nil {
			result["error"] = g.Err.Error()
		}
		if len(g.Warnings) > 0 {
			parts := make([]string, len(g.Warnings))
			for i, w := range g.Warnings {
				parts[i] = w.Error()
			}
			result["warnings"] = strings.Join(parts, "; ")
		}
		out.Results = append(out.Results, result)
	}
	if report.Failed() {
		out.Message = "Collection finished with failures."
	} else {
		out.Message = fmt.Sprintf("Collected %d group(s) for %s.", len(report.Groups), date)
	}
	return nil, out, nil
}
