package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const overviewURI = "healthdash://overview"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         overviewURI,
		Name:        "Today's Health Overview",
		Description: "Activity, sleep, goals, readiness and recovery for today",
		MIMEType:    "application/json",
	}, s.handleOverviewResource)
}

func (s *Server) handleOverviewResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	overview, err := s.insights.Overview(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("loading overview: %w", err)
	}

	data, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding overview: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      overviewURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
