package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"healthdash/internal/analysis"
	"healthdash/internal/service"
	"healthdash/internal/store"
)

// ErrAlertsReadOnly is returned by alert tools that need the store in demo mode
var ErrAlertsReadOnly = errors.New("alert history is not available in demo mode")

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_overview",
		Description: "Today's dashboard: activity, sleep score, weekly goals, readiness and recovery",
	}, s.handleOverview)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day",
		Description: "Full dashboard for a single day",
	}, s.handleDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_calendar",
		Description: "Month calendar of daily metrics with the weekly summary",
	}, s.handleCalendar)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_insights",
		Description: "Coaching insights of one kind: steps, sleep, conditioning, rhr, recovery, trends, correlations or goals",
	}, s.handleInsights)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "evaluate_alerts",
		Description: "Run the alert rules for today and return the triggered alerts",
	}, s.handleEvaluateAlerts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_alerts",
		Description: "List recent alerts, newest first",
	}, s.handleListAlerts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_alert",
		Description: "Mark an alert as resolved",
	}, s.handleResolveAlert)
}

type emptyInput struct{}

type dayInput struct {
	Date string `json:"date,omitempty" jsonschema:"day to load as YYYY-MM-DD, defaults to today"`
}

type calendarInput struct {
	Month string `json:"month,omitempty" jsonschema:"month to load as YYYY-MM, defaults to the current month"`
}

type insightsInput struct {
	Kind string `json:"kind" jsonschema:"one of steps, sleep, conditioning, rhr, recovery, trends, correlations, goals"`
}

type listAlertsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max results, default 20, at most 100"`
}

type resolveAlertInput struct {
	ID string `json:"id" jsonschema:"alert ID"`
}

type alertsOutput struct {
	Alerts []store.AlertEvent `json:"alerts"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

func (s *Server) handleOverview(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	out, err := s.insights.Overview(ctx, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("loading overview: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleDay(ctx context.Context, req *mcp.CallToolRequest, input dayInput) (*mcp.CallToolResult, any, error) {
	day := analysis.Today(s.now())
	if input.Date != "" {
		d, err := analysis.ParseDayKey(input.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", input.Date)
		}
		day = d
	}

	out, err := s.insights.Day(ctx, day)
	if err != nil {
		return nil, nil, fmt.Errorf("loading day: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleCalendar(ctx context.Context, req *mcp.CallToolRequest, input calendarInput) (*mcp.CallToolResult, any, error) {
	now := s.now()
	month := analysis.Today(now)
	if input.Month != "" {
		m, err := time.Parse(analysis.MonthKeyLayout, input.Month)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid month %q, want YYYY-MM", input.Month)
		}
		month = m
	}

	out, err := s.insights.Calendar(ctx, month, now)
	if err != nil {
		return nil, nil, fmt.Errorf("loading calendar: %w", err)
	}
	return nil, out, nil
}

func (s *Server) handleInsights(ctx context.Context, req *mcp.CallToolRequest, input insightsInput) (*mcp.CallToolResult, any, error) {
	out, err := service.LoadInsight(ctx, s.insights, input.Kind, s.now())
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) handleEvaluateAlerts(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, alertsOutput, error) {
	events, err := s.alerter.EvaluateAlerts(ctx, s.now())
	if err != nil {
		return nil, alertsOutput{}, fmt.Errorf("evaluating alerts: %w", err)
	}
	s.logger.Info("alerts evaluated via mcp", "count", len(events))
	return nil, alertsOutput{Alerts: events}, nil
}

func (s *Server) handleListAlerts(ctx context.Context, req *mcp.CallToolRequest, input listAlertsInput) (*mcp.CallToolResult, alertsOutput, error) {
	if s.alerts == nil {
		return nil, alertsOutput{}, ErrAlertsReadOnly
	}
	events, err := s.alerts.ListAlerts(ctx, input.Limit)
	if err != nil {
		return nil, alertsOutput{}, fmt.Errorf("listing alerts: %w", err)
	}
	return nil, alertsOutput{Alerts: events}, nil
}

func (s *Server) handleResolveAlert(ctx context.Context, req *mcp.CallToolRequest, input resolveAlertInput) (*mcp.CallToolResult, simpleOutput, error) {
	if s.alerts == nil {
		return nil, simpleOutput{}, ErrAlertsReadOnly
	}
	if input.ID == "" {
		return nil, simpleOutput{}, errors.New("id is required")
	}
	if err := s.alerts.ResolveAlert(ctx, input.ID, s.now()); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Resolved alert %s", input.ID)}, nil
}
