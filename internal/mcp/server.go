package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"healthdash/internal/service"
	"healthdash/internal/store"
)

// AlertManager is the persisted side of alerts, absent in demo mode
type AlertManager interface {
	ListAlerts(ctx context.Context, limit int) ([]store.AlertEvent, error)
	ResolveAlert(ctx context.Context, id string, now time.Time) error
}

// Server exposes the dashboard payloads as MCP tools
type Server struct {
	mcpServer *mcp.Server
	insights  service.Insights
	alerter   service.Alerter
	alerts    AlertManager
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithAlertManager enables the list and resolve alert tools
func WithAlertManager(m AlertManager) Option {
	return func(s *Server) {
		s.alerts = m
	}
}

// WithClock sets the reference time for every tool call
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates an MCP server over the given insights and alert evaluator
func NewServer(insights service.Insights, alerter service.Alerter, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "healthdash",
			Version: "1.0.0",
		}, nil),
		insights: insights,
		alerter:  alerter,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the server over stdio until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
