// Package mcp implements a Model Context Protocol server exposing line
// attribution and revision detail as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "gitattr"
	// defaultServerVersion is reported when ServerDeps.Version is empty.
	defaultServerVersion = "dev"

	// toolCount is the expected number of registered tools.
	toolCount = 2

	// mcpSpanPrefix is the prefix for MCP tool span names.
	mcpSpanPrefix = "mcp."
	// traceIDMetaKey is the key of the trace_id line appended to sampled results.
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value optional fields use production defaults.
type ServerDeps struct {
	// Attributor answers the tool calls. Required.
	Attributor Attributor

	// Version is reported to clients during initialization.
	Version string

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the gitattr tool registrations.
type Server struct {
	inner      *mcpsdk.Server
	attributor Attributor
	logger     *slog.Logger
	metrics    *observability.REDMetrics
	tracer     trace.Tracer

	mu    sync.RWMutex
	tools []string
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serverVersion := deps.Version
	if serverVersion == "" {
		serverVersion = defaultServerVersion
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{
		inner:      inner,
		attributor: deps.Attributor,
		logger:     logger,
		metrics:    deps.Metrics,
		tracer:     deps.Tracer,
		tools:      make([]string, 0, toolCount),
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameBlame,
		Description: blameToolDescription,
	}, withMetrics(s.metrics, ToolNameBlame, withTracing(s.tracer, ToolNameBlame, s.handleBlame)))

	s.trackTool(ToolNameBlame)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameCommitDetail,
		Description: commitDetailToolDescription,
	}, withMetrics(s.metrics, ToolNameCommitDetail, withTracing(s.tracer, ToolNameCommitDetail, s.handleCommitDetail)))

	s.trackTool(ToolNameCommitDetail)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// withTracing wraps a tool handler in a server span and appends the trace_id
// to the result content when the span is sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil && result.IsError {
			span.SetStatus(codes.Error, "tool returned an error result")
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{
				Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String()),
			})
		}

		return result, output, err
	}
}

// withMetrics wraps a tool handler to record RED metrics per invocation.
// Error results count as errors.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		var (
			result *mcpsdk.CallToolResult
			output ToolOutput
		)

		err := metrics.Observe(ctx, mcpSpanPrefix+toolName, func(ctx context.Context) error {
			var handlerErr error

			result, output, handlerErr = handler(ctx, req, input)
			if handlerErr == nil && result != nil && result.IsError {
				return errToolResult
			}

			return handlerErr
		})
		if errors.Is(err, errToolResult) {
			err = nil
		}

		return result, output, err
	}
}
