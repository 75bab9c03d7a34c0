package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitattr/pkg/mcp"
	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
	"github.com/Sumatoshi-tech/gitattr/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes two tools that AI agents can discover and invoke:
  - git_blame: per-line attribution of a file, optionally windowed
  - git_commit_detail: metadata, changed files and diff of a commit

Logs are written to stderr as JSON; stdout carries protocol frames only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(opts, observability.ModeMCP)
			if err != nil {
				return err
			}

			defer rt.close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Attributor: rt.service,
				Version:    version.Version,
				Logger:     rt.logger,
				Metrics:    rt.metrics,
				Tracer:     rt.tracer,
			})

			rt.logger.Info("mcp server starting", "tools", srv.ListToolNames())

			return srv.Run(cmd.Context())
		},
	}
}
