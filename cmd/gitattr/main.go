// Package main provides the entry point for the gitattr CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitattr/cmd/gitattr/commands"
	"github.com/Sumatoshi-tech/gitattr/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	var opts commands.Options

	rootCmd := &cobra.Command{
		Use:   "gitattr",
		Short: "Line attribution and commit detail for git repositories",
		Long: `gitattr reports which commit last touched each line of a file and
describes individual commits, for humans and for AI agents.

Commands:
  blame     Per-line attribution of a file
  show      Metadata, changed files and diff of a commit
  mcp       Serve both as MCP tools over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.BindPersistentFlags(rootCmd, &opts)

	rootCmd.AddCommand(commands.NewBlameCommand(&opts))
	rootCmd.AddCommand(commands.NewShowCommand(&opts))
	rootCmd.AddCommand(commands.NewMCPCommand(&opts))
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitattr %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
