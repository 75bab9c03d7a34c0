package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
)

const opCLIBlame = "cli.blame"

// NewBlameCommand creates the blame subcommand.
func NewBlameCommand(opts *Options) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "blame FILE",
		Short: "Show which commit last modified each line of a file",
		Long: `Show the commit, author and summary behind every line of FILE at its
current revision. --from and --to restrict the output to an inclusive
1-based line window; lines past the end of the file are simply absent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			req := attribution.BlameRequest{FilePath: path}

			if cmd.Flags().Changed("from") {
				req.LineFrom = &from
			}

			if cmd.Flags().Changed("to") {
				req.LineTo = &to
			}

			rt, err := newRuntime(opts, observability.ModeCLI)
			if err != nil {
				return err
			}

			defer rt.close()

			return rt.metrics.Observe(cmd.Context(), opCLIBlame, func(ctx context.Context) error {
				result, blameErr := rt.service.Blame(ctx, req)
				if blameErr != nil {
					return blameErr
				}

				return renderBlame(cmd.OutOrStdout(), format, result)
			})
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "first line to show, 1-based")
	cmd.Flags().IntVar(&to, "to", 0, "last line to show, inclusive")

	return cmd
}
