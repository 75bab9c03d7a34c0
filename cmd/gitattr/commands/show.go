package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
)

const opCLIShow = "cli.show"

// NewShowCommand creates the show subcommand.
func NewShowCommand(opts *Options) *cobra.Command {
	var includeDiff, includeFileDiffs bool

	cmd := &cobra.Command{
		Use:   "show REVISION FILE",
		Short: "Show the metadata, changed files and diff of a commit",
		Long: `Show the author, committer, message and changed files of REVISION in
the repository that contains FILE. REVISION is anything git rev-parse
accepts: a full or abbreviated hash, a branch, a tag or HEAD~2.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}

			req := attribution.RevisionDetailRequest{
				CommitHash:       args[0],
				FilePath:         path,
				IncludeDiff:      includeDiff,
				IncludeFileDiffs: includeFileDiffs,
			}

			rt, err := newRuntime(opts, observability.ModeCLI)
			if err != nil {
				return err
			}

			defer rt.close()

			return rt.metrics.Observe(cmd.Context(), opCLIShow, func(ctx context.Context) error {
				detail, detailErr := rt.service.RevisionDetail(ctx, req)
				if detailErr != nil {
					return detailErr
				}

				return renderDetail(cmd.OutOrStdout(), format, detail)
			})
		},
	}

	cmd.Flags().BoolVar(&includeDiff, "diff", false, "include the full diff (implies --file-diffs)")
	cmd.Flags().BoolVar(&includeFileDiffs, "file-diffs", false, "attach a patch to every changed file")

	return cmd
}
