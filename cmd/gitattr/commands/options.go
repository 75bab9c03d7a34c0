// Package commands implements the gitattr subcommands.
package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrInvalidFormat is returned for an unknown --format value.
var ErrInvalidFormat = errors.New("format must be table, json or yaml")

// Options are the persistent flags shared by every subcommand. Non-zero
// values override the configuration file.
type Options struct {
	ConfigPath string
	Debug      bool
	GitBinary  string
	Timeout    time.Duration
	Format     string
}

// BindPersistentFlags registers the shared flags on root.
func BindPersistentFlags(root *cobra.Command, opts *Options) {
	flags := root.PersistentFlags()

	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: gitattr.yaml in ., ~/.config/gitattr, /etc/gitattr)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging and full trace sampling")
	flags.StringVar(&opts.GitBinary, "git-binary", "", "git executable to run (overrides git.binary)")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "per git command timeout (overrides git.command_timeout)")
	flags.StringVarP(&opts.Format, "format", "f", FormatTable, "output format: table, json or yaml")
}

func (o *Options) outputFormat() (string, error) {
	switch o.Format {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return o.Format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, o.Format)
	}
}
