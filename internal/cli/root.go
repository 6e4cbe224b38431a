// Package cli implements the csevo command line interface. The CLI is
// the display collaborator of the derivation pipeline: it supplies raw
// parameters and renders the finished series, nothing more.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "text" | "json"
	ConfigPath  string
	ArchivePath string // empty disables archiving
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the csevo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "csevo",
		Short: "csevo - charge-state evolution derivations",
		Long: "Derives plot-ready charge-state abundance series from EBIS/T\n" +
			"breeding parameters: figures, temporal slices, peak times, and\n" +
			"cross-section scans.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}

			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.ArchivePath, "archive", "", "record derivations in this SQLite file")

	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewSliceCommand(opts))
	cmd.AddCommand(NewPeaksCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewElementsCommand(opts))
	cmd.AddCommand(NewRecentCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
