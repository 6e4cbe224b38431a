package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/archive"
)

// RecentOptions holds flags for the recent command.
type RecentOptions struct {
	Limit int
}

// NewRecentCommand creates the recent command: list archived
// derivations, newest first.
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecentOptions{}

	cmd := &cobra.Command{
		Use:           "recent",
		Short:         "List archived derivations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to list")
	return cmd
}

func runRecent(cmd *cobra.Command, rootOpts *RootOptions, opts *RecentOptions) error {
	if rootOpts.ArchivePath == "" {
		return WrapExitError(ExitCommandError, "recent requires --archive", nil)
	}

	a, err := archive.Open(rootOpts.ArchivePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening archive", err)
	}
	defer a.Close()

	entries, err := a.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "listing archive", err)
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(entries)
	}

	out.Printf("%-36s %-25s %4s %10s %10s\n", "id", "created", "Z", "j", "t (s)")
	for _, e := range entries {
		out.Printf("%-36s %-25s %4d %10v %10v\n",
			e.ID, e.CreatedAt.Format(time.RFC3339), e.Request.Species,
			e.Request.CurrentDensity, e.Request.BreedTime)
	}
	return nil
}
