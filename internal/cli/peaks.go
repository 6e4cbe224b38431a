package cli

import (
	"github.com/spf13/cobra"
)

// NewPeaksCommand creates the peaks command: the time of maximal
// abundance per charge state.
func NewPeaksCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "peaks",
		Short: "Extract the peak abundance time per charge state",
		Long: `Derive the abundance figure and report, for every charge state, the
time at which its abundance is maximal. Ties resolve to the earliest
sample.

Example:
  csevo peaks -z 20 --breed-time-ms 200 --archive runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeaks(cmd, rootOpts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runPeaks(cmd *cobra.Command, rootOpts *RootOptions, flags *requestFlags) error {
	p, cfg, err := buildPipeline(rootOpts)
	if err != nil {
		return err
	}
	req, err := flags.toRequest(cmd, cfg)
	if err != nil {
		return err
	}

	fig, err := deriveWarned(cmd, p, req)
	if err != nil {
		return err
	}

	peaks, err := p.PeakTimes(fig)
	if err != nil {
		return asCommandError(err)
	}

	if err := maybeArchive(cmd, rootOpts, p, req, fig); err != nil {
		return err
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(peaks)
	}

	out.Printf("%-6s %12s\n", "state", "peak (s)")
	for _, pk := range peaks {
		out.Printf("%-6d %12.6f\n", pk.ChargeState, pk.Time)
	}
	return nil
}
