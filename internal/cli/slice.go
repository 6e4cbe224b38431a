package cli

import (
	"github.com/spf13/cobra"
)

// SliceOptions holds flags for the slice command.
type SliceOptions struct {
	At float64
}

// NewSliceCommand creates the slice command: interpolate the
// abundance figure at one query time.
func NewSliceCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &requestFlags{}
	opts := &SliceOptions{}

	cmd := &cobra.Command{
		Use:   "slice",
		Short: "Interpolate abundances at a query time",
		Long: `Derive the abundance figure and linearly interpolate every charge
state at the query time. Times outside the simulated window clamp to
the window edges.

Example:
  csevo slice -z 20 --breed-time-ms 200 --at 0.1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlice(cmd, rootOpts, flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&opts.At, "at", 0, "query time (s)")
	cmd.MarkFlagRequired("at")

	return cmd
}

func runSlice(cmd *cobra.Command, rootOpts *RootOptions, flags *requestFlags, opts *SliceOptions) error {
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

	points, err := p.SliceAtTime(fig, opts.At)
	if err != nil {
		return asCommandError(err)
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(points)
	}

	out.Printf("Abundances at t=%v s\n\n", opts.At)
	out.Printf("%-6s %12s\n", "state", "abundance")
	for _, pt := range points {
		out.Printf("%-6d %12.6f\n", pt.ChargeState, pt.Value)
	}
	return nil
}
