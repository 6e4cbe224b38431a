package cli

import (
	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/params"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	Species string
	Kind    string
	Fwhm    string
	Samples int
}

// NewScanCommand creates the scan command: cross sections over an
// energy grid for one process kind.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan cross sections over electron energy",
		Long: `Evaluate per-charge-state cross sections over a log-spaced energy
grid. Kinds: ionisation, recombination, dielectronic-recombination
(the last consumes --fwhm; 0 disables it).

Example:
  csevo scan -z 20 --kind dielectronic-recombination --fwhm 50`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Species, "species", "z", "", "nuclear charge Z of the element (2-105)")
	cmd.Flags().StringVar(&opts.Kind, "kind", string(params.ScanIonisation), "scan kind")
	cmd.Flags().StringVar(&opts.Fwhm, "fwhm", "0", "energy spread FWHM (eV), dielectronic only")
	cmd.Flags().IntVar(&opts.Samples, "samples", 512, "energy grid points")

	return cmd
}

func runScan(cmd *cobra.Command, rootOpts *RootOptions, opts *ScanOptions) error {
	p, cfg, err := buildPipeline(rootOpts)
	if err != nil {
		return err
	}

	req, err := params.CanonicalizeScan(params.RawScan{
		Species:     orDefault(opts.Species, cfg.Defaults.Species),
		Kind:        opts.Kind,
		FWHM:        opts.Fwhm,
		SampleCount: opts.Samples,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}

	fig, err := p.Scan(cmd.Context(), req)
	if err != nil {
		return asCommandError(err)
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(fig)
	}

	out.Printf("%s cross sections, Z=%d, %d energy samples\n\n",
		req.Kind, req.Species, len(fig[0].X))
	out.Printf("%-6s %14s %14s\n", "state", "max (cm^2)", "at (eV)")
	for _, s := range fig {
		maxV, maxE := 0.0, 0.0
		for i, v := range s.Y {
			if v > maxV {
				maxV, maxE = v, s.X[i]
			}
		}
		out.Printf("%-6s %14.4g %14.4g\n", s.Label, maxV, maxE)
	}
	return nil
}
