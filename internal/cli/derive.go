package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/physics"
	"github.com/ebitlab/csevo/internal/pipeline"
	"github.com/ebitlab/csevo/internal/series"
)

// NewDeriveCommand creates the derive command: run (or replay from
// cache) one charge-state evolution and print the abundance figure.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the charge-state abundance figure",
		Long: `Derive the charge-state abundance figure for one parameter set.

Example:
  csevo derive -z 20 -j 100 -e 5000 --fwhm 50 --breed-time-ms 200`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, rootOpts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runDerive(cmd *cobra.Command, rootOpts *RootOptions, flags *requestFlags) error {
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

	if err := maybeArchive(cmd, rootOpts, p, req, fig); err != nil {
		return err
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(fig)
	}

	el, _ := physics.ElementByZ(req.Species)
	out.Printf("Charge state evolution: %s (Z=%d), %v A/cm^2, %v eV, %v s\n\n",
		el.Name, req.Species, req.CurrentDensity, req.BeamEnergy, req.BreedTime)
	out.Printf("%-6s %8s %12s\n", "state", "samples", "final")
	last := len(fig[0].Y) - 1
	for _, s := range fig {
		out.Printf("%-6s %8d %12.6f\n", s.Label, len(s.X), s.Y[last])
	}
	return nil
}

// deriveWarned derives a figure, downgrading normalization
// degradation to a warning: the figure is still complete.
func deriveWarned(cmd *cobra.Command, p *pipeline.Pipeline, req params.SimulationRequest) (series.Figure, error) {
	fig, err := p.DeriveFigure(cmd.Context(), req)
	var nerr *series.NormalizationError
	if errors.As(err, &nerr) {
		slog.Warn("figure degraded", "reason", nerr.Error())
		return fig, nil
	}
	if err != nil {
		return nil, asCommandError(err)
	}
	return fig, nil
}
