package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/archive"
	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/pipeline"
	"github.com/ebitlab/csevo/internal/series"
)

// maybeArchive records the derivation (request plus peak times) when
// --archive is set. Archiving failures abort the command: the user
// asked for a durable record.
func maybeArchive(cmd *cobra.Command, rootOpts *RootOptions, p *pipeline.Pipeline, req params.SimulationRequest, fig series.Figure) error {
	if rootOpts.ArchivePath == "" {
		return nil
	}

	peaks, err := p.PeakTimes(fig)
	if err != nil {
		return asCommandError(err)
	}

	a, err := archive.Open(rootOpts.ArchivePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening archive", err)
	}
	defer a.Close()

	id, err := a.Record(cmd.Context(), req, peaks)
	if err != nil {
		return WrapExitError(ExitCommandError, "recording derivation", err)
	}
	slog.Debug("derivation archived", "id", id)
	return nil
}
