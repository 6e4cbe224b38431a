package cli

import (
	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/physics"
)

// NewElementsCommand creates the elements command: the species table
// backing the element selector.
func NewElementsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "elements",
		Short:         "List the elements available for simulation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runElements(cmd, rootOpts)
		},
	}
	return cmd
}

func runElements(cmd *cobra.Command, rootOpts *RootOptions) error {
	var simulable []physics.Element
	for _, el := range physics.Elements() {
		if el.Z >= params.SpeciesMin && el.Z <= params.SpeciesMax {
			simulable = append(simulable, el)
		}
	}

	out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
	if out.JSON() {
		return out.EmitJSON(simulable)
	}

	out.Printf("%-4s %-4s %s\n", "Z", "sym", "name")
	for _, el := range simulable {
		out.Printf("%-4d %-4s %s\n", el.Z, el.Symbol, el.Name)
	}
	return nil
}
