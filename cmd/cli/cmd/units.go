// Package cmd - units command
package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"mua-risk/core/ui"
	"mua-risk/core/units"
	"mua-risk/internal/config"
)

// unitsCmd lists the supported units
var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List supported units and their families",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := ui.NewWriter(cmd.OutOrStdout(), config.Get().Output.NoColor)
		w.Header("Units")

		table := w.NewTable("Unit", "Family", "Multiplier")
		for _, info := range units.All() {
			multiplier := "relative"
			if info.Multiplier != nil {
				multiplier = strconv.FormatFloat(*info.Multiplier, 'g', -1, 64)
			}
			table.AddRow(info.Unit.String(), string(info.Family), multiplier)
		}
		table.Render()
	},
}
