package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/irbridge/app"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the registered bus, pin and metrics drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range app.Drivers() {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", d.Kind, strings.Join(d.Types, ", ")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
