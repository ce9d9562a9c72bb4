package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/irbridge/app"
	"github.com/kilianp07/irbridge/core/model"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Read the status input once and print 0 or 1",
	Args:  cobra.NoArgs,
	RunE:  runPin,
}

func init() {
	rootCmd.AddCommand(pinCmd)
}

func runPin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := app.OpenPin(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	on, err := p.Read()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", model.StatusPayload(on))
	return err
}
