package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/irbridge/app"
	"github.com/kilianp07/irbridge/core/model"
)

var sendCmd = &cobra.Command{
	Use:   "send [code]",
	Short: "Run one transaction against the configured bus",
	Long: "Writes the code (default: the configured power code) to the IR transmitter\n" +
		"and prints the result word read back.",
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	code := cfg.Bridge.Code()
	if len(args) == 1 {
		if code, err = model.ParseIRCode(args[0]); err != nil {
			return err
		}
	}
	tx, bus, err := app.OpenTransactor(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	res := tx.Transmit(cmd.Context(), code)
	if res.Err != nil {
		return res.Err
	}
	out := cmd.OutOrStdout()
	if res.ReadErr != nil {
		_, err = fmt.Fprintf(out, "sent %s, read failed: %v (resynced=%t)\n", code, res.ReadErr, res.Resynced)
		return err
	}
	_, err = fmt.Fprintf(out, "sent %s, result 0x%04x (resynced=%t)\n", code, res.Value, res.Resynced)
	return err
}
