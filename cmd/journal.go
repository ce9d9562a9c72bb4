package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/irbridge/core/journal"
	"github.com/kilianp07/irbridge/core/model"
)

var journalOpts struct {
	since      time.Duration
	code       string
	failedOnly bool
	limit      int
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded IR transactions",
	Args:  cobra.NoArgs,
	RunE:  runJournal,
}

func init() {
	f := journalCmd.Flags()
	f.DurationVar(&journalOpts.since, "since", 24*time.Hour, "only show transactions newer than this")
	f.StringVar(&journalOpts.code, "code", "", "filter by code, e.g. 0x0a90")
	f.BoolVar(&journalOpts.failedOnly, "failed", false, "only show failed transactions")
	f.IntVar(&journalOpts.limit, "limit", 50, "maximum number of rows (0 for all)")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal.Backend == journal.BackendNone {
		return fmt.Errorf("journal disabled in %s", cfgPath)
	}
	store, err := journal.New(cfg.Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	q := journal.Query{FailedOnly: journalOpts.failedOnly, Limit: journalOpts.limit}
	if journalOpts.code != "" {
		code, err := model.ParseIRCode(journalOpts.code)
		if err != nil {
			return err
		}
		q.Code = code.String()
	}
	if journalOpts.since > 0 {
		q.Start = time.Now().Add(-journalOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCODE\tOK\tVALUE\tRESYNC\tMS\tERROR")
	for _, r := range recs {
		msg := r.Error
		if msg == "" {
			msg = r.ReadError
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t0x%04x\t%t\t%.1f\t%s\n",
			r.Timestamp.Format(time.RFC3339), r.Code, r.Success, r.Value, r.Resynced, r.DurationMS, msg)
	}
	return w.Flush()
}
