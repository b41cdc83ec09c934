package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

func newScanCommand(configPath *string) *cobra.Command {
	var (
		dateFrom string
		dateTo   string
		demo     bool
		sync     bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan bank notification email and extract transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseDate(dateFrom); err != nil {
				return err
			}
			if _, err := domain.ParseDate(dateTo); err != nil {
				return err
			}
			if dateFrom > dateTo {
				return fmt.Errorf("--from must not be after --to")
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			txs := a.controller.Scan(cmd.Context(), dateFrom, dateTo)
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions found")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, tx := range txs {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.ID, tx.TransactionDate, tx.Type, tx.Amount, tx.Category, tx.Description)
			}

			if !sync {
				fmt.Fprintf(out, "%d pending transactions (re-run with --sync to persist)\n", len(txs))
				return nil
			}

			results := a.controller.SyncAll(cmd.Context())
			var ok int
			for _, success := range results {
				if success {
					ok++
				}
			}
			fmt.Fprintf(out, "Synced %d/%d transactions\n", ok, len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFrom, "from", "", "start of the date window, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&dateTo, "to", "", "end of the date window, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&demo, "demo", false, "scan the demo dataset")
	cmd.Flags().BoolVar(&sync, "sync", false, "persist the extracted transactions to the ledger")

	return cmd
}
