package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/ledger/notionledger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
)

func newExportCommand(configPath *string) *cobra.Command {
	var (
		dateFrom string
		dateTo   string
		demo     bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "export-notion",
		Short: "Export synced transactions for a date window to Notion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dateFrom == "" {
				dateFrom = time.Now().AddDate(0, -1, 0).Format(domain.DateLayout)
			}
			if dateTo == "" {
				dateTo = time.Now().Format(domain.DateLayout)
			}
			if _, err := domain.ParseDate(dateFrom); err != nil {
				return err
			}
			if _, err := domain.ParseDate(dateTo); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if a.cfg.Notion.Token == "" || a.cfg.Notion.DatabaseID == "" {
				return fmt.Errorf("notion export requires notion.token and notion.database_id in the config")
			}
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			report := a.controller.Report(cmd.Context(), domain.ReportFilter{
				DateFrom: dateFrom,
				DateTo:   dateTo,
			})

			log := logger.NewWithLevel(a.cfg.Log.Level)
			exporter := notionledger.NewExporter(
				notionledger.NewNotionClient(a.cfg.Notion.Token),
				a.cfg.Notion.DatabaseID,
				log,
			)

			stats, err := exporter.Export(cmd.Context(), report.Transactions, dryRun)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d, skipped %d, failed %d\n",
				stats.Created, stats.Skipped, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFrom, "from", "", "start of the date window, YYYY-MM-DD (default: one month ago)")
	cmd.Flags().StringVar(&dateTo, "to", "", "end of the date window, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&demo, "demo", false, "export from the demo dataset")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log what would be exported without writing to Notion")

	return cmd
}
