package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

func newReportCommand(configPath *string) *cobra.Command {
	var (
		dateFrom   string
		dateTo     string
		categories []string
		types      []string
		demo       bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show transactions and per-type totals for a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			filter := domain.ReportFilter{
				DateFrom:   dateFrom,
				DateTo:     dateTo,
				Categories: categories,
			}
			for _, t := range types {
				filter.Types = append(filter.Types, domain.TransactionType(t))
			}

			report := a.controller.Report(cmd.Context(), filter)

			out := cmd.OutOrStdout()
			for _, tx := range report.Transactions {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					tx.TransactionDate, tx.Type, tx.Amount, tx.Category, tx.Description)
			}
			if len(report.Transactions) > 0 {
				fmt.Fprintln(out, strings.Repeat("-", 40))
			}
			fmt.Fprintf(out, "Income:      %s\n", report.Totals.TotalIncome)
			fmt.Fprintf(out, "Expense:     %s\n", report.Totals.TotalExpense)
			fmt.Fprintf(out, "Investments: %s\n", report.Totals.TotalInvestments)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFrom, "from", "", "start of the date window, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&dateTo, "to", "", "end of the date window, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "narrow the transaction list to these categories")
	cmd.Flags().StringSliceVar(&types, "types", nil, "narrow the transaction list to these types (Credit, Debit, Investment)")
	cmd.Flags().BoolVar(&demo, "demo", false, "report on the demo dataset")

	return cmd
}
