package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "secretapp",
		Short: "Ledger extraction dashboard for bank notification email",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")

	rootCmd.AddCommand(newLoginCommand(&configPath))
	rootCmd.AddCommand(newLogoutCommand(&configPath))
	rootCmd.AddCommand(newSendersCommand(&configPath))
	rootCmd.AddCommand(newScanCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))
	rootCmd.AddCommand(newExportCommand(&configPath))

	return rootCmd
}
