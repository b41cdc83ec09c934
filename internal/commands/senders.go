package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendersCommand(configPath *string) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "senders",
		Short: "Manage the registered sender addresses",
	}
	cmd.PersistentFlags().BoolVar(&demo, "demo", false, "operate on the demo dataset")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered senders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			senders := a.controller.Senders()
			if len(senders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No senders registered")
				return nil
			}
			for _, s := range senders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.Email, s.RowKey)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <email>",
		Short: "Register a sender address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if !strings.Contains(email, "@") {
				return fmt.Errorf("%q is not a valid email address", email)
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			if err := a.controller.AddSender(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", email)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <rowKey>",
		Short: "Remove a sender by its row key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if err := a.establishSession(cmd.Context(), demo); err != nil {
				return err
			}

			if err := a.controller.RemoveSender(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed")
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
