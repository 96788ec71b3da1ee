package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show a liveness summary of the local installation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users, err := store.ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			fmt.Fprintln(out, "majordomo status")
			fmt.Fprintf(out, "  config:   ok\n")
			fmt.Fprintf(out, "  database: ok (%s)\n", cfg.Storage.Path)
			fmt.Fprintf(out, "  users:    %d\n", len(users))
			for _, u := range users {
				fmt.Fprintf(out, "    - %s\n", u)
			}
			return nil
		},
	}
}
