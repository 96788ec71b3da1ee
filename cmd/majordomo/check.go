package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without touching the network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			hour, minute, err := cfg.ReportTime()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "configuration ok")
			fmt.Fprintf(out, "  llm provider:  %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Fprintf(out, "  storage path:  %s\n", cfg.Storage.Path)
			fmt.Fprintf(out, "  telegram:      enabled=%t\n", cfg.Telegram.Enabled)
			fmt.Fprintf(out, "  daily report:  %02d:%02d %s\n", hour, minute, loc)
			fmt.Fprintf(out, "  currency:      %s\n", cfg.Currency)
			return nil
		},
	}
}
