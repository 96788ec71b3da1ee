package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/majordomo/internal/report"
	"github.com/Veraticus/majordomo/internal/transport"
)

func reportCmd() *cobra.Command {
	var userID string
	var send bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the daily report for one user on demand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			aggregator := report.NewAggregator(store, loc)
			daily, err := aggregator.Build(ctx, userID, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			rendered := daily.Render()
			fmt.Fprintln(cmd.OutOrStdout(), rendered)

			if send {
				if !cfg.Telegram.Enabled {
					return fmt.Errorf("cannot send: telegram transport is disabled")
				}
				tg, tgErr := transport.NewTelegram(cfg.Telegram.Token)
				if tgErr != nil {
					return tgErr
				}
				if sendErr := tg.Send(ctx, userID, rendered); sendErr != nil {
					return fmt.Errorf("failed to deliver report: %w", sendErr)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user to build the report for")
	cmd.Flags().BoolVar(&send, "send", false, "also deliver the report over the configured transport")
	return cmd
}
