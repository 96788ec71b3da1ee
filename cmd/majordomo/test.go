package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/majordomo/internal/transport"
)

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Exercise connectivity to every configured collaborator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			out := cmd.OutOrStdout()
			failed := false

			store, err := openStorage(ctx, cfg)
			if err != nil {
				fmt.Fprintf(out, "storage:  FAIL (%v)\n", err)
				failed = true
			} else {
				defer func() { _ = store.Close() }()
				if pingErr := store.Ping(ctx); pingErr != nil {
					fmt.Fprintf(out, "storage:  FAIL (%v)\n", pingErr)
					failed = true
				} else {
					fmt.Fprintf(out, "storage:  ok (%s)\n", cfg.Storage.Path)
				}
			}

			classifier, err := buildClassifier(cfg)
			if err != nil {
				fmt.Fprintf(out, "llm:      FAIL (%v)\n", err)
				failed = true
			} else if pingErr := classifier.Ping(ctx); pingErr != nil {
				fmt.Fprintf(out, "llm:      FAIL (%v)\n", pingErr)
				failed = true
			} else {
				fmt.Fprintf(out, "llm:      ok (%s)\n", cfg.LLM.Provider)
			}

			if cfg.Telegram.Enabled {
				tg, tgErr := transport.NewTelegram(cfg.Telegram.Token)
				if tgErr != nil {
					fmt.Fprintf(out, "telegram: FAIL (%v)\n", tgErr)
					failed = true
				} else if username, authErr := tg.CheckAuth(ctx); authErr != nil {
					fmt.Fprintf(out, "telegram: FAIL (%v)\n", authErr)
					failed = true
				} else {
					fmt.Fprintf(out, "telegram: ok (@%s)\n", username)
				}
			} else {
				fmt.Fprintln(out, "telegram: skipped (disabled)")
			}

			if failed {
				return fmt.Errorf("one or more connectivity checks failed")
			}
			return nil
		},
	}
}
