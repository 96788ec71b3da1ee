package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/report"
	"github.com/Veraticus/majordomo/internal/transport"
)

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the assistant until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd.Context())
		},
	}
}

func runStart(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, aggregator, err := buildEngine(cfg, store)
	if err != nil {
		return err
	}

	registry := transport.NewRegistry()
	if cfg.Telegram.Enabled {
		tg, tgErr := transport.NewTelegram(cfg.Telegram.Token)
		if tgErr != nil {
			return tgErr
		}
		registry.Register(tg)
	}

	transports := registry.All()
	if len(transports) == 0 {
		return fmt.Errorf("no transport enabled, nothing to listen on")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	hour, minute, err := cfg.ReportTime()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// One scheduler, delivering over the primary transport.
	scheduler := report.NewScheduler(aggregator, store, transports[0], loc, hour, minute)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	for _, t := range transports {
		t := t
		g.Go(func() error {
			return t.Poll(gctx, func(msg model.InboundMessage) {
				reply := eng.HandleMessage(gctx, msg)
				if sendErr := t.Send(gctx, msg.UserID, reply); sendErr != nil {
					common.LogError(sendErr, "failed to send reply", common.Fields{
						"platform": t.Name(),
						"user_id":  msg.UserID,
					})
				}
			})
		})
		common.LogInfo("transport started", common.Fields{"platform": t.Name()})
	}

	err = g.Wait()
	if err != nil && err != context.Canceled {
		return err
	}
	common.LogInfo("shutdown complete", nil)
	return nil
}
