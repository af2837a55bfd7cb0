package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/spf13/cobra"
)

func outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and drain the coin sync outbox",
	}
	cmd.AddCommand(outboxFlushCmd())
	cmd.AddCommand(outboxRequeueCmd())
	return cmd
}

func loadDurableOutbox(ctx context.Context) (*config.Config, *outbox, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.LogLevel)
	if cfg.Sync.Mode != config.SyncModeOutbox || cfg.Sync.Outbox != config.OutboxRedis {
		return nil, nil, errors.New("outbox commands need SYNC_MODE=outbox and SYNC_OUTBOX=redis")
	}
	return cfg, openOutbox(ctx, cfg), nil
}

func outboxFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Attempt delivery of every due outbox entry once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ob, err := loadDurableOutbox(cmd.Context())
			if err != nil {
				return err
			}
			defer ob.close()

			dispatcher := newDispatcher(cfg, ob.store, newSender(cfg))
			delivered, failed, err := dispatcher.Flush(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "delivered=%d failed=%d\n", delivered, failed)
			return nil
		},
	}
}

func outboxRequeueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Return parked outbox entries to the delivery queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ob, err := loadDurableOutbox(cmd.Context())
			if err != nil {
				return err
			}
			defer ob.close()

			n, err := newDispatcher(cfg, ob.store, newSender(cfg)).Requeue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued=%d\n", n)
			return nil
		},
	}
}
