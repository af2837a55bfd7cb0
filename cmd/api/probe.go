package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ArowuTest/masterstudent-moderation/internal/config"
	"github.com/spf13/cobra"
)

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Probe the configured primary store and report which provider would be bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogger(cfg.LogLevel)

			st, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.close(cmd.Context())

			stats, err := st.binding.GetAggregateStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read stats from %s: %w", st.binding.Kind(), err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"primary": cfg.Storage.Primary,
				"bound":   st.binding.Kind(),
				"stats":   stats,
			})
		},
	}
}
