package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/config"
	"github.com/shsnge/job-application-monitor/internal/logger"
	"github.com/shsnge/job-application-monitor/internal/store"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Replay overflow-queued records into the workbook",
	Long: `drain replays records parked in the overflow queue during a store
outage into the Excel workbook, in queue order. It stops at the first failure,
leaving the remainder queued for a later run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return drainQueue(cmd)
	},
}

func init() {
	rootCmd.AddCommand(drainCmd)
}

func drainQueue(cmd *cobra.Command) error {
	// Drain touches only the storage config, so skip the full validation;
	// notification credentials are not needed for an offline replay.
	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	if cfg.Storage.QueuePath == "" || cfg.Storage.WorkbookPath == "" {
		return fmt.Errorf("%w: storage.queue-path and storage.workbook-path are required", config.ErrInvalidConfig)
	}

	log, err := logger.New(jsonLogs, debugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	overflow, err := store.OpenOverflow(cfg.Storage.QueuePath)
	if err != nil {
		return err
	}
	defer overflow.Close()

	queued, err := overflow.Len(cmd.Context())
	if err != nil {
		return err
	}
	if queued == 0 {
		fmt.Println("overflow queue is empty")
		return nil
	}

	sink := store.NewExcelSink(cfg.Storage.WorkbookPath, cfg.Storage.SheetName)
	drained, err := overflow.Drain(cmd.Context(), sink)
	if err != nil {
		log.Error("drain stopped early",
			zap.Int("drained", drained),
			zap.Int("remaining", queued-drained),
			zap.Error(err),
		)
		return fmt.Errorf("drained %d of %d records: %w", drained, queued, err)
	}

	fmt.Printf("drained %d queued records\n", drained)
	return nil
}
