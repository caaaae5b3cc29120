package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shsnge/job-application-monitor/internal/api"
	"github.com/shsnge/job-application-monitor/internal/config"
	"github.com/shsnge/job-application-monitor/internal/extract"
	"github.com/shsnge/job-application-monitor/internal/ledger"
	"github.com/shsnge/job-application-monitor/internal/logger"
	"github.com/shsnge/job-application-monitor/internal/mailbox"
	"github.com/shsnge/job-application-monitor/internal/monitor"
	"github.com/shsnge/job-application-monitor/internal/notify"
	"github.com/shsnge/job-application-monitor/internal/profile"
	"github.com/shsnge/job-application-monitor/internal/retry"
	"github.com/shsnge/job-application-monitor/internal/scoring"
	"github.com/shsnge/job-application-monitor/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the inbox monitoring loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runMonitor(parent context.Context) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logger.New(jsonLogs, debugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles, err := profile.Load(cfg.ProfilesFile)
	if err != nil {
		return fmt.Errorf("load job profiles: %w", err)
	}

	// An unreadable ledger means dedup cannot be guaranteed; refuse to start
	// rather than risk duplicate notifications.
	led, err := ledger.Open(cfg.Storage.LedgerPath)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerUnavailable) {
			log.Error("ledger unavailable, refusing to start", zap.Error(err))
		}
		return err
	}
	defer led.Close()
	log.Info("ledger loaded", zap.Int("processed_messages", led.Size()))

	overflow, err := store.OpenOverflow(cfg.Storage.QueuePath)
	if err != nil {
		return err
	}
	defer overflow.Close()

	sink := store.NewExcelSink(cfg.Storage.WorkbookPath, cfg.Storage.SheetName)
	recordStore := store.New(sink, overflow, retry.DefaultPolicy(), cfg.CallTimeout, log)

	source, err := mailbox.NewGmailSource(ctx, mailbox.GmailOptions{
		CredentialsPath: cfg.Mailbox.CredentialsFile,
		TokenPath:       cfg.Mailbox.TokenFile,
		Query:           cfg.Mailbox.Query,
		WindowDays:      cfg.Mailbox.WindowDays,
		MaxMessages:     cfg.Mailbox.MaxMessages,
		Skip:            led.Contains,
		CallTimeout:     cfg.CallTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("connect mailbox: %w", err)
	}

	recognizer := extract.NewRegexRecognizer(profiles.Vocabulary())
	extractor := extract.New(recognizer, log)

	var notifier notify.Notifier
	if cfg.WhatsApp.Enabled {
		notifier = notify.NewTwilioNotifier(
			cfg.WhatsApp.AccountSID, cfg.WhatsApp.AuthToken,
			cfg.WhatsApp.FromNumber, cfg.WhatsApp.ToNumber,
		)
	}

	var replier notify.Replier
	if cfg.AutoReply.Enabled {
		replier = notify.NewSMTPReplier(
			cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password,
		)
	}

	mon := monitor.New(monitor.Config{
		PollInterval: cfg.PollInterval,
		CallTimeout:  cfg.CallTimeout,
		Limits: scoring.Limits{
			MaxScore:     cfg.Scoring.MaxScore,
			PassingScore: cfg.Scoring.PassingScore,
		},
		ResumeCacheDir:   cfg.Storage.ResumeCacheDir,
		AutoReplyEnabled: cfg.AutoReply.Enabled,
		CompanyName:      cfg.AutoReply.CompanyName,
		InterviewDays:    cfg.AutoReply.InterviewDays,
	}, monitor.Deps{
		Profiles:  profiles,
		Source:    source,
		Extractor: extractor,
		Ledger:    led,
		Store:     recordStore,
		Notifier:  notifier,
		Replier:   replier,
		Logger:    log,
	})

	if cfg.StatusAddr != "" {
		srv := &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           api.NewServer(mon.Stats(), recordStore, log).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("status server listening", zap.String("addr", cfg.StatusAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status server failed", zap.Error(err))
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()
	}

	return mon.Run(ctx)
}
