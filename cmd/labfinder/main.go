package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labFinder/internal/browser"
	"labFinder/internal/logging"
	"labFinder/pkg/config"
	"labFinder/pkg/email"
	"labFinder/pkg/line"
)

type flags struct {
	configPath string
	noNotify   bool
	interval   time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:          "labfinder",
		Short:        "Report free and booked lab rooms for today",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), f)
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a config file (default ./config.yaml)")
	root.Flags().BoolVar(&f.noNotify, "no-notify", false, "do not send the report over LINE or e-mail")
	root.Flags().DurationVar(&f.interval, "interval", 0, "repeat the report at this interval instead of running once")

	root.AddCommand(&cobra.Command{
		Use:   "notify-test",
		Short: "Send a sample report over LINE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotifyTest(cmd.Context(), f)
		},
	})

	return root
}

func setup(f flags) (config.Config, *logging.Rotator, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	rotator, err := logging.NewRotator(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		Dir:        cfg.LogDir,
	}, time.Now())
	if err != nil {
		return config.Config{}, nil, err
	}
	rotator.Logger().Info("=== Starting new session ===")
	return cfg, rotator, nil
}

func newLineClient(cfg config.Config, noNotify bool, logger *zap.Logger) *line.Client {
	if !noNotify && !cfg.LineEnabled() {
		logger.Warn("LINE credentials not set properly, notifications will be disabled",
			zap.Bool("token_missing", cfg.LineChannelToken == ""),
			zap.Bool("user_id_missing", cfg.LineUserID == ""))
		noNotify = true
	}
	return line.NewClient(cfg.LineChannelToken, cfg.LineUserID, cfg.CalendarURL, noNotify, logger)
}

func runNotifyTest(ctx context.Context, f flags) error {
	cfg, rotator, err := setup(f)
	if err != nil {
		return err
	}
	logger := rotator.Logger()
	defer func() { _ = logger.Sync() }()

	if !cfg.LineEnabled() {
		return fmt.Errorf("LINE configuration is incomplete")
	}
	if err := line.NewClient(cfg.LineChannelToken, cfg.LineUserID, cfg.CalendarURL, false, logger).TestNotification(ctx); err != nil {
		logger.Error("notification test failed", zap.Error(err))
		return err
	}
	return nil
}

func runReport(ctx context.Context, f flags) error {
	cfg, rotator, err := setup(f)
	if err != nil {
		return err
	}
	logger := rotator.Logger()
	defer func() { _ = rotator.Logger().Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := browser.New(browser.Options{
		BaseURL:         cfg.BaseURL,
		CalendarURL:     cfg.CalendarURL,
		MaxRetries:      cfg.MaxRetries,
		PageTimeout:     cfg.PageTimeout,
		RequestInterval: cfg.RequestInterval,
	}, logger)
	defer b.Close()

	a := &app{
		source:     b,
		policy:     cfg.Policy(),
		outputPath: cfg.OutputPath,
		stdout:     os.Stdout,
		notifier:   newLineClient(cfg, f.noNotify, logger),
	}
	if cfg.EmailEnabled() && !f.noNotify {
		a.mailer = email.NewClient(cfg.SendGridAPIKey, cfg.ReportFrom, cfg.ReportTo, logger)
	}

	logger.Info("policy",
		zap.Int("minimum_gap_minutes", a.policy.MinimumGapMinutes),
		zap.Int("early_release_minutes", a.policy.EarlyReleaseMinutes))

	if f.interval <= 0 {
		return a.runOnce(ctx, logger, time.Now())
	}
	return a.loop(ctx, rotator, f.interval)
}
