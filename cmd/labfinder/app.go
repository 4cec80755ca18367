package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labFinder/internal/logging"
	"labFinder/pkg/report"
	"labFinder/pkg/scraper"
)

const maxBackoff = 5 * time.Minute

type notifier interface {
	NotifyReport(ctx context.Context, catalog *scraper.Catalog) error
}

type mailer interface {
	SendReport(day time.Time, text string) error
}

type app struct {
	source     scraper.Source
	policy     scraper.Policy
	outputPath string
	stdout     io.Writer
	notifier   notifier
	mailer     mailer
}

// runOnce builds today's catalog and delivers the report.
// Delivery failures are logged and do not fail the run.
func (a *app) runOnce(ctx context.Context, base *zap.Logger, now time.Time) error {
	logger := base.With(zap.String("run_id", uuid.NewString()))
	startTime := time.Now()

	catalog, err := scraper.BuildCatalog(ctx, a.source, a.policy, logger)
	if err != nil {
		return err
	}

	text := report.String(catalog)
	if _, err := io.WriteString(a.stdout, text); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if a.outputPath != "" {
		if err := os.WriteFile(a.outputPath, []byte(text), 0600); err != nil {
			logger.Error("failed to write report file", zap.String("path", a.outputPath), zap.Error(err))
		}
	}

	if a.notifier != nil {
		if err := a.notifier.NotifyReport(ctx, catalog); err != nil {
			logger.Error("error sending notification", zap.Error(err))
		}
	}
	if a.mailer != nil {
		if err := a.mailer.SendReport(now, text); err != nil {
			logger.Error("error sending e-mail", zap.Error(err))
		}
	}

	logger.Info("check complete",
		zap.Int("rooms", catalog.Len()),
		zap.Duration("took", time.Since(startTime)))
	return nil
}

// backoff grows quadratically with consecutive errors, capped at maxBackoff
func backoff(consecutiveErrors int) time.Duration {
	d := time.Duration(consecutiveErrors*consecutiveErrors) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// loop repeats runOnce until ctx is done, rotating the log file when the day changes
func (a *app) loop(ctx context.Context, rotator *logging.Rotator, interval time.Duration) error {
	consecutiveErrors := 0
	for {
		logger := rotator.Rotate(time.Now())

		wait := interval
		if err := a.runOnce(ctx, logger, time.Now()); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			consecutiveErrors++
			wait = backoff(consecutiveErrors)
			logger.Error("error during check",
				zap.Error(err),
				zap.Int("consecutive_errors", consecutiveErrors),
				zap.Duration("retry_in", wait))
		} else {
			consecutiveErrors = 0
			logger.Info("next check scheduled", zap.Time("at", time.Now().Add(wait)))
		}

		select {
		case <-ctx.Done():
			logger.Info("stopping")
			return nil
		case <-time.After(wait):
		}
	}
}
