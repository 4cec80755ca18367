package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure the logger
type Options struct {
	Production bool
	Level      string
	Dir        string
}

// DailyFile returns the log file used for the given day
func DailyFile(dir string, day time.Time) string {
	return filepath.Join(dir, day.Format("2006-01-02")+".log")
}

// isValidLogPath validates the log file path
func isValidLogPath(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator))
}

// New builds a logger writing to stdout and to today's file in opts.Dir.
// With an empty Dir it only writes to stdout.
func New(opts Options, now time.Time) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	cfg.OutputPaths = []string{"stdout"}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile := DailyFile(opts.Dir, now)
		if !isValidLogPath(opts.Dir, logFile) {
			return nil, fmt.Errorf("invalid log file path: %s", logFile)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}

	return cfg.Build()
}

// Rotator rebuilds the logger when the day changes
type Rotator struct {
	opts   Options
	day    string
	logger *zap.Logger
}

// NewRotator creates a rotator with a logger for the current day
func NewRotator(opts Options, now time.Time) (*Rotator, error) {
	logger, err := New(opts, now)
	if err != nil {
		return nil, err
	}
	return &Rotator{opts: opts, day: now.Format("2006-01-02"), logger: logger}, nil
}

// Logger returns the current logger
func (r *Rotator) Logger() *zap.Logger {
	return r.logger
}

// Rotate switches to a new daily file if now falls on another day.
// On failure the previous logger is kept.
func (r *Rotator) Rotate(now time.Time) *zap.Logger {
	day := now.Format("2006-01-02")
	if day == r.day {
		return r.logger
	}

	logger, err := New(r.opts, now)
	if err != nil {
		r.logger.Error("failed to rotate log file", zap.Error(err))
		return r.logger
	}

	_ = r.logger.Sync()
	r.logger = logger
	r.day = day
	r.logger.Info("log rotated to new file", zap.String("file", DailyFile(r.opts.Dir, now)))
	return r.logger
}
