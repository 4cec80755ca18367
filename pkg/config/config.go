package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"labFinder/pkg/scraper"
)

const (
	// BaseURL of the department site, used to resolve relative calendar links
	BaseURL = "https://www.cs.ubc.ca"

	// CalendarURL lists every lab room calendar
	CalendarURL = BaseURL + "/students/undergrad/services/lab-availability"
)

// Config holds the application configuration
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogDir   string `mapstructure:"LOG_DIR"`

	BaseURL         string        `mapstructure:"LAB_BASE_URL"`
	CalendarURL     string        `mapstructure:"LAB_CALENDAR_URL"`
	MaxRetries      int           `mapstructure:"MAX_RETRIES"`
	PageTimeout     time.Duration `mapstructure:"PAGE_TIMEOUT"`
	RequestInterval time.Duration `mapstructure:"REQUEST_INTERVAL"`

	// Reconciliation policy
	EarlyReleaseMinutes int `mapstructure:"LABS_END_EARLY_OFFSET_MINUTES"`
	MinimumGapMinutes   int `mapstructure:"MINIMUM_GAP_MINUTES"`

	OutputPath string `mapstructure:"OUTPUT_PATH"`

	LineChannelToken string `mapstructure:"LINE_CHANNEL_TOKEN"`
	LineUserID       string `mapstructure:"LINE_USER_ID"`

	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`
	ReportFrom     string `mapstructure:"REPORT_FROM_EMAIL"`
	ReportTo       string `mapstructure:"REPORT_TO_EMAIL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "logs")
	v.SetDefault("LAB_BASE_URL", BaseURL)
	v.SetDefault("LAB_CALENDAR_URL", CalendarURL)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("PAGE_TIMEOUT", 60*time.Second)
	v.SetDefault("REQUEST_INTERVAL", 500*time.Millisecond)
	v.SetDefault("LABS_END_EARLY_OFFSET_MINUTES", 0)
	v.SetDefault("MINIMUM_GAP_MINUTES", 10)
	v.SetDefault("OUTPUT_PATH", "")
	v.SetDefault("LINE_CHANNEL_TOKEN", "")
	v.SetDefault("LINE_USER_ID", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("REPORT_FROM_EMAIL", "")
	v.SetDefault("REPORT_TO_EMAIL", "")
}

// Load reads the configuration from the environment and an optional config file.
// With an empty path it looks for config.yaml in "." and "./config".
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would make a run meaningless
func (c Config) Validate() error {
	switch {
	case c.EarlyReleaseMinutes < 0:
		return fmt.Errorf("LABS_END_EARLY_OFFSET_MINUTES must not be negative, got %d", c.EarlyReleaseMinutes)
	case c.MinimumGapMinutes < 0:
		return fmt.Errorf("MINIMUM_GAP_MINUTES must not be negative, got %d", c.MinimumGapMinutes)
	case c.MaxRetries < 1:
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Policy returns the reconciliation policy described by the configuration
func (c Config) Policy() scraper.Policy {
	p := scraper.DefaultPolicy()
	p.EarlyReleaseMinutes = c.EarlyReleaseMinutes
	p.MinimumGapMinutes = c.MinimumGapMinutes
	return p
}

// LineEnabled reports whether LINE credentials are present
func (c Config) LineEnabled() bool {
	return c.LineChannelToken != "" && c.LineUserID != ""
}

// EmailEnabled reports whether the report can be e-mailed
func (c Config) EmailEnabled() bool {
	return c.SendGridAPIKey != "" && c.ReportFrom != "" && c.ReportTo != ""
}
