// Package config builds the explicit configuration value the rest of the
// application receives. Viper is consulted exactly once, at startup; no
// component reads ambient configuration afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/service"
)

// LLMConfig configures the completion capability.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// StorageConfig locates the document store.
type StorageConfig struct {
	Path string
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Token   string
	Enabled bool
}

// ReportConfig configures the daily report schedule.
type ReportConfig struct {
	// Time is the local fire time, "15:04" format.
	Time     string
	Timezone string
}

// SessionConfig bounds conversational state retention.
type SessionConfig struct {
	MaxTurns    int
	IdleTimeout time.Duration
}

// Config is the complete application configuration, constructed once at
// startup and passed into every component that needs it.
type Config struct {
	LLM      LLMConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	Report   ReportConfig
	Session  SessionConfig
	Retry    service.RetryOptions
	Currency string
}

// Load converts viper state into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	cfg := Config{
		LLM: LLMConfig{
			Provider:    v.GetString("llm.provider"),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
		},
		Storage: StorageConfig{
			Path: v.GetString("storage.path"),
		},
		Telegram: TelegramConfig{
			Enabled: v.GetBool("telegram.enabled"),
			Token:   v.GetString("telegram.token"),
		},
		Report: ReportConfig{
			Time:     v.GetString("report.time"),
			Timezone: v.GetString("report.timezone"),
		},
		Session: SessionConfig{
			MaxTurns:    v.GetInt("session.max_turns"),
			IdleTimeout: v.GetDuration("session.idle_timeout"),
		},
		Retry: service.RetryOptions{
			MaxAttempts:  v.GetInt("retry.max_attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
			MaxDelay:     v.GetDuration("retry.max_delay"),
			Multiplier:   v.GetFloat64("retry.multiplier"),
		},
		Currency: v.GetString("currency"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("storage.path", defaultDBPath())
	v.SetDefault("report.time", "08:00")
	v.SetDefault("report.timezone", "Local")
	v.SetDefault("session.max_turns", 10)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 500*time.Millisecond)
	v.SetDefault("retry.max_delay", 10*time.Second)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("currency", "CNY")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "majordomo.db"
	}
	return filepath.Join(home, ".local", "share", "majordomo", "majordomo.db")
}

// Validate checks the configuration for fatal problems. Configuration
// errors are fatal at startup only, never inside the message pipeline.
func (c Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("%w: llm.provider", common.ErrMissingConfig)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: llm.api_key", common.ErrMissingConfig)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path", common.ErrMissingConfig)
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram.token required when telegram.enabled", common.ErrMissingConfig)
	}
	if _, _, err := c.ReportTime(); err != nil {
		return fmt.Errorf("%w: report.time: %v", common.ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: report.timezone: %v", common.ErrInvalidConfig, err)
	}
	if c.Session.MaxTurns <= 0 {
		return fmt.Errorf("%w: session.max_turns must be positive", common.ErrInvalidConfig)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("%w: session.idle_timeout must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" || c.Report.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Report.Timezone)
}

// ReportTime parses the configured "HH:MM" daily fire time.
func (c Config) ReportTime() (hour, minute int, err error) {
	parts := strings.SplitN(c.Report.Time, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", c.Report.Time)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", c.Report.Time)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", c.Report.Time)
	}
	return hour, minute, nil
}
