package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	appName         = "insightstream"
	defaultTimezone = "Local"

	configPathEnv     = "INSIGHTSTREAM_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	logLevelEnv       = "LOG_LEVEL"
	providerEnv       = "AI_PROVIDER"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	legacyAPIKeyEnv   = "API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Refresh       RefreshConfig      `yaml:"refresh"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Search        SearchConfig       `yaml:"search"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig points at the settings and item store. A postgres:// DSN
// selects Postgres; anything else is a SQLite file path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ResolvedDSN returns the configured DSN or a SQLite file under the XDG
// data directory.
func (d DatabaseConfig) ResolvedDSN() (string, error) {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN, nil
	}
	path, err := xdg.DataFile(filepath.Join(appName, appName+".db"))
	if err != nil {
		return "", fmt.Errorf("resolve data path: %w", err)
	}
	return path, nil
}

// SchedulerConfig defines when watch mode refreshes and which timezone
// date filters use.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	RunOnStart     bool           `yaml:"runOnStart"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// RefreshConfig bounds each source fetch during a refresh.
type RefreshConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// AnalysisConfig picks and configures the per-item analysis provider.
type AnalysisConfig struct {
	Provider          string        `yaml:"provider"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
}

// SearchConfig describes the grounded live search service.
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"apiKey"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxResults int           `yaml:"maxResults"`
}

// FeedsConfig selects how subscriptions are polled.
type FeedsConfig struct {
	Mode    string        `yaml:"mode"`
	Timeout time.Duration `yaml:"timeout"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads YAML configuration and applies environment overrides. An
// explicit path must exist; otherwise INSIGHTSTREAM_CONFIG and then the XDG
// config file are tried, falling back to defaults when neither is usable.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := readInto(path, &cfg); err != nil {
			return Config{}, err
		}
	} else if discovered := discoverPath(); discovered != "" {
		if err := readInto(discovered, &cfg); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	cfg.bindTimezone()

	return cfg, nil
}

// DefaultPath is where Load looks when no path or env override is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func discoverPath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	if p, err := xdg.SearchConfigFile(filepath.Join(appName, "config.yaml")); err == nil {
		return p
	}
	return ""
}

func readInto(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	// Keys absent from the file keep their defaults.
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(providerEnv); v != "" {
		c.Analysis.Provider = v
	}

	geminiKey := os.Getenv(geminiAPIKeyEnv)
	if geminiKey == "" {
		geminiKey = os.Getenv(legacyAPIKeyEnv)
	}
	if geminiKey != "" && c.Search.APIKey == "" {
		c.Search.APIKey = geminiKey
	}

	var analysisKey string
	switch strings.ToLower(c.Analysis.Provider) {
	case "openai":
		analysisKey = os.Getenv(openAIAPIKeyEnv)
	case "anthropic", "claude":
		analysisKey = os.Getenv(anthropicKeyEnv)
	default:
		analysisKey = geminiKey
	}
	if analysisKey != "" {
		c.Analysis.APIKey = analysisKey
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) normalize() {
	c.Analysis.Provider = strings.ToLower(strings.TrimSpace(c.Analysis.Provider))
	c.Feeds.Mode = strings.ToLower(strings.TrimSpace(c.Feeds.Mode))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	defaults := defaultConfig()
	if c.Refresh.Timeout <= 0 {
		c.Refresh.Timeout = defaults.Refresh.Timeout
	}
	if c.Analysis.Timeout <= 0 {
		c.Analysis.Timeout = defaults.Analysis.Timeout
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = defaults.Search.Timeout
	}
	if c.Feeds.Timeout <= 0 {
		c.Feeds.Timeout = defaults.Feeds.Timeout
	}
	if c.Scheduler.CronExpression == "" {
		c.Scheduler.CronExpression = defaults.Scheduler.CronExpression
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone},
		Refresh:   RefreshConfig{Timeout: 60 * time.Second},
		Analysis: AnalysisConfig{
			Provider:          "gemini",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
		},
		Search: SearchConfig{
			Timeout:    45 * time.Second,
			MaxResults: 5,
		},
		Feeds: FeedsConfig{Mode: "simulated", Timeout: 20 * time.Second},
	}
}
