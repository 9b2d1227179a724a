// Package config loads the intake service configuration.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/mail"
)

// Driver names.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverFirebase = "firebase"
	DriverLog      = "log"
	DriverSMTP     = "smtp"
	DriverTelegram = "telegram"
)

// Config is the root configuration.
type Config struct {
	LogLevel      string `yaml:"log_level"`
	FlowsDir      string `yaml:"flows_dir"`
	ScoringPath   string `yaml:"scoring_path"`
	SubmitTimeout string `yaml:"submit_timeout"`

	Server      ServerConfig     `yaml:"server"`
	Sessions    SessionConfig    `yaml:"sessions"`
	Submissions SubmissionConfig `yaml:"submissions"`
	Notifier    NotifierConfig   `yaml:"notifier"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	Metrics         bool   `yaml:"metrics"`
}

// SessionConfig selects where in-progress sessions are kept.
type SessionConfig struct {
	Driver string      `yaml:"driver"`
	Dir    string      `yaml:"dir"`
	Redis  RedisConfig `yaml:"redis"`

	// EncryptionKey is a base64 encoded 32-byte AES key. Empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
}

// RedisConfig configures the redis session store and lock.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      string `yaml:"ttl"`
	Lock     bool   `yaml:"lock"`
}

// SubmissionConfig selects the storage collaborator.
type SubmissionConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Firebase   FirebaseConfig `yaml:"firebase"`

	// RedactKeys are regular expressions matching answer keys masked before storage.
	RedactKeys []string `yaml:"redact_keys"`
}

// FirebaseConfig configures the Realtime Database store.
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	DatabaseURL     string `yaml:"database_url"`
	Path            string `yaml:"path"`
}

// NotifierConfig selects the notification collaborators.
type NotifierConfig struct {
	Driver   string         `yaml:"driver"`
	Operator string         `yaml:"operator"`
	SMTP     mail.Config    `yaml:"smtp"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig configures the operator chat.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Default returns the configuration used when no file is given:
// everything in memory, notifications logged, a 10s submit timeout.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		SubmitTimeout: "10s",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "5s",
			Metrics:         true,
		},
		Sessions: SessionConfig{
			Driver: DriverMemory,
			Dir:    ".intake/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "intake:session:",
				TTL:    "168h",
			},
		},
		Submissions: SubmissionConfig{
			Driver:     DriverMemory,
			SQLitePath: ".intake/submissions.db",
			Firebase:   FirebaseConfig{Path: "submissions"},
		},
		Notifier: NotifierConfig{
			Driver:   DriverLog,
			Operator: "operator@localhost",
			SMTP:     mail.Config{Port: 587},
		},
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies INTAKE_* environment variables, mostly secrets.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INTAKE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("INTAKE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INTAKE_REDIS_ADDR"); v != "" {
		c.Sessions.Redis.Addr = v
	}
	if v := os.Getenv("INTAKE_REDIS_PASSWORD"); v != "" {
		c.Sessions.Redis.Password = v
	}
	if v := os.Getenv("INTAKE_ENCRYPTION_KEY"); v != "" {
		c.Sessions.EncryptionKey = v
	}
	if v := os.Getenv("INTAKE_FIREBASE_CREDENTIALS"); v != "" {
		c.Submissions.Firebase.CredentialsFile = v
	}
	if v := os.Getenv("INTAKE_FIREBASE_DATABASE_URL"); v != "" {
		c.Submissions.Firebase.DatabaseURL = v
	}
	if v := os.Getenv("INTAKE_SMTP_PASSWORD"); v != "" {
		c.Notifier.SMTP.Password = v
	}
	if v := os.Getenv("INTAKE_TELEGRAM_TOKEN"); v != "" {
		c.Notifier.Telegram.Token = v
	}
	if v := os.Getenv("INTAKE_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notifier.Telegram.ChatID = id
		}
	}
}

// Validate checks driver names, durations and keys.
func (c *Config) Validate() error {
	switch c.Sessions.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown session driver %q", c.Sessions.Driver)
	}
	switch c.Submissions.Driver {
	case DriverMemory, DriverSQLite:
	case DriverFirebase:
		if c.Submissions.Firebase.DatabaseURL == "" {
			return fmt.Errorf("firebase submission store requires database_url")
		}
	default:
		return fmt.Errorf("unknown submission driver %q", c.Submissions.Driver)
	}
	switch c.Notifier.Driver {
	case DriverLog:
	case DriverSMTP:
		if c.Notifier.SMTP.Host == "" || c.Notifier.SMTP.From == "" {
			return fmt.Errorf("smtp notifier requires host and from")
		}
	case DriverTelegram:
		if c.Notifier.Telegram.Token == "" || c.Notifier.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram notifier requires token and chat_id")
		}
	default:
		return fmt.Errorf("unknown notifier driver %q", c.Notifier.Driver)
	}

	for name, d := range map[string]string{
		"submit_timeout":          c.SubmitTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"sessions.redis.ttl":      c.Sessions.Redis.TTL,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	for i, p := range c.Submissions.RedactKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid redact_keys[%d]: %w", i, err)
		}
	}

	if _, _, err := c.Keys(); err != nil {
		return err
	}
	return nil
}

// Keys decodes the session encryption keys. A nil active key means encryption is off.
func (c *Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.Sessions.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(c.Sessions.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid encryption_key: %w", err)
	}
	for i, k := range c.Sessions.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GetSubmitTimeout returns the submit timeout, 10s when unset or invalid.
func (c *Config) GetSubmitTimeout() time.Duration {
	return parseDuration(c.SubmitTimeout, 10*time.Second)
}

// GetShutdownTimeout returns the HTTP shutdown grace period.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 5*time.Second)
}

// GetRedisTTL returns the session expiry in redis. Zero means no expiry.
func (c *Config) GetRedisTTL() time.Duration {
	return parseDuration(c.Sessions.Redis.TTL, 0)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
