// Package config loads server configuration from environment variables
// (with typed defaults) via viper. No config file format is parsed; every
// key documented in spec.md's configuration table is bound directly to an
// environment variable of the same name.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kanbanforge/kanband/internal/engine"
)

// Config bundles every tunable the server reads at startup. Zero values
// are never used directly; Load always applies Defaults first.
type Config struct {
	Port string
	Host string

	DatabasePath         string
	DatabaseMemoryLimit  int64
	DatabaseTimeout      time.Duration

	APIKeySecret string
	APIKeys      []string

	WebSocketPort             string
	WebSocketMaxConnections   int
	WebSocketAuthTimeout      time.Duration
	WebSocketHeartbeatPeriod  time.Duration
	WebSocketHeartbeatTimeout time.Duration

	BackupEnabled       bool
	BackupSchedule      string
	BackupRetentionDays int

	Priority engine.Config

	RateLimitWindow time.Duration
	RateLimitMax    int
}

// Defaults returns the configuration baseline before environment
// overrides are layered on.
func Defaults() Config {
	return Config{
		Port:                      "8080",
		Host:                      "0.0.0.0",
		DatabasePath:              "./data/kanban.db",
		DatabaseMemoryLimit:       64 << 20,
		DatabaseTimeout:           30 * time.Second,
		WebSocketPort:             "8080",
		WebSocketMaxConnections:   1000,
		WebSocketAuthTimeout:      30 * time.Second,
		WebSocketHeartbeatPeriod:  25 * time.Second,
		WebSocketHeartbeatTimeout: 60 * time.Second,
		BackupEnabled:             true,
		BackupSchedule:            "02:00",
		BackupRetentionDays:       30,
		Priority:                  engine.DefaultConfig(),
		RateLimitWindow:           60 * time.Second,
		RateLimitMax:              100,
	}
}

// Load reads environment variables on top of Defaults and validates the
// result. A non-nil error here is a configuration error (exit code 2 per
// spec.md's exit-code table); the caller is responsible for translating
// that into the process exit code.
func Load() (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bind := func(key string) string {
		v.BindEnv(key)
		return v.GetString(key)
	}

	if s := bind("PORT"); s != "" {
		cfg.Port = s
	}
	if s := bind("HOST"); s != "" {
		cfg.Host = s
	}
	if s := bind("DATABASE_PATH"); s != "" {
		cfg.DatabasePath = s
	}
	if s := bind("DATABASE_MEMORY_LIMIT"); s != "" {
		v.BindEnv("DATABASE_MEMORY_LIMIT")
		cfg.DatabaseMemoryLimit = v.GetInt64("DATABASE_MEMORY_LIMIT")
	}
	if s := bind("DATABASE_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid DATABASE_TIMEOUT %q: %w", s, err)
		}
		cfg.DatabaseTimeout = d
	}
	if s := bind("API_KEY_SECRET"); s != "" {
		cfg.APIKeySecret = s
	}
	if s := bind("API_KEYS"); s != "" {
		cfg.APIKeys = strings.Split(s, ",")
	}
	if s := bind("WEBSOCKET_PORT"); s != "" {
		cfg.WebSocketPort = s
	}
	if s := bind("WEBSOCKET_MAX_CONNECTIONS"); s != "" {
		v.BindEnv("WEBSOCKET_MAX_CONNECTIONS")
		cfg.WebSocketMaxConnections = v.GetInt("WEBSOCKET_MAX_CONNECTIONS")
	}
	if s := bind("BACKUP_ENABLED"); s != "" {
		v.BindEnv("BACKUP_ENABLED")
		cfg.BackupEnabled = v.GetBool("BACKUP_ENABLED")
	}
	if s := bind("BACKUP_SCHEDULE"); s != "" {
		cfg.BackupSchedule = s
	}
	if s := bind("BACKUP_RETENTION_DAYS"); s != "" {
		v.BindEnv("BACKUP_RETENTION_DAYS")
		cfg.BackupRetentionDays = v.GetInt("BACKUP_RETENTION_DAYS")
	}
	if s := bind("PRIORITY_FACTORS"); s != "" {
		var weights engine.Weights
		if err := json.Unmarshal([]byte(s), &weights); err != nil {
			return cfg, fmt.Errorf("config: invalid PRIORITY_FACTORS JSON: %w", err)
		}
		cfg.Priority.Weights = weights
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate enforces spec.md §9's "weights must validate to non-negative
// reals summing to a positive total" rule, plus basic sanity on the
// fields that gate startup.
func (c Config) Validate() error {
	w := c.Priority.Weights
	sum := w.Age + w.Dependency + w.Deadline + w.Manual + w.Context
	if w.Age < 0 || w.Dependency < 0 || w.Deadline < 0 || w.Manual < 0 || w.Context < 0 {
		return fmt.Errorf("config: priority weights must be non-negative")
	}
	if sum <= 0 {
		return fmt.Errorf("config: priority weights must sum to a positive total")
	}
	if c.APIKeySecret == "" {
		return fmt.Errorf("config: API_KEY_SECRET is required")
	}
	return nil
}
