// Package config resolves runtime settings from defaults, an optional config file and
// THETASK_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "THETASK"

type Config struct {
	StoreKind string
	StorePath string

	LogLevel  string
	LogFormat string
	LogFile   string

	DesktopNotifications bool
	DeadlinePollInterval time.Duration
	DeadlineThreshold    time.Duration
	MonitorBuffer        int

	AIAPIKey   string
	AIModel    string
	AIBaseURL  string
	AITimeout  time.Duration
	AILanguage string

	HTTPAddr    string
	CORSOrigins []string
}

func Default() Config {
	return Config{
		StoreKind:            "sqlite",
		LogLevel:             "info",
		LogFormat:            "text",
		LogFile:              "thetask.log",
		DesktopNotifications: false,
		DeadlinePollInterval: time.Minute,
		DeadlineThreshold:    30 * time.Minute,
		MonitorBuffer:        64,
		AIModel:              "gemini-3-flash-preview",
		AIBaseURL:            "https://generativelanguage.googleapis.com",
		AITimeout:            30 * time.Second,
		AILanguage:           "English",
		HTTPAddr:             "127.0.0.1:8080",
		CORSOrigins:          []string{"http://localhost:3000"},
	}
}

// Load reads configuration. An explicit path must exist; without one, thetask.{yaml,toml,json}
// is looked up in the working directory and the user config directory.
func Load(path string) (Config, error) {
	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("thetask")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "thetask"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		}
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.kind", d.StoreKind)
	v.SetDefault("store.path", d.StorePath)
	v.SetDefault("log.level", d.LogLevel)
	v.SetDefault("log.format", d.LogFormat)
	v.SetDefault("log.file", d.LogFile)
	v.SetDefault("notify.desktop", d.DesktopNotifications)
	v.SetDefault("deadline.interval", d.DeadlinePollInterval)
	v.SetDefault("deadline.threshold", d.DeadlineThreshold)
	v.SetDefault("deadline.buffer", d.MonitorBuffer)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", d.AIModel)
	v.SetDefault("ai.base_url", d.AIBaseURL)
	v.SetDefault("ai.timeout", d.AITimeout)
	v.SetDefault("ai.language", d.AILanguage)
	v.SetDefault("http.addr", d.HTTPAddr)
	v.SetDefault("http.cors_origins", d.CORSOrigins)

	// The credential keeps the names the hosted model tooling uses.
	_ = v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	return v
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		StoreKind:            strings.ToLower(strings.TrimSpace(v.GetString("store.kind"))),
		StorePath:            strings.TrimSpace(v.GetString("store.path")),
		LogLevel:             strings.TrimSpace(v.GetString("log.level")),
		LogFormat:            strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		LogFile:              strings.TrimSpace(v.GetString("log.file")),
		DesktopNotifications: v.GetBool("notify.desktop"),
		DeadlinePollInterval: v.GetDuration("deadline.interval"),
		DeadlineThreshold:    v.GetDuration("deadline.threshold"),
		MonitorBuffer:        v.GetInt("deadline.buffer"),
		AIAPIKey:             strings.TrimSpace(v.GetString("ai.api_key")),
		AIModel:              strings.TrimSpace(v.GetString("ai.model")),
		AIBaseURL:            strings.TrimSpace(v.GetString("ai.base_url")),
		AITimeout:            v.GetDuration("ai.timeout"),
		AILanguage:           strings.TrimSpace(v.GetString("ai.language")),
		HTTPAddr:             strings.TrimSpace(v.GetString("http.addr")),
		CORSOrigins:          splitList(v.GetStringSlice("http.cors_origins")),
	}
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath(cfg.StoreKind)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreKind {
	case "sqlite", "json":
	default:
		return fmt.Errorf("config: unknown store kind %q", c.StoreKind)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if c.DeadlinePollInterval <= 0 {
		return fmt.Errorf("config: deadline interval must be positive, got %s", c.DeadlinePollInterval)
	}
	if c.DeadlineThreshold <= 0 {
		return fmt.Errorf("config: deadline threshold must be positive, got %s", c.DeadlineThreshold)
	}
	if c.MonitorBuffer <= 0 {
		return fmt.Errorf("config: deadline buffer must be positive, got %d", c.MonitorBuffer)
	}
	return nil
}

func DefaultStorePath(kind string) string {
	if kind == "json" {
		return "thetask.json"
	}
	return "thetask.db"
}

// splitList accepts both list values and comma separated strings from the environment.
func splitList(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
