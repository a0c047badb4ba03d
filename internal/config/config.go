// Package config provides configuration management for the trade journal.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/stats"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Stats    StatsConfig    `mapstructure:"stats" json:"stats"`
	Logging  LoggingConfig  `mapstructure:"logging" json:"logging"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-" json:"-"`
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	// Path to the SQLite database. Relative paths are resolved against the
	// config directory.
	Path string `mapstructure:"path" json:"path" validate:"required"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" json:"addr" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" validate:"gt=0"`
	// MaxParallel bounds how many journals are computed at once.
	MaxParallel int `mapstructure:"max_parallel" json:"max_parallel" validate:"min=1,max=64"`
}

// StatsConfig holds report bucketing configuration.
type StatsConfig struct {
	Timezone string          `mapstructure:"timezone" json:"timezone" validate:"required,timezone"`
	Sessions []SessionConfig `mapstructure:"sessions" json:"sessions" validate:"required,min=1,dive"`
}

// SessionConfig is one trading session window in local hours [start_hour, end_hour).
type SessionConfig struct {
	Name      string `mapstructure:"name" json:"name" validate:"required"`
	StartHour int    `mapstructure:"start_hour" json:"start_hour" validate:"min=0,max=23"`
	EndHour   int    `mapstructure:"end_hour" json:"end_hour" validate:"min=1,max=24,gtfield=StartHour"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" validate:"loglevel"`
	Console    bool   `mapstructure:"console" json:"console"`
	File       bool   `mapstructure:"file" json:"file"`
	FilePath   string `mapstructure:"file_path" json:"file_path" validate:"required_if=File true"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size" validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" validate:"min=0"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age" validate:"min=0"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-journal"
	}
	return filepath.Join(home, ".config", "trade-journal")
}

// ConfigFile returns the path of config.toml inside configDir.
func ConfigFile(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A commented
// template is written when no config.toml exists yet, and the defaults it
// contains are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	setDefaults(v, configDir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config.toml: %v", apperrors.ErrConfigInvalid, err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{Dir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config.toml: %v", apperrors.ErrConfigInvalid, err)
	}

	applyEnvOverrides(cfg)
	cfg.Database.Path = cfg.resolve(cfg.Database.Path)
	cfg.Logging.FilePath = cfg.resolve(cfg.Logging.FilePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration rooted at configDir without
// touching the filesystem.
func Default(configDir string) *Config {
	v := viper.New()
	setDefaults(v, configDir)
	cfg := &Config{Dir: configDir}
	// defaults are well-formed, decoding cannot fail
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database.path", filepath.Join(configDir, "journal.db"))

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_parallel", 4)

	v.SetDefault("stats.timezone", "UTC")
	sessions := make([]map[string]interface{}, 0, len(stats.DefaultSessions))
	for _, s := range stats.DefaultSessions {
		sessions = append(sessions, map[string]interface{}{
			"name":       s.Name,
			"start_hour": s.StartHour,
			"end_hour":   s.EndHour,
		})
	}
	v.SetDefault("stats.sessions", sessions)

	logs := logging.DefaultLogConfig()
	v.SetDefault("logging.level", logs.Level)
	v.SetDefault("logging.console", logs.Console)
	v.SetDefault("logging.file", logs.File)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "journal.log"))
	v.SetDefault("logging.max_size", logs.MaxSize)
	v.SetDefault("logging.max_backups", logs.MaxBackups)
	v.SetDefault("logging.max_age", logs.MaxAge)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TJ_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TJ_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TJ_TIMEZONE"); v != "" {
		cfg.Stats.Timezone = v
	}
	if v := os.Getenv("TJ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// level names are case-insensitive, as logging.ParseLevel accepts them
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logging.ValidLevel(fl.Field().String())
	})
	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	if _, err := c.StatsConfig(); err != nil {
		return err
	}
	return nil
}

// StatsConfig converts the [stats] section into engine configuration.
func (c *Config) StatsConfig() (stats.Config, error) {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return stats.Config{}, fmt.Errorf("%w: stats.timezone: %v", apperrors.ErrConfigInvalid, err)
	}
	sc := stats.Config{
		Location: loc,
		Sessions: make([]stats.SessionWindow, len(c.Stats.Sessions)),
	}
	for i, s := range c.Stats.Sessions {
		sc.Sessions[i] = stats.SessionWindow{Name: s.Name, StartHour: s.StartHour, EndHour: s.EndHour}
	}
	if err := sc.Validate(); err != nil {
		return stats.Config{}, fmt.Errorf("%w: stats.sessions: %v", apperrors.ErrConfigInvalid, err)
	}
	return sc, nil
}

// LogConfig converts the [logging] section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
