package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rabenherz112/compose-manager/internal/core/preset"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds the user settings: where the shared infra file lives, the
// resource preset table, and logging.
type Config struct {
	InfraFile string                  `mapstructure:"infra_file"`
	Presets   map[string]PresetConfig `mapstructure:"presets"`
	Log       LogConfig               `mapstructure:"log"`
}

// PresetConfig is one preset entry as written in the settings file. Values
// are the human forms ("0.5", "128M"); they are parsed into concrete
// quantities when the table is built.
type PresetConfig struct {
	CPUs   string `mapstructure:"cpus"`
	Memory string `mapstructure:"memory"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads settings from file and environment. With no explicit
// path the settings file is looked up as .compose-manager.yml in the
// current directory, the user config directory, and the home directory; a
// missing file just means defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("infra_file", "infra.yml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".compose-manager")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/compose-manager")
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigParseError); ok {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// File not found is OK, we'll use defaults
	}

	v.SetEnvPrefix("COMPOSE_MANAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// PresetTable builds the effective preset table: the built-in defaults with
// the settings-file entries layered on top.
func (c *Config) PresetTable() (preset.Table, error) {
	table := preset.Default()
	for name, p := range c.Presets {
		var limits spec.ResourceLimits
		var err error
		if p.CPUs != "" {
			if limits.CPULimit, err = spec.ParseCPU(p.CPUs); err != nil {
				return nil, fmt.Errorf("preset %q: %w", name, err)
			}
		}
		if p.Memory != "" {
			if limits.MemoryLimit, err = spec.ParseMemory(p.Memory); err != nil {
				return nil, fmt.Errorf("preset %q: %w", name, err)
			}
		}
		table[name] = limits
	}
	return table, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format. Logs go
// to stderr: stdout belongs to command output like the list table.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
