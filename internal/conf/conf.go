// Package conf loads the command line configuration from defaults, an
// optional wanderlist.yaml and WANDERLIST_* environment variables.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WANDERLIST_ADAPTER.
const EnvPrefix = "WANDERLIST"

// FileName is the configuration file looked up without an explicit --config.
const FileName = "wanderlist"

// Settings is the resolved configuration.
type Settings struct {
	DataDir       string        `mapstructure:"data_dir"`
	Adapter       string        `mapstructure:"adapter"`
	ReadOnly      bool          `mapstructure:"read_only"`
	GracePeriod   time.Duration `mapstructure:"grace_period"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	LogLevel      string        `mapstructure:"log_level"`

	// ConfigFile is the file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment binding set up.
// Callers bind their flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("adapter", "sqlite")
	v.SetDefault("read_only", false)
	v.SetDefault("grace_period", 5*time.Second)
	v.SetDefault("retry_interval", time.Second)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("log_level", "warn")
}

// Load reads configFile, or wanderlist.yaml from the data directory and then
// $HOME/.config/wanderlist when configFile is empty. A missing default file is
// not an error.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wanderlist"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	settings.ConfigFile = v.ConfigFileUsed()

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks values that the decoder cannot.
func (s *Settings) Validate() error {
	var errs []error
	switch s.Adapter {
	case "sqlite", "fs", "memory":
	default:
		errs = append(errs, fmt.Errorf("adapter must be sqlite, fs or memory, got %q", s.Adapter))
	}
	if s.GracePeriod < 0 {
		errs = append(errs, fmt.Errorf("grace_period must not be negative"))
	}
	if s.RetryInterval < 0 {
		errs = append(errs, fmt.Errorf("retry_interval must not be negative"))
	}
	if _, err := s.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (s *Settings) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
