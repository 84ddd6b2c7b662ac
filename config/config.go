package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/photozip"
	photoziphttp "github.com/sagarc03/photozip/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for photozip.
type Config struct {
	Env       string                  `mapstructure:"env"`
	Server    ServerConfig            `mapstructure:"server"`
	Photos    PhotosConfig            `mapstructure:"photos"`
	Archive   ArchiveConfig           `mapstructure:"archive"`
	Heartbeat HeartbeatConfig         `mapstructure:"heartbeat"`
	Pages     PagesConfig             `mapstructure:"pages"`
	CORS      photoziphttp.CORSConfig `mapstructure:"cors"`
	Log       LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PhotosConfig holds the photo root.
type PhotosConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// ArchiveConfig holds archiver and streaming configuration.
type ArchiveConfig struct {
	Command string   `mapstructure:"command" validate:"required"`
	Args    []string `mapstructure:"args"`
	// BatchSize is the chunk size in KiB.
	BatchSize  int           `mapstructure:"batch_size" validate:"min=1,max=65536"`
	ChunkDelay time.Duration `mapstructure:"chunk_delay" validate:"min=0"`
}

// Archiver returns the archiver command description.
func (a ArchiveConfig) Archiver() photozip.ArchiverConfig {
	return photozip.ArchiverConfig{Command: a.Command, Args: a.Args}
}

// BatchBytes returns BatchSize in bytes.
func (a ArchiveConfig) BatchBytes() int {
	return a.BatchSize << 10
}

// HeartbeatConfig holds the heartbeat stream configuration.
type HeartbeatConfig struct {
	Token    string        `mapstructure:"token"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// PagesConfig holds static page configuration.
type PagesConfig struct {
	Index string `mapstructure:"index"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":       "server.port",
	"host":       "server.host",
	"photos-dir": "photos.dir",
	"delay":      "archive.chunk_delay",
	"batch-size": "archive.batch_size",
	"archiver":   "archive.command",
	"log-level":  "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("photos.dir", "test_photos")

	v.SetDefault("archive.command", "zip")
	v.SetDefault("archive.args", []string{"-"})
	v.SetDefault("archive.batch_size", 100) // KiB
	v.SetDefault("archive.chunk_delay", "0s")

	v.SetDefault("heartbeat.token", photozip.DefaultHeartbeatToken)
	v.SetDefault("heartbeat.interval", photozip.DefaultHeartbeatInterval.String())

	v.SetDefault("pages.index", "")

	v.SetDefault("log.level", "info")
}

// applyLegacyEnv honors the unprefixed variables older deployments set.
// They only replace built-in defaults; config files, PHOTOZIP_* variables
// and flags still win.
func applyLegacyEnv(v *viper.Viper) {
	if dir := os.Getenv("PHOTOS_DIR"); dir != "" {
		v.SetDefault("photos.dir", dir)
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.SetDefault("server.port", p)
		} else {
			slog.Warn("ignoring invalid PORT", "value", port)
		}
	}

	// DELAY is a whole number of seconds.
	if delay := os.Getenv("DELAY"); delay != "" {
		if secs, err := strconv.Atoi(delay); err == nil {
			v.SetDefault("archive.chunk_delay", (time.Duration(secs) * time.Second).String())
		} else {
			slog.Warn("ignoring invalid DELAY", "value", delay)
		}
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > legacy env > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)
	applyLegacyEnv(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("PHOTOZIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
